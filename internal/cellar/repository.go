// Package cellar implements the bottle operations of the cellar: stocking,
// moving, consuming and gifting bottles, and the read models built on the
// slot allocator and the scene layouts.
//
// Every mutating operation reads a snapshot of the affected unit, decides
// with the pure functions in package grid, and writes inside one
// transaction. Notifications go out only after the commit succeeded.
package cellar

import (
	"context"
	"time"

	"github.com/erazemk/klet/internal/model"
)

// Repository is the persistence the service needs. Implementations passed
// to a TxRunner callback are bound to a single transaction.
type Repository interface {
	Unit(ctx context.Context, id string) (*model.StorageUnit, error)
	UpdateUnit(ctx context.Context, u model.StorageUnit) error
	// DeleteUnit removes a unit together with its bottles.
	DeleteUnit(ctx context.Context, id string) error
	WineExists(ctx context.Context, id string) (bool, error)
	GetBottle(ctx context.Context, id string) (*model.Bottle, error)
	// ListBottles returns the stored bottles of a unit.
	ListBottles(ctx context.Context, unitID string) ([]model.Bottle, error)
	InsertBottles(ctx context.Context, bottles []model.Bottle) error
	UpdateBottle(ctx context.Context, id string, u model.BottleUpdate) error
	DeleteBottle(ctx context.Context, id string) error
	RecordEvents(ctx context.Context, events []model.BottleEvent) error
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// TxRunner runs fn inside a transaction, committing when fn returns nil.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(Repository) error) error
}

// Snapshot is a consistent read of the whole cellar.
type Snapshot struct {
	Locations []model.Location    `json:"locations"`
	Units     []model.StorageUnit `json:"units"`
	Wines     []model.Wine        `json:"wines"`
	Bottles   []model.Bottle      `json:"bottles"`
	TakenAt   time.Time           `json:"taken_at"`
}

// Event types published after a successful commit.
const (
	EventBottlesStored  = "bottles.stored"
	EventBottleMoved    = "bottle.moved"
	EventBottleConsumed = "bottle.consumed"
	EventBottleGifted   = "bottle.gifted"
	EventBottleDeleted  = "bottle.deleted"
	EventUnitUpdated    = "unit.updated"
	EventUnitDeleted    = "unit.deleted"
)

// Event tells subscribers which units changed so they can refetch.
type Event struct {
	Type    string         `json:"type"`
	UnitIDs []string       `json:"unit_ids"`
	Bottles []model.Bottle `json:"bottles"`
	At      time.Time      `json:"at"`
}

// Notifier receives events after commit. Publish must not block.
type Notifier interface {
	Publish(Event)
}

// Recorder receives operational counters.
type Recorder interface {
	SlotsAllocated(unitType model.UnitType, n int)
	AllocationShortfall(unitType model.UnitType)
	MoveValidated(result string)
	BottleStatusChanged(status model.BottleStatus)
}

type nopNotifier struct{}

func (nopNotifier) Publish(Event) {}

type nopRecorder struct{}

func (nopRecorder) SlotsAllocated(model.UnitType, int) {}
func (nopRecorder) AllocationShortfall(model.UnitType) {}
func (nopRecorder) MoveValidated(string) {}
func (nopRecorder) BottleStatusChanged(model.BottleStatus) {}
