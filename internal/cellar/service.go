package cellar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/klet/internal/grid"
	"github.com/erazemk/klet/internal/model"
	"github.com/erazemk/klet/internal/scene"
)

// Service runs cellar operations against a transactional repository.
type Service struct {
	tx     TxRunner
	notify Notifier
	rec    Recorder
	now    func() time.Time
}

// NewService returns a Service. notify and rec may be nil.
func NewService(tx TxRunner, notify Notifier, rec Recorder) *Service {
	if notify == nil {
		notify = nopNotifier{}
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Service{tx: tx, notify: notify, rec: rec, now: time.Now}
}

// StockRequest adds Quantity bottles of a wine to a unit.
type StockRequest struct {
	WineID   string
	UnitID   string
	Quantity int
	UserID   *int64
}

// AddStock allocates Quantity free slots of the unit in scan order and
// stores one new bottle in each. The batch is all-or-nothing: when fewer
// slots are free an error matching grid.ErrAllocationShortfall is returned
// and nothing is written.
func (s *Service) AddStock(ctx context.Context, req StockRequest) ([]model.Bottle, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var (
		stored   []model.Bottle
		unitType model.UnitType
	)
	err := s.tx.WithTx(ctx, func(r Repository) error {
		u, err := mustUnit(ctx, r, req.UnitID)
		if err != nil {
			return err
		}
		unitType = u.Type

		ok, err := r.WineExists(ctx, req.WineID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrWineNotFound
		}

		current, err := r.ListBottles(ctx, u.ID)
		if err != nil {
			return err
		}
		slots, err := grid.Allocate(*u, grid.BuildOccupancy(current, u.ID), req.Quantity)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		bottles := make([]model.Bottle, 0, len(slots))
		events := make([]model.BottleEvent, 0, len(slots))
		for _, slot := range slots {
			b := model.Bottle{
				ID:         uuid.NewString(),
				WineID:     req.WineID,
				LocationID: u.LocationID,
				UnitID:     u.ID,
				X:          slot.X,
				Y:          slot.Y,
				Depth:      slot.Depth,
				Status:     model.BottleStored,
				AddedAt:    now,
			}
			bottles = append(bottles, b)
			events = append(events, model.BottleEvent{
				BottleID:  b.ID,
				Kind:      model.EventStored,
				ToUnitID:  u.ID,
				ToX:       ptr(slot.X),
				ToY:       ptr(slot.Y),
				ToDepth:   ptr(slot.Depth),
				CreatedBy: req.UserID,
			})
		}

		if err := r.InsertBottles(ctx, bottles); err != nil {
			return err
		}
		if err := r.RecordEvents(ctx, events); err != nil {
			return err
		}

		stored, err = reload(ctx, r, bottles)
		return err
	})
	if err != nil {
		if errors.Is(err, grid.ErrAllocationShortfall) {
			s.rec.AllocationShortfall(unitType)
		}
		return nil, fmt.Errorf("adding stock to unit %s: %w", req.UnitID, err)
	}

	s.rec.SlotsAllocated(unitType, len(stored))
	s.publish(EventBottlesStored, stored, req.UnitID)
	return stored, nil
}

// MoveRequest moves a stored bottle to a slot. An empty UnitID keeps the
// bottle in its current unit.
type MoveRequest struct {
	BottleID string
	UnitID   string
	X        int
	Y        int
	Depth    int
	UserID   *int64
}

// MoveBottle validates and applies a move. Out-of-bounds targets yield
// grid.ErrOutOfBounds and targets held by another bottle yield
// grid.ErrSlotOccupied; neither writes anything. Moving a bottle onto its
// own slot is accepted and changes nothing.
func (s *Service) MoveBottle(ctx context.Context, req MoveRequest) (*model.Bottle, error) {
	var (
		moved  *model.Bottle
		fromID string
		result grid.MoveResult
	)
	err := s.tx.WithTx(ctx, func(r Repository) error {
		b, err := mustStoredBottle(ctx, r, req.BottleID)
		if err != nil {
			return err
		}
		fromID = b.UnitID

		unitID := req.UnitID
		if unitID == "" {
			unitID = b.UnitID
		}
		u, err := mustUnit(ctx, r, unitID)
		if err != nil {
			return err
		}

		to := grid.Slot{X: req.X, Y: req.Y, Depth: req.Depth}
		result, moved, err = applyMove(ctx, r, b, u, to, req.UserID)
		if err != nil {
			return err
		}
		return result.Err()
	})
	if result != grid.MoveAccepted || err == nil {
		s.rec.MoveValidated(result.String())
	}
	if err != nil {
		return nil, fmt.Errorf("moving bottle %s: %w", req.BottleID, err)
	}

	s.publish(EventBottleMoved, []model.Bottle{*moved}, fromID, moved.UnitID)
	return moved, nil
}

// Drag outcomes.
const (
	DragNoop = "noop"
)

// DragRequest releases a drag of a stored bottle by Delta scene units.
type DragRequest struct {
	BottleID string
	Delta    scene.Vec3
	UserID   *int64
}

// DragResult tells the client whether to commit or snap back. Position is
// where the bottle rests after the operation.
type DragResult struct {
	Outcome  string       `json:"outcome"`
	Bottle   model.Bottle `json:"bottle"`
	Position scene.Vec3   `json:"position"`
}

// DragRelease converts a drag delta into a planar move within the bottle's
// unit. Depth is kept. A delta shorter than half a pitch on both axes is a
// no-op. A rejected move is reported through Outcome, not as an error, and
// leaves the bottle where it was.
func (s *Service) DragRelease(ctx context.Context, req DragRequest) (*DragResult, error) {
	var out DragResult
	err := s.tx.WithTx(ctx, func(r Repository) error {
		b, err := mustStoredBottle(ctx, r, req.BottleID)
		if err != nil {
			return err
		}
		u, err := mustUnit(ctx, r, b.UnitID)
		if err != nil {
			return err
		}

		l := scene.For(*u)
		out = DragResult{Outcome: DragNoop, Bottle: *b, Position: l.Forward(b.X, b.Y, b.Depth)}

		nx, ny, ok := scene.DragTarget(l, b.X, b.Y, req.Delta)
		if !ok {
			return nil
		}

		result, moved, err := applyMove(ctx, r, b, u, grid.Slot{X: nx, Y: ny, Depth: b.Depth}, req.UserID)
		if err != nil {
			return err
		}
		out.Outcome = result.String()
		if result == grid.MoveAccepted {
			out.Bottle = *moved
			out.Position = l.Forward(moved.X, moved.Y, moved.Depth)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("dragging bottle %s: %w", req.BottleID, err)
	}

	if out.Outcome != DragNoop {
		s.rec.MoveValidated(out.Outcome)
	}
	if out.Outcome == grid.MoveAccepted.String() {
		s.publish(EventBottleMoved, []model.Bottle{out.Bottle}, out.Bottle.UnitID)
	}
	return &out, nil
}

// applyMove validates b's move to slot to of u and writes it when accepted.
// The returned bottle is b reloaded after the write.
func applyMove(ctx context.Context, r Repository, b *model.Bottle, u *model.StorageUnit, to grid.Slot, userID *int64) (grid.MoveResult, *model.Bottle, error) {
	occupants, err := r.ListBottles(ctx, u.ID)
	if err != nil {
		return 0, nil, err
	}
	result := grid.ValidateMove(*u, grid.BuildOccupancy(occupants, u.ID), b.ID, to.X, to.Y, to.Depth)
	if result != grid.MoveAccepted {
		slog.Debug("move rejected", "bottle", b.ID, "unit", u.ID, "slot", to.String(), "result", result.String())
		return result, nil, nil
	}
	if b.UnitID == u.ID && grid.SlotOf(*b) == to {
		return result, b, nil
	}

	err = r.UpdateBottle(ctx, b.ID, model.BottleUpdate{
		LocationID: &u.LocationID,
		UnitID:     &u.ID,
		X:          &to.X,
		Y:          &to.Y,
		Depth:      &to.Depth,
	})
	if err != nil {
		return 0, nil, err
	}
	err = r.RecordEvents(ctx, []model.BottleEvent{{
		BottleID:   b.ID,
		Kind:       model.EventMoved,
		FromUnitID: b.UnitID,
		FromX:      ptr(b.X),
		FromY:      ptr(b.Y),
		FromDepth:  ptr(b.Depth),
		ToUnitID:   u.ID,
		ToX:        ptr(to.X),
		ToY:        ptr(to.Y),
		ToDepth:    ptr(to.Depth),
		CreatedBy:  userID,
	}})
	if err != nil {
		return 0, nil, err
	}

	moved, err := r.GetBottle(ctx, b.ID)
	if err != nil {
		return 0, nil, err
	}
	if moved == nil {
		return 0, nil, ErrBottleNotFound
	}
	return result, moved, nil
}

// RetireRequest takes a stored bottle out of the cellar. Rating is only
// kept for consumed bottles.
type RetireRequest struct {
	BottleID string
	Rating   *int
	Notes    string
	UserID   *int64
}

// Consume marks a stored bottle as drunk and frees its slot.
func (s *Service) Consume(ctx context.Context, req RetireRequest) (*model.Bottle, error) {
	return s.retire(ctx, req, model.BottleConsumed)
}

// Gift marks a stored bottle as given away and frees its slot.
func (s *Service) Gift(ctx context.Context, req RetireRequest) (*model.Bottle, error) {
	req.Rating = nil
	return s.retire(ctx, req, model.BottleGifted)
}

func (s *Service) retire(ctx context.Context, req RetireRequest, status model.BottleStatus) (*model.Bottle, error) {
	kind, event := model.EventConsumed, EventBottleConsumed
	if status == model.BottleGifted {
		kind, event = model.EventGifted, EventBottleGifted
	}

	var retired *model.Bottle
	err := s.tx.WithTx(ctx, func(r Repository) error {
		b, err := mustStoredBottle(ctx, r, req.BottleID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		err = r.UpdateBottle(ctx, b.ID, model.BottleUpdate{
			Status:            &status,
			ConsumedAt:        &now,
			ConsumptionRating: req.Rating,
			ConsumptionNotes:  &req.Notes,
		})
		if err != nil {
			return err
		}
		err = r.RecordEvents(ctx, []model.BottleEvent{{
			BottleID:   b.ID,
			Kind:       kind,
			FromUnitID: b.UnitID,
			FromX:      ptr(b.X),
			FromY:      ptr(b.Y),
			FromDepth:  ptr(b.Depth),
			Notes:      req.Notes,
			CreatedBy:  req.UserID,
		}})
		if err != nil {
			return err
		}

		retired, err = r.GetBottle(ctx, b.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("retiring bottle %s: %w", req.BottleID, err)
	}

	s.rec.BottleStatusChanged(status)
	s.publish(event, []model.Bottle{*retired}, retired.UnitID)
	return retired, nil
}

// DeleteBottle removes a bottle and its history regardless of status.
func (s *Service) DeleteBottle(ctx context.Context, id string) error {
	var deleted model.Bottle
	err := s.tx.WithTx(ctx, func(r Repository) error {
		b, err := r.GetBottle(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return ErrBottleNotFound
		}
		deleted = *b
		return r.DeleteBottle(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("deleting bottle %s: %w", id, err)
	}

	s.publish(EventBottleDeleted, []model.Bottle{deleted}, deleted.UnitID)
	return nil
}

// UpdateUnit changes a unit's name, type, dimensions or depth overrides.
// The change is refused with ErrGeometryConflict when a stored bottle would
// end up out of bounds. Location and creation time are kept.
func (s *Service) UpdateUnit(ctx context.Context, u model.StorageUnit) (*model.StorageUnit, error) {
	var updated *model.StorageUnit
	err := s.tx.WithTx(ctx, func(r Repository) error {
		current, err := mustUnit(ctx, r, u.ID)
		if err != nil {
			return err
		}
		u.LocationID = current.LocationID
		u.CreatedAt = current.CreatedAt

		bottles, err := r.ListBottles(ctx, u.ID)
		if err != nil {
			return err
		}
		var orphaned int
		for _, b := range bottles {
			if b.Status == model.BottleStored && !grid.InBounds(u, b.X, b.Y, b.Depth) {
				orphaned++
			}
		}
		if orphaned > 0 {
			return fmt.Errorf("%d bottles: %w", orphaned, ErrGeometryConflict)
		}

		if err := r.UpdateUnit(ctx, u); err != nil {
			return err
		}
		updated, err = r.Unit(ctx, u.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("updating unit %s: %w", u.ID, err)
	}

	s.publish(EventUnitUpdated, nil, updated.ID)
	return updated, nil
}

// DeleteUnit removes a unit and every bottle in it. Subscribers are told the
// unit is gone rather than receiving one event per bottle.
func (s *Service) DeleteUnit(ctx context.Context, id string) error {
	err := s.tx.WithTx(ctx, func(r Repository) error {
		if _, err := mustUnit(ctx, r, id); err != nil {
			return err
		}
		return r.DeleteUnit(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("deleting unit %s: %w", id, err)
	}

	s.publish(EventUnitDeleted, nil, id)
	return nil
}

func (s *Service) publish(typ string, bottles []model.Bottle, unitIDs ...string) {
	seen := make(map[string]bool, len(unitIDs))
	ids := make([]string, 0, len(unitIDs))
	for _, id := range unitIDs {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if bottles == nil {
		bottles = []model.Bottle{}
	}
	s.notify.Publish(Event{Type: typ, UnitIDs: ids, Bottles: bottles, At: s.now().UTC()})
}

func mustUnit(ctx context.Context, r Repository, id string) (*model.StorageUnit, error) {
	u, err := r.Unit(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnitNotFound
	}
	return u, nil
}

func mustStoredBottle(ctx context.Context, r Repository, id string) (*model.Bottle, error) {
	b, err := r.GetBottle(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBottleNotFound
	}
	if b.Status != model.BottleStored {
		return nil, fmt.Errorf("bottle %s is %s: %w", b.ID, b.Status, ErrNotStored)
	}
	return b, nil
}

func reload(ctx context.Context, r Repository, bottles []model.Bottle) ([]model.Bottle, error) {
	out := make([]model.Bottle, 0, len(bottles))
	for _, b := range bottles {
		got, err := r.GetBottle(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		if got == nil {
			return nil, fmt.Errorf("bottle %s vanished after insert: %w", b.ID, ErrBottleNotFound)
		}
		out = append(out, *got)
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }
