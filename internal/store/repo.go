package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/klet/internal/cellar"
	"github.com/erazemk/klet/internal/model"
)

// Repo adapts the store functions to cellar.Repository.
type Repo struct {
	db DBTX
}

var _ cellar.Repository = (*Repo)(nil)

// NewRepo returns a Repo that runs each call directly against db.
func NewRepo(db DBTX) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Unit(ctx context.Context, id string) (*model.StorageUnit, error) {
	return GetUnit(ctx, r.db, id)
}

func (r *Repo) UpdateUnit(ctx context.Context, u model.StorageUnit) error {
	return UpdateUnit(ctx, r.db, u)
}

func (r *Repo) DeleteUnit(ctx context.Context, id string) error {
	return DeleteUnit(ctx, r.db, id)
}

func (r *Repo) WineExists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wines WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking wine: %w", err)
	}
	return n > 0, nil
}

func (r *Repo) GetBottle(ctx context.Context, id string) (*model.Bottle, error) {
	return GetBottle(ctx, r.db, id)
}

func (r *Repo) ListBottles(ctx context.Context, unitID string) ([]model.Bottle, error) {
	return ListBottles(ctx, r.db, BottleFilter{UnitID: unitID, Status: model.BottleStored})
}

func (r *Repo) InsertBottles(ctx context.Context, bottles []model.Bottle) error {
	return InsertBottles(ctx, r.db, bottles)
}

func (r *Repo) UpdateBottle(ctx context.Context, id string, u model.BottleUpdate) error {
	return UpdateBottle(ctx, r.db, id, u)
}

func (r *Repo) DeleteBottle(ctx context.Context, id string) error {
	return DeleteBottle(ctx, r.db, id)
}

func (r *Repo) RecordEvents(ctx context.Context, events []model.BottleEvent) error {
	return RecordBottleEvents(ctx, r.db, events)
}

func (r *Repo) Snapshot(ctx context.Context) (*cellar.Snapshot, error) {
	var (
		snap cellar.Snapshot
		err  error
	)
	if snap.Locations, err = ListLocations(ctx, r.db); err != nil {
		return nil, err
	}
	if snap.Units, err = ListUnits(ctx, r.db, ""); err != nil {
		return nil, err
	}
	if snap.Wines, err = ListWines(ctx, r.db, WineFilter{}); err != nil {
		return nil, err
	}
	if snap.Bottles, err = ListBottles(ctx, r.db, BottleFilter{}); err != nil {
		return nil, err
	}
	return &snap, nil
}

// TxRunner opens a transaction per cellar operation.
type TxRunner struct {
	DB *sql.DB
}

var _ cellar.TxRunner = TxRunner{}

// WithTx runs fn with a Repo bound to a new transaction and commits when fn
// returns nil.
func (t TxRunner) WithTx(ctx context.Context, fn func(cellar.Repository) error) error {
	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(NewRepo(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
