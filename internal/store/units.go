package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/erazemk/klet/internal/model"
)

const unitColumns = `id, location_id, name, type, width, height, depth, config, created_at`

// CreateUnit creates a storage unit inside u.LocationID. u.ID is ignored.
func CreateUnit(ctx context.Context, db DBTX, u model.StorageUnit) (*model.StorageUnit, error) {
	cfg, err := json.Marshal(u.Config)
	if err != nil {
		return nil, fmt.Errorf("encoding unit config: %w", err)
	}

	id := newID()
	_, err = db.ExecContext(ctx,
		`INSERT INTO storage_units (id, location_id, name, type, width, height, depth, config)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, u.LocationID, u.Name, u.Type, u.Dimensions.Width, u.Dimensions.Height, u.Dimensions.Depth, string(cfg),
	)
	if err != nil {
		return nil, fmt.Errorf("creating unit: %w", err)
	}
	return GetUnit(ctx, db, id)
}

// GetUnit returns a storage unit by ID, or nil if it does not exist.
func GetUnit(ctx context.Context, db DBTX, id string) (*model.StorageUnit, error) {
	row := db.QueryRowContext(ctx, `SELECT `+unitColumns+` FROM storage_units WHERE id = ?`, id)
	u, err := scanUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting unit: %w", err)
	}
	return u, nil
}

// ListUnits returns the units of a location, or of all locations when
// locationID is empty.
func ListUnits(ctx context.Context, db DBTX, locationID string) ([]model.StorageUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM storage_units`
	var args []any
	if locationID != "" {
		query += ` WHERE location_id = ?`
		args = append(args, locationID)
	}
	query += ` ORDER BY created_at, name`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing units: %w", err)
	}
	defer rows.Close()

	units := []model.StorageUnit{}
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning unit: %w", err)
		}
		units = append(units, *u)
	}
	return units, rows.Err()
}

// UpdateUnit replaces a unit's name, type, dimensions and config.
func UpdateUnit(ctx context.Context, db DBTX, u model.StorageUnit) error {
	cfg, err := json.Marshal(u.Config)
	if err != nil {
		return fmt.Errorf("encoding unit config: %w", err)
	}
	res, err := db.ExecContext(ctx,
		`UPDATE storage_units SET name = ?, type = ?, width = ?, height = ?, depth = ?, config = ?
		 WHERE id = ?`,
		u.Name, u.Type, u.Dimensions.Width, u.Dimensions.Height, u.Dimensions.Depth, string(cfg), u.ID,
	)
	if err != nil {
		return fmt.Errorf("updating unit: %w", err)
	}
	return requireAffected(res, "unit "+u.ID)
}

// DeleteUnit removes a unit together with its bottles.
func DeleteUnit(ctx context.Context, db DBTX, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM storage_units WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting unit: %w", err)
	}
	return requireAffected(res, "unit "+id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUnit(s rowScanner) (*model.StorageUnit, error) {
	var (
		u   model.StorageUnit
		cfg string
	)
	err := s.Scan(&u.ID, &u.LocationID, &u.Name, &u.Type,
		&u.Dimensions.Width, &u.Dimensions.Height, &u.Dimensions.Depth, &cfg, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if cfg != "" {
		if err := json.Unmarshal([]byte(cfg), &u.Config); err != nil {
			return nil, fmt.Errorf("decoding config of unit %s: %w", u.ID, err)
		}
	}
	return &u, nil
}
