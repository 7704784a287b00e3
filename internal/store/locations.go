package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/klet/internal/model"
)

// CreateLocation creates a new location.
func CreateLocation(ctx context.Context, db DBTX, name, description string) (*model.Location, error) {
	id := newID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO locations (id, name, description) VALUES (?, ?, ?)`,
		id, name, description,
	)
	if err != nil {
		return nil, fmt.Errorf("creating location: %w", err)
	}
	return GetLocation(ctx, db, id)
}

// GetLocation returns a location by ID, or nil if it does not exist.
func GetLocation(ctx context.Context, db DBTX, id string) (*model.Location, error) {
	l := &model.Location{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(description, ''), created_at FROM locations WHERE id = ?`, id,
	).Scan(&l.ID, &l.Name, &l.Description, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}
	return l, nil
}

// ListLocations returns all locations ordered by creation.
func ListLocations(ctx context.Context, db DBTX) ([]model.Location, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, ''), created_at FROM locations ORDER BY created_at, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	locations := []model.Location{}
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// CountLocations returns the number of locations.
func CountLocations(ctx context.Context, db DBTX) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting locations: %w", err)
	}
	return n, nil
}

// UpdateLocation renames a location.
func UpdateLocation(ctx context.Context, db DBTX, id, name, description string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE locations SET name = ?, description = ? WHERE id = ?`,
		name, description, id,
	)
	if err != nil {
		return fmt.Errorf("updating location: %w", err)
	}
	return requireAffected(res, "location "+id)
}

// DeleteLocation removes a location. Its units and their bottles are
// removed by foreign key cascade.
func DeleteLocation(ctx context.Context, db DBTX, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting location: %w", err)
	}
	return requireAffected(res, "location "+id)
}
