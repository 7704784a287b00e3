package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/erazemk/klet/internal/model"
)

const bottleSelect = `
	SELECT b.id, b.wine_id, b.location_id, b.unit_id, b.x, b.y, b.depth, b.status,
	       b.added_at, b.consumed_at, b.consumption_rating, b.consumption_notes,
	       COALESCE(w.name, ''), COALESCE(w.producer, ''), COALESCE(u.name, ''), COALESCE(l.name, '')
	FROM bottles b
	LEFT JOIN wines w ON w.id = b.wine_id
	LEFT JOIN storage_units u ON u.id = b.unit_id
	LEFT JOIN locations l ON l.id = b.location_id`

// BottleFilter narrows ListBottles. Zero values match everything.
type BottleFilter struct {
	UnitID     string
	LocationID string
	WineID     string
	Status     model.BottleStatus
}

// InsertBottles inserts a batch of bottles as given, IDs included.
func InsertBottles(ctx context.Context, db DBTX, bottles []model.Bottle) error {
	for _, b := range bottles {
		_, err := db.ExecContext(ctx,
			`INSERT INTO bottles (id, wine_id, location_id, unit_id, x, y, depth, status, added_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.WineID, b.LocationID, b.UnitID, b.X, b.Y, b.Depth, b.Status, b.AddedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting bottle %s: %w", b.ID, err)
		}
	}
	return nil
}

// GetBottle returns a bottle by ID, or nil if it does not exist.
func GetBottle(ctx context.Context, db DBTX, id string) (*model.Bottle, error) {
	row := db.QueryRowContext(ctx, bottleSelect+` WHERE b.id = ?`, id)
	b, err := scanBottle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting bottle: %w", err)
	}
	return b, nil
}

// ListBottles returns bottles matching f in slot order.
func ListBottles(ctx context.Context, db DBTX, f BottleFilter) ([]model.Bottle, error) {
	var (
		where []string
		args  []any
	)
	if f.UnitID != "" {
		where = append(where, `b.unit_id = ?`)
		args = append(args, f.UnitID)
	}
	if f.LocationID != "" {
		where = append(where, `b.location_id = ?`)
		args = append(args, f.LocationID)
	}
	if f.WineID != "" {
		where = append(where, `b.wine_id = ?`)
		args = append(args, f.WineID)
	}
	if f.Status != "" {
		where = append(where, `b.status = ?`)
		args = append(args, f.Status)
	}

	query := bottleSelect
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY b.unit_id, b.y, b.x, b.depth, b.added_at`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bottles: %w", err)
	}
	defer rows.Close()

	bottles := []model.Bottle{}
	for rows.Next() {
		b, err := scanBottle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bottle: %w", err)
		}
		bottles = append(bottles, *b)
	}
	return bottles, rows.Err()
}

// UpdateBottle applies the non-nil fields of u to bottle id.
func UpdateBottle(ctx context.Context, db DBTX, id string, u model.BottleUpdate) error {
	var (
		set  []string
		args []any
	)
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if u.LocationID != nil {
		add("location_id", *u.LocationID)
	}
	if u.UnitID != nil {
		add("unit_id", *u.UnitID)
	}
	if u.X != nil {
		add("x", *u.X)
	}
	if u.Y != nil {
		add("y", *u.Y)
	}
	if u.Depth != nil {
		add("depth", *u.Depth)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	if u.ConsumedAt != nil {
		add("consumed_at", *u.ConsumedAt)
	}
	if u.ConsumptionRating != nil {
		add("consumption_rating", *u.ConsumptionRating)
	}
	if u.ConsumptionNotes != nil {
		add("consumption_notes", *u.ConsumptionNotes)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := db.ExecContext(ctx,
		`UPDATE bottles SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("updating bottle: %w", err)
	}
	return requireAffected(res, "bottle "+id)
}

// DeleteBottle removes a bottle and its history.
func DeleteBottle(ctx context.Context, db DBTX, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM bottles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting bottle: %w", err)
	}
	return requireAffected(res, "bottle "+id)
}

func scanBottle(s rowScanner) (*model.Bottle, error) {
	var (
		b     model.Bottle
		notes sql.NullString
	)
	err := s.Scan(&b.ID, &b.WineID, &b.LocationID, &b.UnitID, &b.X, &b.Y, &b.Depth, &b.Status,
		&b.AddedAt, &b.ConsumedAt, &b.ConsumptionRating, &notes,
		&b.WineName, &b.Producer, &b.UnitName, &b.LocationName)
	if err != nil {
		return nil, err
	}
	b.ConsumptionNotes = notes.String
	return &b, nil
}
