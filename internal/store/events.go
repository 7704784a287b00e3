package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/klet/internal/model"
)

// RecordBottleEvents appends history entries. IDs and creation times are
// assigned by the database.
func RecordBottleEvents(ctx context.Context, db DBTX, events []model.BottleEvent) error {
	for _, e := range events {
		_, err := db.ExecContext(ctx,
			`INSERT INTO bottle_events (bottle_id, kind, from_unit_id, from_x, from_y, from_depth,
			                            to_unit_id, to_x, to_y, to_depth, notes, created_by)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.BottleID, e.Kind, nullString(e.FromUnitID), e.FromX, e.FromY, e.FromDepth,
			nullString(e.ToUnitID), e.ToX, e.ToY, e.ToDepth, nullString(e.Notes), e.CreatedBy,
		)
		if err != nil {
			return fmt.Errorf("recording %s event for bottle %s: %w", e.Kind, e.BottleID, err)
		}
	}
	return nil
}

// ListBottleHistory returns the history of one bottle, oldest first.
func ListBottleHistory(ctx context.Context, db DBTX, bottleID string) ([]model.BottleEvent, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, bottle_id, kind, from_unit_id, from_x, from_y, from_depth,
		        to_unit_id, to_x, to_y, to_depth, notes, created_at, created_by
		 FROM bottle_events WHERE bottle_id = ? ORDER BY id`, bottleID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing bottle history: %w", err)
	}
	defer rows.Close()

	events := []model.BottleEvent{}
	for rows.Next() {
		var (
			e                      model.BottleEvent
			fromUnit, toUnit, note sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.BottleID, &e.Kind, &fromUnit, &e.FromX, &e.FromY, &e.FromDepth,
			&toUnit, &e.ToX, &e.ToY, &e.ToDepth, &note, &e.CreatedAt, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("scanning bottle event: %w", err)
		}
		e.FromUnitID = fromUnit.String
		e.ToUnitID = toUnit.String
		e.Notes = note.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListConsumption returns consumed and gifted bottles, most recent first.
func ListConsumption(ctx context.Context, db DBTX) ([]model.Bottle, error) {
	rows, err := db.QueryContext(ctx,
		bottleSelect+` WHERE b.status <> ? ORDER BY b.consumed_at DESC, b.added_at DESC`,
		model.BottleStored,
	)
	if err != nil {
		return nil, fmt.Errorf("listing consumption: %w", err)
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

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
