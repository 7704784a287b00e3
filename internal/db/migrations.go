package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: at most one stored bottle per slot. Consumed and gifted
	// bottles keep their last coordinates for history and are exempt.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_bottles_stored_slot
	     ON bottles(unit_id, x, y, depth) WHERE status = 'Stored'`,
}

func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
