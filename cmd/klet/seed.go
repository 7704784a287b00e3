package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/klet/internal/config"
	"github.com/erazemk/klet/internal/store"
)

// seedLayout creates the layout's locations and units when the cellar has
// no locations yet. It returns how many locations were created.
func seedLayout(ctx context.Context, database *sql.DB, layout *config.Layout) (int, error) {
	n, err := store.CountLocations(ctx, database)
	if err != nil {
		return 0, err
	}
	if n > 0 || len(layout.Locations) == 0 {
		return 0, nil
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ls := range layout.Locations {
		loc, err := store.CreateLocation(ctx, tx, ls.Name, ls.Description)
		if err != nil {
			return 0, err
		}
		for _, us := range ls.Units {
			u, err := us.Unit(loc.ID)
			if err != nil {
				return 0, err
			}
			if _, err := store.CreateUnit(ctx, tx, u); err != nil {
				return 0, fmt.Errorf("location %q: %w", ls.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing layout: %w", err)
	}
	return len(layout.Locations), nil
}
