package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/klet/internal/db"
	"github.com/erazemk/klet/internal/model"
)

func TestCreateAndGetLocation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	loc, err := CreateLocation(ctx, database, "Locker", "Basement storage")
	if err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}
	if loc.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := GetLocation(ctx, database, loc.ID)
	if err != nil {
		t.Fatalf("GetLocation: %v", err)
	}
	if got.Name != "Locker" || got.Description != "Basement storage" {
		t.Errorf("unexpected location %+v", got)
	}

	missing, err := GetLocation(ctx, database, "nope")
	if err != nil {
		t.Fatalf("GetLocation missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing location")
	}
}

func TestUpdateLocationNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	err := UpdateLocation(context.Background(), database, "nope", "x", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteLocationCascades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	loc, _ := CreateLocation(ctx, database, "Home", "")
	unit, err := CreateUnit(ctx, database, model.StorageUnit{
		LocationID: loc.ID,
		Name:       "Main Rack",
		Type:       model.UnitTypeGrid,
		Dimensions: model.Dimensions{Width: 8, Height: 4, Depth: 1},
	})
	if err != nil {
		t.Fatalf("CreateUnit: %v", err)
	}
	wine := createTestWine(t, database)
	insertTestBottle(t, database, wine.ID, unit, "b1", 0, 0, 0)

	if err := DeleteLocation(ctx, database, loc.ID); err != nil {
		t.Fatalf("DeleteLocation: %v", err)
	}

	if u, _ := GetUnit(ctx, database, unit.ID); u != nil {
		t.Error("expected unit to be deleted with its location")
	}
	if b, _ := GetBottle(ctx, database, "b1"); b != nil {
		t.Error("expected bottle to be deleted with its location")
	}
	n, _ := CountLocations(ctx, database)
	if n != 0 {
		t.Errorf("expected 0 locations, got %d", n)
	}
}
