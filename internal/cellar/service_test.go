package cellar_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/klet/internal/cellar"
	"github.com/erazemk/klet/internal/db"
	"github.com/erazemk/klet/internal/grid"
	"github.com/erazemk/klet/internal/model"
	"github.com/erazemk/klet/internal/scene"
	"github.com/erazemk/klet/internal/store"
)

type captureNotifier struct {
	mu     sync.Mutex
	events []cellar.Event
}

func (c *captureNotifier) Publish(e cellar.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureNotifier) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db     *sql.DB
	svc    *cellar.Service
	notify *captureNotifier
	wine   *model.Wine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	wine, err := store.CreateWine(context.Background(), database, model.Wine{
		Name: "Chablis", Producer: "Raveneau", Year: 2019, Type: model.WineTypeWhite,
		Varietals: []string{"Chardonnay"},
	})
	require.NoError(t, err)

	n := &captureNotifier{}
	return &fixture{
		db:     database,
		svc:    cellar.NewService(store.TxRunner{DB: database}, n, nil),
		notify: n,
		wine:   wine,
	}
}

func (f *fixture) unit(t *testing.T, typ model.UnitType, w, h, d int) *model.StorageUnit {
	t.Helper()
	ctx := context.Background()
	loc, err := store.CreateLocation(ctx, f.db, "Locker", "")
	require.NoError(t, err)
	u, err := store.CreateUnit(ctx, f.db, model.StorageUnit{
		LocationID: loc.ID, Name: "Box", Type: typ,
		Dimensions: model.Dimensions{Width: w, Height: h, Depth: d},
	})
	require.NoError(t, err)
	return u
}

func slotsOf(bottles []model.Bottle) []grid.Slot {
	out := make([]grid.Slot, 0, len(bottles))
	for _, b := range bottles {
		out = append(out, grid.SlotOf(b))
	}
	return out
}

func TestAddStockFillsInScanOrder(t *testing.T) {
	f := newFixture(t)
	u := f.unit(t, model.UnitTypeGrid, 8, 8, 3)
	ctx := context.Background()

	bottles, err := f.svc.AddStock(ctx, cellar.StockRequest{WineID: f.wine.ID, UnitID: u.ID, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, []grid.Slot{
		{X: 0, Y: 0, Depth: 0}, {X: 0, Y: 0, Depth: 1}, {X: 0, Y: 0, Depth: 2},
		{X: 1, Y: 0, Depth: 0}, {X: 1, Y: 0, Depth: 1},
	}, slotsOf(bottles))

	for _, b := range bottles {
		assert.Equal(t, model.BottleStored, b.Status)
		assert.Equal(t, u.LocationID, b.LocationID)
		assert.Equal(t, "Chablis", b.WineName)
	}
	assert.Equal(t, []string{cellar.EventBottlesStored}, f.notify.types())

	more, err := f.svc.AddStock(ctx, cellar.StockRequest{WineID: f.wine.ID, UnitID: u.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, []grid.Slot{{X: 1, Y: 0, Depth: 2}, {X: 2, Y: 0, Depth: 0}}, slotsOf(more))
}

func TestAddStockShortfallWritesNothing(t *testing.T) {
	f := newFixture(t)
	u := f.unit(t, model.UnitTypeGrid, 2, 1, 1)
	ctx := context.Background()

	_, err := f.svc.AddStock(ctx, cellar.StockRequest{WineID: f.wine.ID, UnitID: u.ID, Quantity: 3})
	require.ErrorIs(t, err, grid.ErrAllocationShortfall)

	var short *grid.AllocationShortfallError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 2, short.Found)

	bottles, err := store.ListBottles(ctx, f.db, store.BottleFilter{UnitID: u.ID})
	require.NoError(t, err)
	assert.Empty(t, bottles)
	assert.Empty(t, f.notify.types())
}

func TestAddStockErrors(t *testing.T) {
	f := newFixture(t)
	u := f.unit(t, model.UnitTypeGrid, 2, 2, 1)
	ctx := context.Background()

	_, err := f.svc.AddStock(ctx, cellar.StockRequest{WineID: f.wine.ID, UnitID: u.ID, Quantity: 0})
	assert.ErrorIs(t, err, cellar.ErrInvalidQuantity)

	_, err = f.svc.AddStock(ctx, cellar.StockRequest{WineID: f.wine.ID, UnitID: "missing", Quantity: 1})
	assert.ErrorIs(t, err, cellar.ErrUnitNotFound)

	_, err = f.svc.AddStock(ctx, cellar.StockRequest{WineID: "missing", UnitID: u.ID, Quantity: 1})
	assert.ErrorIs(t, err, cellar.ErrWineNotFound)
}

func TestMoveBottle(t *testing.T) {
	f := newFixture(t)
	u := f.unit(t, model.UnitTypeGrid, 8, 8, 1)
	ctx := context.Background()

	bottles, err := f.svc.AddStock(ctx, cellar.StockRequest{WineID: f.wine.ID, UnitID: u.ID, Quantity: 2})
	require.NoError(t, err)
	a, b := bottles[0], bottles[1]

	moved, err := f.svc.MoveBottle(ctx, cellar.MoveRequest{BottleID: a.ID, X: 3, Y: 3, Depth: 0})
	require.NoError(t, err)
	assert.Equal(t, grid.Slot{X: 3, Y: 3}, grid.SlotOf(*moved))

	_, err = f.svc.MoveBottle(ctx, cellar.MoveRequest{BottleID: b.ID, X: 3, Y: 3, Depth: 0})
	assert.ErrorIs(t, err, grid.ErrSlotOccupied)

	_, err = f.svc.MoveBottle(ctx, cellar.MoveRequest{BottleID: b.ID, X: 8, Y: 0, Depth: 0})
	assert.ErrorIs(t, err, grid.ErrOutOfBounds)

	// Out of bounds wins over occupancy.
	_, err = f.svc.MoveBottle(ctx, cellar.MoveRequest{BottleID: b.ID, X: 3, Y: 3, Depth: 1})
	assert.ErrorIs(t, err, grid.ErrOutOfBounds)

	same, err := f.svc.MoveBottle(ctx, cellar.MoveRequest{BottleID: a.ID, X: 3, Y: 3, Depth: 0})
	require.NoError(t, err)
	assert.Equal(t, grid.Slot{X: 3, Y: 3}, grid.SlotOf(*same))

	got, err := store.GetBottle(ctx, f.db, b.ID)
	require.NoError(t, err)
	assert.Equal(t, grid.Slot{X: 1, Y: 0}, grid.SlotOf(*got), "rejected moves must not write")

	history, err := store.ListBottleHistory(ctx, f.db, a.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.EventMoved, history[1].Kind)
}

func TestMoveBottleAcrossUnits(t *testing.T) {
	f := newFixture(t)
	from := f.unit(t, model.UnitTypeGrid, 2, 2, 1)
	to := f.unit(t, model.UnitTypeCrate, 3, 4, 1)
	ctx := context.Background()

	bottles, err := f.svc.AddStock(ctx, cellar.StockRequest{WineID: f.wine.ID, UnitID: from.ID, Quantity: 1})
	require.NoError(t, err)

	moved, err := f.svc.MoveBottle(ctx, cellar.MoveRequest{BottleID: bottles[0].ID, UnitID: to.ID, X: 2, Y: 3})
	require.NoError(t, err)
	assert.Equal(t, to.ID, moved.UnitID)
	assert.Equal(t, to.LocationID, moved.LocationID)

	last := f.notify.events[len(f.notify.events)-1]
	assert.ElementsMatch(t, []string{from.ID, to.ID}, last.UnitIDs)
}

func TestDragRelease(t *testing.T) {
	f := newFixture(t)
	u := f.unit(t, model.UnitTypeGrid, 4, 4, 1)
	ctx := context.Background()

	bottles, err := f.svc.AddStock(ctx, cellar.StockRequest{WineID: f.wine.ID, UnitID: u.ID, Quantity: 2})
	require.NoError(t, err)
	a := bottles[0]

	res, err := f.svc.DragRelease(ctx, cellar.DragRequest{BottleID: a.ID, Delta: scene.Vec3{X: 0.1}})
	require.NoError(t, err)
	assert.Equal(t, cellar.DragNoop, res.Outcome)

	// One pitch to the right lands on the second bottle.
	res, err = f.svc.DragRelease(ctx, cellar.DragRequest{BottleID: a.ID, Delta: scene.Vec3{X: scene.RackPitchX}})
	require.NoError(t, err)
	assert.Equal(t, grid.MoveRejectedOccupied.String(), res.Outcome)
	assert.Equal(t, grid.Slot{}, grid.SlotOf(res.Bottle))

	res, err = f.svc.DragRelease(ctx, cellar.DragRequest{BottleID: a.ID, Delta: scene.Vec3{X: -scene.RackPitchX}})
	require.NoError(t, err)
	assert.Equal(t, grid.MoveRejectedOutOfBounds.String(), res.Outcome)

	res, err = f.svc.DragRelease(ctx, cellar.DragRequest{BottleID: a.ID, Delta: scene.Vec3{Y: 2 * scene.RackPitchY}})
	require.NoError(t, err)
	assert.Equal(t, grid.MoveAccepted.String(), res.Outcome)
	assert.Equal(t, grid.Slot{X: 0, Y: 2}, grid.SlotOf(res.Bottle))
	assert.Equal(t, scene.For(*u).Forward(0, 2, 0), res.Position)
}

func TestConsumeAndGiftFreeSlots(t *testing.T) {
	f := newFixture(t)
	u := f.unit(t, model.UnitTypeGrid, 2, 1, 1)
	ctx := context.Background()

	bottles, err := f.svc.AddStock(ctx, cellar.StockRequest{WineID: f.wine.ID, UnitID: u.ID, Quantity: 2})
	require.NoError(t, err)

	rating := 4
	drunk, err := f.svc.Consume(ctx, cellar.RetireRequest{BottleID: bottles[0].ID, Rating: &rating, Notes: "Flinty"})
	require.NoError(t, err)
	assert.Equal(t, model.BottleConsumed, drunk.Status)
	require.NotNil(t, drunk.ConsumedAt)
	require.NotNil(t, drunk.ConsumptionRating)
	assert.Equal(t, 4, *drunk.ConsumptionRating)

	gifted, err := f.svc.Gift(ctx, cellar.RetireRequest{BottleID: bottles[1].ID, Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, model.BottleGifted, gifted.Status)
	assert.Nil(t, gifted.ConsumptionRating)

	_, err = f.svc.Consume(ctx, cellar.RetireRequest{BottleID: bottles[0].ID})
	assert.ErrorIs(t, err, cellar.ErrNotStored)
	_, err = f.svc.MoveBottle(ctx, cellar.MoveRequest{BottleID: bottles[0].ID, X: 1})
	assert.ErrorIs(t, err, cellar.ErrNotStored)

	// Both slots are free again and refill from the front.
	refill, err := f.svc.AddStock(ctx, cellar.StockRequest{WineID: f.wine.ID, UnitID: u.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, []grid.Slot{{X: 0}, {X: 1}}, slotsOf(refill))
}

func TestUnitOccupancyHonoursCustomDepth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loc, err := store.CreateLocation(ctx, f.db, "Locker", "")
	require.NoError(t, err)
	u, err := store.CreateUnit(ctx, f.db, model.StorageUnit{
		LocationID: loc.ID, Name: "Box 1", Type: model.UnitTypeGrid,
		Dimensions: model.Dimensions{Width: 2, Height: 1, Depth: 2},
		Config:     model.UnitConfig{CustomDepthMap: model.DepthMap{{Row: 0, Col: 0}: 1}},
	})
	require.NoError(t, err)

	_, err = f.svc.AddStock(ctx, cellar.StockRequest{WineID: f.wine.ID, UnitID: u.ID, Quantity: 2})
	require.NoError(t, err)

	rep, err := f.svc.UnitOccupancy(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Capacity)
	assert.Equal(t, 2, rep.Used)
	assert.Equal(t, 1, rep.Free)
	require.NotNil(t, rep.NextFree)
	assert.Equal(t, grid.Slot{X: 1, Y: 0, Depth: 1}, *rep.NextFree)
	assert.Equal(t, grid.Slot{X: 0}, rep.Occupied[0].Slot)

	_, err = f.svc.UnitOccupancy(ctx, "missing")
	assert.ErrorIs(t, err, cellar.ErrUnitNotFound)
}

func TestUnitScene(t *testing.T) {
	f := newFixture(t)
	u := f.unit(t, model.UnitTypeVerticalDrawer, 6, 1, 3)
	ctx := context.Background()

	_, err := f.svc.AddStock(ctx, cellar.StockRequest{WineID: f.wine.ID, UnitID: u.ID, Quantity: 4})
	require.NoError(t, err)

	rep, err := f.svc.UnitScene(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, rep.Placements, 4)
	l := scene.For(*u)
	assert.Equal(t, l.Size(), rep.Size)
	for _, p := range rep.Placements {
		assert.Equal(t, l.Forward(p.X, p.Y, p.Depth), p.Position)
	}
}

func TestUpdateUnitRefusesOrphans(t *testing.T) {
	f := newFixture(t)
	u := f.unit(t, model.UnitTypeGrid, 4, 1, 1)
	ctx := context.Background()

	bottles, err := f.svc.AddStock(ctx, cellar.StockRequest{WineID: f.wine.ID, UnitID: u.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.MoveBottle(ctx, cellar.MoveRequest{BottleID: bottles[0].ID, X: 3})
	require.NoError(t, err)

	shrunk := *u
	shrunk.Dimensions.Width = 2
	_, err = f.svc.UpdateUnit(ctx, shrunk)
	assert.ErrorIs(t, err, cellar.ErrGeometryConflict)

	grown := *u
	grown.Name = "Wide"
	grown.Dimensions.Width = 6
	updated, err := f.svc.UpdateUnit(ctx, grown)
	require.NoError(t, err)
	assert.Equal(t, "Wide", updated.Name)
	assert.Equal(t, u.LocationID, updated.LocationID)
}

func TestDeleteBottle(t *testing.T) {
	f := newFixture(t)
	u := f.unit(t, model.UnitTypeGrid, 2, 1, 1)
	ctx := context.Background()

	bottles, err := f.svc.AddStock(ctx, cellar.StockRequest{WineID: f.wine.ID, UnitID: u.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteBottle(ctx, bottles[0].ID))
	assert.ErrorIs(t, f.svc.DeleteBottle(ctx, bottles[0].ID), cellar.ErrBottleNotFound)
	assert.Equal(t, []string{cellar.EventBottlesStored, cellar.EventBottleDeleted}, f.notify.types())
}

func TestDeleteUnitCascades(t *testing.T) {
	f := newFixture(t)
	u := f.unit(t, model.UnitTypeCrate, 2, 2, 1)
	ctx := context.Background()

	bottles, err := f.svc.AddStock(ctx, cellar.StockRequest{WineID: f.wine.ID, UnitID: u.ID, Quantity: 3})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteUnit(ctx, u.ID))

	b, err := store.GetBottle(ctx, f.db, bottles[0].ID)
	require.NoError(t, err)
	assert.Nil(t, b)
	assert.ErrorIs(t, f.svc.DeleteUnit(ctx, u.ID), cellar.ErrUnitNotFound)
	assert.Equal(t, []string{cellar.EventBottlesStored, cellar.EventUnitDeleted}, f.notify.types())
}
