package cellar_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/klet/internal/cellar"
	"github.com/erazemk/klet/internal/model"
)

func TestComputeStats(t *testing.T) {
	price := func(s string) decimal.NullDecimal {
		return decimal.NewNullDecimal(decimal.RequireFromString(s))
	}
	snap := &cellar.Snapshot{
		Locations: []model.Location{{ID: "locker", Name: "Locker"}, {ID: "home", Name: "Home"}},
		Units: []model.StorageUnit{
			{
				ID: "box", LocationID: "locker", Type: model.UnitTypeGrid,
				Dimensions: model.Dimensions{Width: 2, Height: 1, Depth: 2},
				Config:     model.UnitConfig{CustomDepthMap: model.DepthMap{{Row: 0, Col: 1}: 1}},
			},
			{ID: "rack", LocationID: "home", Type: model.UnitTypeGrid, Dimensions: model.Dimensions{Width: 4, Height: 1, Depth: 1}},
		},
		Wines: []model.Wine{
			{ID: "a", Producer: "Raveneau", Type: model.WineTypeWhite, Varietals: []string{"Chardonnay"}, Price: price("80")},
			{ID: "b", Producer: "Conterno", Type: model.WineTypeRed, Varietals: []string{"Nebbiolo"}, Price: price("120.50")},
			{ID: "c", Producer: "Krug", Type: model.WineTypeSparkling, Varietals: []string{"Chardonnay", "Pinot Noir"}},
		},
		Bottles: []model.Bottle{
			{ID: "1", WineID: "a", UnitID: "box", X: 0, Depth: 0, Status: model.BottleStored},
			{ID: "2", WineID: "a", UnitID: "box", X: 0, Depth: 1, Status: model.BottleStored},
			{ID: "3", WineID: "b", UnitID: "rack", X: 0, Status: model.BottleStored},
			{ID: "4", WineID: "c", UnitID: "rack", X: 1, Status: model.BottleStored},
			{ID: "5", WineID: "b", UnitID: "rack", X: 2, Status: model.BottleConsumed},
			{ID: "6", WineID: "b", UnitID: "rack", X: 3, Status: model.BottleGifted},
		},
	}

	st := cellar.ComputeStats(snap)

	assert.Equal(t, 4, st.TotalBottles)
	assert.Equal(t, 7, st.TotalCapacity)
	assert.Equal(t, 3, st.TotalOpen)
	assert.Equal(t, 1, st.Consumed)
	assert.Equal(t, 1, st.Gifted)
	assert.Equal(t, 2, st.ByType[model.WineTypeWhite])
	assert.True(t, st.TotalValue.Equal(decimal.RequireFromString("280.5")), "total value %s", st.TotalValue)

	require.Len(t, st.Locations, 2)
	assert.Equal(t, cellar.LocationStats{
		LocationID: "locker", Name: "Locker", Units: 1, Capacity: 3, Used: 2, Open: 1,
		PercentFull: float64(2) / 3 * 100,
	}, st.Locations[0])
	assert.Equal(t, 2, st.Locations[1].Used)
	assert.Equal(t, 2, st.Locations[1].Open)

	assert.Equal(t, []cellar.Ranked{{Name: "Raveneau", Count: 2}, {Name: "Conterno", Count: 1}, {Name: "Krug", Count: 1}}, st.TopProducers)
	assert.Equal(t, cellar.Ranked{Name: "Chardonnay", Count: 3}, st.TopVarietals[0])
}

func TestComputeStatsEmpty(t *testing.T) {
	st := cellar.ComputeStats(&cellar.Snapshot{})
	assert.Zero(t, st.TotalCapacity)
	assert.Empty(t, st.TopProducers)
	assert.True(t, st.TotalValue.IsZero())
}
