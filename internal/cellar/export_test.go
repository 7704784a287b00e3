package cellar_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/klet/internal/cellar"
	"github.com/erazemk/klet/internal/model"
)

func TestWriteCSV(t *testing.T) {
	added := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	drunk := time.Date(2025, 1, 2, 20, 0, 0, 0, time.UTC)
	rating := 94
	snap := &cellar.Snapshot{
		Locations: []model.Location{{ID: "loc", Name: "Locker"}},
		Units:     []model.StorageUnit{{ID: "u", LocationID: "loc", Name: "Box 1"}},
		Wines: []model.Wine{{
			ID: "w", Name: "Cannubi", Producer: "Borgogno", Year: 2016, Type: model.WineTypeRed,
			Varietals: []string{"Nebbiolo"}, Country: "Italy", Region: "Piedmont",
		}},
		Bottles: []model.Bottle{
			{ID: "b1", WineID: "w", UnitID: "u", X: 2, Y: 0, Depth: 1, Status: model.BottleStored, AddedAt: added},
			{ID: "b2", WineID: "w", UnitID: "u", Status: model.BottleConsumed, AddedAt: added,
				ConsumedAt: &drunk, ConsumptionRating: &rating, ConsumptionNotes: "tar, roses"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, cellar.WriteCSV(&buf, snap))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Winery", rows[0][0])

	stored := rows[1]
	assert.Equal(t, "Cannubi (Nebbiolo)", stored[2])
	assert.Equal(t, "Locker", stored[7])
	assert.Equal(t, []string{"3", "1", "2"}, stored[9:12])
	assert.Equal(t, "2024-03-01", stored[13])
	assert.Empty(t, stored[14])

	consumed := rows[2]
	assert.Equal(t, "Consumed", consumed[12])
	assert.Equal(t, "2025-01-02", consumed[14])
	assert.Equal(t, "94", consumed[16])
	assert.Equal(t, "tar, roses", consumed[17])
}
