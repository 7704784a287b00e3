package cellar

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/erazemk/klet/internal/grid"
	"github.com/erazemk/klet/internal/model"
)

// topN is how many producers and varietals Stats ranks.
const topN = 3

// LocationStats is the fill level of one location.
type LocationStats struct {
	LocationID  string  `json:"location_id"`
	Name        string  `json:"name"`
	Units       int     `json:"units"`
	Capacity    int     `json:"capacity"`
	Used        int     `json:"used"`
	Open        int     `json:"open"`
	PercentFull float64 `json:"percent_full"`
}

// Ranked is a name with a bottle count.
type Ranked struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats summarises the cellar. Capacity honours per-cell depth overrides.
type Stats struct {
	TotalBottles  int                    `json:"total_bottles"`
	TotalCapacity int                    `json:"total_capacity"`
	TotalOpen     int                    `json:"total_open"`
	Consumed      int                    `json:"consumed"`
	Gifted        int                    `json:"gifted"`
	Wines         int                    `json:"wines"`
	ByType        map[model.WineType]int `json:"by_type"`
	TopProducers  []Ranked               `json:"top_producers"`
	TopVarietals  []Ranked               `json:"top_varietals"`
	TotalValue    decimal.Decimal        `json:"total_value"`
	Locations     []LocationStats        `json:"locations"`
}

// Stats computes cellar statistics from a snapshot.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var snap *Snapshot
	err := s.tx.WithTx(ctx, func(r Repository) error {
		var err error
		snap, err = r.Snapshot(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("computing stats: %w", err)
	}
	return ComputeStats(snap), nil
}

// ComputeStats derives Stats from snap. Used counts only stored bottles
// that are in bounds of their unit, so Open never goes negative.
func ComputeStats(snap *Snapshot) *Stats {
	st := &Stats{
		ByType:       make(map[model.WineType]int),
		TopProducers: []Ranked{},
		TopVarietals: []Ranked{},
		TotalValue:   decimal.Zero,
		Locations:    make([]LocationStats, 0, len(snap.Locations)),
		Wines:        len(snap.Wines),
	}

	wines := make(map[string]model.Wine, len(snap.Wines))
	for _, w := range snap.Wines {
		wines[w.ID] = w
	}
	unitsByLoc := make(map[string][]model.StorageUnit)
	for _, u := range snap.Units {
		unitsByLoc[u.LocationID] = append(unitsByLoc[u.LocationID], u)
	}

	producers := make(map[string]int)
	varietals := make(map[string]int)
	for _, b := range snap.Bottles {
		switch b.Status {
		case model.BottleConsumed:
			st.Consumed++
			continue
		case model.BottleGifted:
			st.Gifted++
			continue
		}
		st.TotalBottles++
		w, ok := wines[b.WineID]
		if !ok {
			continue
		}
		st.ByType[w.Type]++
		if w.Producer != "" {
			producers[w.Producer]++
		}
		for _, v := range w.Varietals {
			varietals[v]++
		}
		if w.Price.Valid {
			st.TotalValue = st.TotalValue.Add(w.Price.Decimal)
		}
	}
	st.TopProducers = rank(producers, topN)
	st.TopVarietals = rank(varietals, topN)

	for _, loc := range snap.Locations {
		ls := LocationStats{LocationID: loc.ID, Name: loc.Name}
		for _, u := range unitsByLoc[loc.ID] {
			ls.Units++
			capacity := grid.Capacity(u)
			occ := grid.BuildOccupancy(snap.Bottles, u.ID)
			ls.Capacity += capacity
			ls.Used += capacity - grid.FreeCount(u, occ)
		}
		ls.Open = ls.Capacity - ls.Used
		if ls.Capacity > 0 {
			ls.PercentFull = float64(ls.Used) / float64(ls.Capacity) * 100
		}
		st.TotalCapacity += ls.Capacity
		st.TotalOpen += ls.Open
		st.Locations = append(st.Locations, ls)
	}

	return st
}

// rank returns the n largest counts, ties broken by name.
func rank(counts map[string]int, n int) []Ranked {
	out := make([]Ranked, 0, len(counts))
	for name, c := range counts {
		out = append(out, Ranked{Name: name, Count: c})
	}
	slices.SortFunc(out, func(a, b Ranked) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
