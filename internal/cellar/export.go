package cellar

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/klet/internal/model"
)

var csvHeader = []string{
	"Winery", "Year", "Name/Varietal", "Country", "Region", "Vineyard", "Type",
	"Cellar Location", "Storage Unit", "Grid Column", "Grid Row", "Grid Depth",
	"Status", "Date Added", "Date Consumed", "Rating", "Consumption Rating", "Consumption Notes",
}

// WriteCSV writes one row per bottle of snap. Grid positions are numbered
// from one, as printed on slot labels.
func WriteCSV(w io.Writer, snap *Snapshot) error {
	wines := make(map[string]model.Wine, len(snap.Wines))
	for _, wine := range snap.Wines {
		wines[wine.ID] = wine
	}
	units := make(map[string]model.StorageUnit, len(snap.Units))
	for _, u := range snap.Units {
		units[u.ID] = u
	}
	locations := make(map[string]string, len(snap.Locations))
	for _, l := range snap.Locations {
		locations[l.ID] = l.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, b := range snap.Bottles {
		wine := wines[b.WineID]
		unit := units[b.UnitID]
		row := []string{
			wine.Producer,
			yearString(wine.Year),
			nameVarietal(wine),
			wine.Country,
			wine.Region,
			wine.Vineyard,
			string(wine.Type),
			locations[unit.LocationID],
			unit.Name,
			strconv.Itoa(b.X + 1),
			strconv.Itoa(b.Y + 1),
			strconv.Itoa(b.Depth + 1),
			string(b.Status),
			b.AddedAt.Format(time.DateOnly),
			dateString(b.ConsumedAt),
			intString(wine.Rating),
			intString(b.ConsumptionRating),
			b.ConsumptionNotes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing bottle %s: %w", b.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func nameVarietal(w model.Wine) string {
	v := strings.Join(w.Varietals, ", ")
	switch {
	case w.Name == "":
		return v
	case v == "":
		return w.Name
	}
	return w.Name + " (" + v + ")"
}

func yearString(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

func intString(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func dateString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}
