package scene

import "github.com/erazemk/klet/internal/model"

// Placement is where one stored bottle is drawn.
type Placement struct {
	BottleID string `json:"bottle_id"`
	WineID   string `json:"wine_id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Depth    int    `json:"depth"`
	Position Vec3   `json:"position"`
}

// Place positions the stored bottles of u. Bottles of other units and
// bottles that are no longer stored are skipped.
func Place(u model.StorageUnit, bottles []model.Bottle) []Placement {
	l := For(u)
	out := []Placement{}
	for _, b := range bottles {
		if b.UnitID != u.ID || b.Status != model.BottleStored {
			continue
		}
		out = append(out, Placement{
			BottleID: b.ID,
			WineID:   b.WineID,
			X:        b.X,
			Y:        b.Y,
			Depth:    b.Depth,
			Position: l.Forward(b.X, b.Y, b.Depth),
		})
	}
	return out
}
