package grid

import (
	"fmt"

	"github.com/erazemk/klet/internal/model"
)

// Slot is one addressable bottle position within a unit.
type Slot struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Depth int `json:"depth"`
}

// String renders the slot as "x-y-depth".
func (s Slot) String() string {
	return fmt.Sprintf("%d-%d-%d", s.X, s.Y, s.Depth)
}

// SlotOf returns the slot a bottle sits in.
func SlotOf(b model.Bottle) Slot {
	return Slot{X: b.X, Y: b.Y, Depth: b.Depth}
}

// Occupancy records which slots of one unit hold a stored bottle.
// A nil *Occupancy is empty.
type Occupancy struct {
	unitID  string
	holders map[Slot]string
}

// BuildOccupancy indexes the stored bottles of unitID. Bottles in other
// units or with any status other than Stored are ignored. When two stored
// bottles claim the same slot the first one in the list wins.
func BuildOccupancy(bottles []model.Bottle, unitID string) *Occupancy {
	occ := &Occupancy{unitID: unitID, holders: make(map[Slot]string)}
	for _, b := range bottles {
		if b.UnitID != unitID || b.Status != model.BottleStored {
			continue
		}
		s := SlotOf(b)
		if _, taken := occ.holders[s]; !taken {
			occ.holders[s] = b.ID
		}
	}
	return occ
}

// UnitID returns the unit this index was built for.
func (o *Occupancy) UnitID() string {
	if o == nil {
		return ""
	}
	return o.unitID
}

// IsOccupied reports whether any stored bottle holds s.
func (o *Occupancy) IsOccupied(s Slot) bool {
	_, ok := o.Holder(s)
	return ok
}

// IsOccupiedByOther reports whether s is held by a bottle other than
// bottleID. A bottle never collides with itself.
func (o *Occupancy) IsOccupiedByOther(s Slot, bottleID string) bool {
	holder, ok := o.Holder(s)
	return ok && holder != bottleID
}

// Holder returns the ID of the bottle holding s.
func (o *Occupancy) Holder(s Slot) (string, bool) {
	if o == nil {
		return "", false
	}
	id, ok := o.holders[s]
	return id, ok
}

// Len returns the number of occupied slots.
func (o *Occupancy) Len() int {
	if o == nil {
		return 0
	}
	return len(o.holders)
}

// Slots returns the occupied slots in allocation scan order.
func (o *Occupancy) Slots() []Slot {
	if o == nil {
		return nil
	}
	out := make([]Slot, 0, len(o.holders))
	for s := range o.holders {
		out = append(out, s)
	}
	sortScanOrder(out)
	return out
}
