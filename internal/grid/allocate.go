package grid

import (
	"errors"
	"fmt"
	"slices"

	"github.com/erazemk/klet/internal/model"
)

// ErrAllocationShortfall is matched by *AllocationShortfallError.
var ErrAllocationShortfall = errors.New("not enough free slots")

// AllocationShortfallError reports how many slots were found when fewer
// than requested are free.
type AllocationShortfallError struct {
	Requested int
	Found     int
}

func (e *AllocationShortfallError) Error() string {
	return fmt.Sprintf("not enough free slots: requested %d, found %d", e.Requested, e.Found)
}

// Is makes errors.Is(err, ErrAllocationShortfall) succeed.
func (e *AllocationShortfallError) Is(target error) bool {
	return target == ErrAllocationShortfall
}

// FindEmptySlots returns up to count free slots of u.
//
// Scan order is rows (y) outermost, columns (x) next and depth innermost,
// so a cell is filled front to back before moving to the next column, and a
// row is completed before the next one is started. The order is part of the
// contract: the same snapshot always yields the same slots.
//
// Fewer than count slots are returned when the unit is too full; callers
// decide whether a partial result is acceptable. See Allocate.
func FindEmptySlots(u model.StorageUnit, occ *Occupancy, count int) []Slot {
	slots := []Slot{}
	if count <= 0 || Degenerate(u) {
		return slots
	}
	for y := 0; y < u.Dimensions.Height; y++ {
		for x := 0; x < u.Dimensions.Width; x++ {
			maxDepth := EffectiveDepth(u, x, y)
			for d := 0; d < maxDepth; d++ {
				s := Slot{X: x, Y: y, Depth: d}
				if occ.IsOccupied(s) {
					continue
				}
				slots = append(slots, s)
				if len(slots) == count {
					return slots
				}
			}
		}
	}
	return slots
}

// Allocate is FindEmptySlots for all-or-nothing batches: it returns an
// *AllocationShortfallError instead of a partial result.
func Allocate(u model.StorageUnit, occ *Occupancy, count int) ([]Slot, error) {
	slots := FindEmptySlots(u, occ, count)
	if count > 0 && len(slots) < count {
		return nil, &AllocationShortfallError{Requested: count, Found: len(slots)}
	}
	return slots, nil
}

// FreeCount returns the number of unoccupied in-bounds slots of u.
func FreeCount(u model.StorageUnit, occ *Occupancy) int {
	used := 0
	for _, s := range occ.Slots() {
		if InBounds(u, s.X, s.Y, s.Depth) {
			used++
		}
	}
	return Capacity(u) - used
}

func sortScanOrder(slots []Slot) {
	slices.SortFunc(slots, func(a, b Slot) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		if a.X != b.X {
			return a.X - b.X
		}
		return a.Depth - b.Depth
	})
}

// AllSlots returns every in-bounds slot of u in scan order.
func AllSlots(u model.StorageUnit) []Slot {
	return FindEmptySlots(u, nil, Capacity(u))
}
