package grid

import "github.com/erazemk/klet/internal/model"

// EffectiveDepth returns the slot capacity of planar cell (x, y): the custom
// depth override for row y, column x when one exists, else the unit's
// default depth. Never negative.
func EffectiveDepth(u model.StorageUnit, x, y int) int {
	d := u.Dimensions.Depth
	if override, ok := u.Config.CustomDepthMap[model.CellKey{Row: y, Col: x}]; ok {
		d = override
	}
	if d < 0 {
		return 0
	}
	return d
}

// InBounds reports whether (x, y, depth) addresses a slot of u.
func InBounds(u model.StorageUnit, x, y, depth int) bool {
	if x < 0 || x >= u.Dimensions.Width {
		return false
	}
	if y < 0 || y >= u.Dimensions.Height {
		return false
	}
	return depth >= 0 && depth < EffectiveDepth(u, x, y)
}

// Degenerate reports whether u has a non-positive width or height and
// therefore no addressable slots.
func Degenerate(u model.StorageUnit) bool {
	return u.Dimensions.Width <= 0 || u.Dimensions.Height <= 0
}

// Capacity is the total number of slots in u, honouring custom depths.
func Capacity(u model.StorageUnit) int {
	if Degenerate(u) {
		return 0
	}
	total := 0
	for y := 0; y < u.Dimensions.Height; y++ {
		for x := 0; x < u.Dimensions.Width; x++ {
			total += EffectiveDepth(u, x, y)
		}
	}
	return total
}
