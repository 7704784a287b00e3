// Package scene converts between logical slot coordinates and positions in
// the 3D cellar view.
//
// Each unit type has one Layout, selected once by For. Forward places a slot
// relative to the unit's origin (centre of its floor), Inverse turns a drag
// delta back into whole-slot steps. Both directions share the same pitch
// constants, so a forward offset always inverts to the slot it came from.
package scene

import (
	"math"

	"github.com/erazemk/klet/internal/model"
)

// Slot pitch per axis, in scene units (metres).
const (
	RackPitchX = 0.25
	RackPitchY = 0.25
	RackPitchZ = 0.35

	CratePitch = 0.12

	// ShelfOffset lifts a bottle so it rests on the shelf below it.
	ShelfOffset = 0.02
	// cratePadding is the wall allowance added around a crate.
	cratePadding = 0.05
)

// Vec3 is a position or offset in the scene.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Layout maps slots of one unit into the scene. Positive Z faces the viewer.
type Layout interface {
	// Forward returns the rest position of slot (x, y, depth).
	Forward(x, y, depth int) Vec3
	// Inverse converts a drag delta into column and row steps, rounding to
	// the nearest whole slot.
	Inverse(delta Vec3) (dx, dy int)
	// Pitch is the spacing between neighbouring slots on each axis.
	Pitch() Vec3
	// Size is the outer extent of the unit.
	Size() Vec3
}

// For returns the layout for u's type. Grid and list units are drawn as
// racks; unknown types fall back to a rack as well.
func For(u model.StorageUnit) Layout {
	dims := clampDims(u.Dimensions)
	switch u.Type {
	case model.UnitTypeCrate:
		return Crate{dims: dims}
	case model.UnitTypeVerticalDrawer:
		return Drawer{dims: dims}
	default:
		return Rack{dims: dims}
	}
}

// clampDims treats missing dimensions as one slot so a frame can still be
// drawn around an empty or degenerate unit.
func clampDims(d model.Dimensions) model.Dimensions {
	if d.Width < 1 {
		d.Width = 1
	}
	if d.Height < 1 {
		d.Height = 1
	}
	if d.Depth < 1 {
		d.Depth = 1
	}
	return d
}

// steps divides a distance by pitch and rounds half away from zero.
func steps(distance, pitch float64) int {
	return int(math.Round(distance / pitch))
}

// Rack stacks rows upward from the floor. Columns are centred on the unit's
// horizontal midpoint and depth 0 is the front.
type Rack struct {
	dims model.Dimensions
}

func (r Rack) Forward(x, y, depth int) Vec3 {
	w := float64(r.dims.Width) * RackPitchX
	d := float64(r.dims.Depth) * RackPitchZ
	return Vec3{
		X: -w/2 + float64(x)*RackPitchX + RackPitchX/2,
		Y: float64(y)*RackPitchY + ShelfOffset,
		Z: d/2 - float64(depth)*RackPitchZ - RackPitchZ/2,
	}
}

func (r Rack) Inverse(delta Vec3) (int, int) {
	return steps(delta.X, RackPitchX), steps(delta.Y, RackPitchY)
}

func (r Rack) Pitch() Vec3 { return Vec3{RackPitchX, RackPitchY, RackPitchZ} }

func (r Rack) Size() Vec3 {
	return Vec3{
		X: float64(r.dims.Width) * RackPitchX,
		Y: float64(r.dims.Height) * RackPitchY,
		Z: float64(r.dims.Depth) * RackPitchZ,
	}
}

// Crate is a single floor layer: columns run left to right and rows recede
// away from the viewer. Depth has no axis of its own.
type Crate struct {
	dims model.Dimensions
}

func (c Crate) Forward(x, y, _ int) Vec3 {
	w := float64(c.dims.Width) * CratePitch
	d := float64(c.dims.Height) * CratePitch
	return Vec3{
		X: -w/2 + float64(x)*CratePitch + CratePitch/2,
		Y: ShelfOffset,
		Z: d/2 - float64(y)*CratePitch - CratePitch/2,
	}
}

func (c Crate) Inverse(delta Vec3) (int, int) {
	return steps(delta.X, CratePitch), steps(-delta.Z, CratePitch)
}

func (c Crate) Pitch() Vec3 { return Vec3{CratePitch, 0, CratePitch} }

func (c Crate) Size() Vec3 {
	return Vec3{
		X: float64(c.dims.Width)*CratePitch + cratePadding,
		Y: RackPitchY,
		Z: float64(c.dims.Height)*CratePitch + cratePadding,
	}
}

// Drawer is a rack lying on its back: rows run front to back and the depth
// layers stack upward.
type Drawer struct {
	dims model.Dimensions
}

func (d Drawer) Forward(x, y, depth int) Vec3 {
	w := float64(d.dims.Width) * RackPitchX
	l := float64(d.dims.Height) * RackPitchZ
	return Vec3{
		X: -w/2 + float64(x)*RackPitchX + RackPitchX/2,
		Y: float64(depth)*RackPitchY + ShelfOffset,
		Z: l/2 - float64(y)*RackPitchZ - RackPitchZ/2,
	}
}

func (d Drawer) Inverse(delta Vec3) (int, int) {
	return steps(delta.X, RackPitchX), steps(-delta.Z, RackPitchZ)
}

func (d Drawer) Pitch() Vec3 { return Vec3{RackPitchX, RackPitchY, RackPitchZ} }

func (d Drawer) Size() Vec3 {
	return Vec3{
		X: float64(d.dims.Width) * RackPitchX,
		Y: float64(d.dims.Depth) * RackPitchY,
		Z: float64(d.dims.Height) * RackPitchZ,
	}
}
