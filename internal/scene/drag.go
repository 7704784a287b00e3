package scene

import "github.com/erazemk/klet/internal/model"

// DragTarget applies a drag delta to the planar position (x, y). moved is
// false when the delta rounds to zero steps, in which case no move should
// be attempted.
func DragTarget(l Layout, x, y int, delta Vec3) (nx, ny int, moved bool) {
	dx, dy := l.Inverse(delta)
	if dx == 0 && dy == 0 {
		return x, y, false
	}
	return x + dx, y + dy, true
}

// DragSession is the transient state of dragging one bottle. It is never
// persisted: Release hands back a candidate slot for validation and Cancel
// returns the rest position. Either ends the session.
type DragSession struct {
	layout Layout
	bottle model.Bottle
	rest   Vec3
	delta  Vec3
	active bool
}

// BeginDrag starts dragging b, which sits in a unit drawn with l.
func BeginDrag(l Layout, b model.Bottle) *DragSession {
	return &DragSession{
		layout: l,
		bottle: b,
		rest:   l.Forward(b.X, b.Y, b.Depth),
		active: true,
	}
}

// Dragging reports whether the session is still open.
func (s *DragSession) Dragging() bool { return s.active }

// BottleID returns the dragged bottle.
func (s *DragSession) BottleID() string { return s.bottle.ID }

// Update records the current pointer delta from the rest position.
func (s *DragSession) Update(delta Vec3) {
	if s.active {
		s.delta = delta
	}
}

// Preview returns where the bottle should be drawn right now.
func (s *DragSession) Preview() Vec3 {
	if !s.active {
		return s.rest
	}
	return s.rest.Add(s.delta)
}

// Release ends the drag and returns the candidate planar slot. Depth never
// changes while dragging.
func (s *DragSession) Release() (x, y int, moved bool) {
	if !s.active {
		return s.bottle.X, s.bottle.Y, false
	}
	s.active = false
	x, y, moved = DragTarget(s.layout, s.bottle.X, s.bottle.Y, s.delta)
	s.delta = Vec3{}
	return x, y, moved
}

// Cancel ends the drag without a move and returns the rest position.
func (s *DragSession) Cancel() Vec3 {
	s.active = false
	s.delta = Vec3{}
	return s.rest
}
