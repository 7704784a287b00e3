package grid

import (
	"errors"

	"github.com/erazemk/klet/internal/model"
)

// Move rejections.
var (
	ErrOutOfBounds  = errors.New("slot is outside the unit")
	ErrSlotOccupied = errors.New("slot is occupied by another bottle")
)

// MoveResult is the verdict of ValidateMove.
type MoveResult int

// Move verdicts.
const (
	MoveAccepted MoveResult = iota
	MoveRejectedOutOfBounds
	MoveRejectedOccupied
)

func (r MoveResult) String() string {
	switch r {
	case MoveAccepted:
		return "accepted"
	case MoveRejectedOutOfBounds:
		return "out_of_bounds"
	case MoveRejectedOccupied:
		return "occupied"
	}
	return "unknown"
}

// Err returns the sentinel error for a rejection, or nil when accepted.
func (r MoveResult) Err() error {
	switch r {
	case MoveRejectedOutOfBounds:
		return ErrOutOfBounds
	case MoveRejectedOccupied:
		return ErrSlotOccupied
	}
	return nil
}

// ValidateMove checks whether bottleID may be placed at (x, y, depth) of u.
// Bounds are checked before occupancy. A destination held by a different
// bottle is always rejected; there is no swapping and no clamping.
func ValidateMove(u model.StorageUnit, occ *Occupancy, bottleID string, x, y, depth int) MoveResult {
	if !InBounds(u, x, y, depth) {
		return MoveRejectedOutOfBounds
	}
	if occ.IsOccupiedByOther(Slot{X: x, Y: y, Depth: depth}, bottleID) {
		return MoveRejectedOccupied
	}
	return MoveAccepted
}
