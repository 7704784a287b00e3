package cellar

import (
	"context"
	"fmt"

	"github.com/erazemk/klet/internal/grid"
	"github.com/erazemk/klet/internal/model"
	"github.com/erazemk/klet/internal/scene"
)

// OccupiedSlot is a slot together with the bottle holding it.
type OccupiedSlot struct {
	grid.Slot
	BottleID string `json:"bottle_id"`
}

// OccupancyReport summarises the slots of one unit.
type OccupancyReport struct {
	Unit     model.StorageUnit `json:"unit"`
	Capacity int               `json:"capacity"`
	Used     int               `json:"used"`
	Free     int               `json:"free"`
	Occupied []OccupiedSlot    `json:"occupied"`
	// NextFree is the slot AddStock would fill first.
	NextFree *grid.Slot `json:"next_free,omitempty"`
}

// UnitOccupancy reports capacity and the occupied slots of a unit.
func (s *Service) UnitOccupancy(ctx context.Context, unitID string) (*OccupancyReport, error) {
	var rep OccupancyReport
	err := s.tx.WithTx(ctx, func(r Repository) error {
		u, err := mustUnit(ctx, r, unitID)
		if err != nil {
			return err
		}
		bottles, err := r.ListBottles(ctx, u.ID)
		if err != nil {
			return err
		}

		occ := grid.BuildOccupancy(bottles, u.ID)
		rep = OccupancyReport{
			Unit:     *u,
			Capacity: grid.Capacity(*u),
			Free:     grid.FreeCount(*u, occ),
			Occupied: make([]OccupiedSlot, 0, occ.Len()),
		}
		for _, slot := range occ.Slots() {
			holder, _ := occ.Holder(slot)
			rep.Occupied = append(rep.Occupied, OccupiedSlot{Slot: slot, BottleID: holder})
		}
		rep.Used = len(rep.Occupied)
		if next := grid.FindEmptySlots(*u, occ, 1); len(next) == 1 {
			rep.NextFree = &next[0]
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading occupancy of unit %s: %w", unitID, err)
	}
	return &rep, nil
}

// SceneReport is everything a 3D client needs to draw one unit.
type SceneReport struct {
	Unit       model.StorageUnit `json:"unit"`
	Size       scene.Vec3        `json:"size"`
	Pitch      scene.Vec3        `json:"pitch"`
	Placements []scene.Placement `json:"placements"`
}

// UnitScene returns the scene positions of the stored bottles of a unit.
func (s *Service) UnitScene(ctx context.Context, unitID string) (*SceneReport, error) {
	var rep SceneReport
	err := s.tx.WithTx(ctx, func(r Repository) error {
		u, err := mustUnit(ctx, r, unitID)
		if err != nil {
			return err
		}
		bottles, err := r.ListBottles(ctx, u.ID)
		if err != nil {
			return err
		}
		l := scene.For(*u)
		rep = SceneReport{
			Unit:       *u,
			Size:       l.Size(),
			Pitch:      l.Pitch(),
			Placements: scene.Place(*u, bottles),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("building scene of unit %s: %w", unitID, err)
	}
	return &rep, nil
}

// Export returns a consistent snapshot of the whole cellar.
func (s *Service) Export(ctx context.Context) (*Snapshot, error) {
	var snap *Snapshot
	err := s.tx.WithTx(ctx, func(r Repository) error {
		var err error
		snap, err = r.Snapshot(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("exporting cellar: %w", err)
	}
	snap.TakenAt = s.now().UTC()
	return snap, nil
}
