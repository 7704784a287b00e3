// Package metrics defines the Prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/erazemk/klet/internal/model"
)

// CellarMetrics counts slot allocation and bottle lifecycle activity.
// A nil *CellarMetrics records nothing.
type CellarMetrics struct {
	allocated *prometheus.CounterVec
	shortfall *prometheus.CounterVec
	moves     *prometheus.CounterVec
	status    *prometheus.CounterVec
}

// NewCellarMetrics registers the cellar metrics on reg.
func NewCellarMetrics(reg prometheus.Registerer) *CellarMetrics {
	if reg == nil {
		return &CellarMetrics{}
	}
	allocated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "klet_slots_allocated_total",
		Help: "Slots filled by stock additions.",
	}, []string{"unit_type"})
	shortfall := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "klet_allocation_shortfall_total",
		Help: "Stock additions refused because the unit had too few free slots.",
	}, []string{"unit_type"})
	moves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "klet_move_validations_total",
		Help: "Bottle move validations by result.",
	}, []string{"result"})
	status := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "klet_bottle_status_changes_total",
		Help: "Bottles leaving the cellar by new status.",
	}, []string{"status"})
	reg.MustRegister(allocated, shortfall, moves, status)
	return &CellarMetrics{
		allocated: allocated,
		shortfall: shortfall,
		moves:     moves,
		status:    status,
	}
}

// SlotsAllocated adds n filled slots for a unit type.
func (m *CellarMetrics) SlotsAllocated(unitType model.UnitType, n int) {
	if m == nil || m.allocated == nil || n <= 0 {
		return
	}
	m.allocated.WithLabelValues(normalizeLabel(string(unitType))).Add(float64(n))
}

// AllocationShortfall counts a refused stock addition.
func (m *CellarMetrics) AllocationShortfall(unitType model.UnitType) {
	if m == nil || m.shortfall == nil {
		return
	}
	m.shortfall.WithLabelValues(normalizeLabel(string(unitType))).Inc()
}

// MoveValidated counts one move verdict.
func (m *CellarMetrics) MoveValidated(result string) {
	if m == nil || m.moves == nil {
		return
	}
	m.moves.WithLabelValues(normalizeLabel(result)).Inc()
}

// BottleStatusChanged counts a bottle leaving the cellar.
func (m *CellarMetrics) BottleStatusChanged(status model.BottleStatus) {
	if m == nil || m.status == nil {
		return
	}
	m.status.WithLabelValues(normalizeLabel(string(status))).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
