package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/klet/internal/cellar"
	"github.com/erazemk/klet/internal/grid"
	"github.com/erazemk/klet/internal/labels"
	"github.com/erazemk/klet/internal/model"
	"github.com/erazemk/klet/internal/store"
)

// UnitsHandler handles storage unit endpoints.
type UnitsHandler struct {
	DB      *sql.DB
	Service *cellar.Service
	Sheet   labels.Sheet
}

type dimensionsRequest struct {
	Width  int `json:"width" validate:"min=0,max=100"`
	Height int `json:"height" validate:"min=0,max=100"`
	Depth  int `json:"depth" validate:"min=0,max=20"`
}

type createUnitRequest struct {
	LocationID string            `json:"location_id" validate:"required"`
	Name       string            `json:"name" validate:"required,max=120"`
	Type       model.UnitType    `json:"type" validate:"required,oneof=grid list crate vertical_drawer"`
	Dimensions dimensionsRequest `json:"dimensions"`
	Config     model.UnitConfig  `json:"config"`
}

type updateUnitRequest struct {
	Name       string            `json:"name" validate:"required,max=120"`
	Type       model.UnitType    `json:"type" validate:"required,oneof=grid list crate vertical_drawer"`
	Dimensions dimensionsRequest `json:"dimensions"`
	Config     model.UnitConfig  `json:"config"`
}

func (d dimensionsRequest) dims() model.Dimensions {
	return model.Dimensions{Width: d.Width, Height: d.Height, Depth: d.Depth}
}

func validDepthMap(m model.DepthMap) error {
	for k, v := range m {
		if v < 0 {
			return fmt.Errorf("custom depth at %s must not be negative", k)
		}
	}
	return nil
}

// List handles GET /api/units, optionally filtered by ?location_id=.
func (h *UnitsHandler) List(w http.ResponseWriter, r *http.Request) {
	units, err := store.ListUnits(r.Context(), h.DB, r.URL.Query().Get("location_id"))
	if err != nil {
		slog.Error("failed to list units", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list units")
		return
	}
	if units == nil {
		units = []model.StorageUnit{}
	}
	jsonResponse(w, http.StatusOK, units)
}

// Create handles POST /api/units.
func (h *UnitsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUnitRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validDepthMap(req.Config.CustomDepthMap); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	loc, err := store.GetLocation(r.Context(), h.DB, req.LocationID)
	if err != nil {
		slog.Error("failed to get location", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create unit")
		return
	}
	if loc == nil {
		jsonError(w, http.StatusNotFound, "location not found")
		return
	}

	unit, err := store.CreateUnit(r.Context(), h.DB, model.StorageUnit{
		LocationID: loc.ID,
		Name:       req.Name,
		Type:       req.Type,
		Dimensions: req.Dimensions.dims(),
		Config:     req.Config,
	})
	if err != nil {
		slog.Error("failed to create unit", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create unit")
		return
	}

	slog.Info("unit created", "user", GetClaims(r.Context()).Username,
		"unit", unit.Name, "location", loc.Name, "capacity", grid.Capacity(*unit))
	jsonResponse(w, http.StatusCreated, unit)
}

// Get handles GET /api/units/{id}.
func (h *UnitsHandler) Get(w http.ResponseWriter, r *http.Request) {
	unit, err := store.GetUnit(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get unit", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get unit")
		return
	}
	if unit == nil {
		jsonError(w, http.StatusNotFound, "storage unit not found")
		return
	}
	jsonResponse(w, http.StatusOK, unit)
}

// Update handles PUT /api/units/{id}. Geometry changes that would strand a
// stored bottle are refused.
func (h *UnitsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateUnitRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validDepthMap(req.Config.CustomDepthMap); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	unit, err := h.Service.UpdateUnit(r.Context(), model.StorageUnit{
		ID:         r.PathValue("id"),
		Name:       req.Name,
		Type:       req.Type,
		Dimensions: req.Dimensions.dims(),
		Config:     req.Config,
	})
	if err != nil {
		serviceError(w, err, "failed to update unit")
		return
	}

	slog.Info("unit updated", "user", GetClaims(r.Context()).Username, "unit", unit.Name)
	jsonResponse(w, http.StatusOK, unit)
}

// Delete handles DELETE /api/units/{id}. Bottles in the unit are removed.
func (h *UnitsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Service.DeleteUnit(r.Context(), id); err != nil {
		serviceError(w, err, "failed to delete unit")
		return
	}

	slog.Info("unit deleted", "user", GetClaims(r.Context()).Username, "unit_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "unit deleted"})
}

// Occupancy handles GET /api/units/{id}/occupancy.
func (h *UnitsHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Service.UnitOccupancy(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "failed to read occupancy")
		return
	}
	jsonResponse(w, http.StatusOK, rep)
}

// Scene handles GET /api/units/{id}/scene.
func (h *UnitsHandler) Scene(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Service.UnitScene(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "failed to build scene")
		return
	}
	jsonResponse(w, http.StatusOK, rep)
}

// Labels handles GET /api/units/{id}/labels and streams a PDF sheet with
// one QR label per slot.
func (h *UnitsHandler) Labels(w http.ResponseWriter, r *http.Request) {
	unit, err := store.GetUnit(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get unit", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to render labels")
		return
	}
	if unit == nil {
		jsonError(w, http.StatusNotFound, "storage unit not found")
		return
	}
	if grid.Capacity(*unit) == 0 {
		jsonError(w, http.StatusUnprocessableEntity, "storage unit has no slots")
		return
	}

	bottles, err := store.ListBottles(r.Context(), h.DB, store.BottleFilter{
		UnitID: unit.ID,
		Status: model.BottleStored,
	})
	if err != nil {
		slog.Error("failed to list bottles", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to render labels")
		return
	}

	pdf, err := labels.UnitPDF(*unit, bottles, h.Sheet)
	if err != nil {
		slog.Error("failed to render labels", "unit", unit.ID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to render labels")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "labels-"+unit.ID+".pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
