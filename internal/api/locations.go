package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/klet/internal/model"
	"github.com/erazemk/klet/internal/store"
)

// LocationsHandler handles location endpoints.
type LocationsHandler struct {
	DB *sql.DB
}

type locationRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=1000"`
}

// List handles GET /api/locations.
func (h *LocationsHandler) List(w http.ResponseWriter, r *http.Request) {
	locations, err := store.ListLocations(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list locations", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list locations")
		return
	}
	if locations == nil {
		locations = []model.Location{}
	}
	jsonResponse(w, http.StatusOK, locations)
}

// Create handles POST /api/locations.
func (h *LocationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	loc, err := store.CreateLocation(r.Context(), h.DB, req.Name, req.Description)
	if err != nil {
		slog.Error("failed to create location", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create location")
		return
	}

	slog.Info("location created", "user", GetClaims(r.Context()).Username, "location", loc.Name)
	jsonResponse(w, http.StatusCreated, loc)
}

// Get handles GET /api/locations/{id}.
func (h *LocationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	loc, err := store.GetLocation(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get location", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get location")
		return
	}
	if loc == nil {
		jsonError(w, http.StatusNotFound, "location not found")
		return
	}
	jsonResponse(w, http.StatusOK, loc)
}

// Update handles PUT /api/locations/{id}.
func (h *LocationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	if err := store.UpdateLocation(r.Context(), h.DB, id, req.Name, req.Description); err != nil {
		serviceError(w, err, "failed to update location")
		return
	}

	loc, err := store.GetLocation(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get location", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get location")
		return
	}
	jsonResponse(w, http.StatusOK, loc)
}

// Delete handles DELETE /api/locations/{id}. Units and their bottles go
// with it.
func (h *LocationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := store.DeleteLocation(r.Context(), h.DB, id); err != nil {
		serviceError(w, err, "failed to delete location")
		return
	}

	slog.Info("location deleted", "user", GetClaims(r.Context()).Username, "location_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "location deleted"})
}
