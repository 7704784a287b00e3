package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/klet/internal/cellar"
	"github.com/erazemk/klet/internal/grid"
	"github.com/erazemk/klet/internal/imaging"
	"github.com/erazemk/klet/internal/store"
)

// serviceError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a 500 with the generic message.
func serviceError(w http.ResponseWriter, err error, message string) {
	var short *grid.AllocationShortfallError
	switch {
	case errors.As(err, &short):
		jsonResponse(w, http.StatusConflict, map[string]any{
			"error":     short.Error(),
			"requested": short.Requested,
			"found":     short.Found,
		})
	case errors.Is(err, cellar.ErrUnitNotFound):
		jsonError(w, http.StatusNotFound, "storage unit not found")
	case errors.Is(err, cellar.ErrWineNotFound):
		jsonError(w, http.StatusNotFound, "wine not found")
	case errors.Is(err, cellar.ErrBottleNotFound):
		jsonError(w, http.StatusNotFound, "bottle not found")
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, grid.ErrOutOfBounds):
		jsonError(w, http.StatusUnprocessableEntity, "target slot is out of bounds")
	case errors.Is(err, grid.ErrSlotOccupied):
		jsonError(w, http.StatusConflict, "target slot is occupied")
	case errors.Is(err, cellar.ErrNotStored):
		jsonError(w, http.StatusConflict, "bottle is not stored")
	case errors.Is(err, cellar.ErrGeometryConflict):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		jsonError(w, http.StatusUnsupportedMediaType, "image must be JPEG, PNG, or WebP")
	case errors.Is(err, cellar.ErrInvalidQuantity):
		jsonError(w, http.StatusBadRequest, "quantity must be positive")
	default:
		slog.Error(message, "error", err)
		jsonError(w, http.StatusInternalServerError, message)
	}
}
