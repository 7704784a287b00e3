package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/klet/internal/cellar"
	"github.com/erazemk/klet/internal/model"
	"github.com/erazemk/klet/internal/scene"
	"github.com/erazemk/klet/internal/store"
)

// BottlesHandler handles bottle placement and lifecycle endpoints. All
// writes go through the cellar service so slot rules hold.
type BottlesHandler struct {
	DB      *sql.DB
	Service *cellar.Service
}

type stockRequest struct {
	WineID   string `json:"wine_id" validate:"required"`
	UnitID   string `json:"unit_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=500"`
}

type moveRequest struct {
	UnitID string `json:"unit_id"`
	X      *int   `json:"x" validate:"required"`
	Y      *int   `json:"y" validate:"required"`
	Depth  *int   `json:"depth" validate:"required"`
}

type dragRequest struct {
	Delta scene.Vec3 `json:"delta"`
}

type retireRequest struct {
	Rating *int   `json:"rating" validate:"omitempty,min=0,max=100"`
	Notes  string `json:"notes" validate:"max=4000"`
}

// List handles GET /api/bottles with optional ?wine_id=, ?unit_id=,
// ?location_id= and ?status= filters.
func (h *BottlesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := model.BottleStatus(q.Get("status"))
	switch status {
	case "", model.BottleStored, model.BottleConsumed, model.BottleGifted:
	default:
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	bottles, err := store.ListBottles(r.Context(), h.DB, store.BottleFilter{
		UnitID:     q.Get("unit_id"),
		LocationID: q.Get("location_id"),
		WineID:     q.Get("wine_id"),
		Status:     status,
	})
	if err != nil {
		slog.Error("failed to list bottles", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list bottles")
		return
	}
	if bottles == nil {
		bottles = []model.Bottle{}
	}
	jsonResponse(w, http.StatusOK, bottles)
}

// Get handles GET /api/bottles/{id}.
func (h *BottlesHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := store.GetBottle(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get bottle", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get bottle")
		return
	}
	if b == nil {
		jsonError(w, http.StatusNotFound, "bottle not found")
		return
	}
	jsonResponse(w, http.StatusOK, b)
}

// Stock handles POST /api/stock. Bottles fill the first free slots of the
// unit in scan order, or nothing is stored at all.
func (h *BottlesHandler) Stock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	bottles, err := h.Service.AddStock(r.Context(), cellar.StockRequest{
		WineID:   req.WineID,
		UnitID:   req.UnitID,
		Quantity: req.Quantity,
		UserID:   userID(r.Context()),
	})
	if err != nil {
		serviceError(w, err, "failed to add stock")
		return
	}

	slog.Info("stock added", "user", GetClaims(r.Context()).Username,
		"wine_id", req.WineID, "unit_id", req.UnitID, "quantity", len(bottles))
	jsonResponse(w, http.StatusCreated, bottles)
}

// Move handles PUT /api/bottles/{id}/position.
func (h *BottlesHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	b, err := h.Service.MoveBottle(r.Context(), cellar.MoveRequest{
		BottleID: r.PathValue("id"),
		UnitID:   req.UnitID,
		X:        *req.X,
		Y:        *req.Y,
		Depth:    *req.Depth,
		UserID:   userID(r.Context()),
	})
	if err != nil {
		serviceError(w, err, "failed to move bottle")
		return
	}

	slog.Info("bottle moved", "user", GetClaims(r.Context()).Username,
		"bottle_id", b.ID, "unit_id", b.UnitID, "x", b.X, "y", b.Y, "depth", b.Depth)
	jsonResponse(w, http.StatusOK, b)
}

// Drag handles POST /api/bottles/{id}/drag. A rejected target is a normal
// response carrying the outcome and the position to snap back to.
func (h *BottlesHandler) Drag(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	res, err := h.Service.DragRelease(r.Context(), cellar.DragRequest{
		BottleID: r.PathValue("id"),
		Delta:    req.Delta,
		UserID:   userID(r.Context()),
	})
	if err != nil {
		serviceError(w, err, "failed to apply drag")
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// Consume handles POST /api/bottles/{id}/consume.
func (h *BottlesHandler) Consume(w http.ResponseWriter, r *http.Request) {
	h.retire(w, r, h.Service.Consume, "consumed")
}

// Gift handles POST /api/bottles/{id}/gift.
func (h *BottlesHandler) Gift(w http.ResponseWriter, r *http.Request) {
	h.retire(w, r, h.Service.Gift, "gifted")
}

type retireFunc func(ctx context.Context, req cellar.RetireRequest) (*model.Bottle, error)

func (h *BottlesHandler) retire(w http.ResponseWriter, r *http.Request, fn retireFunc, verb string) {
	var req retireRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	b, err := fn(r.Context(), cellar.RetireRequest{
		BottleID: r.PathValue("id"),
		Rating:   req.Rating,
		Notes:    req.Notes,
		UserID:   userID(r.Context()),
	})
	if err != nil {
		serviceError(w, err, "failed to update bottle")
		return
	}

	slog.Info("bottle "+verb, "user", GetClaims(r.Context()).Username, "bottle_id", b.ID, "wine", b.WineName)
	jsonResponse(w, http.StatusOK, b)
}

// Delete handles DELETE /api/bottles/{id}.
func (h *BottlesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Service.DeleteBottle(r.Context(), id); err != nil {
		serviceError(w, err, "failed to delete bottle")
		return
	}

	slog.Info("bottle deleted", "user", GetClaims(r.Context()).Username, "bottle_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "bottle deleted"})
}

// History handles GET /api/bottles/{id}/history.
func (h *BottlesHandler) History(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	b, err := store.GetBottle(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get bottle", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get history")
		return
	}
	if b == nil {
		jsonError(w, http.StatusNotFound, "bottle not found")
		return
	}

	events, err := store.ListBottleHistory(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get history", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get history")
		return
	}
	if events == nil {
		events = []model.BottleEvent{}
	}
	jsonResponse(w, http.StatusOK, events)
}

// Consumption handles GET /api/consumption.
func (h *BottlesHandler) Consumption(w http.ResponseWriter, r *http.Request) {
	bottles, err := store.ListConsumption(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list consumption", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list consumption")
		return
	}
	jsonResponse(w, http.StatusOK, bottles)
}
