package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/erazemk/klet/internal/imaging"
	"github.com/erazemk/klet/internal/model"
	"github.com/erazemk/klet/internal/store"
)

// WinesHandler handles wine catalogue endpoints.
type WinesHandler struct {
	DB *sql.DB
}

type wineRequest struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Producer    string           `json:"producer" validate:"required,max=200"`
	Vineyard    string           `json:"vineyard" validate:"max=200"`
	Year        int              `json:"year" validate:"min=0,max=3000"`
	Type        model.WineType   `json:"type" validate:"required,oneof=Red White Rosé Sparkling Dessert Fortified"`
	Varietals   []string         `json:"varietals" validate:"max=20,dive,required,max=100"`
	Country     string           `json:"country" validate:"max=100"`
	Region      string           `json:"region" validate:"max=100"`
	Description string           `json:"description" validate:"max=4000"`
	Rating      *int             `json:"rating" validate:"omitempty,min=0,max=100"`
	Price       *decimal.Decimal `json:"price"`
}

func (req wineRequest) wine(id string) model.Wine {
	w := model.Wine{
		ID:          id,
		Name:        req.Name,
		Producer:    req.Producer,
		Vineyard:    req.Vineyard,
		Year:        req.Year,
		Type:        req.Type,
		Varietals:   req.Varietals,
		Country:     req.Country,
		Region:      req.Region,
		Description: req.Description,
		Rating:      req.Rating,
	}
	if req.Price != nil {
		w.Price = decimal.NewNullDecimal(*req.Price)
	}
	return w
}

// List handles GET /api/wines with optional ?q= and ?type= filters.
func (h *WinesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	wines, err := store.ListWines(r.Context(), h.DB, store.WineFilter{
		Query: q.Get("q"),
		Type:  model.WineType(q.Get("type")),
	})
	if err != nil {
		slog.Error("failed to list wines", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list wines")
		return
	}
	if wines == nil {
		wines = []model.Wine{}
	}
	jsonResponse(w, http.StatusOK, wines)
}

// Create handles POST /api/wines.
func (h *WinesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req wineRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if req.Price != nil && req.Price.IsNegative() {
		jsonError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	wine, err := store.CreateWine(r.Context(), h.DB, req.wine(""))
	if err != nil {
		slog.Error("failed to create wine", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create wine")
		return
	}

	slog.Info("wine created", "user", GetClaims(r.Context()).Username, "wine", wine.Name, "year", wine.Year)
	jsonResponse(w, http.StatusCreated, wine)
}

// Get handles GET /api/wines/{id}.
func (h *WinesHandler) Get(w http.ResponseWriter, r *http.Request) {
	wine, err := store.GetWine(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get wine", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get wine")
		return
	}
	if wine == nil {
		jsonError(w, http.StatusNotFound, "wine not found")
		return
	}
	jsonResponse(w, http.StatusOK, wine)
}

// Update handles PUT /api/wines/{id}.
func (h *WinesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req wineRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if req.Price != nil && req.Price.IsNegative() {
		jsonError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	if err := store.UpdateWine(r.Context(), h.DB, req.wine(id)); err != nil {
		serviceError(w, err, "failed to update wine")
		return
	}

	wine, err := store.GetWine(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get wine", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get wine")
		return
	}
	jsonResponse(w, http.StatusOK, wine)
}

// Delete handles DELETE /api/wines/{id}. Bottles of the wine are removed.
func (h *WinesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := store.DeleteWine(r.Context(), h.DB, id); err != nil {
		serviceError(w, err, "failed to delete wine")
		return
	}

	slog.Info("wine deleted", "user", GetClaims(r.Context()).Username, "wine_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "wine deleted"})
}

// UploadImage handles PUT /api/wines/{id}/image. The photo is re-encoded
// as a bounded JPEG before it is stored.
func (h *WinesHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.NormalizeLabel(file)
	if err != nil {
		serviceError(w, err, "failed to process image")
		return
	}

	if err := store.SetWineImage(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		serviceError(w, err, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "image uploaded",
		"width":   photo.Width,
		"height":  photo.Height,
	})
}

// GetImage handles GET /api/wines/{id}/image. ?size=thumb returns a
// thumbnail rendered on the fly.
func (h *WinesHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetWineImage(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get image", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	if r.URL.Query().Get("size") == "thumb" {
		thumb, err := imaging.Thumbnail(data)
		if err != nil {
			slog.Error("failed to render thumbnail", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to render thumbnail")
			return
		}
		data, mime = thumb.Data, thumb.MIME
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
