package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/klet/internal/cellar"
)

// StatsHandler serves aggregate cellar views.
type StatsHandler struct {
	Service *cellar.Service
}

// Stats handles GET /api/stats.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		serviceError(w, err, "failed to compute stats")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// Export handles GET /api/export with a consistent snapshot of the whole
// cellar, offered as a download. ?format=csv gives one row per bottle for
// spreadsheets; the default is JSON.
func (h *StatsHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "csv" {
		jsonError(w, http.StatusBadRequest, "format must be json or csv")
		return
	}

	snap, err := h.Service.Export(r.Context())
	if err != nil {
		serviceError(w, err, "failed to export cellar")
		return
	}
	base := "klet-" + snap.TakenAt.UTC().Format(time.DateOnly)

	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+".csv"))
		w.WriteHeader(http.StatusOK)
		if err := cellar.WriteCSV(w, snap); err != nil {
			slog.Error("writing csv export", "error", err)
		}
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+".json"))
	jsonResponse(w, http.StatusOK, snap)
}
