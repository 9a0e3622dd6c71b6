package handlers

import (
	"bytes"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/isdelr/finance-tracker-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StatsHandler serves the dashboard summary and the spreadsheet export.
type StatsHandler struct {
	stats  services.StatsServiceProvider
	export services.ExportServiceProvider
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats services.StatsServiceProvider, export services.ExportServiceProvider) *StatsHandler {
	return &StatsHandler{stats: stats, export: export}
}

// Summary returns totals, balance and the per-category breakdown.
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	summary, err := h.stats.Summary(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Export streams the caller's ledger as an XLSX workbook.
func (h *StatsHandler) Export(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	// Buffer so a failure can still become a JSON error.
	var buf bytes.Buffer
	if err := h.export.ExportWorkbook(r.Context(), user.ID, &buf); err != nil {
		writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("ledger-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// HealthHandler reports whether the database is reachable.
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Health check failed to reach database")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
