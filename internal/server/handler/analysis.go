package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/perpliq/perpliq/internal/analysis"
)

// AnalysisHandler serves liquidity analysis reports and rankings.
type AnalysisHandler struct {
	service *analysis.Service
	allowed func(instrument string) bool
	logger  *slog.Logger
}

// NewAnalysisHandler creates an AnalysisHandler. allowed gates which
// instruments may be analyzed; requests outside the allowlist get a 404.
func NewAnalysisHandler(service *analysis.Service, allowed func(string) bool, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		allowed: allowed,
		logger:  logHandler(logger, "analysis"),
	}
}

// GetAnalysis runs (or serves from cache) the full analysis for one
// instrument and returns the report as JSON.
// GET /api/analysis/{instrument}
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	instrument, ok := h.instrument(w, r)
	if !ok {
		return
	}

	report, err := h.service.Run(r.Context(), instrument)
	if err != nil {
		h.logger.Error("analysis failed",
			slog.String("instrument", instrument),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// GetRankings returns only the per-size ranking tables for one instrument.
// With ?format=text the response is the rendered terminal-style table.
// GET /api/rankings/{instrument}
func (h *AnalysisHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	instrument, ok := h.instrument(w, r)
	if !ok {
		return
	}

	report, err := h.service.Run(r.Context(), instrument)
	if err != nil {
		h.logger.Error("analysis failed",
			slog.String("instrument", instrument),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	if r.URL.Query().Get("format") == "text" {
		writeText(w, http.StatusOK, analysis.RenderReportText(report))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"instrument":   report.Instrument,
		"generated_at": report.GeneratedAt,
		"rankings":     report.Rankings,
	})
}

// instrument validates and normalizes the path parameter, writing the error
// response itself when the instrument is missing or not allowlisted.
func (h *AnalysisHandler) instrument(w http.ResponseWriter, r *http.Request) (string, bool) {
	instrument := strings.ToUpper(strings.TrimSpace(pathParam(r, "instrument")))
	if instrument == "" {
		writeError(w, http.StatusBadRequest, "instrument is required")
		return "", false
	}
	if !h.allowed(instrument) {
		writeError(w, http.StatusNotFound, "unknown instrument: "+instrument)
		return "", false
	}
	return instrument, true
}
