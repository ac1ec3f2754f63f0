package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/perpliq/perpliq/internal/domain"
)

// FeesHandler exposes the taker-fee table for reading and updating.
type FeesHandler struct {
	store  domain.FeeStore
	logger *slog.Logger
}

// NewFeesHandler creates a FeesHandler backed by the given store.
func NewFeesHandler(store domain.FeeStore, logger *slog.Logger) *FeesHandler {
	return &FeesHandler{
		store:  store,
		logger: logHandler(logger, "fees"),
	}
}

// ListFees returns every known fee row.
// GET /api/fees
func (h *FeesHandler) ListFees(w http.ResponseWriter, r *http.Request) {
	fees, err := h.store.All(r.Context())
	if err != nil {
		h.logger.Error("list fees failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list fees")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fees": fees})
}

// upsertFeeRequest is the body for fee updates.
type upsertFeeRequest struct {
	FeeBps     *float64 `json:"fee_bps"`
	Assumption string   `json:"assumption"`
}

// UpsertFee inserts or replaces the fee row for one exchange.
// PUT /api/fees/{exchange}
func (h *FeesHandler) UpsertFee(w http.ResponseWriter, r *http.Request) {
	exchange := strings.TrimSpace(pathParam(r, "exchange"))
	if exchange == "" {
		writeError(w, http.StatusBadRequest, "exchange is required")
		return
	}

	var req upsertFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FeeBps == nil {
		writeError(w, http.StatusBadRequest, "fee_bps is required")
		return
	}
	if *req.FeeBps < 0 {
		writeError(w, http.StatusBadRequest, "fee_bps must be non-negative")
		return
	}

	fee := domain.TakerFee{
		Exchange:   exchange,
		FeeBps:     *req.FeeBps,
		Assumption: req.Assumption,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := h.store.Upsert(r.Context(), fee); err != nil {
		h.logger.Error("upsert fee failed",
			slog.String("exchange", exchange),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to update fee")
		return
	}

	h.logger.Info("taker fee updated",
		slog.String("exchange", exchange),
		slog.Float64("fee_bps", *req.FeeBps),
	)
	writeJSON(w, http.StatusOK, fee)
}
