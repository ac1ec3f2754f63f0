package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// checkTimeout bounds how long dependency pings may take in aggregate.
const checkTimeout = 5 * time.Second

// CheckFunc pings one backing dependency. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// HealthHandler serves the health-check endpoint. Beyond liveness it pings
// each registered dependency and reports per-dependency status.
type HealthHandler struct {
	logger *slog.Logger
	checks map[string]CheckFunc
}

// NewHealthHandler creates a HealthHandler. checks may be nil or empty, in
// which case the endpoint reports liveness only.
func NewHealthHandler(logger *slog.Logger, checks map[string]CheckFunc) *HealthHandler {
	return &HealthHandler{logger: logger, checks: checks}
}

// HealthCheck responds with the server status and the status of every
// registered dependency. A failing dependency degrades the response to 503.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			h.logger.WarnContext(ctx, "health check failed",
				slog.String("dependency", name),
				slog.String("error", err.Error()),
			)
			continue
		}
		deps[name] = "ok"
	}

	body := map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	writeJSON(w, code, body)
}
