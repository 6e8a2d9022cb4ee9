package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler reports liveness plus database reachability.
type HealthHandler struct {
	Logger *slog.Logger
	// PingDB probes the database; nil means no database is wired.
	PingDB func(ctx context.Context) error
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	res := map[string]any{
		"status":    "ok",
		"database":  "connected",
		"timestamp": time.Now().UTC(),
	}

	if h.PingDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.PingDB(ctx); err != nil {
			res["status"] = "error"
			res["database"] = "disconnected"
			res["error"] = err.Error()
			writeJSON(h.Logger, w, r, http.StatusServiceUnavailable, res)
			return
		}
	}

	writeJSON(h.Logger, w, r, http.StatusOK, res)
}
