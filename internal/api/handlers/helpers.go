package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"route-optimizer-service/internal/apperr"
)

func writeJSON(logger *slog.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
}

func writeError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(logger, w, r, status, map[string]string{"error": msg})
}

// writeAppError maps the error's kind to an HTTP status. Unknown kinds
// fall through to 500 with a generic message so internals never leak.
func writeAppError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindProvider:
		status = http.StatusBadGateway
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	default:
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeError(logger, w, r, status, err.Error())
}
