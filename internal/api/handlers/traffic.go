package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"route-optimizer-service/internal/api/dto"
	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/ports"
)

const trafficListLimit = 50

type TrafficHandler struct {
	Logger *slog.Logger
	Repo   ports.TrafficRepository
}

// Report persists one caller-reported traffic condition.
func (h *TrafficHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req dto.TrafficReportRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(h.Logger, w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		writeError(h.Logger, w, r, http.StatusBadRequest, "coordinates out of range")
		return
	}
	condition := domain.TrafficLevel(req.Condition)
	if !condition.Valid() {
		writeError(h.Logger, w, r, http.StatusBadRequest, fmt.Sprintf("invalid condition %q", req.Condition))
		return
	}
	severity := domain.TrafficSeverity(req.Severity)
	if !severity.Valid() {
		writeError(h.Logger, w, r, http.StatusBadRequest, fmt.Sprintf("invalid severity %q", req.Severity))
		return
	}

	now := time.Now()
	cond := &domain.TrafficCondition{
		ID:          uuid.NewString(),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Condition:   condition,
		Severity:    severity,
		Description: req.Description,
		Source:      req.Source,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Repo.Create(r.Context(), cond); err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}

	writeJSON(h.Logger, w, r, http.StatusCreated, toTrafficResponse(cond))
}

// List returns the most recently reported conditions, newest first.
func (h *TrafficHandler) List(w http.ResponseWriter, r *http.Request) {
	conditions, err := h.Repo.ListRecent(r.Context(), trafficListLimit)
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}

	res := dto.ListTrafficResponse{
		Conditions: make([]dto.TrafficConditionResponse, 0, len(conditions)),
	}
	for _, cond := range conditions {
		res.Conditions = append(res.Conditions, toTrafficResponse(cond))
	}

	writeJSON(h.Logger, w, r, http.StatusOK, res)
}

func toTrafficResponse(cond *domain.TrafficCondition) dto.TrafficConditionResponse {
	return dto.TrafficConditionResponse{
		ID:          cond.ID,
		Latitude:    cond.Latitude,
		Longitude:   cond.Longitude,
		Condition:   string(cond.Condition),
		Severity:    string(cond.Severity),
		Description: cond.Description,
		Source:      cond.Source,
		CreatedAt:   cond.CreatedAt,
	}
}
