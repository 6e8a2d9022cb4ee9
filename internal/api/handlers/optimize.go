package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"route-optimizer-service/internal/api/dto"
	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/services"
)

// OptimizationService is the slice of the lifecycle these handlers call.
type OptimizationService interface {
	Submit(ctx context.Context, vehicleID, userID string, stops []domain.Stop, prefs domain.Preferences) (*services.SubmitResult, error)
	GetStatus(ctx context.Context, requestID string) (*services.RequestStatus, error)
	RecordUpdate(ctx context.Context, routeID, vehicleID string, reason domain.UpdateReason, currentLocation domain.Coordinates) (*domain.RouteUpdate, error)
	GetTracking(ctx context.Context, vehicleID string) ([]*domain.OptimizedRoute, error)
	GetHistory(ctx context.Context, userID string) ([]*domain.OptimizationRequest, error)
}

type OptimizeHandler struct {
	Logger  *slog.Logger
	Service OptimizationService
}

// Submit accepts an optimization request, runs the full flow and
// returns the resulting route.
func (h *OptimizeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.OptimizeRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(h.Logger, w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(h.Logger, w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	stops := make([]domain.Stop, 0, len(req.Stops))
	for _, s := range req.Stops {
		stops = append(stops, domain.Stop{
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Address:   s.Address,
		})
	}

	prefs := domain.Preferences{
		AvoidTolls:    req.Preferences.AvoidTolls,
		AvoidHighways: req.Preferences.AvoidHighways,
		OptimizeFor:   domain.OptimizeFor(req.Preferences.OptimizeFor),
	}
	if prefs.OptimizeFor == "" {
		prefs.OptimizeFor = domain.OptimizeTime
	}

	result, err := h.Service.Submit(r.Context(), req.VehicleID, req.UserID, stops, prefs)
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}

	route := toRouteResponse(result.Route)
	writeJSON(h.Logger, w, r, http.StatusCreated, dto.OptimizeResponse{
		RequestID: result.RequestID,
		Status:    string(domain.StatusCompleted),
		Route:     &route,
	})
}

// Status returns a request with its route and update log.
func (h *OptimizeHandler) Status(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	status, err := h.Service.GetStatus(r.Context(), requestID)
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}

	res := dto.StatusResponse{
		RequestID:   status.Request.ID,
		VehicleID:   status.Request.VehicleID,
		UserID:      status.Request.UserID,
		Status:      string(status.Request.Status),
		CreatedAt:   status.Request.CreatedAt,
		CompletedAt: status.Request.CompletedAt,
	}
	if status.Route != nil {
		route := toRouteResponse(status.Route)
		res.Route = &route
	}
	for _, u := range status.Updates {
		res.Updates = append(res.Updates, dto.RouteUpdateResponse{
			UpdateID:  u.ID,
			RouteID:   u.RouteID,
			Reason:    string(u.Reason),
			CreatedAt: u.CreatedAt,
		})
	}

	writeJSON(h.Logger, w, r, http.StatusOK, res)
}

// RecordUpdate appends a post-completion amendment to a route.
func (h *OptimizeHandler) RecordUpdate(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeID")

	var req dto.RecordUpdateRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(h.Logger, w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.VehicleID == "" {
		writeError(h.Logger, w, r, http.StatusBadRequest, "vehicle_id is required")
		return
	}

	update, err := h.Service.RecordUpdate(r.Context(), routeID, req.VehicleID,
		domain.UpdateReason(req.Reason),
		domain.Coordinates{Lat: req.CurrentLocation.Latitude, Lon: req.CurrentLocation.Longitude},
	)
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}

	writeJSON(h.Logger, w, r, http.StatusCreated, dto.RouteUpdateResponse{
		UpdateID:  update.ID,
		RouteID:   update.RouteID,
		Reason:    string(update.Reason),
		CreatedAt: update.CreatedAt,
	})
}

// Tracking returns a vehicle's most recent routes.
func (h *OptimizeHandler) Tracking(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleID")

	routes, err := h.Service.GetTracking(r.Context(), vehicleID)
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}

	res := dto.TrackingResponse{
		VehicleID: vehicleID,
		Routes:    make([]dto.RouteResponse, 0, len(routes)),
	}
	for _, route := range routes {
		res.Routes = append(res.Routes, toRouteResponse(route))
	}

	writeJSON(h.Logger, w, r, http.StatusOK, res)
}

// History returns a user's most recent requests.
func (h *OptimizeHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	requests, err := h.Service.GetHistory(r.Context(), userID)
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}

	res := dto.HistoryResponse{
		UserID:   userID,
		Requests: make([]dto.RequestSummaryResponse, 0, len(requests)),
	}
	for _, req := range requests {
		res.Requests = append(res.Requests, dto.RequestSummaryResponse{
			RequestID:   req.ID,
			VehicleID:   req.VehicleID,
			Status:      string(req.Status),
			StopCount:   len(req.Stops),
			CreatedAt:   req.CreatedAt,
			CompletedAt: req.CompletedAt,
		})
	}

	writeJSON(h.Logger, w, r, http.StatusOK, res)
}

func toRouteResponse(route *domain.OptimizedRoute) dto.RouteResponse {
	waypoints := make([]dto.WaypointResponse, 0, len(route.Waypoints))
	for _, wp := range route.Waypoints {
		waypoints = append(waypoints, dto.WaypointResponse{
			Latitude:         wp.Latitude,
			Longitude:        wp.Longitude,
			Address:          wp.Address,
			EstimatedArrival: wp.EstimatedArrival,
		})
	}

	return dto.RouteResponse{
		RouteID:              route.ID,
		RequestID:            route.RequestID,
		VehicleID:            route.VehicleID,
		TotalDistanceMeters:  route.TotalDistanceMeters,
		TotalDurationSeconds: route.TotalDurationSeconds,
		Waypoints:            waypoints,
		Metrics: dto.MetricsResponse{
			TimeSavedSeconds:       route.Metrics.TimeSavedSeconds,
			DistanceSavedKm:        route.Metrics.DistanceSavedKm,
			FuelSavedLiters:        route.Metrics.FuelSavedLiters,
			CO2SavedKg:             route.Metrics.CO2SavedKg,
			CostSaved:              route.Metrics.CostSaved,
			TimeImprovementPct:     route.Metrics.TimeImprovementPct,
			DistanceImprovementPct: route.Metrics.DistanceImprovementPct,
			FuelEfficiencyPct:      route.Metrics.FuelEfficiencyPct,
		},
		EncodedPath: route.EncodedPath,
		CreatedAt:   route.CreatedAt,
	}
}
