package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"route-optimizer-service/internal/apperr"
	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/services"
)

type fakeService struct {
	submitResult *services.SubmitResult
	submitErr    error
	status       *services.RequestStatus
	statusErr    error
	update       *domain.RouteUpdate
	updateErr    error
	routes       []*domain.OptimizedRoute
	requests     []*domain.OptimizationRequest

	submittedStops []domain.Stop
	submittedPrefs domain.Preferences
}

func (f *fakeService) Submit(ctx context.Context, vehicleID, userID string, stops []domain.Stop, prefs domain.Preferences) (*services.SubmitResult, error) {
	f.submittedStops = stops
	f.submittedPrefs = prefs
	return f.submitResult, f.submitErr
}

func (f *fakeService) GetStatus(ctx context.Context, requestID string) (*services.RequestStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeService) RecordUpdate(ctx context.Context, routeID, vehicleID string, reason domain.UpdateReason, currentLocation domain.Coordinates) (*domain.RouteUpdate, error) {
	return f.update, f.updateErr
}

func (f *fakeService) GetTracking(ctx context.Context, vehicleID string) ([]*domain.OptimizedRoute, error) {
	return f.routes, nil
}

func (f *fakeService) GetHistory(ctx context.Context, userID string) ([]*domain.OptimizationRequest, error) {
	return f.requests, nil
}

func testRouter(svc OptimizationService) http.Handler {
	h := &OptimizeHandler{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Service: svc,
	}

	r := chi.NewRouter()
	r.Post("/api/optimize", h.Submit)
	r.Get("/api/optimize/{requestID}", h.Status)
	r.Post("/api/routes/{routeID}/updates", h.RecordUpdate)
	r.Get("/api/tracking/{vehicleID}", h.Tracking)
	r.Get("/api/history/{userID}", h.History)
	return r
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func sampleRoute() *domain.OptimizedRoute {
	return &domain.OptimizedRoute{
		ID:                   "route-1",
		RequestID:            "req-1",
		VehicleID:            "veh-1",
		TotalDistanceMeters:  5420.1,
		TotalDurationSeconds: 660,
		Waypoints: []domain.Waypoint{
			{Latitude: 40.7128, Longitude: -74.0060, EstimatedArrival: time.Now()},
			{Latitude: 40.7589, Longitude: -73.9851, EstimatedArrival: time.Now().Add(11 * time.Minute)},
		},
		Metrics:   domain.OptimizationMetrics{TimeSavedSeconds: 420},
		CreatedAt: time.Now(),
	}
}

const submitBody = `{
	"vehicle_id": "veh-1",
	"user_id": "user-1",
	"stops": [
		{"latitude": 40.7128, "longitude": -74.0060, "address": "A"},
		{"latitude": 40.7589, "longitude": -73.9851, "address": "B"}
	],
	"preferences": {"avoid_tolls": true, "optimize_for": "distance"}
}`

func TestSubmitReturnsRoute(t *testing.T) {
	svc := &fakeService{
		submitResult: &services.SubmitResult{RequestID: "req-1", Route: sampleRoute()},
	}

	rec := doRequest(t, testRouter(svc), http.MethodPost, "/api/optimize", submitBody)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res struct {
		RequestID string `json:"request_id"`
		Status    string `json:"status"`
		Route     *struct {
			RouteID             string  `json:"route_id"`
			TotalDistanceMeters float64 `json:"total_distance_meters"`
		} `json:"route"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.RequestID != "req-1" || res.Status != "COMPLETED" {
		t.Fatalf("response = %+v", res)
	}
	if res.Route == nil || res.Route.RouteID != "route-1" {
		t.Fatalf("route = %+v", res.Route)
	}

	if len(svc.submittedStops) != 2 || svc.submittedStops[1].Address != "B" {
		t.Fatalf("stops = %+v", svc.submittedStops)
	}
	if !svc.submittedPrefs.AvoidTolls || svc.submittedPrefs.OptimizeFor != domain.OptimizeDistance {
		t.Fatalf("prefs = %+v", svc.submittedPrefs)
	}
}

func TestSubmitDefaultsOptimizeForToTime(t *testing.T) {
	svc := &fakeService{
		submitResult: &services.SubmitResult{RequestID: "req-1", Route: sampleRoute()},
	}

	body := `{"vehicle_id": "veh-1", "user_id": "user-1", "stops": [{"latitude": 1, "longitude": 1}], "preferences": {}}`
	rec := doRequest(t, testRouter(svc), http.MethodPost, "/api/optimize", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.submittedPrefs.OptimizeFor != domain.OptimizeTime {
		t.Fatalf("optimize_for = %q", svc.submittedPrefs.OptimizeFor)
	}
}

func TestSubmitRejectsInvalidJSON(t *testing.T) {
	rec := doRequest(t, testRouter(&fakeService{}), http.MethodPost, "/api/optimize", "{not json")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSubmitRejectsUnknownFields(t *testing.T) {
	rec := doRequest(t, testRouter(&fakeService{}), http.MethodPost, "/api/optimize", `{"vehicle": "nope"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSubmitMapsValidationError(t *testing.T) {
	svc := &fakeService{submitErr: apperr.Validation("stop list must not be empty")}

	rec := doRequest(t, testRouter(svc), http.MethodPost, "/api/optimize", submitBody)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSubmitMapsProviderError(t *testing.T) {
	svc := &fakeService{submitErr: apperr.Provider("routing provider unreachable", nil)}

	rec := doRequest(t, testRouter(svc), http.MethodPost, "/api/optimize", submitBody)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestStatusNotFound(t *testing.T) {
	svc := &fakeService{statusErr: apperr.NotFound("request req-x")}

	rec := doRequest(t, testRouter(svc), http.MethodGet, "/api/optimize/req-x", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestStatusIncludesRouteAndUpdates(t *testing.T) {
	completedAt := time.Now()
	svc := &fakeService{
		status: &services.RequestStatus{
			Request: &domain.OptimizationRequest{
				ID:          "req-1",
				VehicleID:   "veh-1",
				UserID:      "user-1",
				Status:      domain.StatusCompleted,
				CompletedAt: &completedAt,
			},
			Route: sampleRoute(),
			Updates: []*domain.RouteUpdate{
				{ID: "upd-1", RouteID: "route-1", Reason: domain.ReasonTrafficChange},
			},
		},
	}

	rec := doRequest(t, testRouter(svc), http.MethodGet, "/api/optimize/req-1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var res struct {
		Status  string    `json:"status"`
		Route   *struct{} `json:"route"`
		Updates []struct {
			Reason string `json:"reason"`
		} `json:"updates"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Status != "COMPLETED" || res.Route == nil {
		t.Fatalf("response = %+v", res)
	}
	if len(res.Updates) != 1 || res.Updates[0].Reason != "TRAFFIC_CHANGE" {
		t.Fatalf("updates = %+v", res.Updates)
	}
}

func TestRecordUpdateRequiresVehicleID(t *testing.T) {
	body := `{"reason": "TRAFFIC_CHANGE", "current_location": {"latitude": 1, "longitude": 1}}`
	rec := doRequest(t, testRouter(&fakeService{}), http.MethodPost, "/api/routes/route-1/updates", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRecordUpdateReturnsUpdate(t *testing.T) {
	svc := &fakeService{
		update: &domain.RouteUpdate{
			ID:      "upd-1",
			RouteID: "route-1",
			Reason:  domain.ReasonDriverRequest,
		},
	}

	body := `{"vehicle_id": "veh-1", "reason": "DRIVER_REQUEST", "current_location": {"latitude": 1, "longitude": 1}}`
	rec := doRequest(t, testRouter(svc), http.MethodPost, "/api/routes/route-1/updates", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res struct {
		UpdateID string `json:"update_id"`
		Reason   string `json:"reason"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.UpdateID != "upd-1" || res.Reason != "DRIVER_REQUEST" {
		t.Fatalf("response = %+v", res)
	}
}

func TestTrackingReturnsRoutes(t *testing.T) {
	svc := &fakeService{routes: []*domain.OptimizedRoute{sampleRoute()}}

	rec := doRequest(t, testRouter(svc), http.MethodGet, "/api/tracking/veh-1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var res struct {
		VehicleID string `json:"vehicle_id"`
		Routes    []struct {
			RouteID string `json:"route_id"`
		} `json:"routes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.VehicleID != "veh-1" || len(res.Routes) != 1 {
		t.Fatalf("response = %+v", res)
	}
}

func TestHistoryReturnsRequests(t *testing.T) {
	svc := &fakeService{
		requests: []*domain.OptimizationRequest{
			{ID: "req-1", VehicleID: "veh-1", Status: domain.StatusCompleted, Stops: make([]domain.Stop, 3)},
			{ID: "req-2", VehicleID: "veh-1", Status: domain.StatusFailed},
		},
	}

	rec := doRequest(t, testRouter(svc), http.MethodGet, "/api/history/user-1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var res struct {
		Requests []struct {
			RequestID string `json:"request_id"`
			Status    string `json:"status"`
			StopCount int    `json:"stop_count"`
		} `json:"requests"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Requests) != 2 {
		t.Fatalf("requests = %+v", res.Requests)
	}
	if res.Requests[0].StopCount != 3 || res.Requests[1].Status != "FAILED" {
		t.Fatalf("requests = %+v", res.Requests)
	}
}
