package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"route-optimizer-service/internal/apperr"
	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/platform/obs"
	"route-optimizer-service/internal/ports"
)

// Bounded projection sizes for the read endpoints.
const (
	trackingLimit = 10
	historyLimit  = 20
)

// Lifecycle owns the persisted status of optimization requests and the
// transitions between them. A request enters PROCESSING at submission
// and moves to exactly one of COMPLETED or FAILED; terminal states are
// never left. Each submission is an independent unit of work with no
// per-vehicle or per-user mutual exclusion.
type Lifecycle struct {
	logger    *slog.Logger
	sequencer RouteSequencer
	requests  ports.RequestRepository
	routes    ports.RouteRepository
	fanout    *Fanout
	now       func() time.Time
	newID     func() string
}

func NewLifecycle(
	logger *slog.Logger,
	sequencer RouteSequencer,
	requests ports.RequestRepository,
	routes ports.RouteRepository,
	fanout *Fanout,
) *Lifecycle {
	return &Lifecycle{
		logger:    logger,
		sequencer: sequencer,
		requests:  requests,
		routes:    routes,
		fanout:    fanout,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// Composed result of a successful submission.
type SubmitResult struct {
	RequestID string
	Route     *domain.OptimizedRoute
}

// Read model for one request: the request itself, its route when
// completed, and the route's append-only update log.
type RequestStatus struct {
	Request *domain.OptimizationRequest
	Route   *domain.OptimizedRoute
	Updates []*domain.RouteUpdate
}

// Submit runs the full optimization flow: persist the request as
// PROCESSING, announce it, sequence the stops, derive savings, persist
// the route and mark the request COMPLETED. Any failure after the
// initial insert transitions the request to FAILED and re-raises the
// original error.
func (l *Lifecycle) Submit(
	ctx context.Context,
	vehicleID, userID string,
	stops []domain.Stop,
	prefs domain.Preferences,
) (result *SubmitResult, err error) {
	defer obs.Time(ctx, l.logger, "submit optimization")(&err)

	if err := validateSubmission(vehicleID, userID, stops, prefs); err != nil {
		return nil, err
	}

	now := l.now()
	req := &domain.OptimizationRequest{
		ID:          l.newID(),
		VehicleID:   vehicleID,
		UserID:      userID,
		Stops:       stops,
		Preferences: prefs,
		Status:      domain.StatusProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := l.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("submit: persist request: %w", err)
	}

	// Subscribers learn of PROCESSING before sequencing starts.
	l.fanout.Requested(ctx, req)

	sequenced, err := l.sequencer.Sequence(ctx, stops, prefs)
	if err != nil {
		return nil, l.fail(ctx, req.ID, fmt.Errorf("submit: sequence stops: %w", err))
	}

	metrics := CompareMetrics(sequenced, stops)

	route := &domain.OptimizedRoute{
		ID:                   l.newID(),
		RequestID:            req.ID,
		VehicleID:            vehicleID,
		TotalDistanceMeters:  sequenced.TotalDistanceMeters,
		TotalDurationSeconds: sequenced.TotalDurationSeconds,
		Waypoints:            sequenced.Waypoints,
		Metrics:              metrics,
		EncodedPath:          sequenced.EncodedPath,
		CreatedAt:            l.now(),
	}

	if err := l.routes.Create(ctx, route); err != nil {
		return nil, l.fail(ctx, req.ID, fmt.Errorf("submit: persist route: %w", err))
	}

	completedAt := l.now()
	if err := l.requests.UpdateStatus(ctx, req.ID, domain.StatusCompleted, &completedAt); err != nil {
		return nil, l.fail(ctx, req.ID, fmt.Errorf("submit: mark request completed: %w", err))
	}

	req.Status = domain.StatusCompleted
	req.CompletedAt = &completedAt
	l.fanout.Optimized(ctx, req, route)

	return &SubmitResult{RequestID: req.ID, Route: route}, nil
}

// fail transitions the request to FAILED best-effort and returns the
// original error. If the FAILED write itself fails it is logged and the
// request stays observably PROCESSING until external reconciliation.
func (l *Lifecycle) fail(ctx context.Context, requestID string, cause error) error {
	completedAt := l.now()
	if err := l.requests.UpdateStatus(ctx, requestID, domain.StatusFailed, &completedAt); err != nil {
		l.logger.Error("failed to mark request FAILED; status left stale",
			"request_id", requestID,
			"original_error", cause,
			"error", err,
		)
	}

	l.fanout.Failed(ctx, requestID, cause)
	return cause
}

// GetStatus returns the request with its route and update log. Read
// only; no state change.
func (l *Lifecycle) GetStatus(ctx context.Context, requestID string) (*RequestStatus, error) {
	req, err := l.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	status := &RequestStatus{Request: req}
	if req.Status != domain.StatusCompleted {
		return status, nil
	}

	route, err := l.routes.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get status: load route: %w", err)
	}

	updates, err := l.routes.ListUpdates(ctx, route.ID)
	if err != nil {
		return nil, fmt.Errorf("get status: load route updates: %w", err)
	}

	status.Route = route
	status.Updates = updates
	return status, nil
}

// RecordUpdate appends a post-completion amendment carrying the route's
// current waypoints and rebroadcasts it. No re-optimization happens
// here.
func (l *Lifecycle) RecordUpdate(
	ctx context.Context,
	routeID, vehicleID string,
	reason domain.UpdateReason,
	currentLocation domain.Coordinates,
) (*domain.RouteUpdate, error) {
	if !reason.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("record update: invalid reason %q", reason))
	}

	route, err := l.routes.GetByIDAndVehicle(ctx, routeID, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("record update: %w", err)
	}

	update := &domain.RouteUpdate{
		ID:           l.newID(),
		RouteID:      route.ID,
		VehicleID:    vehicleID,
		Reason:       reason,
		NewWaypoints: route.Waypoints,
		CreatedAt:    l.now(),
	}

	if err := l.routes.AppendUpdate(ctx, update); err != nil {
		return nil, fmt.Errorf("record update: append: %w", err)
	}

	l.fanout.UpdateRequested(ctx, route, update, currentLocation)
	return update, nil
}

// GetTracking returns a vehicle's most recent routes, newest first.
func (l *Lifecycle) GetTracking(ctx context.Context, vehicleID string) ([]*domain.OptimizedRoute, error) {
	if vehicleID == "" {
		return nil, apperr.Validation("get tracking: vehicle id must not be empty")
	}
	return l.routes.ListByVehicle(ctx, vehicleID, trackingLimit)
}

// GetHistory returns a user's most recent requests, newest first.
func (l *Lifecycle) GetHistory(ctx context.Context, userID string) ([]*domain.OptimizationRequest, error) {
	if userID == "" {
		return nil, apperr.Validation("get history: user id must not be empty")
	}
	return l.requests.ListByUser(ctx, userID, historyLimit)
}

func validateSubmission(vehicleID, userID string, stops []domain.Stop, prefs domain.Preferences) error {
	if vehicleID == "" {
		return apperr.Validation("submit: vehicle id must not be empty")
	}
	if userID == "" {
		return apperr.Validation("submit: user id must not be empty")
	}
	if len(stops) == 0 {
		return apperr.Validation("submit: stop list must not be empty")
	}
	for i, s := range stops {
		// NaN compares false against every bound, so finiteness needs
		// its own check before the range check.
		if !isFinite(s.Latitude) || !isFinite(s.Longitude) {
			return apperr.Validation(fmt.Sprintf("submit: stop %d has non-finite coordinates", i))
		}
		if s.Latitude < -90 || s.Latitude > 90 || s.Longitude < -180 || s.Longitude > 180 {
			return apperr.Validation(fmt.Sprintf("submit: stop %d has out-of-range coordinates", i))
		}
	}
	if !prefs.OptimizeFor.Valid() {
		return apperr.Validation(fmt.Sprintf("submit: invalid optimize_for %q", prefs.OptimizeFor))
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
