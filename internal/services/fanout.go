package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/ports"
)

const eventSchemaVersion = "1.0"

// Event types published to the bus for each lifecycle transition.
const (
	EventOptimizationRequested = "route.optimization.requested"
	EventOptimizationCompleted = "route.optimization.completed"
	EventOptimizationFailed    = "route.optimization.failed"
	EventRouteUpdateRequested  = "route.update.requested"
)

// Fanout pushes lifecycle notifications over two independent channels:
// a domain event on the message bus and a room-scoped realtime push.
// Both are best-effort; a failure on either channel is logged and never
// escalates into the lifecycle transition that triggered it.
type Fanout struct {
	logger    *slog.Logger
	publisher ports.EventPublisher
	notifier  ports.RoomNotifier
	topic     string
	source    string
	now       func() time.Time
	newID     func() string
	// dispatch runs fire-and-forget work; overridable in tests.
	dispatch func(fn func())
}

func NewFanout(
	logger *slog.Logger,
	publisher ports.EventPublisher,
	notifier ports.RoomNotifier,
	topic string,
	source string,
) *Fanout {
	return &Fanout{
		logger:    logger,
		publisher: publisher,
		notifier:  notifier,
		topic:     topic,
		source:    source,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
		dispatch:  func(fn func()) { go fn() },
	}
}

// Requested announces that a request entered PROCESSING. The room push
// runs synchronously so subscribers learn of PROCESSING before the
// potentially slow sequencing call begins; the bus publish stays
// asynchronous.
func (f *Fanout) Requested(ctx context.Context, req *domain.OptimizationRequest) {
	data := map[string]any{
		"request_id": req.ID,
		"vehicle_id": req.VehicleID,
		"user_id":    req.UserID,
		"stop_count": len(req.Stops),
	}

	f.push(RequestRoom(req.ID), "optimization:requested", string(req.Status), data)
	f.publishAsync(ctx, EventOptimizationRequested, data)
}

// Optimized announces a completed request together with its route
// summary and savings.
func (f *Fanout) Optimized(ctx context.Context, req *domain.OptimizationRequest, route *domain.OptimizedRoute) {
	data := map[string]any{
		"request_id":             req.ID,
		"vehicle_id":             req.VehicleID,
		"route_id":               route.ID,
		"total_distance_meters":  route.TotalDistanceMeters,
		"total_duration_seconds": route.TotalDurationSeconds,
		"time_saved_seconds":     route.Metrics.TimeSavedSeconds,
		"distance_saved_km":      route.Metrics.DistanceSavedKm,
	}

	f.dispatch(func() {
		f.push(RequestRoom(req.ID), "optimization:completed", string(domain.StatusCompleted), data)
	})
	f.publishAsync(ctx, EventOptimizationCompleted, data)
}

// Failed announces a failed request with the triggering error message.
func (f *Fanout) Failed(ctx context.Context, requestID string, cause error) {
	data := map[string]any{
		"request_id": requestID,
		"error":      cause.Error(),
	}

	f.dispatch(func() {
		f.push(RequestRoom(requestID), "optimization:failed", string(domain.StatusFailed), data)
	})
	f.publishAsync(ctx, EventOptimizationFailed, data)
}

// UpdateRequested rebroadcasts a recorded post-completion amendment to
// the route's room and the bus.
func (f *Fanout) UpdateRequested(
	ctx context.Context,
	route *domain.OptimizedRoute,
	update *domain.RouteUpdate,
	location domain.Coordinates,
) {
	data := map[string]any{
		"route_id":   route.ID,
		"request_id": route.RequestID,
		"vehicle_id": route.VehicleID,
		"update_id":  update.ID,
		"reason":     string(update.Reason),
		"current_location": map[string]float64{
			"latitude":  location.Lat,
			"longitude": location.Lon,
		},
	}

	f.dispatch(func() {
		f.push(RouteRoom(route.ID), "route:update-requested", string(update.Reason), data)
	})
	f.publishAsync(ctx, EventRouteUpdateRequested, data)
}

func (f *Fanout) push(room, event, status string, payload any) {
	f.notifier.Push(room, event, ports.RoomMessage{
		Status:    status,
		Timestamp: f.now(),
		Payload:   payload,
	})
}

func (f *Fanout) publishAsync(ctx context.Context, eventType string, data any) {
	// Detach from the caller's cancellation: the lifecycle result must
	// not wait on, or be failed by, event publication.
	ctx = context.WithoutCancel(ctx)

	f.dispatch(func() {
		event := ports.Event{
			EventID:   f.newID(),
			EventType: eventType,
			Timestamp: f.now(),
			Source:    f.source,
			Version:   eventSchemaVersion,
			Data:      data,
		}

		if err := f.publisher.Publish(ctx, f.topic, event); err != nil {
			f.logger.Error("event publish failed",
				"event_type", eventType,
				"topic", f.topic,
				"error", err,
			)
		}
	})
}

// RequestRoom names the realtime room for one optimization request.
func RequestRoom(requestID string) string { return "request:" + requestID }

// RouteRoom names the realtime room for one optimized route.
func RouteRoom(routeID string) string { return "route:" + routeID }
