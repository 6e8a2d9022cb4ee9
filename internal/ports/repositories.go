package ports

import (
	"context"
	"time"

	"route-optimizer-service/internal/domain"
)

// Port: persistence boundary for optimization requests. Implementations
// must support inserts with caller-supplied ids and atomic single-row
// status updates, and surface unknown ids as apperr.KindNotFound.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.OptimizationRequest) error
	GetByID(ctx context.Context, id string) (*domain.OptimizationRequest, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status, completedAt *time.Time) error
	// Most-recent-first, at most limit rows.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.OptimizationRequest, error)
}

// Port: persistence boundary for optimized routes and their append-only
// update log.
type RouteRepository interface {
	Create(ctx context.Context, route *domain.OptimizedRoute) error
	GetByRequestID(ctx context.Context, requestID string) (*domain.OptimizedRoute, error)
	GetByIDAndVehicle(ctx context.Context, routeID, vehicleID string) (*domain.OptimizedRoute, error)
	// Most-recent-first, at most limit rows.
	ListByVehicle(ctx context.Context, vehicleID string, limit int) ([]*domain.OptimizedRoute, error)
	AppendUpdate(ctx context.Context, update *domain.RouteUpdate) error
	ListUpdates(ctx context.Context, routeID string) ([]*domain.RouteUpdate, error)
}

// Port: persistence boundary for reported traffic conditions.
type TrafficRepository interface {
	Create(ctx context.Context, cond *domain.TrafficCondition) error
	ListRecent(ctx context.Context, limit int) ([]*domain.TrafficCondition, error)
}
