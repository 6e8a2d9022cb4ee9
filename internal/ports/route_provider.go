package ports

import (
	"context"

	"route-optimizer-service/internal/domain"
)

// Per-leg travel metrics between two consecutive visited stops.
type RouteLeg struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Avoidance flags forwarded to the external provider.
type AvoidFlags struct {
	Tolls    bool
	Highways bool
}

// Result of one external routing call.
type RouteResult struct {
	// Legs between consecutive stops in visit order; len(stops)-1 entries.
	Legs []RouteLeg
	// Visit order as indexes into the submitted stop list. Nil means the
	// provider kept the input order.
	Order       []int
	EncodedPath string
}

// Contract for the external routing provider. The first stop is the
// origin and the last the destination; interior stops are waypoints the
// provider may reorder.
type RouteProvider interface {
	Route(ctx context.Context, stops []domain.Stop, avoid AvoidFlags) (RouteResult, error)
}
