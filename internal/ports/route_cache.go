package ports

import "context"

// Port: cache for external provider route responses, keyed by the stop
// list and avoidance flags. A miss is (zero, false, nil).
type RouteCache interface {
	Get(ctx context.Context, key string) (RouteResult, bool, error)
	Put(ctx context.Context, key string, result RouteResult) error
}
