package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitSchema creates the tables and indexes this service needs. Safe to
// run on every startup.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New("init schema: pool is nil")
	}

	createRequestsQuery := `
	CREATE TABLE IF NOT EXISTS optimization_requests (
		id UUID PRIMARY KEY,
		vehicle_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		stops JSONB NOT NULL,
		preferences JSONB NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS optimized_routes (
		id UUID PRIMARY KEY,
		request_id UUID NOT NULL UNIQUE REFERENCES optimization_requests(id),
		vehicle_id TEXT NOT NULL,
		total_distance_meters DOUBLE PRECISION NOT NULL,
		total_duration_seconds INTEGER NOT NULL,
		waypoints JSONB NOT NULL,
		metrics JSONB NOT NULL,
		encoded_path TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);
	`

	createUpdatesQuery := `
	CREATE TABLE IF NOT EXISTS route_updates (
		id UUID PRIMARY KEY,
		route_id UUID NOT NULL REFERENCES optimized_routes(id),
		vehicle_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		new_waypoints JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	`

	createTrafficQuery := `
	CREATE TABLE IF NOT EXISTS traffic_conditions (
		id UUID PRIMARY KEY,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		condition TEXT NOT NULL,
		severity TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`

	createIndexesQuery := `
	CREATE INDEX IF NOT EXISTS idx_requests_user_created
		ON optimization_requests(user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_routes_vehicle_created
		ON optimized_routes(vehicle_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_route_updates_route
		ON route_updates(route_id);
	`

	statements := []string{
		createRequestsQuery,
		createRoutesQuery,
		createUpdatesQuery,
		createTrafficQuery,
		createIndexesQuery,
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
