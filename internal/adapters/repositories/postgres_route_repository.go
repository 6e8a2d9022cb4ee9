package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"route-optimizer-service/internal/apperr"
	"route-optimizer-service/internal/domain"
)

// Postgres-backed implementation of the RouteRepository port.
type PostgresRouteRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRouteRepository(pool *pgxpool.Pool) *PostgresRouteRepository {
	return &PostgresRouteRepository{pool: pool}
}

func (r *PostgresRouteRepository) Create(ctx context.Context, route *domain.OptimizedRoute) error {
	waypoints, err := json.Marshal(route.Waypoints)
	if err != nil {
		return fmt.Errorf("create route: marshal waypoints: %w", err)
	}
	metrics, err := json.Marshal(route.Metrics)
	if err != nil {
		return fmt.Errorf("create route: marshal metrics: %w", err)
	}

	query := `
	INSERT INTO optimized_routes
		(id, request_id, vehicle_id, total_distance_meters, total_duration_seconds,
		 waypoints, metrics, encoded_path, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = r.pool.Exec(ctx, query,
		route.ID, route.RequestID, route.VehicleID,
		route.TotalDistanceMeters, route.TotalDurationSeconds,
		waypoints, metrics, route.EncodedPath, route.CreatedAt,
	)
	if err != nil {
		return apperr.Persistence("create route", err)
	}

	return nil
}

func (r *PostgresRouteRepository) GetByRequestID(ctx context.Context, requestID string) (*domain.OptimizedRoute, error) {
	query := selectRouteQuery + ` WHERE request_id = $1;`
	route, err := scanRoute(r.pool.QueryRow(ctx, query, requestID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("route for request " + requestID)
	}
	if err != nil {
		return nil, apperr.Persistence("get route by request", err)
	}

	return route, nil
}

func (r *PostgresRouteRepository) GetByIDAndVehicle(ctx context.Context, routeID, vehicleID string) (*domain.OptimizedRoute, error) {
	query := selectRouteQuery + ` WHERE id = $1 AND vehicle_id = $2;`
	route, err := scanRoute(r.pool.QueryRow(ctx, query, routeID, vehicleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("route " + routeID + " for vehicle " + vehicleID)
	}
	if err != nil {
		return nil, apperr.Persistence("get route by id and vehicle", err)
	}

	return route, nil
}

func (r *PostgresRouteRepository) ListByVehicle(ctx context.Context, vehicleID string, limit int) ([]*domain.OptimizedRoute, error) {
	query := selectRouteQuery + `
	WHERE vehicle_id = $1
	ORDER BY created_at DESC
	LIMIT $2;
	`
	rows, err := r.pool.Query(ctx, query, vehicleID, limit)
	if err != nil {
		return nil, apperr.Persistence("list routes by vehicle", err)
	}
	defer rows.Close()

	routes := make([]*domain.OptimizedRoute, 0, limit)
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, apperr.Persistence("list routes: scan row", err)
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list routes: row iteration", err)
	}

	return routes, nil
}

func (r *PostgresRouteRepository) AppendUpdate(ctx context.Context, update *domain.RouteUpdate) error {
	waypoints, err := json.Marshal(update.NewWaypoints)
	if err != nil {
		return fmt.Errorf("append route update: marshal waypoints: %w", err)
	}

	query := `
	INSERT INTO route_updates (id, route_id, vehicle_id, reason, new_waypoints, created_at)
	VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err = r.pool.Exec(ctx, query,
		update.ID, update.RouteID, update.VehicleID,
		string(update.Reason), waypoints, update.CreatedAt,
	)
	if err != nil {
		return apperr.Persistence("append route update", err)
	}

	return nil
}

func (r *PostgresRouteRepository) ListUpdates(ctx context.Context, routeID string) ([]*domain.RouteUpdate, error) {
	query := `
	SELECT id, route_id, vehicle_id, reason, new_waypoints, created_at
	FROM route_updates
	WHERE route_id = $1
	ORDER BY created_at DESC;
	`
	rows, err := r.pool.Query(ctx, query, routeID)
	if err != nil {
		return nil, apperr.Persistence("list route updates", err)
	}
	defer rows.Close()

	var updates []*domain.RouteUpdate
	for rows.Next() {
		var (
			update    domain.RouteUpdate
			reason    string
			waypoints []byte
		)
		if err := rows.Scan(&update.ID, &update.RouteID, &update.VehicleID,
			&reason, &waypoints, &update.CreatedAt); err != nil {
			return nil, apperr.Persistence("list route updates: scan row", err)
		}
		if err := json.Unmarshal(waypoints, &update.NewWaypoints); err != nil {
			return nil, apperr.Persistence("list route updates: unmarshal waypoints", err)
		}
		update.Reason = domain.UpdateReason(reason)
		updates = append(updates, &update)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list route updates: row iteration", err)
	}

	return updates, nil
}

const selectRouteQuery = `
	SELECT id, request_id, vehicle_id, total_distance_meters, total_duration_seconds,
		waypoints, metrics, encoded_path, created_at
	FROM optimized_routes`

func scanRoute(row pgx.Row) (*domain.OptimizedRoute, error) {
	var (
		route     domain.OptimizedRoute
		waypoints []byte
		metrics   []byte
	)

	err := row.Scan(&route.ID, &route.RequestID, &route.VehicleID,
		&route.TotalDistanceMeters, &route.TotalDurationSeconds,
		&waypoints, &metrics, &route.EncodedPath, &route.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(waypoints, &route.Waypoints); err != nil {
		return nil, fmt.Errorf("unmarshal waypoints: %w", err)
	}
	if err := json.Unmarshal(metrics, &route.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics: %w", err)
	}

	return &route, nil
}
