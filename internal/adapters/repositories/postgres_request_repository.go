package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"route-optimizer-service/internal/apperr"
	"route-optimizer-service/internal/domain"
)

// Postgres-backed implementation of the RequestRepository port.
type PostgresRequestRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRequestRepository(pool *pgxpool.Pool) *PostgresRequestRepository {
	return &PostgresRequestRepository{pool: pool}
}

func (r *PostgresRequestRepository) Create(ctx context.Context, req *domain.OptimizationRequest) error {
	stops, err := json.Marshal(req.Stops)
	if err != nil {
		return fmt.Errorf("create request: marshal stops: %w", err)
	}
	prefs, err := json.Marshal(req.Preferences)
	if err != nil {
		return fmt.Errorf("create request: marshal preferences: %w", err)
	}

	query := `
	INSERT INTO optimization_requests
		(id, vehicle_id, user_id, stops, preferences, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = r.pool.Exec(ctx, query,
		req.ID, req.VehicleID, req.UserID, stops, prefs,
		string(req.Status), req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return apperr.Persistence("create request", err)
	}

	return nil
}

func (r *PostgresRequestRepository) GetByID(ctx context.Context, id string) (*domain.OptimizationRequest, error) {
	query := `
	SELECT id, vehicle_id, user_id, stops, preferences, status,
		created_at, updated_at, completed_at
	FROM optimization_requests
	WHERE id = $1;
	`
	req, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("request " + id)
	}
	if err != nil {
		return nil, apperr.Persistence("get request", err)
	}

	return req, nil
}

// UpdateStatus transitions one request atomically. Terminal rows are
// never overwritten: the WHERE clause refuses to move a request that
// already reached COMPLETED or FAILED.
func (r *PostgresRequestRepository) UpdateStatus(
	ctx context.Context,
	id string,
	status domain.Status,
	completedAt *time.Time,
) error {
	query := `
	UPDATE optimization_requests
	SET status = $2, completed_at = $3, updated_at = NOW()
	WHERE id = $1 AND status NOT IN ('COMPLETED', 'FAILED');
	`
	tag, err := r.pool.Exec(ctx, query, id, string(status), completedAt)
	if err != nil {
		return apperr.Persistence("update request status", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("request " + id + " not found or already terminal")
	}

	return nil
}

func (r *PostgresRequestRepository) ListByUser(
	ctx context.Context,
	userID string,
	limit int,
) ([]*domain.OptimizationRequest, error) {
	query := `
	SELECT id, vehicle_id, user_id, stops, preferences, status,
		created_at, updated_at, completed_at
	FROM optimization_requests
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2;
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, apperr.Persistence("list requests by user", err)
	}
	defer rows.Close()

	requests := make([]*domain.OptimizationRequest, 0, limit)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, apperr.Persistence("list requests: scan row", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list requests: row iteration", err)
	}

	return requests, nil
}

func scanRequest(row pgx.Row) (*domain.OptimizationRequest, error) {
	var (
		req         domain.OptimizationRequest
		stops       []byte
		prefs       []byte
		status      string
		completedAt *time.Time
	)

	err := row.Scan(&req.ID, &req.VehicleID, &req.UserID, &stops, &prefs,
		&status, &req.CreatedAt, &req.UpdatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(stops, &req.Stops); err != nil {
		return nil, fmt.Errorf("unmarshal stops: %w", err)
	}
	if err := json.Unmarshal(prefs, &req.Preferences); err != nil {
		return nil, fmt.Errorf("unmarshal preferences: %w", err)
	}

	req.Status = domain.Status(status)
	req.CompletedAt = completedAt
	return &req, nil
}
