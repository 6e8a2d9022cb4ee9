package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"route-optimizer-service/internal/apperr"
	"route-optimizer-service/internal/domain"
)

// Postgres-backed implementation of the TrafficRepository port.
type PostgresTrafficRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTrafficRepository(pool *pgxpool.Pool) *PostgresTrafficRepository {
	return &PostgresTrafficRepository{pool: pool}
}

func (r *PostgresTrafficRepository) Create(ctx context.Context, cond *domain.TrafficCondition) error {
	query := `
	INSERT INTO traffic_conditions
		(id, latitude, longitude, condition, severity, description, source, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.pool.Exec(ctx, query,
		cond.ID, cond.Latitude, cond.Longitude,
		string(cond.Condition), string(cond.Severity),
		cond.Description, cond.Source, cond.CreatedAt, cond.UpdatedAt,
	)
	if err != nil {
		return apperr.Persistence("create traffic condition", err)
	}

	return nil
}

func (r *PostgresTrafficRepository) ListRecent(ctx context.Context, limit int) ([]*domain.TrafficCondition, error) {
	query := `
	SELECT id, latitude, longitude, condition, severity, description, source,
		created_at, updated_at
	FROM traffic_conditions
	ORDER BY created_at DESC
	LIMIT $1;
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, apperr.Persistence("list traffic conditions", err)
	}
	defer rows.Close()

	conditions := make([]*domain.TrafficCondition, 0, limit)
	for rows.Next() {
		var (
			cond      domain.TrafficCondition
			condition string
			severity  string
		)
		if err := rows.Scan(&cond.ID, &cond.Latitude, &cond.Longitude,
			&condition, &severity, &cond.Description, &cond.Source,
			&cond.CreatedAt, &cond.UpdatedAt); err != nil {
			return nil, apperr.Persistence("list traffic conditions: scan row", err)
		}
		cond.Condition = domain.TrafficLevel(condition)
		cond.Severity = domain.TrafficSeverity(severity)
		conditions = append(conditions, &cond)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list traffic conditions: row iteration", err)
	}

	return conditions, nil
}
