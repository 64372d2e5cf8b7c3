package history

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL observation repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const observationColumns = `
	bottleneck_id, ts, current_speed, free_flow_speed, delay_seconds,
	hour, day_of_week, is_rush_hour, is_weekend, is_hotspot, congestion_ratio
`

// Recent retrieves up to limit observations for a bottleneck, newest first.
func (r *PostgresRepository) Recent(ctx context.Context, bottleneckID string, limit int) ([]Observation, error) {
	query := `
		SELECT ` + observationColumns + `
		FROM observations
		WHERE bottleneck_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, bottleneckID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanObservations(rows)
}

// ByHourOfDay retrieves all observations for a bottleneck at the given hour.
func (r *PostgresRepository) ByHourOfDay(ctx context.Context, bottleneckID string, hour int) ([]Observation, error) {
	query := `
		SELECT ` + observationColumns + `
		FROM observations
		WHERE bottleneck_id = $1 AND hour = $2
		ORDER BY ts DESC
	`

	rows, err := r.pool.Query(ctx, query, bottleneckID, hour)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanObservations(rows)
}

// Insert appends a new observation.
func (r *PostgresRepository) Insert(ctx context.Context, obs Observation) error {
	query := `
		INSERT INTO observations (` + observationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		obs.BottleneckID,
		obs.Timestamp,
		obs.CurrentSpeed,
		obs.FreeFlowSpeed,
		obs.DelaySeconds,
		obs.Hour,
		obs.DayOfWeek,
		obs.IsRushHour,
		obs.IsWeekend,
		obs.IsHotspot,
		obs.CongestionRatio,
	)
	return err
}

// scanObservations scans all rows into observations.
func scanObservations(rows pgx.Rows) ([]Observation, error) {
	var out []Observation
	for rows.Next() {
		var obs Observation
		if err := rows.Scan(
			&obs.BottleneckID,
			&obs.Timestamp,
			&obs.CurrentSpeed,
			&obs.FreeFlowSpeed,
			&obs.DelaySeconds,
			&obs.Hour,
			&obs.DayOfWeek,
			&obs.IsRushHour,
			&obs.IsWeekend,
			&obs.IsHotspot,
			&obs.CongestionRatio,
		); err != nil {
			return nil, err
		}
		out = append(out, obs)
	}
	return out, rows.Err()
}
