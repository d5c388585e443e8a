package vitalsrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/tapmon/internal/domain/vitals"
)

// PostgresRepository stores readings in the vitals_readings table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert stores a reading.
func (r *PostgresRepository) Insert(ctx context.Context, reading vitals.Reading) (vitals.Reading, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO vitals_readings (user_id, recorded_at, temperature, heart_rate, source)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, reading.UserID, reading.RecordedAt, reading.Temperature, reading.HeartRate, reading.Source).Scan(&reading.ID)
	if err != nil {
		return vitals.Reading{}, err
	}
	return reading, nil
}

// ListRecent returns the newest readings in ascending order.
func (r *PostgresRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]vitals.Reading, error) {
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, recorded_at, temperature, heart_rate, source
		FROM (
			SELECT id, user_id, recorded_at, temperature, heart_rate, source
			FROM vitals_readings
			WHERE user_id = $1
			ORDER BY recorded_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY recorded_at ASC, id ASC
	`, userID, limitArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []vitals.Reading
	for rows.Next() {
		var reading vitals.Reading
		if err := rows.Scan(&reading.ID, &reading.UserID, &reading.RecordedAt, &reading.Temperature, &reading.HeartRate, &reading.Source); err != nil {
			return nil, err
		}
		reading.RecordedAt = reading.RecordedAt.UTC()
		out = append(out, reading)
	}
	return out, rows.Err()
}

var _ vitals.Repository = (*PostgresRepository)(nil)
