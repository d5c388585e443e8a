package cyclerepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/tapmon/internal/domain/cycle"
	"github.com/yanqian/tapmon/pkg/util"
)

// PostgresRepository stores cycle starts in the cycle_starts table, unique on
// (user_id, start_date).
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Add inserts the day unless it is already stored.
func (r *PostgresRepository) Add(ctx context.Context, userID int64, day time.Time) (cycle.Entry, bool, error) {
	day = util.DateOnly(day)
	row := r.pool.QueryRow(ctx, `
		INSERT INTO cycle_starts (user_id, start_date)
		VALUES ($1, $2)
		ON CONFLICT (user_id, start_date) DO NOTHING
		RETURNING id, user_id, start_date, created_at
	`, userID, day)
	entry, err := scanEntry(row)
	if err == nil {
		return entry, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return cycle.Entry{}, false, err
	}
	existing := r.pool.QueryRow(ctx, `
		SELECT id, user_id, start_date, created_at
		FROM cycle_starts
		WHERE user_id = $1 AND start_date = $2
	`, userID, day)
	entry, err = scanEntry(existing)
	if err != nil {
		return cycle.Entry{}, false, err
	}
	return entry, false, nil
}

// List returns the user's starts ordered by date.
func (r *PostgresRepository) List(ctx context.Context, userID int64) ([]cycle.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, start_date, created_at
		FROM cycle_starts
		WHERE user_id = $1
		ORDER BY start_date ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []cycle.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Delete removes a single start date.
func (r *PostgresRepository) Delete(ctx context.Context, userID int64, day time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM cycle_starts
		WHERE user_id = $1 AND start_date = $2
	`, userID, util.DateOnly(day))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return cycle.ErrEntryNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (cycle.Entry, error) {
	var (
		entry   cycle.Entry
		start   time.Time
		created time.Time
	)
	if err := row.Scan(&entry.ID, &entry.UserID, &start, &created); err != nil {
		return cycle.Entry{}, err
	}
	entry.StartDate = util.DateOnly(start)
	entry.CreatedAt = created.UTC()
	return entry, nil
}

var _ cycle.Repository = (*PostgresRepository)(nil)
