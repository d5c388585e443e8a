package vitals

import "context"

// Repository persists vitals readings.
type Repository interface {
	Insert(ctx context.Context, reading Reading) (Reading, error)
	// ListRecent returns up to limit of the newest readings, oldest first.
	// limit <= 0 returns everything.
	ListRecent(ctx context.Context, userID int64, limit int) ([]Reading, error)
}
