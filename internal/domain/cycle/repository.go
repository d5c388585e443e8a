package cycle

import (
	"context"
	"time"
)

// Repository persists cycle-start dates per user.
type Repository interface {
	// Add stores day for the user. Storing an existing day returns the
	// existing entry with created=false.
	Add(ctx context.Context, userID int64, day time.Time) (entry Entry, created bool, err error)
	// List returns the user's entries ordered by StartDate ascending.
	List(ctx context.Context, userID int64) ([]Entry, error)
	// Delete removes day, returning ErrEntryNotFound when absent.
	Delete(ctx context.Context, userID int64, day time.Time) error
}
