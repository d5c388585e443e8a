package cyclerepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/tapmon/internal/domain/cycle"
	"github.com/yanqian/tapmon/pkg/util"
)

// MemoryRepository keeps cycle-start dates in process memory for tests/dev.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[int64]map[string]cycle.Entry
	seq     int64
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[int64]map[string]cycle.Entry)}
}

// Add stores the day once per user.
func (r *MemoryRepository) Add(_ context.Context, userID int64, day time.Time) (cycle.Entry, bool, error) {
	day = util.DateOnly(day)
	key := util.FormatDate(day)

	r.mu.Lock()
	defer r.mu.Unlock()
	byDay, ok := r.entries[userID]
	if !ok {
		byDay = make(map[string]cycle.Entry)
		r.entries[userID] = byDay
	}
	if existing, ok := byDay[key]; ok {
		return existing, false, nil
	}
	r.seq++
	entry := cycle.Entry{
		ID:        r.seq,
		UserID:    userID,
		StartDate: day,
		CreatedAt: time.Now().UTC(),
	}
	byDay[key] = entry
	return entry, true, nil
}

// List returns entries ascending by date.
func (r *MemoryRepository) List(_ context.Context, userID int64) ([]cycle.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]cycle.Entry, 0, len(r.entries[userID]))
	for _, entry := range r.entries[userID] {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out, nil
}

// Delete removes a stored day.
func (r *MemoryRepository) Delete(_ context.Context, userID int64, day time.Time) error {
	key := util.FormatDate(util.DateOnly(day))
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[userID][key]; !ok {
		return cycle.ErrEntryNotFound
	}
	delete(r.entries[userID], key)
	return nil
}

var _ cycle.Repository = (*MemoryRepository)(nil)
