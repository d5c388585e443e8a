package vitalsrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/tapmon/internal/domain/vitals"
)

// MemoryRepository keeps readings in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	readings map[int64][]vitals.Reading
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{readings: make(map[int64][]vitals.Reading)}
}

// Insert stores the reading, keeping each user's slice ordered by time.
func (r *MemoryRepository) Insert(_ context.Context, reading vitals.Reading) (vitals.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	reading.ID = r.nextID
	list := append(r.readings[reading.UserID], reading)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].RecordedAt.Before(list[j].RecordedAt)
	})
	r.readings[reading.UserID] = list
	return reading, nil
}

// ListRecent returns the newest readings in ascending order.
func (r *MemoryRepository) ListRecent(_ context.Context, userID int64, limit int) ([]vitals.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.readings[userID]
	if limit > 0 && len(list) > limit {
		list = list[len(list)-limit:]
	}
	out := make([]vitals.Reading, len(list))
	copy(out, list)
	return out, nil
}

var _ vitals.Repository = (*MemoryRepository)(nil)
