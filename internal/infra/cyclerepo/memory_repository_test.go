package cyclerepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/tapmon/internal/domain/cycle"
)

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first, created, err := repo.Add(ctx, 1, time.Date(2024, 2, 1, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := repo.Add(ctx, 1, time.Date(2024, 2, 1, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, again.ID)

	_, _, err = repo.Add(ctx, 1, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	entries, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), entries[0].StartDate)

	others, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Empty(t, others)

	require.NoError(t, repo.Delete(ctx, 1, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))
	err = repo.Delete(ctx, 1, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	require.True(t, errors.Is(err, cycle.ErrEntryNotFound))
}
