package vitalsrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/tapmon/internal/domain/vitals"
)

func TestMemoryRepositoryOrdersByRecordedAt(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		_, err := repo.Insert(ctx, vitals.Reading{UserID: 1, RecordedAt: base.Add(offset), Temperature: 36.5, HeartRate: 70})
		require.NoError(t, err)
	}
	_, err := repo.Insert(ctx, vitals.Reading{UserID: 2, RecordedAt: base})
	require.NoError(t, err)

	all, err := repo.ListRecent(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, base, all[0].RecordedAt)
	require.Equal(t, base.Add(2*time.Hour), all[2].RecordedAt)

	latest, err := repo.ListRecent(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	require.Equal(t, base.Add(2*time.Hour), latest[0].RecordedAt)

	latest[0].Temperature = 0
	again, err := repo.ListRecent(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 36.5, again[0].Temperature)
}
