package userrepo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/tapmon/internal/domain/auth"
)

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	user, err := repo.Create(ctx, "a@example.com", "Ada", "hash")
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)

	_, err = repo.Create(ctx, "a@example.com", "Other", "hash")
	require.True(t, errors.Is(err, auth.ErrEmailExists))

	byEmail, found, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, user, byEmail)

	_, found, err = repo.GetByID(ctx, 42)
	require.NoError(t, err)
	require.False(t, found)
}
