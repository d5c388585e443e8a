package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/tapmon/internal/domain/assistant"
)

func TestMemoryStoreAppendAndRecent(t *testing.T) {
	store := NewMemoryStore(3, 0)
	ctx := context.Background()
	id := uuid.New()

	_, found, err := store.Owner(ctx, id)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Append(ctx, id, 7, msg("a"), msg("b")))
	require.NoError(t, store.Append(ctx, id, 9, msg("c"), msg("d")))

	owner, found, err := store.Owner(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(7), owner)

	all, err := store.Recent(ctx, id, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "c", "d"}, contents(all))
	require.False(t, all[0].CreatedAt.IsZero())

	last, err := store.Recent(ctx, id, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "d"}, contents(last))
}

func TestMemoryStoreSweepsUnreadConversations(t *testing.T) {
	store := NewMemoryStore(0, time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	stale, kept := uuid.New(), uuid.New()
	require.NoError(t, store.Append(ctx, stale, 1, msg("old")))
	now = now.Add(30 * time.Minute)
	require.NoError(t, store.Append(ctx, kept, 2, msg("recent")))
	require.Len(t, store.conversations, 2)

	now = now.Add(45 * time.Minute)
	require.NoError(t, store.Append(ctx, uuid.New(), 3, msg("new")))
	require.Len(t, store.conversations, 2)
	require.NotContains(t, store.conversations, stale)
	require.Contains(t, store.conversations, kept)
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore(0, time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, store.Append(ctx, id, 1, msg("hello")))
	now = now.Add(59 * time.Minute)
	_, found, _ := store.Owner(ctx, id)
	require.True(t, found)

	now = now.Add(2 * time.Minute)
	_, found, _ = store.Owner(ctx, id)
	require.False(t, found)
	msgs, err := store.Recent(ctx, id, 0)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func msg(content string) assistant.Message {
	return assistant.Message{Role: assistant.RoleUser, Content: content}
}

func contents(msgs []assistant.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Content)
	}
	return out
}
