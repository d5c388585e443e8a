package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/tapmon/internal/domain/assistant"
)

// ValkeyStore keeps each conversation as a capped list with an owner key.
type ValkeyStore struct {
	client      valkey.Client
	prefix      string
	maxMessages int
	ttl         time.Duration
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string, maxMessages int, ttl time.Duration) *ValkeyStore {
	if prefix == "" {
		prefix = "tapmon:conv"
	}
	return &ValkeyStore{client: client, prefix: prefix, maxMessages: maxMessages, ttl: ttl}
}

// Owner implements assistant.ConversationStore.
func (s *ValkeyStore) Owner(ctx context.Context, id uuid.UUID) (int64, bool, error) {
	raw, err := s.client.Do(ctx, s.client.B().Get().Key(s.ownerKey(id)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	owner, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("conversation %s has malformed owner %q: %w", id, raw, err)
	}
	return owner, true, nil
}

// Append implements assistant.ConversationStore.
func (s *ValkeyStore) Append(ctx context.Context, id uuid.UUID, userID int64, msgs ...assistant.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	payloads := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now().UTC()
		}
		encoded, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		payloads = append(payloads, string(encoded))
	}

	ownerKey := s.ownerKey(id)
	listKey := s.messagesKey(id)
	cmds := valkey.Commands{
		s.client.B().Set().Key(ownerKey).Value(strconv.FormatInt(userID, 10)).Nx().Build(),
		s.client.B().Rpush().Key(listKey).Element(payloads...).Build(),
	}
	if s.maxMessages > 0 {
		cmds = append(cmds, s.client.B().Ltrim().Key(listKey).Start(int64(-s.maxMessages)).Stop(-1).Build())
	}
	if s.ttl > 0 {
		ttl := s.ttl
		if ttl < time.Second {
			ttl = time.Second
		}
		cmds = append(cmds,
			s.client.B().Expire().Key(ownerKey).Seconds(int64(ttl/time.Second)).Build(),
			s.client.B().Expire().Key(listKey).Seconds(int64(ttl/time.Second)).Build(),
		)
	}
	for i, resp := range s.client.DoMulti(ctx, cmds...) {
		// SET NX replies nil when the owner already exists.
		if err := resp.Error(); err != nil && !(i == 0 && valkey.IsValkeyNil(err)) {
			return err
		}
	}
	return nil
}

// Recent implements assistant.ConversationStore.
func (s *ValkeyStore) Recent(ctx context.Context, id uuid.UUID, n int) ([]assistant.Message, error) {
	start := int64(0)
	if n > 0 {
		start = int64(-n)
	}
	raw, err := s.client.Do(ctx, s.client.B().Lrange().Key(s.messagesKey(id)).Start(start).Stop(-1).Build()).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]assistant.Message, 0, len(raw))
	for _, item := range raw {
		var msg assistant.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("decode conversation message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s *ValkeyStore) ownerKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:%s:owner", s.prefix, id)
}

func (s *ValkeyStore) messagesKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:%s:messages", s.prefix, id)
}

var _ assistant.ConversationStore = (*ValkeyStore)(nil)
