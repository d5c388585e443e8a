package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/tapmon/internal/domain/assistant"
)

type memoryConversation struct {
	owner     int64
	messages  []assistant.Message
	expiresAt time.Time
}

// MemoryStore keeps conversations in process memory.
type MemoryStore struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*memoryConversation
	maxMessages   int
	ttl           time.Duration
	lastSweep     time.Time
	now           func() time.Time
}

// NewMemoryStore constructs a store keeping at most maxMessages turns per
// conversation for ttl after the last write. Zero values disable the limits.
func NewMemoryStore(maxMessages int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		conversations: make(map[uuid.UUID]*memoryConversation),
		maxMessages:   maxMessages,
		ttl:           ttl,
		now:           time.Now,
	}
}

// Owner implements assistant.ConversationStore.
func (s *MemoryStore) Owner(_ context.Context, id uuid.UUID) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.live(id)
	if !ok {
		return 0, false, nil
	}
	return conv.owner, true, nil
}

// Append implements assistant.ConversationStore.
func (s *MemoryStore) Append(_ context.Context, id uuid.UUID, userID int64, msgs ...assistant.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maybeSweepLocked()
	conv, ok := s.live(id)
	if !ok {
		conv = &memoryConversation{owner: userID}
		s.conversations[id] = conv
	}
	for _, msg := range msgs {
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = s.now().UTC()
		}
		conv.messages = append(conv.messages, msg)
	}
	if s.maxMessages > 0 && len(conv.messages) > s.maxMessages {
		conv.messages = append([]assistant.Message(nil), conv.messages[len(conv.messages)-s.maxMessages:]...)
	}
	if s.ttl > 0 {
		conv.expiresAt = s.now().Add(s.ttl)
	}
	return nil
}

// Recent implements assistant.ConversationStore.
func (s *MemoryStore) Recent(_ context.Context, id uuid.UUID, n int) ([]assistant.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.live(id)
	if !ok {
		return nil, nil
	}
	msgs := conv.messages
	if n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return append([]assistant.Message(nil), msgs...), nil
}

// live returns the conversation, evicting it when expired. Callers hold mu.
func (s *MemoryStore) live(id uuid.UUID) (*memoryConversation, bool) {
	conv, ok := s.conversations[id]
	if !ok {
		return nil, false
	}
	if !conv.expiresAt.IsZero() && !s.now().Before(conv.expiresAt) {
		delete(s.conversations, id)
		return nil, false
	}
	return conv, true
}

// maybeSweepLocked drops expired conversations at most once per ttl, so
// conversations nobody reads again are still released. Callers hold mu.
func (s *MemoryStore) maybeSweepLocked() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	if now.Sub(s.lastSweep) < s.ttl {
		return
	}
	for id, conv := range s.conversations {
		if !now.Before(conv.expiresAt) {
			delete(s.conversations, id)
		}
	}
	s.lastSweep = now
}

var _ assistant.ConversationStore = (*MemoryStore)(nil)
