package assistant

import (
	"context"

	"github.com/google/uuid"

	"github.com/yanqian/tapmon/internal/domain/vitals"
	"github.com/yanqian/tapmon/internal/infra/llm/chatgpt"
)

// ChatClient is the subset of the chat completions client the assistant uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.Stream, error)
}

// ConversationStore keeps conversation turns.
type ConversationStore interface {
	// Owner reports the user that started the conversation.
	Owner(ctx context.Context, id uuid.UUID) (int64, bool, error)
	// Append adds turns, claiming the conversation for userID if it is new.
	Append(ctx context.Context, id uuid.UUID, userID int64, msgs ...Message) error
	// Recent returns up to n of the newest turns in chronological order.
	// n <= 0 returns all stored turns.
	Recent(ctx context.Context, id uuid.UUID, n int) ([]Message, error)
}

// TokenCounter estimates prompt tokens for a piece of text.
type TokenCounter interface {
	Count(text string) int
}

// VitalsSource supplies recent readings for prompt context.
type VitalsSource interface {
	Recent(ctx context.Context, userID int64, n int) ([]vitals.ReadingView, error)
}
