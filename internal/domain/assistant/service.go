package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yanqian/tapmon/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/tapmon/pkg/errors"
	"github.com/yanqian/tapmon/pkg/metrics"
	"github.com/yanqian/tapmon/pkg/util"
)

// Service answers health questions with conversation memory.
type Service interface {
	Chat(ctx context.Context, userID int64, req ChatRequest) (ChatResponse, error)
	ChatStream(ctx context.Context, userID int64, req ChatRequest) (<-chan StreamEvent, error)
	Conversation(ctx context.Context, userID int64, id string) (ConversationView, error)
}

type service struct {
	cfg     Config
	client  ChatClient
	store   ConversationStore
	counter TokenCounter
	vitals  VitalsSource
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires the assistant. vitals may be nil to skip reading context.
func NewService(cfg Config, client ChatClient, store ConversationStore, counter TokenCounter, vitals VitalsSource, logger *slog.Logger) Service {
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	return &service{
		cfg:     cfg,
		client:  client,
		store:   store,
		counter: counter,
		vitals:  vitals,
		logger:  logger.With("component", "assistant.service"),
		now:     util.NowUTC,
	}
}

// turn is a prepared chat exchange.
type turn struct {
	id       uuid.UUID
	user     Message
	messages []chatgpt.Message
}

func (s *service) Chat(ctx context.Context, userID int64, req ChatRequest) (ChatResponse, error) {
	t, err := s.prepare(ctx, userID, req)
	if err != nil {
		return ChatResponse{}, err
	}

	resp, err := s.client.CreateChatCompletion(ctx, s.completionRequest(t.messages))
	if err != nil {
		return ChatResponse{}, apperrors.Wrap(apperrors.CodeLLM, "assistant request failed", err)
	}
	if len(resp.Choices) == 0 {
		return ChatResponse{}, apperrors.Wrap(apperrors.CodeLLM, "assistant returned no choices", nil)
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return ChatResponse{}, apperrors.Wrap(apperrors.CodeLLM, "assistant returned an empty reply", nil)
	}

	s.persist(ctx, t, userID, reply)
	usage := toUsage(resp.Usage)
	s.logger.Info("assistant reply generated",
		"user_id", userID,
		"conversation_id", t.id,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
	)
	return ChatResponse{ConversationID: t.id, Reply: reply, Usage: usage.Ptr()}, nil
}

func (s *service) ChatStream(ctx context.Context, userID int64, req ChatRequest) (<-chan StreamEvent, error) {
	t, err := s.prepare(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	stream, err := s.client.CreateChatCompletionStream(ctx, s.completionRequest(t.messages))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeLLM, "assistant stream request failed", err)
	}

	out := make(chan StreamEvent)
	go func() {
		defer close(out)
		defer stream.Close()

		var (
			builder strings.Builder
			usage   metrics.TokenUsage
		)
		for {
			chunk, recvErr := stream.Recv()
			if recvErr != nil {
				if errors.Is(recvErr, io.EOF) {
					break
				}
				s.logger.Error("assistant stream recv failed", "error", recvErr, "conversation_id", t.id)
				send(ctx, out, StreamEvent{ConversationID: t.id, Error: "assistant stream interrupted"})
				return
			}
			if chunk.Usage != nil {
				usage = toUsage(*chunk.Usage)
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				builder.WriteString(choice.Delta.Content)
				if !send(ctx, out, StreamEvent{ConversationID: t.id, Delta: choice.Delta.Content}) {
					return
				}
			}
		}

		reply := strings.TrimSpace(builder.String())
		if reply == "" {
			send(ctx, out, StreamEvent{ConversationID: t.id, Error: "assistant returned an empty reply"})
			return
		}
		s.persist(context.WithoutCancel(ctx), t, userID, reply)
		send(ctx, out, StreamEvent{ConversationID: t.id, Done: true, Usage: usage.Ptr()})
	}()
	return out, nil
}

func (s *service) Conversation(ctx context.Context, userID int64, rawID string) (ConversationView, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return ConversationView{}, apperrors.Wrap(apperrors.CodeInvalidInput, "conversation id must be a UUID", err)
	}
	if err := s.authorize(ctx, userID, id); err != nil {
		return ConversationView{}, err
	}
	msgs, err := s.store.Recent(ctx, id, 0)
	if err != nil {
		return ConversationView{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load conversation", err)
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return ConversationView{ID: id, Messages: msgs}, nil
}

func (s *service) prepare(ctx context.Context, userID int64, req ChatRequest) (turn, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return turn{}, apperrors.Wrap(apperrors.CodeInvalidInput, "message cannot be empty", nil)
	}
	if s.cfg.MaxMessageLength > 0 && utf8.RuneCountInString(text) > s.cfg.MaxMessageLength {
		return turn{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("message cannot exceed %d characters", s.cfg.MaxMessageLength), nil)
	}

	var (
		id      uuid.UUID
		history []Message
		err     error
	)
	if strings.TrimSpace(req.ConversationID) == "" {
		id = uuid.New()
	} else {
		id, err = uuid.Parse(strings.TrimSpace(req.ConversationID))
		if err != nil {
			return turn{}, apperrors.Wrap(apperrors.CodeInvalidInput, "conversationId must be a UUID", err)
		}
		if err := s.authorize(ctx, userID, id); err != nil {
			return turn{}, err
		}
		history, err = s.store.Recent(ctx, id, s.cfg.HistoryMessages)
		if err != nil {
			return turn{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load conversation", err)
		}
	}

	user := Message{Role: RoleUser, Content: text, TokenCount: s.counter.Count(text), CreatedAt: s.now()}
	messages := []chatgpt.Message{{Role: RoleSystem, Content: s.cfg.SystemPrompt}}
	if vitalsMsg := s.vitalsContext(ctx, userID); vitalsMsg != "" {
		messages = append(messages, chatgpt.Message{Role: RoleSystem, Content: vitalsMsg})
	}
	for _, m := range s.withinBudget(history) {
		messages = append(messages, chatgpt.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, chatgpt.Message{Role: RoleUser, Content: text})
	return turn{id: id, user: user, messages: messages}, nil
}

func (s *service) authorize(ctx context.Context, userID int64, id uuid.UUID) error {
	owner, found, err := s.store.Owner(ctx, id)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to load conversation", err)
	}
	if !found || owner != userID {
		return apperrors.Wrap(apperrors.CodeNotFound, "conversation not found", nil)
	}
	return nil
}

// withinBudget keeps the newest turns whose token counts fit the budget.
func (s *service) withinBudget(history []Message) []Message {
	if s.cfg.HistoryTokenBudget <= 0 {
		return history
	}
	total := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		tokens := history[i].TokenCount
		if tokens <= 0 {
			tokens = s.counter.Count(history[i].Content)
		}
		if total+tokens > s.cfg.HistoryTokenBudget {
			break
		}
		total += tokens
		start = i
	}
	return history[start:]
}

func (s *service) vitalsContext(ctx context.Context, userID int64) string {
	if s.vitals == nil || s.cfg.VitalsContext <= 0 {
		return ""
	}
	readings, err := s.vitals.Recent(ctx, userID, s.cfg.VitalsContext)
	if err != nil {
		s.logger.Warn("vitals context unavailable", "error", err, "user_id", userID)
		return ""
	}
	if len(readings) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Latest vitals from the user's device, oldest first:\n")
	for _, r := range readings {
		fmt.Fprintf(&b, "- %s: temperature %.1f°C, heart rate %.0f bpm", r.Date.UTC().Format(time.RFC3339), r.Temperature, r.HeartRate)
		for _, a := range r.Alerts {
			fmt.Fprintf(&b, " [%s]", a.Message)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *service) completionRequest(messages []chatgpt.Message) chatgpt.ChatCompletionRequest {
	return chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	}
}

// persist stores both turns; failures are only logged.
func (s *service) persist(ctx context.Context, t turn, userID int64, reply string) {
	assistantMsg := Message{
		Role:       RoleAssistant,
		Content:    reply,
		TokenCount: s.counter.Count(reply),
		CreatedAt:  s.now(),
	}
	if err := s.store.Append(ctx, t.id, userID, t.user, assistantMsg); err != nil {
		s.logger.Error("failed to store conversation turn", "error", err, "conversation_id", t.id)
	}
}

func send(ctx context.Context, out chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func toUsage(u chatgpt.Usage) metrics.TokenUsage {
	return metrics.TokenUsage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}
