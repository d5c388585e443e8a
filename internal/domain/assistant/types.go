package assistant

import (
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/tapmon/pkg/metrics"
)

// Roles used in stored turns and chat requests.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultSystemPrompt frames the assistant as a menstrual health helper.
const DefaultSystemPrompt = `You are an intelligent health assistant specializing in menstrual health. Your role is to provide users with accurate health insights, notify them about unusual drops in heart rate and temperature even if not detected on the IoT device, and offer information on menstruation and related precautions.

You should:
- Be friendly, informative, and supportive.
- Provide scientifically accurate health and wellness information.
- Offer real-time monitoring insights when data is available.
- Detect and notify users of unusual heart rate or temperature drops even if the IoT device does not detect them.
- Help users understand and interpret their temperature and heart rate trends.
- Provide guidance on menstrual health, including cycle tracking, symptoms, and hygiene precautions.
- Suggest preventive measures for abnormal health readings.
- Explain IoT functionality in simple terms for non-technical users.
- Avoid giving medical diagnoses but recommend consulting a doctor for serious concerns.

If a user asks unrelated or inappropriate questions, politely steer the conversation back to health, IoT monitoring, or menstruation-related topics.`

// Config controls prompting and history budgets.
type Config struct {
	Model              string
	Temperature        float32
	MaxTokens          int
	SystemPrompt       string
	HistoryMessages    int
	HistoryTokenBudget int
	VitalsContext      int
	MaxMessageLength   int
}

// Message is one stored conversation turn.
type Message struct {
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	TokenCount int       `json:"tokenCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ChatRequest is a user message, optionally continuing a conversation.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

// ChatResponse carries the assistant reply.
type ChatResponse struct {
	ConversationID uuid.UUID           `json:"conversationId"`
	Reply          string              `json:"reply"`
	Usage          *metrics.TokenUsage `json:"usage,omitempty"`
}

// StreamEvent is emitted while a reply streams. The last event has Done set,
// or Error when the upstream stream failed.
type StreamEvent struct {
	ConversationID uuid.UUID           `json:"conversationId"`
	Delta          string              `json:"delta,omitempty"`
	Done           bool                `json:"done,omitempty"`
	Error          string              `json:"error,omitempty"`
	Usage          *metrics.TokenUsage `json:"usage,omitempty"`
}

// ConversationView lists the stored turns of a conversation.
type ConversationView struct {
	ID       uuid.UUID `json:"id"`
	Messages []Message `json:"messages"`
}
