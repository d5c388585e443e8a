package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/tapmon/internal/domain/assistant"
	apperrors "github.com/yanqian/tapmon/pkg/errors"
)

// Chat answers one message.
func (h *Handler) Chat(c *gin.Context) {
	userID, req, ok := h.chatRequest(c)
	if !ok {
		return
	}
	resp, err := h.assistantSvc.Chat(c.Request.Context(), userID, req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChatStream answers one message as server-sent events.
func (h *Handler) ChatStream(c *gin.Context) {
	userID, req, ok := h.chatRequest(c)
	if !ok {
		return
	}
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming unsupported", nil))
		return
	}

	events, err := h.assistantSvc.ChatStream(c.Request.Context(), userID, req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Status(http.StatusOK)
	flusher.Flush()

	for ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			h.logger.Error("failed to encode stream event", "error", err)
			return
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
			h.logger.Warn("client disconnected during stream", "error", err)
			return
		}
		flusher.Flush()
	}
}

// Conversation returns the stored turns of one conversation.
func (h *Handler) Conversation(c *gin.Context) {
	if !h.assistantEnabled(c) {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	view, err := h.assistantSvc.Conversation(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) chatRequest(c *gin.Context) (int64, assistant.ChatRequest, bool) {
	var req assistant.ChatRequest
	if !h.assistantEnabled(c) {
		return 0, req, false
	}
	userID, ok := currentUserID(c)
	if !ok {
		return 0, req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(err))
		return 0, req, false
	}
	return userID, req, true
}

func (h *Handler) assistantEnabled(c *gin.Context) bool {
	if h.assistantSvc != nil {
		return true
	}
	abortWithError(c, domainError(apperrors.Wrap(apperrors.CodeAssistantDisabled, "assistant is not configured", nil)))
	return false
}
