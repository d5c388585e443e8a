package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/tapmon/internal/domain/assistant"
	"github.com/yanqian/tapmon/internal/domain/auth"
	"github.com/yanqian/tapmon/internal/domain/cycle"
	"github.com/yanqian/tapmon/internal/domain/vitals"
	"github.com/yanqian/tapmon/internal/domain/wellness"
	apperrors "github.com/yanqian/tapmon/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc      auth.Service
	cycleSvc     cycle.Service
	vitalsSvc    vitals.Service
	wellnessSvc  wellness.Service
	assistantSvc assistant.Service
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler. assistantSvc is nil when no
// LLM credentials are configured.
func NewHandler(
	authSvc auth.Service,
	cycleSvc cycle.Service,
	vitalsSvc vitals.Service,
	wellnessSvc wellness.Service,
	assistantSvc assistant.Service,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		authSvc:      authSvc,
		cycleSvc:     cycleSvc,
		vitalsSvc:    vitalsSvc,
		wellnessSvc:  wellnessSvc,
		assistantSvc: assistantSvc,
		logger:       logger.With("component", "http.handler"),
	}
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

var codeStatus = map[string]int{
	apperrors.CodeInvalidInput:       http.StatusBadRequest,
	apperrors.CodeInsufficientData:   http.StatusUnprocessableEntity,
	apperrors.CodeNoValidCycle:       http.StatusUnprocessableEntity,
	apperrors.CodeNotFound:           http.StatusNotFound,
	apperrors.CodeEmailExists:        http.StatusConflict,
	apperrors.CodeInvalidCredentials: http.StatusUnauthorized,
	apperrors.CodeInvalidToken:       http.StatusUnauthorized,
	apperrors.CodeAssistantDisabled:  http.StatusServiceUnavailable,
	apperrors.CodeLLM:                http.StatusBadGateway,
	apperrors.CodeStorage:            http.StatusInternalServerError,
	apperrors.CodeAuth:               http.StatusInternalServerError,
}

// domainError maps a service error onto its transport status.
func domainError(err error) *HTTPError {
	code := apperrors.CodeOf(err)
	status, ok := codeStatus[code]
	if !ok {
		return asHTTPError(err)
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func invalidRequest(err error) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
}

func currentUserID(c *gin.Context) (int64, bool) {
	claims, ok := getClaims(c)
	if !ok || claims.UserID == 0 {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "authentication required", nil))
		return 0, false
	}
	return claims.UserID, true
}

func errMessage(err error) string {
	return apperrors.MessageOf(err)
}
