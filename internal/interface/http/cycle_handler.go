package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/tapmon/internal/domain/cycle"
)

// PredictCycle estimates ovulation from dates supplied in the request.
func (h *Handler) PredictCycle(c *gin.Context) {
	var req cycle.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}
	view, err := h.cycleSvc.Predict(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

// LogCycleStart records a cycle start date for the caller.
func (h *Handler) LogCycleStart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req cycle.LogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}
	entry, err := h.cycleSvc.LogStart(c.Request.Context(), userID, req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// CycleHistory lists the caller's logged start dates.
func (h *Handler) CycleHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	entries, err := h.cycleSvc.History(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// DeleteCycleStart removes one logged date.
func (h *Handler) DeleteCycleStart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.cycleSvc.DeleteStart(c.Request.Context(), userID, c.Param("date")); err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// CyclePrediction estimates ovulation from the caller's stored history.
func (h *Handler) CyclePrediction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	view, err := h.cycleSvc.PredictForUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, view)
}
