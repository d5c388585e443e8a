package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/tapmon/internal/domain/vitals"
)

// RecordVitals stores a reading for the caller.
func (h *Handler) RecordVitals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req vitals.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}
	req.Source = vitals.SourceAPI
	resp, err := h.vitalsSvc.Record(c.Request.Context(), userID, req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// VitalsHistory lists the caller's readings, oldest first.
func (h *Handler) VitalsHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be an integer", err))
			return
		}
		limit = parsed
	}
	readings, err := h.vitalsSvc.History(c.Request.Context(), userID, limit)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, readings)
}
