package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/tapmon/internal/domain/wellness"
)

// ListQuizzes returns the available self-assessments.
func (h *Handler) ListQuizzes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"quizzes": h.wellnessSvc.ListQuizzes(c.Request.Context())})
}

// ScoreQuiz scores answers against one quiz.
func (h *Handler) ScoreQuiz(c *gin.Context) {
	var req wellness.QuizAnswers
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}
	result, err := h.wellnessSvc.Score(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// YogaQuestions returns the yoga questionnaire.
func (h *Handler) YogaQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": h.wellnessSvc.YogaQuestions(c.Request.Context())})
}

// SuggestYoga ranks poses for the supplied answers.
func (h *Handler) SuggestYoga(c *gin.Context) {
	var req wellness.YogaAnswers
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}
	result, err := h.wellnessSvc.SuggestYoga(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// Lifestyle analyses a habit checklist.
func (h *Handler) Lifestyle(c *gin.Context) {
	var req wellness.LifestyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}
	result, err := h.wellnessSvc.Lifestyle(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}
