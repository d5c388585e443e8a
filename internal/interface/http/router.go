package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/tapmon/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/healthz", handler.Healthz)

	requireAuth := authMiddleware(handler.authSvc)

	api := router.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/signup", handler.Signup)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", handler.Refresh)
		authGroup.GET("/me", requireAuth, handler.Me)

		cycles := api.Group("/cycles", requireAuth)
		cycles.POST("/predict", handler.PredictCycle)
		cycles.GET("/prediction", handler.CyclePrediction)
		cycles.GET("", handler.CycleHistory)
		cycles.POST("", handler.LogCycleStart)
		cycles.DELETE("/:date", handler.DeleteCycleStart)

		vitalsGroup := api.Group("/vitals", requireAuth)
		vitalsGroup.GET("", handler.VitalsHistory)
		vitalsGroup.POST("", handler.RecordVitals)

		wellnessGroup := api.Group("/wellness", requireAuth)
		wellnessGroup.GET("/quizzes", handler.ListQuizzes)
		wellnessGroup.POST("/quizzes/:id", handler.ScoreQuiz)
		wellnessGroup.GET("/yoga", handler.YogaQuestions)
		wellnessGroup.POST("/yoga", handler.SuggestYoga)
		wellnessGroup.POST("/lifestyle", handler.Lifestyle)

		assistantGroup := api.Group("/assistant", requireAuth)
		assistantGroup.POST("/chat", handler.Chat)
		assistantGroup.POST("/chat/stream", handler.ChatStream)
		assistantGroup.GET("/conversations/:id", handler.Conversation)
	}

	// Paths the mobile app and device firmware already call.
	legacy := router.Group("/api")
	{
		legacy.POST("/signup", handler.Signup)
		legacy.POST("/login", handler.Login)
		legacy.POST("/vitals/recieve", requireAuth, handler.RecordVitals)
		legacy.GET("/vitals/history", requireAuth, handler.VitalsHistory)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
