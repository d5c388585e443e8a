package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/tapmon/internal/infra/config"
	"github.com/yanqian/tapmon/internal/infra/telemetry"
)

// App encapsulates the HTTP server and device ingestion lifecycle.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	server   *http.Server
	ingestor *telemetry.Ingestor
}

// NewApp is used by Wire to build the runnable app. ingestor may be nil.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, ingestor *telemetry.Ingestor) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, ingestor: ingestor}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	if a.ingestor != nil {
		if err := a.ingestor.Start(ctx); err != nil {
			return err
		}
		defer a.ingestor.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		return a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
