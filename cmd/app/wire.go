//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/tapmon/internal/bootstrap"
	"github.com/yanqian/tapmon/internal/domain/auth"
	"github.com/yanqian/tapmon/internal/domain/cycle"
	"github.com/yanqian/tapmon/internal/domain/vitals"
	"github.com/yanqian/tapmon/internal/domain/wellness"
	"github.com/yanqian/tapmon/internal/infra/config"
	httpiface "github.com/yanqian/tapmon/internal/interface/http"
	"github.com/yanqian/tapmon/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		provideCycleConfig,
		provideVitalsConfig,
		provideAssistantConfig,
		providePostgresPool,
		provideUserRepository,
		provideCycleRepository,
		provideVitalsRepository,
		provideConversationStore,
		provideTokenCounter,
		provideAssistantService,
		provideIngestor,
		auth.NewService,
		cycle.NewService,
		vitals.NewService,
		wellness.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
