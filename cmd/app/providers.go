package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/tapmon/internal/domain/assistant"
	"github.com/yanqian/tapmon/internal/domain/auth"
	"github.com/yanqian/tapmon/internal/domain/cycle"
	"github.com/yanqian/tapmon/internal/domain/vitals"
	"github.com/yanqian/tapmon/internal/infra/config"
	"github.com/yanqian/tapmon/internal/infra/conversation"
	"github.com/yanqian/tapmon/internal/infra/cyclerepo"
	"github.com/yanqian/tapmon/internal/infra/llm/chatgpt"
	"github.com/yanqian/tapmon/internal/infra/telemetry"
	"github.com/yanqian/tapmon/internal/infra/tokenizer"
	"github.com/yanqian/tapmon/internal/infra/userrepo"
	"github.com/yanqian/tapmon/internal/infra/vitalsrepo"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}
}

func provideCycleConfig(cfg *config.Config) cycle.Config {
	return cycle.Config{
		MinCycleDays:      cfg.Cycle.MinCycleDays,
		MaxCycleDays:      cfg.Cycle.MaxCycleDays,
		LutealPhaseDays:   cfg.Cycle.LutealPhaseDays,
		FertileWindowDays: cfg.Cycle.FertileWindowDays,
	}
}

func provideVitalsConfig(cfg *config.Config) vitals.Config {
	return vitals.Config{
		MinTemperature:       cfg.Vitals.MinTemperature,
		MaxTemperature:       cfg.Vitals.MaxTemperature,
		MinHeartRate:         cfg.Vitals.MinHeartRate,
		MaxHeartRate:         cfg.Vitals.MaxHeartRate,
		LowTemperatureAlert:  cfg.Vitals.LowTemperatureAlert,
		HighTemperatureAlert: cfg.Vitals.HighTemperatureAlert,
		LowHeartRateAlert:    cfg.Vitals.LowHeartRateAlert,
		HighHeartRateAlert:   cfg.Vitals.HighHeartRateAlert,
		DefaultHistoryLimit:  cfg.Vitals.HistoryLimit,
	}
}

func provideAssistantConfig(cfg *config.Config) assistant.Config {
	return assistant.Config{
		Model:              cfg.LLM.Model,
		Temperature:        cfg.LLM.Temperature,
		MaxTokens:          cfg.LLM.MaxTokens,
		SystemPrompt:       cfg.Assistant.SystemPrompt,
		HistoryMessages:    cfg.Assistant.HistoryMessages,
		HistoryTokenBudget: cfg.Assistant.HistoryTokenBudget,
		VitalsContext:      cfg.Assistant.VitalsContext,
		MaxMessageLength:   cfg.Assistant.MaxMessageLength,
	}
}

// providePostgresPool returns nil when no DSN is set or the database is
// unreachable; repositories then fall back to memory.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres repositories enabled")
	return pool
}

func provideUserRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideCycleRepository(pool *pgxpool.Pool) cycle.Repository {
	if pool == nil {
		return cyclerepo.NewMemoryRepository()
	}
	return cyclerepo.NewPostgresRepository(pool)
}

func provideVitalsRepository(pool *pgxpool.Pool) vitals.Repository {
	if pool == nil {
		return vitalsrepo.NewMemoryRepository()
	}
	return vitalsrepo.NewPostgresRepository(pool)
}

func provideConversationStore(cfg *config.Config, logger *slog.Logger) assistant.ConversationStore {
	maxMessages, ttl := cfg.Assistant.StoredMessages, cfg.Assistant.ConversationTTL
	if cfg.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return conversation.NewMemoryStore(maxMessages, ttl)
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return conversation.NewMemoryStore(maxMessages, ttl)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("valkey conversation store enabled", "addr", cfg.Valkey.Addr)
			return conversation.NewValkeyStore(client, cfg.Valkey.Prefix, maxMessages, ttl)
		}
	}
	return conversation.NewMemoryStore(maxMessages, ttl)
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Valkey.Addr, "://") {
		return valkey.ParseURL(cfg.Valkey.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Valkey.Addr}}, nil
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) assistant.TokenCounter {
	return tokenizer.NewCounter(cfg.LLM.Model, logger)
}

// provideAssistantService returns nil when no LLM key is configured, which
// the transport reports as assistant_disabled.
func provideAssistantService(
	cfg *config.Config,
	assistantCfg assistant.Config,
	store assistant.ConversationStore,
	counter assistant.TokenCounter,
	vitalsSvc vitals.Service,
	logger *slog.Logger,
) (assistant.Service, error) {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Warn("llm api key not set, assistant disabled")
		return nil, nil
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	if err != nil {
		return nil, err
	}
	return assistant.NewService(assistantCfg, client, store, counter, vitalsSvc, logger), nil
}

// provideIngestor returns nil when MQTT ingestion is disabled.
func provideIngestor(cfg *config.Config, vitalsSvc vitals.Service, authSvc auth.Service, logger *slog.Logger) (*telemetry.Ingestor, error) {
	if !cfg.MQTT.Enabled {
		return nil, nil
	}
	return telemetry.NewIngestor(telemetry.Config{
		BrokerURL:      cfg.MQTT.BrokerURL,
		ClientID:       cfg.MQTT.ClientID,
		Username:       cfg.MQTT.Username,
		Password:       cfg.MQTT.Password,
		Topic:          cfg.MQTT.Topic,
		QoS:            cfg.MQTT.QoS,
		ConnectTimeout: cfg.MQTT.ConnectTimeout,
	}, vitalsSvc, authSvc, logger)
}
