package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/config.yaml"

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	LLM       LLMConfig       `yaml:"llm"`
	Assistant AssistantConfig `yaml:"assistant"`
	Cycle     CycleConfig     `yaml:"cycle"`
	Vitals    VitalsConfig    `yaml:"vitals"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Valkey    ValkeyConfig    `yaml:"valkey"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for POST requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// AuthConfig controls token issuance.
type AuthConfig struct {
	Secret          string        `yaml:"secret"`
	TokenTTL        time.Duration `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration `yaml:"refreshTokenTtl"`
}

// LLMConfig contains chat completions settings.
type LLMConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"maxTokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// AssistantConfig bounds prompts and conversation memory.
type AssistantConfig struct {
	SystemPrompt       string        `yaml:"systemPrompt"`
	HistoryMessages    int           `yaml:"historyMessages"`
	HistoryTokenBudget int           `yaml:"historyTokenBudget"`
	VitalsContext      int           `yaml:"vitalsContext"`
	MaxMessageLength   int           `yaml:"maxMessageLength"`
	StoredMessages     int           `yaml:"storedMessages"`
	ConversationTTL    time.Duration `yaml:"conversationTtl"`
}

// CycleConfig tunes the cycle estimator.
type CycleConfig struct {
	MinCycleDays      int `yaml:"minCycleDays"`
	MaxCycleDays      int `yaml:"maxCycleDays"`
	LutealPhaseDays   int `yaml:"lutealPhaseDays"`
	FertileWindowDays int `yaml:"fertileWindowDays"`
}

// VitalsConfig holds plausibility bounds and alert thresholds.
type VitalsConfig struct {
	MinTemperature       float64 `yaml:"minTemperature"`
	MaxTemperature       float64 `yaml:"maxTemperature"`
	MinHeartRate         float64 `yaml:"minHeartRate"`
	MaxHeartRate         float64 `yaml:"maxHeartRate"`
	LowTemperatureAlert  float64 `yaml:"lowTemperatureAlert"`
	HighTemperatureAlert float64 `yaml:"highTemperatureAlert"`
	LowHeartRateAlert    float64 `yaml:"lowHeartRateAlert"`
	HighHeartRateAlert   float64 `yaml:"highHeartRateAlert"`
	HistoryLimit         int     `yaml:"historyLimit"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for conversation storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// MQTTConfig configures device telemetry ingestion.
type MQTTConfig struct {
	Enabled        bool          `yaml:"enabled"`
	BrokerURL      string        `yaml:"brokerUrl"`
	ClientID       string        `yaml:"clientId"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	Topic          string        `yaml:"topic"`
	QoS            byte          `yaml:"qos"`
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
}

// Load reads configuration from .env, a YAML file and environment variables.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(defaultConfigPath); err == nil {
		if err := hydrateFromFile(cfg, defaultConfigPath); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.HTTP.Address, "HTTP_ADDRESS")
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	setBool(&cfg.HTTP.RateLimit.Enabled, "HTTP_RATE_LIMIT_ENABLED")
	setInt(&cfg.HTTP.RateLimit.RequestsPerMinute, "HTTP_RATE_LIMIT_RPM")
	setInt(&cfg.HTTP.RateLimit.Burst, "HTTP_RATE_LIMIT_BURST")
	setBool(&cfg.HTTP.Retry.Enabled, "HTTP_RETRY_ENABLED")
	setInt(&cfg.HTTP.Retry.MaxAttempts, "HTTP_RETRY_MAX_ATTEMPTS")
	setDuration(&cfg.HTTP.Retry.BaseBackoff, "HTTP_RETRY_BASE_BACKOFF")

	// AUTH_SECRET is the name the legacy deployment used.
	setString(&cfg.Auth.Secret, "AUTH_SECRET")
	setString(&cfg.Auth.Secret, "JWT_SECRET")
	setDuration(&cfg.Auth.TokenTTL, "AUTH_TOKEN_TTL")
	setDuration(&cfg.Auth.RefreshTokenTTL, "AUTH_REFRESH_TOKEN_TTL")

	setString(&cfg.LLM.APIKey, "LLM_API_KEY")
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	setInt(&cfg.LLM.MaxTokens, "LLM_MAX_TOKENS")

	setString(&cfg.Assistant.SystemPrompt, "ASSISTANT_SYSTEM_PROMPT")
	setInt(&cfg.Assistant.HistoryMessages, "ASSISTANT_HISTORY_MESSAGES")
	setInt(&cfg.Assistant.HistoryTokenBudget, "ASSISTANT_HISTORY_TOKENS")
	setDuration(&cfg.Assistant.ConversationTTL, "ASSISTANT_CONVERSATION_TTL")

	setInt(&cfg.Cycle.MinCycleDays, "CYCLE_MIN_DAYS")
	setInt(&cfg.Cycle.MaxCycleDays, "CYCLE_MAX_DAYS")
	setInt(&cfg.Cycle.LutealPhaseDays, "CYCLE_LUTEAL_DAYS")
	setInt(&cfg.Cycle.FertileWindowDays, "CYCLE_FERTILE_WINDOW_DAYS")

	setString(&cfg.Postgres.DSN, "POSTGRES_DSN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}

	setBool(&cfg.Valkey.Enabled, "VALKEY_ENABLED")
	setString(&cfg.Valkey.Addr, "VALKEY_ADDR")

	setBool(&cfg.MQTT.Enabled, "MQTT_ENABLED")
	setString(&cfg.MQTT.BrokerURL, "MQTT_BROKER_URL")
	setString(&cfg.MQTT.ClientID, "MQTT_CLIENT_ID")
	setString(&cfg.MQTT.Username, "MQTT_USERNAME")
	setString(&cfg.MQTT.Password, "MQTT_PASSWORD")
	setString(&cfg.MQTT.Topic, "MQTT_TOPIC")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   90 * time.Second,
			AllowedOrigins: []string{"http://localhost:5173"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/signup",
					"/api/vitals/recieve",
					"/api/v1/auth/signup",
					"/api/v1/cycles",
					"/api/v1/vitals",
					"/api/v1/assistant/chat",
					"/api/v1/assistant/chat/stream",
				},
			},
		},
		Auth: AuthConfig{
			TokenTTL:        5 * time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.4,
			MaxTokens:   600,
			Timeout:     60 * time.Second,
		},
		Assistant: AssistantConfig{
			HistoryMessages:    12,
			HistoryTokenBudget: 2000,
			VitalsContext:      5,
			MaxMessageLength:   2000,
			StoredMessages:     100,
			ConversationTTL:    7 * 24 * time.Hour,
		},
		Cycle: CycleConfig{
			MinCycleDays:      21,
			MaxCycleDays:      40,
			LutealPhaseDays:   14,
			FertileWindowDays: 5,
		},
		Vitals: VitalsConfig{
			MinTemperature:       30,
			MaxTemperature:       45,
			MinHeartRate:         20,
			MaxHeartRate:         250,
			LowTemperatureAlert:  35,
			HighTemperatureAlert: 38.5,
			LowHeartRateAlert:    60,
			HighHeartRateAlert:   100,
			HistoryLimit:         500,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Valkey: ValkeyConfig{
			Prefix: "tapmon:conv",
		},
		MQTT: MQTTConfig{
			Topic:          "tapmon/users/+/vitals",
			QoS:            1,
			ConnectTimeout: 10 * time.Second,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty (set JWT_SECRET)")
	}
	if c.Auth.TokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("auth token ttls must be positive")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.Assistant.HistoryMessages < 0 || c.Assistant.HistoryTokenBudget < 0 || c.Assistant.VitalsContext < 0 {
		return errors.New("assistant history and context limits cannot be negative")
	}
	if c.Assistant.ConversationTTL < 0 {
		return errors.New("assistant.conversationTtl cannot be negative")
	}
	if c.Cycle.MinCycleDays <= 0 || c.Cycle.MaxCycleDays < c.Cycle.MinCycleDays {
		return errors.New("cycle.minCycleDays must be positive and not above cycle.maxCycleDays")
	}
	if c.Cycle.LutealPhaseDays <= 0 || c.Cycle.LutealPhaseDays >= c.Cycle.MinCycleDays {
		return errors.New("cycle.lutealPhaseDays must be positive and shorter than cycle.minCycleDays")
	}
	if c.Cycle.FertileWindowDays < 0 {
		return errors.New("cycle.fertileWindowDays cannot be negative")
	}
	if c.Vitals.MinTemperature >= c.Vitals.MaxTemperature || c.Vitals.MinHeartRate >= c.Vitals.MaxHeartRate {
		return errors.New("vitals plausibility bounds are inverted")
	}
	if c.Vitals.HistoryLimit <= 0 {
		return errors.New("vitals.historyLimit must be positive")
	}
	if c.Valkey.Enabled && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when valkey is enabled")
	}
	if c.MQTT.Enabled {
		if strings.TrimSpace(c.MQTT.BrokerURL) == "" {
			return errors.New("mqtt.brokerUrl cannot be empty when mqtt is enabled")
		}
		if c.MQTT.QoS > 2 {
			return errors.New("mqtt.qos must be 0, 1 or 2")
		}
	}
	return nil
}
