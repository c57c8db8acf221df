package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Audit     AuditConfig     `yaml:"audit" mapstructure:"audit"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int             `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string        `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimits     RateLimitConfig `yaml:"rate_limits" mapstructure:"rate_limits"`
	Sessions       SessionConfig   `yaml:"sessions" mapstructure:"sessions"`
}

// SessionConfig bounds the in-memory conversation store.
type SessionConfig struct {
	TTLMinutes  int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
	MaxSessions int `yaml:"max_sessions" mapstructure:"max_sessions"`
}

// RateLimitConfig holds per-client request budgets (requests per minute)
// for each route family.
type RateLimitConfig struct {
	Chat      int `yaml:"chat" mapstructure:"chat"`
	Calculate int `yaml:"calculate" mapstructure:"calculate"`
	Audit     int `yaml:"audit" mapstructure:"audit"`
	Logs      int `yaml:"logs" mapstructure:"logs"`
}

// AnthropicConfig holds settings for the conversational model.
type AnthropicConfig struct {
	Key           string      `yaml:"key" mapstructure:"key"`
	Model         string      `yaml:"model" mapstructure:"model"`
	BaseURL       string      `yaml:"base_url" mapstructure:"base_url"`
	MaxTokens     int64       `yaml:"max_tokens" mapstructure:"max_tokens"`
	HistoryWindow int         `yaml:"history_window" mapstructure:"history_window"`
	TimeoutSecs   int         `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retry         RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig controls retries and the circuit breaker around model calls.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	BreakerThreshold int `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSecs int `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// AuditConfig configures the append-only audit log.
type AuditConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	AccessKey   string `yaml:"access_key" mapstructure:"access_key"`
}

// BatchConfig configures offline batch scoring.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ADVISOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets have no default; bind them so Unmarshal sees the env values.
	for _, key := range []string{"anthropic.key", "audit.access_key", "audit.database_url"} {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:8000"})
	v.SetDefault("server.rate_limits.chat", 20)
	v.SetDefault("server.rate_limits.calculate", 10)
	v.SetDefault("server.rate_limits.audit", 30)
	v.SetDefault("server.rate_limits.logs", 10)
	v.SetDefault("server.sessions.ttl_minutes", 60)
	v.SetDefault("server.sessions.max_sessions", 1000)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.history_window", 20)
	v.SetDefault("anthropic.timeout_secs", 30)
	v.SetDefault("anthropic.retry.max_attempts", 3)
	v.SetDefault("anthropic.retry.initial_backoff_ms", 500)
	v.SetDefault("anthropic.retry.max_backoff_ms", 10000)
	v.SetDefault("anthropic.retry.breaker_threshold", 5)
	v.SetDefault("anthropic.retry.breaker_reset_secs", 30)
	v.SetDefault("audit.driver", "file")
	v.SetDefault("audit.path", "logs/audit.jsonl")
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a given command mode depends on. Modes:
// "serve" (HTTP server with conversational front-end), "mcp" (stdio tool
// server), "audit" (commands reading or writing the audit log) and "score"
// (offline scoring only).
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Anthropic.Key == "" {
			errs = append(errs, "anthropic.key is required")
		}
		if c.Audit.AccessKey == "" {
			errs = append(errs, "audit.access_key is required")
		}
		errs = append(errs, c.validateAudit()...)
	case "mcp", "audit":
		errs = append(errs, c.validateAudit()...)
	case "score":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 64 {
		errs = append(errs, "batch.concurrency must be between 1 and 64")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateAudit() []string {
	switch c.Audit.Driver {
	case "file", "sqlite":
		if c.Audit.Path == "" {
			return []string{"audit.path is required for the " + c.Audit.Driver + " driver"}
		}
	case "postgres":
		if c.Audit.DatabaseURL == "" {
			return []string{"audit.database_url is required for the postgres driver"}
		}
	default:
		return []string{"unsupported audit.driver: " + c.Audit.Driver}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
