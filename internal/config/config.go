// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"

	"github.com/ashureev/house-assist/internal/domain"
)

// History backends.
const (
	HistoryBackendSQLite = "sqlite"
	HistoryBackendRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Port                string        `env:"PORT" envDefault:"8080"`
	GRPCPort            string        `env:"GRPC_PORT" envDefault:"9090"`
	FrontendURL         string        `env:"FRONTEND_URL"`
	DBPath              string        `env:"DB_PATH" envDefault:"./data/houses.db"`
	RulesPath           string        `env:"RULES_PATH" envDefault:"./json/intent.json"`
	RulesReloadSchedule string        `env:"RULES_RELOAD_SCHEDULE"`
	Houses              []string      `env:"HOUSES" envDefault:"1,2,3" envSeparator:","`
	MaxRequestBodyBytes int64         `env:"MAX_REQUEST_BODY_BYTES" envDefault:"1048576"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	History   HistoryConfig
	RateLimit RateLimitConfig
}

// HistoryConfig selects and tunes the chat history backend.
type HistoryConfig struct {
	Backend       string        `env:"HISTORY_BACKEND" envDefault:"sqlite"`
	AppendTimeout time.Duration `env:"HISTORY_APPEND_TIMEOUT" envDefault:"5s"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
}

// RateLimitConfig controls per-client request throttling. A zero rate
// disables it.
type RateLimitConfig struct {
	PerSecond float64 `env:"RATE_LIMIT_PER_SECOND" envDefault:"5"`
	Burst     int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.History.Backend = strings.ToLower(strings.TrimSpace(cfg.History.Backend))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.RulesPath == "" {
		return fmt.Errorf("RULES_PATH cannot be empty")
	}
	if c.Tenants().Len() == 0 {
		return fmt.Errorf("HOUSES must list at least one house")
	}
	switch c.History.Backend {
	case HistoryBackendSQLite:
	case HistoryBackendRedis:
		if c.History.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR cannot be empty when HISTORY_BACKEND=redis")
		}
	default:
		return fmt.Errorf("HISTORY_BACKEND must be %q or %q, got %q", HistoryBackendSQLite, HistoryBackendRedis, c.History.Backend)
	}
	if c.History.AppendTimeout <= 0 {
		return fmt.Errorf("HISTORY_APPEND_TIMEOUT must be > 0")
	}
	if c.RateLimit.PerSecond < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_SECOND must be >= 0")
	}
	if c.RateLimit.PerSecond > 0 && c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be > 0 when rate limiting is enabled")
	}
	if c.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_BYTES must be > 0")
	}
	return nil
}

// Tenants returns the configured house set.
func (c *Config) Tenants() domain.TenantSet {
	return domain.NewTenantSet(c.Houses...)
}

// AllowedOrigins returns the origins CORS should accept.
func (c *Config) AllowedOrigins() []string {
	if c.IsDevelopment() {
		return []string{"*"}
	}
	return []string{strings.TrimRight(c.FrontendURL, "/")}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	if appEnv := os.Getenv("APP_ENV"); appEnv != "" {
		return appEnv == "development"
	}
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}
