package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the server runtime settings read from the environment.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	Addr            string        `envconfig:"DASHBOARD_ADDR" default:":8080"`
	Transport       string        `envconfig:"DASHBOARD_TRANSPORT" default:"chi"`
	ReadTimeout     time.Duration `envconfig:"DASHBOARD_READ_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"DASHBOARD_SHUTDOWN_TIMEOUT" default:"10s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	LoadDelay     time.Duration `envconfig:"DASHBOARD_LOAD_DELAY" default:"800ms"`
	IdleTTL       time.Duration `envconfig:"DASHBOARD_IDLE_TTL" default:"30m"`
	ChartCacheTTL time.Duration `envconfig:"DASHBOARD_CHART_CACHE_TTL" default:"5m"`
	RedisAddr     string        `envconfig:"REDIS_ADDR"`

	FixturesPath string `envconfig:"DASHBOARD_FIXTURES_PATH"`
	FixturesURL  string `envconfig:"DASHBOARD_FIXTURES_URL"`
	FixturesKey  string `envconfig:"DASHBOARD_FIXTURES_API_KEY"`

	RateLimit  int           `envconfig:"DASHBOARD_RATE_LIMIT" default:"120"`
	RateWindow time.Duration `envconfig:"DASHBOARD_RATE_WINDOW" default:"1m"`

	AssetsHost string `envconfig:"GO_DASHBOARD_ECHARTS_CDN"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("dashctl: load config: %w", err)
	}
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	switch cfg.Transport {
	case transportChi, transportFiber:
	default:
		return nil, fmt.Errorf("dashctl: unsupported transport %q", cfg.Transport)
	}
	if cfg.FixturesPath != "" && cfg.FixturesURL != "" {
		return nil, fmt.Errorf("dashctl: set either DASHBOARD_FIXTURES_PATH or DASHBOARD_FIXTURES_URL, not both")
	}
	return &cfg, nil
}

// IsProduction returns true when the server runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// NewLogger returns a slog.Logger configured by LOG_FORMAT and LOG_LEVEL.
func NewLogger(cfg *Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil {
		_ = level.UnmarshalText([]byte(cfg.LogLevel))
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
