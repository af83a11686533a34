package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

// Config holds all environment backed configuration for the chat service.
type Config struct {
	// HTTP Server
	HTTPPort  int    `env:"HTTP_PORT" envDefault:"8080"`
	PprofPort int    `env:"PPROF_PORT" envDefault:"6060"`
	StaticDir string `env:"STATIC_DIR" envDefault:"web"`

	// Storage
	DBPath string `env:"DB_PATH" envDefault:"chat_history.db"`

	// Model provider. The API key may be absent at startup; the gateway
	// fails at first use instead of blocking boot.
	ModelAPIKey  string `env:"MODEL_API_KEY"`
	ModelID      string `env:"MODEL_ID" envDefault:"gemini-2.0-flash-exp"`
	ModelBaseURL string `env:"MODEL_BASE_URL"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.ModelID = strings.TrimSpace(cfg.ModelID)
	if cfg.ModelID == "" {
		return nil, fmt.Errorf("MODEL_ID must not be empty")
	}

	return cfg, nil
}

// HasModelAPIKey reports whether a model credential was provided.
func (c *Config) HasModelAPIKey() bool {
	return strings.TrimSpace(c.ModelAPIKey) != ""
}
