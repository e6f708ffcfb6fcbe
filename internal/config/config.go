// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`

	// Languages are the content languages posts and plugins may use.
	Languages []string `env:"LANGUAGES" envDefault:"en,de,fr"`

	// DefaultLanguage is served when a request expresses no usable preference.
	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"en"`

	// ContentLanguage is the language every plugin inside a post's content
	// block is set to after the post is saved.
	ContentLanguage string `env:"CONTENT_LANGUAGE" envDefault:"en"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// MigrateOnStart applies pending migrations before serving.
	MigrateOnStart bool `env:"MIGRATE_ON_START" envDefault:"false"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error naming any required variable that is not set or any value
// that fails validation.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	cfg.CORSOrigins = trimList(cfg.CORSOrigins, false)
	cfg.Languages = trimList(cfg.Languages, true)
	cfg.DefaultLanguage = strings.ToLower(strings.TrimSpace(cfg.DefaultLanguage))
	cfg.ContentLanguage = strings.ToLower(strings.TrimSpace(cfg.ContentLanguage))

	if len(cfg.Languages) == 0 {
		return Config{}, fmt.Errorf("config.Load: LANGUAGES must list at least one language")
	}
	if !slices.Contains(cfg.Languages, cfg.DefaultLanguage) {
		return Config{}, fmt.Errorf("config.Load: DEFAULT_LANGUAGE %q is not in LANGUAGES %v", cfg.DefaultLanguage, cfg.Languages)
	}
	if !slices.Contains(cfg.Languages, cfg.ContentLanguage) {
		return Config{}, fmt.Errorf("config.Load: CONTENT_LANGUAGE %q is not in LANGUAGES %v", cfg.ContentLanguage, cfg.Languages)
	}
	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("config.Load: MAX_BODY_BYTES must be positive, got %d", cfg.MaxBodyBytes)
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	return lvl, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// trimList trims every entry, optionally lowercases it, and drops empty ones.
func trimList(in []string, lower bool) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if lower {
			s = strings.ToLower(s)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
