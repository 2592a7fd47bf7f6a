// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// WorldSim configures cmd/worldsim.
type WorldSim struct {
	Port          int           `env:"WORLDSIM_PORT" envDefault:"8080"`
	DBPath        string        `env:"WORLDSIM_DB" envDefault:"data/journal.db"`
	AdminKey      string        `env:"WORLDSIM_ADMIN_KEY"` // empty disables POST endpoints
	TickInterval  time.Duration `env:"WORLDSIM_TICK_INTERVAL" envDefault:"16ms"`
	SnapshotTicks uint64        `env:"WORLDSIM_SNAPSHOT_TICKS" envDefault:"3600"`
	LogLevel      string        `env:"WORLDSIM_LOG_LEVEL" envDefault:"info"`
	CORSOrigins   []string      `env:"CORS_ORIGINS" envSeparator:","`
}

// Steward configures cmd/steward.
type Steward struct {
	APIURL   string        `env:"WORLDSIM_API_URL" envDefault:"http://localhost:8080"`
	AdminKey string        `env:"WORLDSIM_ADMIN_KEY,required,notEmpty"`
	Interval time.Duration `env:"STEWARD_INTERVAL" envDefault:"2s"`
	LogLevel string        `env:"WORLDSIM_LOG_LEVEL" envDefault:"info"`
}

// Parse loads configuration from environment variables into target.
func Parse(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadWorldSim parses and validates the worldsim configuration.
func LoadWorldSim() (WorldSim, error) {
	var cfg WorldSim
	if err := Parse(&cfg); err != nil {
		return cfg, err
	}
	if cfg.TickInterval <= 0 {
		return cfg, fmt.Errorf("WORLDSIM_TICK_INTERVAL must be positive, got %s", cfg.TickInterval)
	}
	if cfg.SnapshotTicks == 0 {
		return cfg, fmt.Errorf("WORLDSIM_SNAPSHOT_TICKS must be positive")
	}
	return cfg, nil
}

// LoadSteward parses the steward configuration.
func LoadSteward() (Steward, error) {
	var cfg Steward
	if err := Parse(&cfg); err != nil {
		return cfg, err
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return cfg, nil
}

// Level maps a level name onto slog.Level, defaulting to info.
func Level(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
