// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/toondeboer/pokerkit/go/internal/blinds"
	"github.com/toondeboer/pokerkit/go/internal/kvstore"
	"github.com/toondeboer/pokerkit/go/internal/models"
	"github.com/toondeboer/pokerkit/go/internal/notify"
	"github.com/toondeboer/pokerkit/go/internal/surface"
	"github.com/toondeboer/pokerkit/go/internal/tournament"
)

type Config struct {
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"sqlite"`
	StoragePath    string `env:"STORAGE_PATH" envDefault:"pokerkit.db"`

	PlatformOS      string `env:"PLATFORM_OS" envDefault:"ios"`
	PlatformVersion string `env:"PLATFORM_VERSION" envDefault:"17.0"`

	TickInterval           time.Duration     `env:"TICK_INTERVAL" envDefault:"1s"`
	DefaultDurationSeconds int               `env:"DEFAULT_DURATION_SECONDS" envDefault:"600"`
	ExpiryPolicy           tournament.Policy `env:"EXPIRY_POLICY" envDefault:"manual"`
	AutoRestart            bool              `env:"AUTO_RESTART" envDefault:"false"`

	AlertBurst         bool          `env:"ALERT_BURST" envDefault:"true"`
	AlertBurstInterval time.Duration `env:"ALERT_BURST_INTERVAL" envDefault:"5s"`
	AlertBurstMax      time.Duration `env:"ALERT_BURST_MAX" envDefault:"60s"`

	TournamentName string `env:"TOURNAMENT_NAME" envDefault:"Poker Tournament"`
	BlindsFile     string `env:"BLINDS_FILE"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the given .env files (".env" when none are named) and then
// parses the environment. Missing .env files are not an error.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load env file: %w", err)
		}
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	switch c.StorageBackend {
	case kvstore.BackendMemory, kvstore.BackendYAML, kvstore.BackendSQLite:
	default:
		return fmt.Errorf("%w: %s", kvstore.ErrUnknownBackend, c.StorageBackend)
	}
	if c.StorageBackend != kvstore.BackendMemory && c.StoragePath == "" {
		return errors.New("STORAGE_PATH is required for file backed storage")
	}
	switch c.PlatformOS {
	case surface.OSIOS, surface.OSAndroid, surface.OSNone:
	default:
		return fmt.Errorf("unknown platform %q", c.PlatformOS)
	}
	if c.TickInterval <= 0 {
		return errors.New("TICK_INTERVAL must be positive")
	}
	if c.DefaultDurationSeconds <= 0 {
		return errors.New("DEFAULT_DURATION_SECONDS must be positive")
	}
	if c.AlertBurst && (c.AlertBurstInterval <= 0 || c.AlertBurstMax < 0) {
		return errors.New("ALERT_BURST_INTERVAL must be positive and ALERT_BURST_MAX not negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return nil
}

func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func (c Config) Platform() surface.Platform {
	return surface.Platform{OS: c.PlatformOS, Version: c.PlatformVersion}
}

// Notify returns the alert settings. Android keeps a foreground service
// alive, so repeated alerts are only used elsewhere.
func (c Config) Notify() notify.Config {
	return notify.Config{
		Burst:         c.AlertBurst && c.PlatformOS != surface.OSAndroid,
		BurstInterval: c.AlertBurstInterval,
		BurstMax:      c.AlertBurstMax,
	}
}

func (c Config) Tournament() tournament.Options {
	return tournament.Options{
		Policy:      c.ExpiryPolicy,
		AutoRestart: c.AutoRestart,
	}
}

// BlindLevels returns the levels from BLINDS_FILE, or nil when unset.
func (c Config) BlindLevels() ([]models.BlindLevel, error) {
	if c.BlindsFile == "" {
		return nil, nil
	}
	return blinds.LoadLevelsFile(c.BlindsFile)
}
