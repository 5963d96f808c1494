package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/roomcast/roomcast-server/internal/history"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr" validate:"required"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`

	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	Limits  LimitsConfig  `mapstructure:"limits" yaml:"limits"`
}

// StorageConfig selects and locates the history backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver" validate:"oneof=sqlite badger memory"`
	Path   string `mapstructure:"path" yaml:"path"`
}

// HistoryConfig tunes replay-on-join.
type HistoryConfig struct {
	// ReplayLimit caps how many recent messages a joining client
	// receives. Zero replays everything.
	ReplayLimit int `mapstructure:"replay_limit" yaml:"replay_limit" validate:"min=0"`
}

// LimitsConfig holds per-connection throttles.
type LimitsConfig struct {
	// MessagesPerMinute throttles chat messages per connection.
	// Zero disables the limit.
	MessagesPerMinute int `mapstructure:"messages_per_minute" yaml:"messages_per_minute" validate:"min=0"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		Storage: StorageConfig{
			Driver: history.DriverSQLite,
			Path:   "roomcast.db",
		},
		History: HistoryConfig{ReplayLimit: 50},
		Limits:  LimitsConfig{MessagesPerMinute: 120},
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config field %s: failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("validate config: %w", err)
	}
	if c.Storage.Driver != history.DriverMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required for driver %q", c.Storage.Driver)
	}
	return nil
}
