package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Workers struct {
		Count       int           `yaml:"count" env:"LITEWORKER_WORKERS"`
		QueueSize   int           `yaml:"queue_size" env:"LITEWORKER_QUEUE_SIZE"`
		PollTimeout time.Duration `yaml:"poll_timeout" env:"LITEWORKER_POLL_TIMEOUT"`
	} `yaml:"workers"`

	Retry struct {
		Attempts int           `yaml:"attempts" env:"LITEWORKER_RETRY_ATTEMPTS"`
		Backoff  time.Duration `yaml:"backoff" env:"LITEWORKER_RETRY_BACKOFF"`
	} `yaml:"retry"`

	DeadLetter struct {
		// empty disables the dead-letter store
		DBPath string `yaml:"db_path" env:"LITEWORKER_DEADLETTER_DB"`
	} `yaml:"dead_letter"`

	Log struct {
		Level string `yaml:"level" env:"LITEWORKER_LOG_LEVEL"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file or env var overrides it.
func Default() *Config {
	var cfg Config
	cfg.Workers.Count = 4
	cfg.Workers.QueueSize = 0
	cfg.Workers.PollTimeout = time.Second
	cfg.Retry.Attempts = 1
	cfg.Log.Level = "info"
	return &cfg
}

// Load reads path as YAML over the defaults, when path is not empty, then
// applies environment variables and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read yaml: %w", err)
		}

		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Workers.Count < 1 {
		return fmt.Errorf("%w: workers.count must be at least 1, got %d", ErrInvalidConfig, c.Workers.Count)
	}

	if c.Workers.QueueSize < 0 {
		return fmt.Errorf("%w: workers.queue_size must not be negative, got %d", ErrInvalidConfig, c.Workers.QueueSize)
	}

	if c.Workers.PollTimeout <= 0 {
		return fmt.Errorf("%w: workers.poll_timeout must be positive, got %s", ErrInvalidConfig, c.Workers.PollTimeout)
	}

	if c.Retry.Attempts < 1 {
		return fmt.Errorf("%w: retry.attempts must be at least 1, got %d", ErrInvalidConfig, c.Retry.Attempts)
	}

	if c.Retry.Backoff < 0 {
		return fmt.Errorf("%w: retry.backoff must not be negative, got %s", ErrInvalidConfig, c.Retry.Backoff)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}

	return nil
}

// LogLevel parses Log.Level into a slog.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return level, fmt.Errorf("%w: log.level: %s", ErrInvalidConfig, err.Error())
	}
	return level, nil
}
