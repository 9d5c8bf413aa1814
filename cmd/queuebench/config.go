package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/randomizedcoder/msqueue/internal/bench"
	"github.com/randomizedcoder/msqueue/internal/logging"
	"github.com/randomizedcoder/msqueue/internal/queue"
)

// envPrefix is the prefix of every environment variable, e.g.
// QUEUEBENCH_PRODUCERS.
const envPrefix = "QUEUEBENCH"

// Config validation errors
var (
	ErrInvalidTimeout = errors.New("timeout must not be negative")
)

// Config holds the command defaults. Environment variables set them and
// command line flags override them.
type Config struct {
	Queue     string        `envconfig:"QUEUE" default:"lockfree"`
	Producers int           `envconfig:"PRODUCERS" default:"4"`
	Consumers int           `envconfig:"CONSUMERS" default:"4"`
	Elements  int           `envconfig:"ELEMENTS" default:"1000000"`
	Pin       bool          `envconfig:"PIN" default:"false"`
	Verify    bool          `envconfig:"VERIFY" default:"true"`
	Progress  time.Duration `envconfig:"PROGRESS" default:"0s"`
	Output    string        `envconfig:"OUTPUT"`
	Timeout   time.Duration `envconfig:"TIMEOUT" default:"0s"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"console"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`
}

// LoadConfig reads an optional .env file from the working directory and
// then the QUEUEBENCH_* environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	return cfg, nil
}

// ValidateConfig validates the process-wide settings: logging and timeout.
// Run settings are validated by Bench.
func ValidateConfig(cfg *Config) error {
	if _, err := logging.New(cfg.logging()); err != nil {
		return err
	}
	if cfg.Timeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Bench converts the run settings into a validated bench.Config.
func (c *Config) Bench() (bench.Config, error) {
	kind, err := queue.ParseKind(c.Queue)
	if err != nil {
		return bench.Config{}, err
	}
	bc := bench.Config{
		Kind:             kind,
		Producers:        c.Producers,
		Consumers:        c.Consumers,
		Elements:         c.Elements,
		Pin:              c.Pin,
		Verify:           c.Verify,
		ProgressInterval: c.Progress,
	}
	if err := bc.Validate(); err != nil {
		return bench.Config{}, err
	}
	return bc, nil
}

func (c *Config) logging() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.LogLevel
	lc.Format = c.LogFormat
	return lc
}
