// Package logging builds the zerolog loggers used by the benchmark tools.
package logging

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidLogFormat = errors.New("log_format must be 'json' or 'console'")
	ErrInvalidLogLevel  = errors.New("log_level must be debug, info, warn, or error")
)

// Config selects the logger's level and output format.
type Config struct {
	Level  string
	Format string
	Out    io.Writer
}

// DefaultConfig logs info and above to stderr in console format.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Out:    os.Stderr,
	}
}

// New creates a zerolog.Logger from cfg.
func New(cfg Config) (zerolog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(cfg.Format) {
	case "json", "":
	case "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	default:
		return zerolog.Nop(), ErrInvalidLogFormat
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

func parseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}
	return zerolog.InfoLevel, ErrInvalidLogLevel
}
