// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging configures the zerolog logger shared by the CLI stages.
//
// Core packages never reach for a global logger: the CLI builds one with
// New, tags it per stage with Component, and passes it down explicitly.
//
//	log := logging.New(logging.Config{Level: "debug", Format: "json"})
//	simLog := logging.Component(log, "similarity")
//	simLog.Info().Int("keys", n).Msg("similarity cache built")
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config holds logger settings.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error, disabled.
	// Default: info
	Level string

	// Format is console or json.
	// Default: console
	Format string

	// Output receives log lines.
	// Default: os.Stderr
	Output io.Writer
}

// New returns a logger configured from cfg, tagged with a fresh run ID.
func New(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("run_id", RunID()).
		Logger()
}

// Component returns a child logger tagged with the stage name.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// RunID returns a short identifier that correlates the log lines of one run.
func RunID() string {
	return uuid.New().String()[:8]
}

// ParseLevel converts a level name to a zerolog.Level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
