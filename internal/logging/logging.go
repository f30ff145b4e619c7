// Package logging builds the process-wide zerolog logger. Components never
// log through a global; the logger is constructed once at run start and
// passed down explicitly.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jm-glowienke/fluffy-octo-spoon/internal/config"
)

// New creates a logger per the runtime configuration, writing to stderr.
func New(cfg config.Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates a logger with a custom writer.
func NewWithWriter(cfg config.Config, w io.Writer) zerolog.Logger {
	if !cfg.LogJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(parseLevel(cfg.LogLevel)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
