// Package logger builds the zerolog root logger for the assistant service.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Utkarsh-Singh-byte/agro-tech/internal/config"
)

// New returns the root logger. Development runs get a human readable console
// writer; every other environment emits structured JSON for log shipping.
func New(cfg *config.Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	if cfg.Environment == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(parseLevel(cfg.LogLevel)).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger()
}

func parseLevel(raw string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
