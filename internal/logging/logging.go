// Package logging creates the process logger based on configuration.
package logging

import (
	"log/slog"
	"os"

	"github.com/golang-cz/devslog"

	"github.com/hendrikb/gmailops/internal/config"
)

// Setup creates a leveled slog logger. Format "pretty" uses the devslog
// development handler; "json" and "text" use the standard handlers.
// All log output goes to stderr so stdout stays machine-parseable.
func Setup(cfg config.Logging) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "pretty":
		handler = devslog.NewHandler(os.Stderr, &devslog.Options{HandlerOptions: opts})
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
