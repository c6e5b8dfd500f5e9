package logger

import (
	"log/slog"
	"os"
)

// New returns a structured JSON logger with level from string, tagged with
// the emitting service name.
func New(level, service string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	log := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	if service != "" {
		log = log.With("service", service)
	}
	return log
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
