package logging

import (
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a level name ("debug", "info", "warn", "error",
// case-insensitive) to its slog level. Unrecognized names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// Setup builds the process logger writing text records to stderr at the
// given level, installs it as the slog default, and returns it. Components
// derive their own loggers from it via With("component", name).
func Setup(level string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
