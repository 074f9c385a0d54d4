package config

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds a slog.Logger from the logging section.
// Unknown levels fall back to info, unknown formats to text.
func NewLogger(w io.Writer, lc LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(lc.Level)}
	if strings.EqualFold(lc.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
