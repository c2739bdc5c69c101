// Package logging builds the slog loggers used across tlogg.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// disabled sits above every standard level so nothing is emitted
const disabled = slog.Level(100)

// New creates a text logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return New(io.Discard, disabled)
}

// LevelFromString converts a configured level name to a slog.Level.
// Unknown names fall back to warn, the CLI default.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "off", "none", "quiet":
		return disabled
	default:
		return slog.LevelWarn
	}
}

// Level resolves the effective level: --verbose always wins.
func Level(verbose bool, configured string) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return LevelFromString(configured)
}
