// Package logging configures the process-wide slog.Logger from the
// noxdns config (SPEC_FULL §4.10): one structured line per pipeline event
// (spec.md §6), at the level the event's error kind implies (spec.md §7).
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pinedrop/noxdns/internal/config"
)

// Configure builds a slog.Logger from cfg, sets it as the process default,
// and returns it. cfg.Format "json" selects slog.NewJSONHandler; anything
// else (including the zero value) selects slog.NewTextHandler.
func Configure(cfg config.LoggingConfig) *slog.Logger {
	level := parseLevel(cfg.Level)
	out := io.Writer(os.Stderr)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
