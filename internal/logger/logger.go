package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vendor-ops-ledger/internal/config"
)

// ParseLevel maps LOG_LEVEL onto a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// NewLogger creates the JSON logger shared by every component of a binary
func NewLogger(cfg *config.Config) *slog.Logger {
	return New(cfg, os.Stdout)
}

// New builds the logger on an arbitrary writer; every record carries the app name and env
func New(cfg *config.Config, w io.Writer) *slog.Logger {
	level := ParseLevel(cfg.Logging.Level)

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})

	logger := slog.New(handler)
	if cfg.Application.Name != "" {
		logger = logger.With("app", cfg.Application.Name, "env", cfg.Application.Env)
	}

	logger.Debug("logger initialized", "level", level.String())

	return logger
}
