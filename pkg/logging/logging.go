// Package logging configures structured logging for billminder binaries.
// Text output is colored with tint; json output uses slog's JSON handler.
//
// Usage:
//
//	logging.Setup()                           // INFO level, from LOG_LEVEL env
//	logging.SetupWithLevel(slog.LevelDebug)   // explicit level override
//	logging.Configure(os.Stderr, "debug", "json")
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures colored logging at the level specified by LOG_LEVEL env var
// (default: INFO).
func Setup() {
	SetupWithLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
}

// SetupWithLevel configures colored logging at the given level.
func SetupWithLevel(level slog.Level) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, level, "text")))
}

// Configure installs the default logger from config values. An empty level
// falls back to LOG_LEVEL.
func Configure(w io.Writer, level, format string) {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	slog.SetDefault(slog.New(NewHandler(w, ParseLevel(level), format)))
}

// NewHandler returns a handler writing to w. format is "json" or "text".
func NewHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
		NoColor:    !isTerminal(w),
	})
}

// ParseLevel maps debug, warn and error to their slog levels. Anything else
// is INFO.
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

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
