// Package logger is the process-wide leveled logger. It wraps log/slog so call
// sites can log with key/value pairs without carrying a logger around.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

// Init configures the logger for the given environment. Production gets JSON
// at info level, everything else gets text at debug level.
func Init(environment string) {
	InitWithWriter(environment, os.Stderr)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(environment string, w io.Writer) {
	var h slog.Handler
	switch strings.ToLower(environment) {
	case "production", "staging":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	current.Store(slog.New(h))
}

// L returns the underlying slog logger.
func L() *slog.Logger {
	return current.Load()
}

func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// Fatal logs at error level and exits the process.
func Fatal(msg string, args ...any) {
	L().Error(msg, args...)
	os.Exit(1)
}
