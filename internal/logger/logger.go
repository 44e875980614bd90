// Package logger exposes a minimal leveled logging facade so the rest
// of the codebase does not depend on a concrete logging library.
package logger

import (
	"os"
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Logger is the subset of logging the application needs.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Log is the process-wide logger. It works at info level even when
// InitFromEnv is never called.
var Log Logger = New("info")

// InitFromEnv reads the log level from the given environment variable
// and reinitializes the global logger. Empty or unknown values fall
// back to info.
func InitFromEnv(envKey string) {
	level := strings.ToLower(strings.TrimSpace(os.Getenv(envKey)))
	if level == "" {
		level = "info"
	}
	Log = New(level)
}

// New builds a gookit/slog console logger for the given level name.
func New(level string) Logger {
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewConsoleHandler(levels)
	return slog.NewWithHandlers(h)
}
