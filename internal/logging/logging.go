// Package logging configures the file-backed logger. Stdout belongs to
// the TUI, so all diagnostics go to a log file under the kora home dir.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/koralabs/kora/internal/config"
)

// New builds a zap logger writing to ~/.kora/kora.log. The level comes
// from KORA_LOG_LEVEL (default info). Logging is best-effort: if the
// log file cannot be opened a nop logger is returned so the app still runs.
func New() *zap.Logger {
	dir, err := config.HomeDir()
	if err != nil {
		return zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return zap.NewNop()
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(dir, "kora.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	cfg.Level = zap.NewAtomicLevelAt(levelFromEnv())
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func levelFromEnv() zapcore.Level {
	var level zapcore.Level
	if err := level.Set(os.Getenv("KORA_LOG_LEVEL")); err != nil {
		return zapcore.InfoLevel
	}
	return level
}
