// Package logger configures structured logging for the process and
// adapts it to broadcast.Logger.
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/alkime/broadcast/internal/config"
)

// LevelTrace is one step below slog.LevelDebug, for the conversation
// and listener frame-by-frame chatter that's too noisy even for -debug.
const LevelTrace = slog.Level(-8)

// SetupLogger configures structured logging based on environment.
func SetupLogger(cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	if cfg.Env == "development" {
		logLevel = slog.LevelDebug
	}
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "trace":
		logLevel = LevelTrace
	}

	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

// Adapter narrows a *slog.Logger down to broadcast.Logger, the sink
// the core protocol package depends on.
type Adapter struct {
	log *slog.Logger
}

// NewAdapter wraps log as a broadcast.Logger.
func NewAdapter(log *slog.Logger) Adapter {
	return Adapter{log: log}
}

func (a Adapter) Warn(msg string, kv ...any)  { a.log.Warn(msg, kv...) }
func (a Adapter) Error(msg string, kv ...any) { a.log.Error(msg, kv...) }
func (a Adapter) Trace(msg string, kv ...any) { a.log.Log(context.Background(), LevelTrace, msg, kv...) }
