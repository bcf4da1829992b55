package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/alkime/broadcast/internal/config"
	"github.com/alkime/broadcast/internal/logger"

	"github.com/stretchr/testify/require"
)

func TestSetupLoggerRespectsDebugLevel(t *testing.T) {
	cfg := &config.Config{Env: "production", LogLevel: "debug"}
	log := logger.SetupLogger(cfg)
	require.True(t, log.Enabled(nil, slog.LevelDebug)) //nolint:staticcheck // level check only, no handler dereferences ctx
}

func TestAdapterSatisfiesBroadcastLogger(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: logger.LevelTrace})
	adapter := logger.NewAdapter(slog.New(handler))

	adapter.Warn("warn message", "k", "v")
	adapter.Error("error message")
	adapter.Trace("trace message")

	out := buf.String()
	require.Contains(t, out, "warn message")
	require.Contains(t, out, "error message")
	require.Contains(t, out, "trace message")
}
