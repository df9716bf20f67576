package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimedu/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "test.log")
	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	// Second call returns the same instance
	again, err := InitializeLogger(config.LoggingConfig{Level: "debug"})
	require.NoError(t, err)
	assert.Same(t, logger, again)

	logger.Info("panel loaded", "records", 3)
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(content), &entry))
	assert.Equal(t, "panel loaded", entry["msg"])
	assert.Equal(t, float64(3), entry["records"])
}

func TestNewLoggerFormats(t *testing.T) {
	t.Run("json with trace id", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "console"}, &buf)
		require.NoError(t, err)

		ctx := WithTraceID(context.Background(), "trace-123")
		logger.InfoContext(ctx, "forecast computed")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "trace-123", entry["trace_id"])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "text", Output: "console"}, &buf)
		require.NoError(t, err)

		logger.With("component", "planner").Info("plan computed")
		assert.True(t, strings.Contains(buf.String(), "msg=\"plan computed\""), buf.String())
		assert.Contains(t, buf.String(), "component=planner")
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger(config.LoggingConfig{Level: "warn", Format: "json", Output: "console"}, &buf)
		require.NoError(t, err)

		logger.Info("hidden")
		assert.Empty(t, buf.String())
		logger.Warn("shown")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestTraceIDHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctx = EnsureTraceID(ctx)
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	// existing id is kept
	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)))
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"INFO":    "INFO",
		"warning": "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in).String(), in)
	}
}
