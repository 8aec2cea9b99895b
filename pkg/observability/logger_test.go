package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("text format uses tint without colors on buffers", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatText, Output: &buf, ServiceName: "gatherly"})

		logger.Info("invitation created", "status", "pending")
		out := buf.String()
		assert.Contains(t, out, "invitation created")
		assert.Contains(t, out, "status=pending")
		assert.Contains(t, out, "service=gatherly")
		assert.NotContains(t, out, "\x1b[")
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatJSON, Output: &buf, ServiceName: "gatherly", ServiceVersion: "1.0.0"})

		logger.Info("webhook ignored", "status", "created")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "webhook ignored", entry["msg"])
		assert.Equal(t, "created", entry["status"])
		assert.Equal(t, "gatherly", entry["service"])
		assert.Equal(t, "1.0.0", entry["version"])
	})

	t.Run("respects level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelWarn, Format: LogFormatJSON, Output: &buf})

		logger.Info("hidden")
		logger.Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("adds context ids", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf})

		ctx := WithCorrelationID(context.Background(), "corr-1")
		ctx = WithRequestID(ctx, "req-1")
		ctx = WithMemberID(ctx, "member-1")
		logger.With("component", "api").InfoContext(ctx, "handled")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "corr-1", entry[CorrelationIDKey])
		assert.Equal(t, "req-1", entry[RequestIDKey])
		assert.Equal(t, "member-1", entry[MemberIDKey])
		assert.Equal(t, "api", entry["component"])
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, CorrelationIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = WithCorrelationID(ctx, "")
	assert.NotEmpty(t, CorrelationIDFromContext(ctx))
	assert.NotEqual(t, uuid.Nil, CorrelationUUID(ctx))
	assert.Equal(t, uuid.Nil, CorrelationUUID(WithCorrelationID(context.Background(), "not-a-uuid")))
}
