package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingHandler_AttachesServiceAttr(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	handler := NewTracingHandler(slog.NewJSONHandler(&buf, nil), "meerkat")
	logger := slog.New(handler)

	logger.InfoContext(context.Background(), "hello", "key", "value")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "meerkat", record["service"])
	assert.Equal(t, "value", record["key"])
	assert.Equal(t, "hello", record["msg"])

	// No active span: trace attributes stay absent.
	assert.NotContains(t, record, "trace_id")
}

func TestTracingHandler_WithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	handler := NewTracingHandler(slog.NewJSONHandler(&buf, nil), "meerkat")
	logger := slog.New(handler).WithGroup("request").With("id", 7)

	logger.Info("done")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	group, ok := record["request"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(7), group["id"])

	// The service attribute was attached before the group opened.
	assert.Equal(t, "meerkat", record["service"])
}

func TestInit_NoEndpointIsNoop(t *testing.T) {
	providers, err := Init(Config{ServiceName: "meerkat", LogLevel: slog.LevelDebug})
	require.NoError(t, err)
	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Logger)

	_, span := providers.Tracer.Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}
