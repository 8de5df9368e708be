// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/litterpick/litterpick/internal/logging"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "invalid JSON: %s", buf.String())
	return entry
}

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("litterpick", "1.2.3", "json", "info", &buf)

	logger.Info("volunteer registered", "volunteer_id", 7)

	entry := decode(t, &buf)
	assert.Equal(t, "volunteer registered", entry["msg"])
	assert.Equal(t, "litterpick", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.InDelta(t, 7, entry["volunteer_id"], 0)
	assert.NotContains(t, entry, "request_id")
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("litterpick", "dev", "text", "info", &buf)

	logger.Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "service=litterpick")
}

func TestSetup_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("litterpick", "dev", "json", "warn", &buf)

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("verbose"))
}

func TestHandler_RequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("litterpick", "dev", "json", "info", &buf)

	ctx := logging.WithRequestID(context.Background(), "01HZX")
	assert.Equal(t, "01HZX", logging.RequestID(ctx))
	assert.Empty(t, logging.RequestID(context.Background()))

	logger.InfoContext(ctx, "request")
	assert.Equal(t, "01HZX", decode(t, &buf)["request_id"])
}

func TestHandler_TraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("litterpick", "dev", "json", "info", &buf)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.InfoContext(ctx, "traced")

	entry := decode(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("litterpick", "dev", "json", "info", &buf).
		With("component", "httpapi").
		WithGroup("req")

	logger.Info("grouped", "path", "/auth/login")

	entry := decode(t, &buf)
	assert.Equal(t, "httpapi", entry["component"])
	group, ok := entry["req"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/auth/login", group["path"])
}
