package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecotech-dashboard/internal/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggerConfig
		json    bool
		debugOn bool
	}{
		{"json info", config.LoggerConfig{Level: "info", Format: "json"}, true, false},
		{"text debug", config.LoggerConfig{Level: "debug", Format: "text"}, false, true},
		{"unknown falls back", config.LoggerConfig{Level: "loud", Format: "xml"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.cfg, &buf)

			assert.Equal(t, tt.debugOn, logger.Enabled(context.Background(), slog.LevelDebug))
			logger.Info("hello", "k", "v")
			assert.Equal(t, tt.json, json.Valid(bytes.TrimSpace(buf.Bytes())), buf.String())
		})
	}
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	id := NewRequestID()
	assert.Len(t, id, 36)
	assert.Equal(t, id, GetRequestID(WithRequestID(ctx, id)))
	assert.NotEqual(t, id, NewRequestID())
}

func TestSpans(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "parent")
	require.Same(t, parent, GetSpan(ctx))
	assert.Len(t, parent.SpanID, 16)
	assert.Empty(t, parent.ParentID)

	_, child := StartSpan(ctx, "child")
	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.NotEqual(t, parent.SpanID, child.SpanID)

	child.SetTag("view", "geo-impact")
	child.SetError(errors.New("boom"))

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	child.End(logger)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "span finished", entry["msg"])
	assert.Equal(t, "child", entry["operation"])
	assert.Equal(t, "ERROR", entry["status"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "geo-impact", entry["view"])
	assert.Equal(t, parent.SpanID, entry["parent_id"])
}
