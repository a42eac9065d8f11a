package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, "info", "json"))

	logger.Info("upload processed", "lines", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "upload processed", entry["msg"])
	assert.Equal(t, float64(3), entry["lines"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestNewHandler_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, "info", "text"))

	logger.Info("upload processed", "file_name", "orders.txt")

	out := buf.String()
	assert.Contains(t, out, `msg="upload processed"`)
	assert.Contains(t, out, "file_name=orders.txt")
}

func TestNewHandler_Pretty(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, "info", "pretty"))

	logger.Info("upload processed", "lines", 3)

	out := buf.String()
	assert.Contains(t, out, "upload processed")
	assert.Contains(t, out, "lines")
}

func TestNewHandler_LevelFilters(t *testing.T) {
	for _, format := range []string{"json", "text", "pretty"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(&buf, "warn", format))

			logger.Info("hidden")
			assert.Empty(t, buf.String())

			logger.Warn("shown")
			assert.Contains(t, buf.String(), "shown")
		})
	}
}

func TestFromContext_RequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(NewHandler(&buf, "info", "json")))
	t.Cleanup(func() { slog.SetDefault(prev) })

	var ctx context.Context
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, ctx)

	WithFields(ctx, "upload_id", "abc").Info("done")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, middleware.GetReqID(ctx), entry["request_id"])
	assert.Equal(t, "abc", entry["upload_id"])
}

func TestFromContext_NoRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(NewHandler(&buf, "info", "text")))
	t.Cleanup(func() { slog.SetDefault(prev) })

	FromContext(context.Background()).Info("plain")

	assert.False(t, strings.Contains(buf.String(), "request_id"))
}
