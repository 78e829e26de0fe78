package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "info", "").Info("order placed", slog.String("orderId", "ORD-1"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ORD-1", entry["orderId"])

	buf.Reset()
	NewLogger(&buf, "warn", "text").Info("dropped")
	assert.Empty(t, buf.String())
	NewLogger(&buf, "warn", "text").Warn("kept", slog.String("orderId", "ORD-2"))
	assert.True(t, strings.Contains(buf.String(), "orderId=ORD-2"))
}

func TestInitWithoutExporter(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "none")
	t.Setenv("LOG_LEVEL", "error")
	instruments, shutdown, err := Init(context.Background(), "orders-test")
	require.NoError(t, err)
	require.NotNil(t, instruments.Logger)
	assert.NotNil(t, instruments.Tracer("test"))
	assert.NotNil(t, instruments.Meter("test"))
	assert.NoError(t, shutdown(context.Background()))

	var nilInstruments *Instruments
	assert.NotNil(t, nilInstruments.Tracer("test"))
	assert.NotNil(t, nilInstruments.Meter("test"))
}
