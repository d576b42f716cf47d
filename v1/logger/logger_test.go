package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(tracing bool) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewFromZap(zap.New(core), tracing), logs
}

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel(Debug))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(Info))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(Warning))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel(Error))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestFieldsAndError(t *testing.T) {
	log, logs := newObservedLogger(false)

	log.Warn("slow request", errors.New("boom"), map[string]interface{}{"path": "/a"}, map[string]interface{}{"path": "/b"})

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "/b", fields["path"])
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestWithContextAddsTraceFields(t *testing.T) {
	log, logs := newObservedLogger(true)

	log.InfoWithContext(spanContext(t), "span started", nil, nil)
	log.DebugWithContext(context.Background(), "no span", nil, nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entries[0].ContextMap()["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entries[0].ContextMap()["span_id"])
	assert.NotContains(t, entries[1].ContextMap(), "trace_id")
}

func TestWithContextTracingDisabled(t *testing.T) {
	log, logs := newObservedLogger(false)

	log.ErrorWithContext(spanContext(t), "failed", nil, nil)

	require.Len(t, logs.All(), 1)
	assert.NotContains(t, logs.All()[0].ContextMap(), "trace_id")
}

func TestNewLoggerClientDefaults(t *testing.T) {
	log := NewLoggerClient(Config{Level: Debug})
	require.NotNil(t, log.Zap)
	assert.True(t, log.Zap.Core().Enabled(zapcore.DebugLevel))
}

func TestJSONEntry(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(Config{ServiceName: "edge", EnableTracing: true}, zapcore.AddSync(&buf))

	log.InfoWithContext(spanContext(t), "span finished", nil, map[string]interface{}{"status": 200})
	log.Debug("dropped", nil, nil)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "span finished", entry["msg"])
	assert.Equal(t, "edge", entry["service"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Contains(t, entry, "timestamp")
	assert.Contains(t, entry, "pid")
	assert.Contains(t, entry, "caller")
}

func TestConsoleEncoding(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(Config{Encoding: EncodingConsole}, zapcore.AddSync(&buf))

	log.Warn("slow request", nil, nil)

	line := buf.String()
	assert.Contains(t, line, "WARN")
	assert.Contains(t, line, "slow request")
	assert.False(t, strings.HasPrefix(line, "{"))
}

func TestIgnoreConsoleSyncError(t *testing.T) {
	assert.NoError(t, ignoreConsoleSyncError(nil))
	assert.NoError(t, ignoreConsoleSyncError(syscall.EINVAL))
	assert.NoError(t, ignoreConsoleSyncError(syscall.ENOTTY))
	err := errors.New("disk full")
	assert.Equal(t, err, ignoreConsoleSyncError(err))
}
