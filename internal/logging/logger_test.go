package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func captureLogs(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	t.Setenv("LOG_TIMESTAMP", "2026-01-01T00:00:00Z")
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	SetOutput(out, errOut)
	t.Cleanup(func() {
		SetOutput(nil, nil)
		require.NoError(t, Reconfigure("info", nil))
	})
	return out, errOut
}

func TestLogger_Format(t *testing.T) {
	out, _ := captureLogs(t)
	require.NoError(t, Initialize("info"))

	GetLogger("orchestrator").InfoWithFields("run finished",
		Field("termination", "finished"),
		Field("steps", 3),
	)

	assert.Equal(t, "[2026-01-01T00:00:00Z] [INFO] orchestrator: run finished | steps=3 termination=finished\n", out.String())
}

func TestLogger_LevelRouting(t *testing.T) {
	out, errOut := captureLogs(t)
	require.NoError(t, Initialize("warn"))

	logger := GetLogger("apiserver")
	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("slow request %dms", 1200)
	logger.ErrorWithErr("write failed", errors.New("broken pipe"))

	assert.Equal(t, "[2026-01-01T00:00:00Z] [WARN] apiserver: slow request 1200ms\n", out.String())
	assert.Equal(t, "[2026-01-01T00:00:00Z] [ERROR] apiserver: write failed - broken pipe\n", errOut.String())
}

func TestLogger_PackageOverrides(t *testing.T) {
	out, _ := captureLogs(t)
	require.NoError(t, Initialize("error", map[string]string{
		"agent.*":          "debug",
		"agent.supervisor": "warn",
	}))

	GetLogger("agent.intent").Debug("intent debug")
	GetLogger("agent.supervisor").Info("supervisor info")
	GetLogger("store").Info("store info")

	logs := out.String()
	assert.Contains(t, logs, "intent debug")
	assert.NotContains(t, logs, "supervisor info")
	assert.NotContains(t, logs, "store info")
}

func TestReconfigure_AffectsExistingLoggers(t *testing.T) {
	out, _ := captureLogs(t)
	require.NoError(t, Initialize("info"))

	logger := GetLogger("config")
	logger.Debug("before")

	require.NoError(t, Reconfigure("debug", nil))
	logger.Debug("after")

	assert.NotContains(t, out.String(), "before")
	assert.Contains(t, out.String(), "after")
	assert.Equal(t, DEBUG, DefaultLevel())
}

func TestReconfigure_InvalidLeavesStateUntouched(t *testing.T) {
	captureLogs(t)
	require.NoError(t, Initialize("info", map[string]string{"store": "debug"}))

	assert.Error(t, Reconfigure("loud", nil))
	assert.Error(t, Reconfigure("debug", map[string]string{"store": "chatty"}))

	assert.Equal(t, INFO, DefaultLevel())
	assert.Equal(t, DEBUG, GetPackageLogLevel("store"))
}

func TestLogger_ContextFields(t *testing.T) {
	out, _ := captureLogs(t)
	require.NoError(t, Initialize("info"))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))
	ctx = WithRunID(ctx, "run-1")

	GetLogger("orchestrator").WithContext(ctx).WithField("user_id", "u1").Info("started")

	line := out.String()
	assert.Contains(t, line, "trace_id=4bf92f3577b34da6a3ce929d0e0e4736")
	assert.Contains(t, line, "span_id=00f067aa0ba902b7")
	assert.Contains(t, line, "run_id=run-1")
	assert.Contains(t, line, "user_id=u1")
}

func TestLogger_ManualTraceKeys(t *testing.T) {
	out, _ := captureLogs(t)
	require.NoError(t, Initialize("info"))

	ctx := context.WithValue(context.Background(), TraceIDKey(), "trace-123")
	GetLogger("x").WithContext(ctx).Info("hello")

	assert.True(t, strings.HasSuffix(out.String(), "| trace_id=trace-123\n"))
}

func TestLogger_FieldsAreImmutable(t *testing.T) {
	base := GetLogger("x").WithField("a", 1)
	child := base.WithField("b", 2)

	assert.Len(t, base.fields, 1)
	assert.Len(t, child.fields, 2)
}

func TestFatal_CallsExit(t *testing.T) {
	_, errOut := captureLogs(t)
	require.NoError(t, Initialize("info"))

	var code int
	prev := exitFunc
	exitFunc = func(c int) { code = c }
	t.Cleanup(func() { exitFunc = prev })

	GetLogger("main").Fatal("cannot start: %s", "port in use")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "[FATAL] main: cannot start: port in use")
}

func TestParseLevel(t *testing.T) {
	for input, want := range map[string]LogLevel{"debug": DEBUG, " INFO ": INFO, "warning": WARN, "Error": ERROR, "fatal": FATAL} {
		got, err := ParseLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
	_, err := ParseLevel("trace")
	assert.Error(t, err)
}
