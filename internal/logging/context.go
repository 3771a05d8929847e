package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	spanIDKey  contextKey = "span_id"
	runIDKey   contextKey = "run_id"
)

// TraceIDKey returns the context key for a manually assigned trace ID.
// A valid OpenTelemetry span in the context takes precedence.
func TraceIDKey() interface{} {
	return traceIDKey
}

// SpanIDKey returns the context key for a manually assigned span ID.
func SpanIDKey() interface{} {
	return spanIDKey
}

// WithRunID attaches an orchestration run id that every context-aware log
// line will carry.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext returns the run id set by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// extractContextFields collects trace_id, span_id and run_id from ctx.
// Returns nil if nothing is found.
func extractContextFields(ctx context.Context) map[string]interface{} {
	if ctx == nil {
		return nil
	}

	fields := make(map[string]interface{})

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields["trace_id"] = sc.TraceID().String()
		fields["span_id"] = sc.SpanID().String()
	} else {
		if traceID := ctx.Value(traceIDKey); traceID != nil {
			fields["trace_id"] = traceID
		}
		if spanID := ctx.Value(spanIDKey); spanID != nil {
			fields["span_id"] = spanID
		}
	}

	if runID, ok := RunIDFromContext(ctx); ok {
		fields["run_id"] = runID
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}
