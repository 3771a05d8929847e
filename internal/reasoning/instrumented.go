package reasoning

import (
	"context"
	"time"

	"github.com/moolen/fitaura/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Recorder receives one observation per completion call.
type Recorder interface {
	ObserveCompletion(backend string, duration time.Duration, err error)
}

// Instrumented decorates a Service with a per-call timeout, a tracing span,
// debug logging and an optional metrics recorder.
type Instrumented struct {
	next     Service
	backend  string
	timeout  time.Duration
	tracer   trace.Tracer
	recorder Recorder
	logger   *logging.Logger
}

// InstrumentOption configures Instrument.
type InstrumentOption func(*Instrumented)

// WithTimeout bounds every call. Zero disables the bound.
func WithTimeout(d time.Duration) InstrumentOption {
	return func(i *Instrumented) { i.timeout = d }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) InstrumentOption {
	return func(i *Instrumented) { i.recorder = r }
}

// WithTracer overrides the tracer (defaults to the global provider).
func WithTracer(t trace.Tracer) InstrumentOption {
	return func(i *Instrumented) { i.tracer = t }
}

// Instrument wraps next. backend labels spans, logs and metrics.
func Instrument(next Service, backend string, opts ...InstrumentOption) *Instrumented {
	i := &Instrumented{
		next:    next,
		backend: backend,
		tracer:  otel.Tracer("fitaura.reasoning"),
		logger:  logging.GetLogger("reasoning"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Complete implements Service.
func (i *Instrumented) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := i.tracer.Start(ctx, "reasoning.complete",
		trace.WithAttributes(
			attribute.String("reasoning.backend", i.backend),
			attribute.Int("reasoning.prompt_chars", len(prompt)),
		))
	defer span.End()

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := i.next.Complete(ctx, prompt)
	elapsed := time.Since(start)

	if i.recorder != nil {
		i.recorder.ObserveCompletion(i.backend, elapsed, err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		i.logger.WithContext(ctx).WarnWithFields("completion failed",
			logging.Field("backend", i.backend),
			logging.Field("duration_ms", elapsed.Milliseconds()),
			logging.Field("error", err.Error()),
		)
		return "", err
	}

	span.SetAttributes(attribute.Int("reasoning.completion_chars", len(text)))
	i.logger.WithContext(ctx).DebugWithFields("completion received",
		logging.Field("backend", i.backend),
		logging.Field("duration_ms", elapsed.Milliseconds()),
		logging.Field("chars", len(text)),
	)
	return text, nil
}
