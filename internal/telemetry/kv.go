package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stackchef/chefvault/internal/storage"
)

const storageScopeName = "github.com/stackchef/chefvault/storage"

// InstrumentedKV wraps storage.KV with OTel tracing and metrics.
// Every method gets a span and is counted in cv.storage.* metrics.
// Use WrapKV to create one; it returns the original store unchanged when
// telemetry is disabled.
type InstrumentedKV struct {
	inner  storage.KV
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// WrapKV returns kv decorated with OTel instrumentation.
// When telemetry is disabled, kv is returned as-is with zero overhead.
func WrapKV(kv storage.KV) storage.KV {
	if !Enabled() {
		return kv
	}
	m := Meter(storageScopeName)
	ops, _ := m.Int64Counter("cv.storage.operations",
		metric.WithDescription("Total storage operations executed"),
	)
	dur, _ := m.Float64Histogram("cv.storage.operation.duration",
		metric.WithDescription("Storage operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("cv.storage.errors",
		metric.WithDescription("Total storage operation errors"),
	)
	return &InstrumentedKV{
		inner:  kv,
		tracer: Tracer(storageScopeName),
		ops:    ops,
		dur:    dur,
		errs:   errs,
	}
}

// op starts a span and records a metric for the named storage operation.
func (s *InstrumentedKV) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("db.operation", name)}, attrs...)
	ctx, span := s.tracer.Start(ctx, "storage."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedKV) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs ...attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	s.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

func (s *InstrumentedKV) Get(ctx context.Context, key string) (string, error) {
	attrs := []attribute.KeyValue{attribute.String("cv.kv.key", key)}
	ctx, span, t := s.op(ctx, "Get", attrs...)
	v, err := s.inner.Get(ctx, key)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedKV) Set(ctx context.Context, key, value string) error {
	attrs := []attribute.KeyValue{
		attribute.String("cv.kv.key", key),
		attribute.Int("cv.kv.value_bytes", len(value)),
	}
	ctx, span, t := s.op(ctx, "Set", attrs...)
	err := s.inner.Set(ctx, key, value)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedKV) Delete(ctx context.Context, key string) error {
	attrs := []attribute.KeyValue{attribute.String("cv.kv.key", key)}
	ctx, span, t := s.op(ctx, "Delete", attrs...)
	err := s.inner.Delete(ctx, key)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedKV) Close() error {
	ctx, span, t := s.op(context.Background(), "Close")
	err := s.inner.Close()
	s.done(ctx, span, t, err)
	return err
}
