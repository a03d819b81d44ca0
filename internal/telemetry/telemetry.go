// Package telemetry wires optional OpenTelemetry instrumentation into cv.
//
// Instrumentation is off unless CV_OTEL_ENABLED=true; the disabled path
// installs no-op providers so instrumented call sites cost nothing.
//
// # Environment
//
//	CV_OTEL_ENABLED=true                   turn instrumentation on
//	CV_OTEL_STDOUT=true                    pretty-print spans and metrics locally
//	OTEL_EXPORTER_OTLP_ENDPOINT=host:4318  ship metrics to an OTLP/HTTP collector
//	OTEL_SERVICE_NAME=cv                   override the reported service name
//
// Spans only leave the process in stdout mode; metrics additionally
// support OTLP over HTTP when an endpoint is configured.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const (
	instrumentationScope = "github.com/stackchef/chefvault"

	envEnabled = "CV_OTEL_ENABLED"
	envStdout  = "CV_OTEL_STDOUT"
)

var shutdownFns []func(context.Context) error

// Enabled reports whether instrumentation is active.
func Enabled() bool {
	return os.Getenv(envEnabled) == "true"
}

// Init installs the global tracer and meter providers. When telemetry is
// disabled it installs no-ops and never touches the SDK.
func Init(ctx context.Context, serviceName, version string) error {
	if !Enabled() {
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version),
		),
		resource.WithHost(),
		resource.WithProcess(),
	)
	if err != nil {
		return fmt.Errorf("telemetry: resource: %w", err)
	}

	// Enabled with nothing else configured means dev mode.
	stdout := os.Getenv(envStdout) == "true"
	endpoint := metricsEndpoint()
	if !stdout && endpoint == "" {
		stdout = true
	}

	tp, err := newTracerProvider(res, stdout)
	if err != nil {
		return fmt.Errorf("telemetry: traces: %w", err)
	}
	otel.SetTracerProvider(tp)
	shutdownFns = append(shutdownFns, tp.Shutdown)

	mp, err := newMeterProvider(ctx, res, stdout, endpoint)
	if err != nil {
		return fmt.Errorf("telemetry: metrics: %w", err)
	}
	otel.SetMeterProvider(mp)
	shutdownFns = append(shutdownFns, mp.Shutdown)

	return nil
}

// metricsEndpoint returns the configured OTLP endpoint, preferring the
// metrics-specific variable over the shared one.
func metricsEndpoint() string {
	if ep := os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"); ep != "" {
		return ep
	}
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
}

// newTracerProvider builds the span pipeline. Without stdout mode the
// provider still records span context but exports nothing.
func newTracerProvider(res *resource.Resource, stdout bool) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	if stdout {
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

// newMeterProvider builds the metric pipeline. Stdout and OTLP readers
// can be active at the same time.
func newMeterProvider(ctx context.Context, res *resource.Resource, stdout bool, endpoint string) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if stdout {
		exp, err := stdoutmetric.New()
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(15*time.Second)),
		))
	}

	if endpoint != "" {
		exp, err := newOTLPMetricExporter(ctx, endpoint)
		if err != nil {
			return nil, fmt.Errorf("otlp metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(30*time.Second)),
		))
	}

	return sdkmetric.NewMeterProvider(opts...), nil
}

// Tracer returns a tracer for the given instrumentation name.
func Tracer(name string) trace.Tracer {
	if name == "" {
		name = instrumentationScope
	}
	return otel.Tracer(name)
}

// Meter returns a meter for the given instrumentation name.
func Meter(name string) metric.Meter {
	if name == "" {
		name = instrumentationScope
	}
	return otel.Meter(name)
}

// Shutdown flushes pending spans and metrics. Callers should give it a
// short deadline; calling it when Init never ran is a no-op.
func Shutdown(ctx context.Context) {
	for _, fn := range shutdownFns {
		_ = fn(ctx)
	}
	shutdownFns = nil
}
