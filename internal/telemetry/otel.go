// Package telemetry exports dashboard traces over OTLP/HTTP.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/jgoulah/netdash/internal/config"
)

const instrumentationName = "github.com/jgoulah/netdash"

// ShutdownFunc flushes pending spans and stops the exporter
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup installs a tracer provider exporting to cfg.Endpoint. When cfg is
// not active the global no-op provider stays in place.
func Setup(ctx context.Context, cfg config.TelemetryConfig) (ShutdownFunc, error) {
	if !cfg.Active() {
		return noopShutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter for %s: %w", cfg.Endpoint, err)
	}

	tp, err := newProvider(ctx, cfg, exporter)
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}

// newProvider batches spans to exporter, tagged with the service name and
// sampled at the configured ratio unless the parent says otherwise
func newProvider(ctx context.Context, cfg config.TelemetryConfig, exporter sdktrace.SpanExporter) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.GetServiceName())),
	)
	if err != nil {
		return nil, fmt.Errorf("building trace resource: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.GetSampleRatio()))),
	), nil
}

// Tracer returns the dashboard tracer from the global provider
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
