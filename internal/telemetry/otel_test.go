package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/jgoulah/netdash/internal/config"
)

func TestSetupInactiveIsNoop(t *testing.T) {
	off := false
	for name, cfg := range map[string]config.TelemetryConfig{
		"no endpoint": {},
		"disabled":    {Endpoint: "http://localhost:4318", Enabled: &off},
	} {
		t.Run(name, func(t *testing.T) {
			shutdown, err := Setup(context.Background(), cfg)
			require.NoError(t, err)
			require.NoError(t, shutdown(context.Background()))
		})
	}
}

func TestProviderExportsServiceName(t *testing.T) {
	ctx := context.Background()
	exp := tracetest.NewInMemoryExporter()
	tp, err := newProvider(ctx, config.TelemetryConfig{ServiceName: "netdash-test"}, exp)
	require.NoError(t, err)

	_, span := tp.Tracer(instrumentationName).Start(ctx, "dashboard.query")
	span.End()
	require.NoError(t, tp.ForceFlush(ctx))
	require.NoError(t, tp.Shutdown(ctx))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "dashboard.query", spans[0].Name)
	assert.Contains(t, spans[0].Resource.Attributes(), semconv.ServiceName("netdash-test"))
}

func TestProviderSamplesAtRatio(t *testing.T) {
	ctx := context.Background()
	exp := tracetest.NewInMemoryExporter()
	tp, err := newProvider(ctx, config.TelemetryConfig{SampleRatio: 1e-12}, exp)
	require.NoError(t, err)

	for range 20 {
		_, span := tp.Tracer(instrumentationName).Start(ctx, "dashboard.query")
		span.End()
	}
	require.NoError(t, tp.ForceFlush(ctx))
	assert.Empty(t, exp.GetSpans())
}

func TestTracerStartsSpans(t *testing.T) {
	_, span := Tracer().Start(context.Background(), "query")
	defer span.End()
	require.NotNil(t, span)
}
