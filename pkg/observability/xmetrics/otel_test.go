package xmetrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestObserver(t *testing.T, opts ...Option) (Observer, *tracetest.InMemoryExporter, *sdkmetric.ManualReader) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	obs, err := NewOTelObserver(append([]Option{
		WithTracerProvider(tp),
		WithMeterProvider(mp),
	}, opts...)...)
	require.NoError(t, err)
	return obs, exporter, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewOTelObserver_Options(t *testing.T) {
	obs, err := NewOTelObserver(
		WithInstrumentationName(""),
		WithTracerProvider(nil),
		WithMeterProvider(nil),
	)
	require.NoError(t, err)
	assert.NotNil(t, obs)

	_, err = NewOTelObserver(nil)
	assert.ErrorIs(t, err, ErrNilOption)

	_, err = NewOTelObserver(WithDurationBuckets(0.1, 0.05))
	assert.ErrorIs(t, err, ErrInvalidBuckets)
}

func TestOTelObserver_SuccessfulCall(t *testing.T) {
	obs, exporter, reader := newTestObserver(t, WithDurationBuckets(0.001, 0.01, 0.1))

	ctx, span := obs.Start(context.Background(), SpanOptions{
		Component: "order.Service",
		Operation: "Create",
		Attrs:     []Attr{String("tenant", "t1"), Int("n", 2), Bool("retry", false), Any("x", 1.5), {Key: "", Value: "skip"}},
	})
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
	span.End(Result{Attrs: []Attr{Any("rows", int64(3))}})
	span.End(Result{Err: errors.New("ignored second end")})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "order.Service.Create", spans[0].Name)
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.String("category", "order.Service"))
	assert.Contains(t, spans[0].Attributes, attribute.Int64("rows", 3))

	metrics := collect(t, reader)
	total, ok := metrics["xaop.call.total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, total.DataPoints, 1)
	assert.Equal(t, int64(1), total.DataPoints[0].Value)
	status, _ := total.DataPoints[0].Attributes.Value("status")
	assert.Equal(t, "ok", status.AsString())

	hist, ok := metrics["xaop.call.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, []float64{0.001, 0.01, 0.1}, hist.DataPoints[0].Bounds)
}

func TestOTelObserver_FailedCall(t *testing.T) {
	obs, exporter, reader := newTestObserver(t)

	_, span := obs.Start(context.Background(), SpanOptions{Kind: KindClient})
	span.End(Result{Err: errors.New("boom")})

	_, span = obs.Start(context.Background(), SpanOptions{Kind: KindServer})
	span.End(Result{Status: StatusError})

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "unknown.unknown", spans[0].Name)
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "boom", spans[0].Status.Description)
	assert.Equal(t, "call failed", spans[1].Status.Description)
	assert.Equal(t, trace.SpanKindServer, spans[1].SpanKind)

	total := collect(t, reader)["xaop.call.total"].Data.(metricdata.Sum[int64])
	require.Len(t, total.DataPoints, 1)
	assert.Equal(t, int64(2), total.DataPoints[0].Value)
	status, _ := total.DataPoints[0].Attributes.Value("status")
	assert.Equal(t, "error", status.AsString())
}

func TestOTelObserver_ChildOfExistingSpan(t *testing.T) {
	obs, exporter, _ := newTestObserver(t)

	ctx, parent := obs.Start(context.Background(), SpanOptions{Component: "a", Operation: "outer"})
	_, child := obs.Start(ctx, SpanOptions{Component: "a", Operation: "inner"})
	child.End(Result{})
	parent.End(Result{})

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func TestOTelObserver_NilContext(t *testing.T) {
	obs, _, _ := newTestObserver(t)
	//nolint:staticcheck // nil ctx 是被测行为
	ctx, span := obs.Start(nil, SpanOptions{})
	require.NotNil(t, ctx)
	span.End(Result{})
}
