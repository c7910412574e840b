package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewUploadMetrics_Noop(t *testing.T) {
	m, err := NewUploadMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewUploadMetrics: %v", err)
	}
	m.RecordUpload(context.Background(), UploadRecord{Backend: "local", Status: StatusOK})
	m.RecordCleanupFailure(context.Background(), "local")
}

func TestUploadMetrics_NilReceiver(t *testing.T) {
	var m *UploadMetrics
	m.RecordUpload(context.Background(), UploadRecord{})
	m.RecordCleanupFailure(context.Background(), "local")
}

func TestRecordUpload(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := NewUploadMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewUploadMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordUpload(ctx, UploadRecord{Backend: "local", Status: StatusOK, Bytes: 32, Duration: time.Millisecond})
	m.RecordUpload(ctx, UploadRecord{Backend: "local", Status: StatusRejected, Code: "SIZE_EXCEEDED", Bytes: 10})
	m.RecordCleanupFailure(ctx, "objectstore")

	got := collect(t, reader)

	total, ok := got[MetricUploadTotal].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s missing or wrong type: %#v", MetricUploadTotal, got[MetricUploadTotal])
	}
	if len(total.DataPoints) != 2 {
		t.Errorf("expected 2 outcome series, got %d", len(total.DataPoints))
	}

	bytes, ok := got[MetricUploadBytes].Data.(metricdata.Sum[int64])
	if !ok || len(bytes.DataPoints) != 1 || bytes.DataPoints[0].Value != 42 {
		t.Errorf("unexpected %s: %#v", MetricUploadBytes, got[MetricUploadBytes].Data)
	}

	if _, ok := got[MetricUploadDuration].Data.(metricdata.Histogram[float64]); !ok {
		t.Errorf("%s missing", MetricUploadDuration)
	}

	cleanup, ok := got[MetricUploadCleanupFailures].Data.(metricdata.Sum[int64])
	if !ok || cleanup.DataPoints[0].Value != 1 {
		t.Errorf("unexpected %s: %#v", MetricUploadCleanupFailures, got[MetricUploadCleanupFailures].Data)
	}
}

func TestStartSpan_Noop(t *testing.T) {
	ctx, span := StartSpan(context.Background(), SpanUpload)
	defer span.End()
	if ctx == nil || span == nil {
		t.Fatal("expected context and span")
	}
	SetSpanError(span, fmt.Errorf("ignored on non-recording span"))
	SetSpanError(nil, fmt.Errorf("nil span"))
}

func TestSetSpanError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), SpanUpload)
	SetSpanError(span, fmt.Errorf("backend down"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("status = %v, want Error", spans[0].Status.Code)
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected recorded error event")
	}
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.5, "ParentBased"},
	}
	for _, tc := range tests {
		desc := samplerFor(tc.rate).Description()
		if len(desc) < len(tc.want) || desc[:len(tc.want)] != tc.want {
			t.Errorf("samplerFor(%v) = %q, want prefix %q", tc.rate, desc, tc.want)
		}
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource("streamupload", "1.0.0", "test")
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	found := false
	for _, kv := range res.Attributes() {
		if string(kv.Key) == "service.name" && kv.Value.AsString() == "streamupload" {
			found = true
		}
	}
	if !found {
		t.Error("expected service.name attribute")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" || cfg.SampleRate != 1.0 || cfg.Interval != 15*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{}, "svc", "1.0.0", "test")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
