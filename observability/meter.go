package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/streamupload/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.WithComponent("observability").Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric names.
const (
	MetricUploadTotal           = "upload.total"
	MetricUploadBytes           = "upload.bytes"
	MetricUploadDuration        = "upload.duration"
	MetricUploadCleanupFailures = "upload.cleanup.failures"
)

// Upload outcome statuses.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// UploadMetrics holds the instruments recorded per upload.
type UploadMetrics struct {
	total           metric.Int64Counter
	bytes           metric.Int64Counter
	duration        metric.Float64Histogram
	cleanupFailures metric.Int64Counter
}

// UploadRecord is the outcome of one upload.
type UploadRecord struct {
	Backend  string
	Status   string
	Code     string
	Bytes    uint64
	Duration time.Duration
}

// NewUploadMetrics creates the upload instruments on the given meter.
func NewUploadMetrics(meter metric.Meter) (*UploadMetrics, error) {
	total, err := meter.Int64Counter(MetricUploadTotal,
		metric.WithDescription("Uploads by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricUploadTotal, err)
	}

	bytes, err := meter.Int64Counter(MetricUploadBytes,
		metric.WithDescription("Bytes handed to storage backends"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricUploadBytes, err)
	}

	duration, err := meter.Float64Histogram(MetricUploadDuration,
		metric.WithDescription("Duration of uploads in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricUploadDuration, err)
	}

	cleanupFailures, err := meter.Int64Counter(MetricUploadCleanupFailures,
		metric.WithDescription("Partial artifacts that could not be deleted"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricUploadCleanupFailures, err)
	}

	return &UploadMetrics{
		total:           total,
		bytes:           bytes,
		duration:        duration,
		cleanupFailures: cleanupFailures,
	}, nil
}

// RecordUpload records one finished upload. A nil receiver is a no-op.
func (m *UploadMetrics) RecordUpload(ctx context.Context, r UploadRecord) {
	if m == nil {
		return
	}
	backend := attribute.String(AttrBackend, r.Backend)
	m.total.Add(ctx, 1, metric.WithAttributes(
		backend,
		attribute.String(AttrStatus, r.Status),
		attribute.String(AttrErrorCode, r.Code),
	))
	m.bytes.Add(ctx, int64(r.Bytes), metric.WithAttributes(backend))
	m.duration.Record(ctx, r.Duration.Seconds(), metric.WithAttributes(
		backend,
		attribute.String(AttrStatus, r.Status),
	))
}

// RecordCleanupFailure counts a failed partial-artifact deletion.
func (m *UploadMetrics) RecordCleanupFailure(ctx context.Context, backend string) {
	if m == nil {
		return
	}
	m.cleanupFailures.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrBackend, backend)))
}
