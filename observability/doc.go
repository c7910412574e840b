// Package observability provides OpenTelemetry tracing and metrics.
//
// Until Init (or InitTracer/InitMeter) installs SDK providers, the global
// providers are no-ops, so instrumented code costs almost nothing in tests
// and library use.
//
// Tracing:
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanUpload)
//	defer span.End()
//
// Metrics:
//
//	metrics, err := observability.NewUploadMetrics(observability.Meter(observability.InstrumentationName))
//	metrics.RecordUpload(ctx, observability.UploadRecord{Backend: "local", Status: "ok"})
package observability
