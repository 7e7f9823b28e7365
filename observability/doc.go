// Package observability wires OpenTelemetry tracing and metrics for the
// transcription service.
//
// Setup installs OTLP/HTTP exporters when enabled and leaves the global no-op
// providers in place otherwise, so instrumented code never checks:
//
//	shutdown, err := observability.Setup(ctx, cfg, info)
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
//	metrics.JobAdmitted(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanEngineRun)
//	defer span.End()
package observability
