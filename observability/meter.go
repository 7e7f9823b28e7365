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

	"github.com/kbukum/whisperbot/logger"
)

// Metric names.
const (
	MetricJobsAdmitted   = "whisperbot.jobs.admitted"
	MetricJobsRejected   = "whisperbot.jobs.rejected"
	MetricJobsFinished   = "whisperbot.jobs.finished"
	MetricEngineDuration = "whisperbot.engine.duration"
	MetricMessageEdits   = "whisperbot.messages.edits"
	MetricQueueDepth     = "whisperbot.queue.depth"
)

// InitMeter installs a periodic OTLP/HTTP meter provider as the global one.
// The provider must be shut down on exit.
func InitMeter(ctx context.Context, cfg Config, info ServiceInfo) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(ctx, info)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", info.Name,
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the service instruments. A nil *Metrics records nothing.
type Metrics struct {
	meter          metric.Meter
	jobsAdmitted   metric.Int64Counter
	jobsRejected   metric.Int64Counter
	jobsFinished   metric.Int64Counter
	engineDuration metric.Float64Histogram
	messageEdits   metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	jobsAdmitted, err := meter.Int64Counter(MetricJobsAdmitted,
		metric.WithDescription("Jobs that got an admission slot"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricJobsAdmitted, err)
	}

	jobsRejected, err := meter.Int64Counter(MetricJobsRejected,
		metric.WithDescription("Jobs that ended before reaching the engine, by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricJobsRejected, err)
	}

	jobsFinished, err := meter.Int64Counter(MetricJobsFinished,
		metric.WithDescription("Jobs that ran the engine, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricJobsFinished, err)
	}

	engineDuration, err := meter.Float64Histogram(MetricEngineDuration,
		metric.WithDescription("Wall-clock time of one engine invocation"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricEngineDuration, err)
	}

	messageEdits, err := meter.Int64Counter(MetricMessageEdits,
		metric.WithDescription("Status message edits pushed to the transport"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricMessageEdits, err)
	}

	return &Metrics{
		meter:          meter,
		jobsAdmitted:   jobsAdmitted,
		jobsRejected:   jobsRejected,
		jobsFinished:   jobsFinished,
		engineDuration: engineDuration,
		messageEdits:   messageEdits,
	}, nil
}

// RegisterQueueDepth exposes depth as an observable gauge.
func (m *Metrics) RegisterQueueDepth(depth func() int64) error {
	if m == nil {
		return nil
	}
	_, err := m.meter.Int64ObservableGauge(MetricQueueDepth,
		metric.WithDescription("Admitted jobs waiting for or holding the engine"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(depth())
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("creating %s gauge: %w", MetricQueueDepth, err)
	}
	return nil
}

// JobAdmitted counts one admission.
func (m *Metrics) JobAdmitted(ctx context.Context) {
	if m == nil {
		return
	}
	m.jobsAdmitted.Add(ctx, 1)
}

// JobRejected counts a job that ended before the engine ran.
func (m *Metrics) JobRejected(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.jobsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

// EngineFinished records one engine invocation.
func (m *Metrics) EngineFinished(ctx context.Context, model, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobsFinished.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.engineDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("outcome", outcome),
	))
}

// MessageEdited counts one status edit.
func (m *Metrics) MessageEdited(ctx context.Context) {
	if m == nil {
		return
	}
	m.messageEdits.Add(ctx, 1)
}
