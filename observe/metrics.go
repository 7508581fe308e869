package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records dispatch metrics for commands.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordDispatch records a command dispatch with duration, cache
	// outcome and error status.
	RecordDispatch(ctx context.Context, meta CommandMeta, duration time.Duration, cacheHit bool, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	cacheHits    metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"command.dispatch.total",
		metric.WithDescription("Total number of command dispatches"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"command.dispatch.errors",
		metric.WithDescription("Total number of failed command dispatches"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"command.dispatch.cache_hits",
		metric.WithDescription("Total number of dispatches served from cache"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"command.dispatch.duration_ms",
		metric.WithDescription("Command dispatch duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		cacheHits:    cacheHits,
		durationHist: durationHist,
	}, nil
}

// RecordDispatch records metrics for one command dispatch.
func (m *metricsImpl) RecordDispatch(ctx context.Context, meta CommandMeta, duration time.Duration, cacheHit bool, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("command.name", meta.Name),
	}
	if meta.Subcommand != "" {
		attrs = append(attrs, attribute.String("command.subcommand", meta.Subcommand))
	}

	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	if cacheHit {
		m.cacheHits.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordDispatch(ctx context.Context, meta CommandMeta, duration time.Duration, cacheHit bool, err error) {
}

// NopMetrics returns a metrics recorder that discards everything.
func NopMetrics() Metrics {
	return &noopMetrics{}
}
