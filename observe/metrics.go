package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records Graph request and cache telemetry.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly; recording never blocks.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRequest records one Graph API request with duration and error status.
	RecordRequest(ctx context.Context, endpoint, method string, duration time.Duration, err error)

	// RecordCacheAccess records a cache lookup outcome ("hit" or "miss")
	// for the named cache kind.
	RecordCacheAccess(ctx context.Context, kind string, hit bool)

	// RecordCacheRefresh records a completed cache refresh attempt.
	RecordCacheRefresh(ctx context.Context, kind string, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	requestCount  metric.Int64Counter
	requestErrors metric.Int64Counter
	requestDur    metric.Float64Histogram
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
	cacheRefresh  metric.Int64Counter
	refreshErrors metric.Int64Counter
}

// NewMetrics creates a Metrics instance backed by the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &metricsImpl{}
	var err error

	if m.requestCount, err = meter.Int64Counter(
		"graph.request.total",
		metric.WithDescription("Total number of Graph API requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if m.requestErrors, err = meter.Int64Counter(
		"graph.request.errors",
		metric.WithDescription("Number of failed Graph API requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if m.requestDur, err = meter.Float64Histogram(
		"graph.request.duration",
		metric.WithDescription("Graph API request duration"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.cacheHits, err = meter.Int64Counter(
		"graph.cache.hits",
		metric.WithDescription("Cache lookups served without a fetch"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}
	if m.cacheMisses, err = meter.Int64Counter(
		"graph.cache.misses",
		metric.WithDescription("Cache lookups requiring a fetch"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}
	if m.cacheRefresh, err = meter.Int64Counter(
		"graph.cache.refreshes",
		metric.WithDescription("Completed cache refresh attempts"),
		metric.WithUnit("{refresh}"),
	); err != nil {
		return nil, err
	}
	if m.refreshErrors, err = meter.Int64Counter(
		"graph.cache.refresh.errors",
		metric.WithDescription("Failed cache refresh attempts"),
		metric.WithUnit("{refresh}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *metricsImpl) RecordRequest(ctx context.Context, endpoint, method string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("graph.endpoint", endpoint),
		attribute.String("graph.method", method),
	)
	m.requestCount.Add(ctx, 1, attrs)
	m.requestDur.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		m.requestErrors.Add(ctx, 1, attrs)
	}
}

func (m *metricsImpl) RecordCacheAccess(ctx context.Context, kind string, hit bool) {
	attrs := metric.WithAttributes(attribute.String("cache.kind", kind))
	if hit {
		m.cacheHits.Add(ctx, 1, attrs)
	} else {
		m.cacheMisses.Add(ctx, 1, attrs)
	}
}

func (m *metricsImpl) RecordCacheRefresh(ctx context.Context, kind string, err error) {
	attrs := metric.WithAttributes(attribute.String("cache.kind", kind))
	m.cacheRefresh.Add(ctx, 1, attrs)
	if err != nil {
		m.refreshErrors.Add(ctx, 1, attrs)
	}
}

// nopMetrics discards all measurements.
type nopMetrics struct{}

func (nopMetrics) RecordRequest(context.Context, string, string, time.Duration, error) {}
func (nopMetrics) RecordCacheAccess(context.Context, string, bool)                     {}
func (nopMetrics) RecordCacheRefresh(context.Context, string, error)                   {}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }

var _ Metrics = (*metricsImpl)(nil)
