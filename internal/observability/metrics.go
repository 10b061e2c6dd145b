package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the search-specific metric instruments.
type Metrics struct {
	searchDuration metric.Float64Histogram
	searchCount    metric.Int64Counter
	resultCount    metric.Int64Histogram
	cacheHits      metric.Int64Counter
	errorCount     metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with the given MeterProvider.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(MeterName)
	m := &Metrics{}

	// Errors from instrument creation only occur with invalid parameters;
	// fall back to bare instruments so later recording never panics.
	var err error

	m.searchDuration, err = meter.Float64Histogram(
		"contactql.search.duration",
		metric.WithDescription("Duration of contact searches in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.searchDuration, _ = meter.Float64Histogram("contactql.search.duration")
	}

	m.searchCount, err = meter.Int64Counter(
		"contactql.search.count",
		metric.WithDescription("Total number of contact searches"),
		metric.WithUnit("{search}"),
	)
	if err != nil {
		m.searchCount, _ = meter.Int64Counter("contactql.search.count")
	}

	m.resultCount, err = meter.Int64Histogram(
		"contactql.result.count",
		metric.WithDescription("Number of contacts matched per search"),
		metric.WithUnit("{contact}"),
	)
	if err != nil {
		m.resultCount, _ = meter.Int64Histogram("contactql.result.count")
	}

	m.cacheHits, err = meter.Int64Counter(
		"contactql.parse.cache_hits",
		metric.WithDescription("Parse cache hits and misses"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		m.cacheHits, _ = meter.Int64Counter("contactql.parse.cache_hits")
	}

	m.errorCount, err = meter.Int64Counter(
		"contactql.error.count",
		metric.WithDescription("Total number of query errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.errorCount, _ = meter.Int64Counter("contactql.error.count")
	}

	return m
}

// RecordSearch records metrics for a completed search.
func (m *Metrics) RecordSearch(ctx context.Context, orgID int64, duration time.Duration, results int64) {
	attrs := metric.WithAttributes(OrgIDAttr(orgID))
	m.searchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	m.searchCount.Add(ctx, 1, attrs)
	m.resultCount.Record(ctx, results, attrs)
}

// RecordCacheLookup records a parse cache hit or miss.
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(CacheHitAttr(hit)))
}

// RecordError records a query error occurrence.
func (m *Metrics) RecordError(ctx context.Context, orgID int64, errorType string) {
	m.errorCount.Add(ctx, 1, metric.WithAttributes(
		OrgIDAttr(orgID),
		attribute.String("error.type", errorType),
	))
}
