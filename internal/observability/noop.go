package observability

import (
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// NewNoopTracer creates a tracer that does nothing.
func NewNoopTracer() *Tracer {
	return &Tracer{tracer: tracenoop.NewTracerProvider().Tracer("")}
}

// NewNoopMetrics creates metrics that do nothing.
func NewNoopMetrics() *Metrics {
	meter := noop.NewMeterProvider().Meter("")
	m := &Metrics{}

	// the noop meter never returns errors, but the results must be checked
	m.searchDuration, _ = meter.Float64Histogram("contactql.search.duration") //nolint:errcheck
	m.searchCount, _ = meter.Int64Counter("contactql.search.count")           //nolint:errcheck
	m.resultCount, _ = meter.Int64Histogram("contactql.result.count")         //nolint:errcheck
	m.cacheHits, _ = meter.Int64Counter("contactql.parse.cache_hits")         //nolint:errcheck
	m.errorCount, _ = meter.Int64Counter("contactql.error.count")             //nolint:errcheck

	return m
}
