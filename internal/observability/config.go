package observability

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the observability configuration for a searcher.
type Config struct {
	// TracerProvider is the OpenTelemetry tracer provider.
	// If nil, tracing is disabled.
	TracerProvider trace.TracerProvider

	// MeterProvider is the OpenTelemetry meter provider.
	// If nil, metrics collection is disabled.
	MeterProvider metric.MeterProvider

	// EnableServerTiming enables the Server-Timing HTTP response header on
	// the search handler.
	EnableServerTiming bool

	tracer  *Tracer
	metrics *Metrics
}

// Option is a functional option for configuring observability.
type Option func(*Config)

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.TracerProvider = tp
	}
}

// WithMeterProvider sets the meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Config) {
		c.MeterProvider = mp
	}
}

// WithServerTiming enables the Server-Timing HTTP response header.
func WithServerTiming() Option {
	return func(c *Config) {
		c.EnableServerTiming = true
	}
}

// NewConfig creates a new observability configuration with the given
// options and initializes the tracer and metrics.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.TracerProvider != nil {
		cfg.tracer = NewTracer(cfg.TracerProvider)
	} else {
		cfg.tracer = NewNoopTracer()
	}

	if cfg.MeterProvider != nil {
		cfg.metrics = NewMetrics(cfg.MeterProvider)
	} else {
		cfg.metrics = NewNoopMetrics()
	}

	return cfg
}

// Tracer returns the configured tracer, or a no-op tracer if not configured.
func (c *Config) Tracer() *Tracer {
	if c == nil || c.tracer == nil {
		return NewNoopTracer()
	}
	return c.tracer
}

// Metrics returns the configured metrics, or no-op metrics if not configured.
func (c *Config) Metrics() *Metrics {
	if c == nil || c.metrics == nil {
		return NewNoopMetrics()
	}
	return c.metrics
}

// ServerTimingEnabled returns true if Server-Timing headers are enabled.
func (c *Config) ServerTimingEnabled() bool {
	return c != nil && c.EnableServerTiming
}
