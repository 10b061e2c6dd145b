// Package observability provides OpenTelemetry-based instrumentation for
// contact search: tracing of parse/compile/search, metrics, and
// Server-Timing helpers for the HTTP handler.
//
// All features are opt-in. When not configured, no-op implementations are
// used with zero overhead.
package observability

import "go.opentelemetry.io/otel/attribute"

// Instrumentation identity constants
const (
	// TracerName is the instrumentation name for tracing.
	TracerName = "github.com/flowline/contactql"
	// MeterName is the instrumentation name for metrics.
	MeterName = "github.com/flowline/contactql"
)

// Semantic attribute keys following OpenTelemetry conventions.
const (
	AttrOrgID       = "contactql.org_id"
	AttrQueryText   = "contactql.query"
	AttrQueryParsed = "contactql.query.parsed"
	AttrCacheHit    = "contactql.cache_hit"
	AttrResultCount = "contactql.result.count"
)

// OrgIDAttr creates an attribute for the organization ID.
func OrgIDAttr(id int64) attribute.KeyValue {
	return attribute.Int64(AttrOrgID, id)
}

// QueryTextAttr creates an attribute for the raw query text.
func QueryTextAttr(text string) attribute.KeyValue {
	return attribute.String(AttrQueryText, text)
}

// QueryParsedAttr creates an attribute for the canonical query rendering.
func QueryParsedAttr(parsed string) attribute.KeyValue {
	return attribute.String(AttrQueryParsed, parsed)
}

// CacheHitAttr creates an attribute recording a parse cache hit or miss.
func CacheHitAttr(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrCacheHit, hit)
}

// ResultCountAttr creates an attribute for the number of matched contacts.
func ResultCountAttr(count int64) attribute.KeyValue {
	return attribute.Int64(AttrResultCount, count)
}
