package observability

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry tracer with search-specific span creation
// methods.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a new Tracer using the given TracerProvider.
func NewTracer(tp trace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer(TracerName)}
}

// StartParse starts a span covering lexing, parsing and optimization.
func (t *Tracer) StartParse(ctx context.Context, text string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "contactql.parse", trace.WithAttributes(
		QueryTextAttr(text),
	))
}

// StartCompile starts a span covering property resolution and predicate
// compilation.
func (t *Tracer) StartCompile(ctx context.Context, orgID int64, parsed string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "contactql.compile", trace.WithAttributes(
		OrgIDAttr(orgID),
		QueryParsedAttr(parsed),
	))
}

// StartSearch starts a span covering a whole search including evaluation.
func (t *Tracer) StartSearch(ctx context.Context, orgID int64, text string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "contactql.search", trace.WithAttributes(
		OrgIDAttr(orgID),
		QueryTextAttr(text),
	))
}

// RecordError records an error on the span and marks it as failed.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
