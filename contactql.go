// Package contactql implements a boolean query language for searching
// contacts by name, URN and custom field values.
//
// A query like
//
//	age > 30 AND (name ~ "john" OR tel = 12345)
//
// is lexed and parsed into a tree of conditions, rewritten into an
// equivalent but cheaper-to-evaluate shape, resolved against the
// organization's field schema, and compiled into a store predicate which a
// GORM-backed store evaluates.
//
// Parsing and compilation are purely functional: queries can be compiled
// concurrently by independent callers without coordination.
package contactql

import (
	"context"
	"log/slog"
	"time"

	"github.com/flowline/contactql/internal/observability"
	"github.com/flowline/contactql/internal/predicate"
	"github.com/flowline/contactql/internal/query"
	"github.com/flowline/contactql/internal/store"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// Parse parses and optimizes a query. Parsed queries are cached: the
// returned query is shared and must not be modified.
func Parse(text string) (*ContactQuery, error) {
	q, _, err := query.CachedParse(text)
	return q, err
}

// ParseRaw parses a query without optimizing or caching it, preserving the
// exact tree shape the grammar produces. Useful for inspecting how a query
// was understood.
func ParseRaw(text string) (*ContactQuery, error) {
	return query.Parse(text)
}

// Compile resolves the query's properties against the organization's
// schema and compiles it into a store predicate.
func Compile(q *ContactQuery, org *Org, fields FieldSource, boundaries BoundarySource) (predicate.Node, error) {
	propMap, err := query.ResolveProps(q, org, fields)
	if err != nil {
		return nil, err
	}
	return query.Compile(q, org, propMap, boundaries)
}

// ExtractFields returns just the custom fields a query references, e.g.
// for permission checks or result column selection, without compiling a
// predicate.
func ExtractFields(org *Org, text string, fields FieldSource) ([]*Field, error) {
	q, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return query.ExtractFields(q, org, fields)
}

// Searcher parses, compiles and evaluates queries against a store.
type Searcher struct {
	store  *store.Store
	logger *slog.Logger
	obs    *observability.Config
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithLogger sets the logger used for per-search debug logging.
func WithLogger(logger *slog.Logger) SearcherOption {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// WithObservability configures tracing, metrics and Server-Timing.
func WithObservability(opts ...observability.Option) SearcherOption {
	return func(s *Searcher) {
		s.obs = observability.NewConfig(opts...)
	}
}

// NewSearcher creates a searcher over the given GORM database.
func NewSearcher(db *gorm.DB, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		store:  store.New(db),
		logger: slog.Default(),
		obs:    observability.NewConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the searcher's store, which also implements FieldSource
// and BoundarySource.
func (s *Searcher) Store() *store.Store { return s.store }

// Org loads an organization's search settings by ID.
func (s *Searcher) Org(ctx context.Context, id int64) (*Org, error) {
	org, err := s.store.Org(ctx, id)
	if err != nil {
		return nil, err
	}
	return org.Schema(), nil
}

// Search parses, compiles and evaluates a query, returning the org's
// active contacts that match.
func (s *Searcher) Search(ctx context.Context, org *Org, text string) ([]*Contact, error) {
	ctx, span := s.obs.Tracer().StartSearch(ctx, org.ID, text)
	defer span.End()
	start := time.Now()

	timing := observability.StartServerTiming(ctx, "parse")
	_, parseSpan := s.obs.Tracer().StartParse(ctx, text)
	q, hit, err := query.CachedParse(text)
	observability.RecordError(parseSpan, err)
	parseSpan.End()
	timing.Stop()
	s.obs.Metrics().RecordCacheLookup(ctx, hit)
	if err != nil {
		return nil, s.fail(ctx, span, org, err)
	}

	timing = observability.StartServerTiming(ctx, "compile")
	_, compileSpan := s.obs.Tracer().StartCompile(ctx, org.ID, q.String())
	compiled, err := Compile(q, org, s.store, s.store)
	observability.RecordError(compileSpan, err)
	compileSpan.End()
	timing.Stop()
	if err != nil {
		return nil, s.fail(ctx, span, org, err)
	}

	timing = observability.StartServerTiming(ctx, "evaluate")
	contacts, err := s.store.SearchContacts(ctx, org, compiled)
	timing.Stop()
	if err != nil {
		return nil, s.fail(ctx, span, org, err)
	}
	span.SetAttributes(observability.ResultCountAttr(int64(len(contacts))))

	s.obs.Metrics().RecordSearch(ctx, org.ID, time.Since(start), int64(len(contacts)))
	s.logger.DebugContext(ctx, "contact search",
		"org_id", org.ID,
		"query", q.String(),
		"result_count", len(contacts),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return contacts, nil
}

func (s *Searcher) fail(ctx context.Context, span trace.Span, org *Org, err error) error {
	observability.RecordError(span, err)
	s.obs.Metrics().RecordError(ctx, org.ID, errorType(err))
	return err
}

func errorType(err error) string {
	if IsQueryError(err) {
		return "query"
	}
	return "internal"
}
