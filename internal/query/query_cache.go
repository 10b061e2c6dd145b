package query

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// parsedQueryCache is a bounded cache mapping raw query text to its parsed
// and optimized tree. Queries are repeated heavily by dashboards and
// campaign evaluation, and parsing the same text always yields the same
// tree, so sharing entries across callers is safe: parsed queries are
// immutable.
//
// Keys are xxhash digests of the raw text rather than the text itself so
// that long queries do not pin their full text in memory twice.
//
// Eviction strategy: when the cache reaches capacity the entire map is
// replaced. This is simpler than a true LRU and sufficient for the target
// use-case (a small number of distinct query templates repeated many times).
//
// Thread safety: all methods are safe for concurrent use.
type parsedQueryCache struct {
	mu    sync.RWMutex
	items map[uint64]*ContactQuery
	max   int
}

var globalParseCache = &parsedQueryCache{
	items: make(map[uint64]*ContactQuery, 256),
	max:   256,
}

func (c *parsedQueryCache) get(key uint64) (*ContactQuery, bool) {
	c.mu.RLock()
	q, ok := c.items[key]
	c.mu.RUnlock()
	return q, ok
}

func (c *parsedQueryCache) put(key uint64, q *ContactQuery) {
	c.mu.Lock()
	if len(c.items) >= c.max {
		// evict everything and start fresh rather than tracking entry ages
		c.items = make(map[uint64]*ContactQuery, c.max)
	}
	c.items[key] = q
	c.mu.Unlock()
}

// CachedParse returns the parsed and optimized form of text, consulting the
// global cache first. The returned query MUST NOT be modified by the caller
// because it may be shared with other goroutines. The second return value
// reports whether this was a cache hit.
func CachedParse(text string) (*ContactQuery, bool, error) {
	key := xxhash.Sum64String(text)

	if q, ok := globalParseCache.get(key); ok {
		return q, true, nil
	}

	q, err := Parse(text)
	if err != nil {
		return nil, false, err
	}

	optimized := q.Optimized()
	globalParseCache.put(key, optimized)
	return optimized, false, nil
}
