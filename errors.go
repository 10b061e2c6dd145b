package contactql

import (
	"errors"

	"github.com/flowline/contactql/internal/query"
)

// QueryError re-exports the error type covering everything that can go
// wrong with a search query: lex errors, syntax errors, unrecognized
// properties, unsupported comparators and unconvertible literal values.
type QueryError = query.QueryError

// ErrQuery is the sentinel all query errors wrap.
var ErrQuery = query.ErrQuery

// IsQueryError reports whether err is a query error, i.e. the query itself
// is at fault rather than the store or schema lookup. Query errors are not
// retryable: the same query always fails the same way.
func IsQueryError(err error) bool {
	return errors.Is(err, ErrQuery)
}
