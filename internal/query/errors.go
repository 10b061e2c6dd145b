package query

import (
	"errors"
	"fmt"
)

// ErrQuery is the sentinel all query errors wrap, for use with errors.Is().
var ErrQuery = errors.New("contactql: query error")

// QueryError covers everything that can go wrong with a search query:
// invalid characters, malformed grammar, unrecognized properties,
// unsupported comparators and unconvertible literal values. Retrying the
// same query always yields the same error.
type QueryError struct {
	// Message is a human-readable description naming the offending token,
	// property or value.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap supports errors.Is and errors.As.
func (e *QueryError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrQuery
}

// Is reports whether this error matches ErrQuery.
func (e *QueryError) Is(target error) bool {
	return target == ErrQuery
}

// errorf creates a new query error with a formatted message.
func errorf(format string, args ...any) *QueryError {
	return &QueryError{Message: fmt.Sprintf(format, args...)}
}
