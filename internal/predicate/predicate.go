// Package predicate defines the small algebra of store predicates that the
// query compiler emits. The store interprets these nodes into SQL; nothing
// in this package knows about any particular database.
package predicate

import (
	"time"

	"github.com/flowline/contactql/internal/schema"
)

// Node is a predicate over contacts.
type Node interface {
	node()
}

// Op is a comparison operator on a subject.
type Op string

const (
	OpEqual              Op = "="
	OpGreaterThan        Op = ">"
	OpGreaterThanOrEqual Op = ">="
	OpLessThan           Op = "<"
	OpLessThanOrEqual    Op = "<="
)

// SubjectKind identifies what a leaf predicate compares against.
type SubjectKind int

const (
	// SubjectName is the contact's name attribute.
	SubjectName SubjectKind = iota + 1

	// SubjectID is the contact's internal numeric ID.
	SubjectID

	// SubjectURN is a URN path, optionally scoped to one scheme.
	SubjectURN

	// SubjectColumn is a typed value column of the enclosing FieldMatch.
	SubjectColumn
)

// Column is a typed value column in the field value store.
type Column int

const (
	ColumnText Column = iota + 1
	ColumnDecimal
	ColumnDatetime
	ColumnLocation
)

// Subject names the data a Compare, Contains or InSet leaf applies to.
type Subject struct {
	Kind SubjectKind

	// Scheme scopes a SubjectURN to one scheme; empty means any scheme.
	Scheme string

	// Column selects the value column for a SubjectColumn.
	Column Column
}

// Name is the contact name subject.
func Name() Subject { return Subject{Kind: SubjectName} }

// ID is the contact ID subject.
func ID() Subject { return Subject{Kind: SubjectID} }

// URN is the URN path subject, scoped to scheme if non-empty.
func URN(scheme string) Subject { return Subject{Kind: SubjectURN, Scheme: scheme} }

// Col is a field value column subject, valid only inside a FieldMatch.
func Col(c Column) Subject { return Subject{Kind: SubjectColumn, Column: c} }

// And matches contacts satisfying all child predicates.
type And struct {
	Children []Node
}

// Or matches contacts satisfying any child predicate.
type Or struct {
	Children []Node
}

// Not matches contacts not satisfying the child predicate.
type Not struct {
	Child Node
}

// Compare matches by direct comparison of a subject against a value.
// String comparisons with OpEqual are case-insensitive exact matches.
// Value is a string, int64, decimal.Decimal or time.Time.
type Compare struct {
	Subject Subject
	Op      Op
	Value   any
}

// Contains matches by case-insensitive substring on a textual subject.
type Contains struct {
	Subject Subject
	Value   string
}

// InSet matches when the subject's value is one of the given IDs.
type InSet struct {
	Subject Subject
	IDs     []int64
}

// Exists matches contacts that have any recorded value for the field.
type Exists struct {
	Field *schema.Field
}

// FieldMatch matches contacts having a value row for Field that satisfies
// Where, a tree of And/Or/Compare/Contains/InSet over SubjectColumn leaves.
// All leaves evaluate against the same value row, so a combination of
// conditions on one field becomes a single field-scoped query.
type FieldMatch struct {
	Field *schema.Field
	Where Node
}

// None matches no contacts. Used where a predicate must yield nothing,
// e.g. URN searches on anonymized organizations.
type None struct{}

func (And) node()        {}
func (Or) node()         {}
func (Not) node()        {}
func (Compare) node()    {}
func (Contains) node()   {}
func (InSet) node()      {}
func (Exists) node()     {}
func (FieldMatch) node() {}
func (None) node()       {}

// Combine folds the given predicates pairwise with AND or OR.
func Combine(or bool, children ...Node) Node {
	if len(children) == 1 {
		return children[0]
	}
	if or {
		return Or{Children: children}
	}
	return And{Children: children}
}

// DayRange is a convenience for day-granularity datetime equality: it
// matches values in [start, start+24h).
func DayRange(subject Subject, start time.Time) Node {
	return And{Children: []Node{
		Compare{Subject: subject, Op: OpGreaterThanOrEqual, Value: start},
		Compare{Subject: subject, Op: OpLessThan, Value: start.Add(24 * time.Hour)},
	}}
}
