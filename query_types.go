package contactql

import (
	"github.com/flowline/contactql/internal/predicate"
	"github.com/flowline/contactql/internal/query"
	"github.com/flowline/contactql/internal/schema"
	"github.com/flowline/contactql/internal/store"
)

// ContactQuery re-exports the parsed query type for external consumers.
type ContactQuery = query.ContactQuery

// QueryNode re-exports the query tree node interface.
type QueryNode = query.QueryNode

// Condition re-exports the leaf comparison node.
type Condition = query.Condition

// BoolCombination re-exports the boolean combination node.
type BoolCombination = query.BoolCombination

// SinglePropCombination re-exports the same-property combination node.
type SinglePropCombination = query.SinglePropCombination

// Comparator re-exports the canonical comparator type.
type Comparator = query.Comparator

// BoolOperator re-exports the boolean operator type.
type BoolOperator = query.BoolOperator

// Org re-exports the organization search settings.
type Org = schema.Org

// Field re-exports the custom field descriptor.
type Field = schema.Field

// ValueType re-exports the field value type.
type ValueType = schema.ValueType

// PropMap re-exports the resolved property map.
type PropMap = schema.PropMap

// FieldSource re-exports the custom field lookup collaborator.
type FieldSource = schema.FieldSource

// BoundarySource re-exports the boundary name lookup collaborator.
type BoundarySource = schema.BoundarySource

// Predicate re-exports the compiled predicate node interface.
type Predicate = predicate.Node

// Contact re-exports the stored contact model.
type Contact = store.Contact

// Comparator constants
const (
	ComparatorEqual              = query.ComparatorEqual
	ComparatorContains           = query.ComparatorContains
	ComparatorGreaterThan        = query.ComparatorGreaterThan
	ComparatorGreaterThanOrEqual = query.ComparatorGreaterThanOrEqual
	ComparatorLessThan           = query.ComparatorLessThan
	ComparatorLessThanOrEqual    = query.ComparatorLessThanOrEqual
)

// Boolean operator constants
const (
	BoolAnd = query.BoolAnd
	BoolOr  = query.BoolOr
)

// Field value type constants
const (
	TypeText     = schema.TypeText
	TypeDecimal  = schema.TypeDecimal
	TypeDatetime = schema.TypeDatetime
	TypeState    = schema.TypeState
	TypeDistrict = schema.TypeDistrict
	TypeWard     = schema.TypeWard
)

// ImplicitProp is the sentinel property of a bare query term.
const ImplicitProp = query.ImplicitProp
