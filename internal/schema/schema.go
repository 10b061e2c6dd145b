// Package schema describes the per-organization search schema: which
// property names resolve to contact attributes, URN schemes or custom
// fields, and the organization settings needed to interpret literals.
package schema

import (
	"time"

	"github.com/google/uuid"
)

// ValueType is the declared type of a custom field's values.
type ValueType string

const (
	TypeText     ValueType = "T"
	TypeDecimal  ValueType = "N"
	TypeDatetime ValueType = "D"
	TypeState    ValueType = "S"
	TypeDistrict ValueType = "I"
	TypeWard     ValueType = "W"
)

// IsLocation reports whether the type holds an administrative boundary.
func (t ValueType) IsLocation() bool {
	return t == TypeState || t == TypeDistrict || t == TypeWard
}

// Org carries the organization settings that affect query compilation.
type Org struct {
	ID       int64
	UUID     uuid.UUID
	Name     string
	Timezone *time.Location

	// DayFirst selects DD-MM-YYYY over MM-DD-YYYY for ambiguous dates.
	DayFirst bool

	// IsAnon disables searching of identifying URN data.
	IsAnon bool
}

// Location returns the org timezone, defaulting to UTC.
func (o *Org) Location() *time.Location {
	if o == nil || o.Timezone == nil {
		return time.UTC
	}
	return o.Timezone
}

// Field describes one active custom field of an organization.
type Field struct {
	ID        int64
	UUID      uuid.UUID
	OrgID     int64
	Key       string
	Label     string
	ValueType ValueType
}

// PropertyKind discriminates the variants of a resolved property.
type PropertyKind int

const (
	KindAttribute PropertyKind = iota + 1
	KindURNScheme
	KindField
)

// Property is a resolved property descriptor. Exactly one of Attribute,
// Scheme or Field is set, according to Kind.
type Property struct {
	Kind      PropertyKind
	Attribute string
	Scheme    string
	Field     *Field
}

// PropMap maps each property name referenced in a query to its resolved
// descriptor. It is built once per compilation and never mutated after.
type PropMap map[string]*Property

// Fields returns the custom fields in the map, in no particular order.
func (m PropMap) Fields() []*Field {
	var fields []*Field
	for _, prop := range m {
		if prop.Kind == KindField {
			fields = append(fields, prop.Field)
		}
	}
	return fields
}

// Attributes of contacts that can be searched directly.
var SearchableAttributes = []string{"name"}

// URN schemes that can be searched directly.
var SearchableSchemes = []string{"tel", "twitter"}

// FieldSource looks up an organization's active custom fields by key.
// Implemented by the store; may be backed by a cache.
type FieldSource interface {
	ActiveFields(org *Org, keys []string) ([]*Field, error)
}

// BoundarySource resolves administrative boundary names to boundary IDs.
// Implemented by the store.
type BoundarySource interface {
	// BoundaryIDs returns the IDs of boundaries whose name matches the
	// value, exactly or as a substring, case-insensitively.
	BoundaryIDs(name string, exact bool) ([]int64, error)
}
