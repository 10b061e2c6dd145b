package query

import (
	"strconv"
	"time"

	"github.com/flowline/contactql/internal/predicate"
	"github.com/flowline/contactql/internal/schema"
	"github.com/shopspring/decimal"
)

// Compile compiles a resolved query into a store predicate. The property
// map must cover every property the query references; boundaries resolves
// location field values to boundary IDs at compile time. Compilation is
// all-or-nothing: any unsupported comparator or unconvertible literal fails
// the whole query.
func Compile(q *ContactQuery, org *schema.Org, propMap schema.PropMap, boundaries schema.BoundarySource) (predicate.Node, error) {
	return compileNode(q.Root, org, propMap, boundaries)
}

func compileNode(node QueryNode, org *schema.Org, propMap schema.PropMap, boundaries schema.BoundarySource) (predicate.Node, error) {
	switch n := node.(type) {
	case *SinglePropCombination:
		return compileSingleProp(n, org, propMap, boundaries)
	case *BoolCombination:
		return compileCombination(n, org, propMap, boundaries)
	case *Condition:
		return compileCondition(n, org, propMap, boundaries)
	}
	return nil, errorf("unknown query node %T", node)
}

func compileCombination(b *BoolCombination, org *schema.Org, propMap schema.PropMap, boundaries schema.BoundarySource) (predicate.Node, error) {
	children := make([]predicate.Node, len(b.Children))
	for i, child := range b.Children {
		compiled, err := compileNode(child, org, propMap, boundaries)
		if err != nil {
			return nil, err
		}
		children[i] = compiled
	}
	return predicate.Combine(b.Op == BoolOr, children...), nil
}

// compileSingleProp compiles a same-property combination. For a custom
// field this becomes a single query against the value store scoped to that
// one field, rather than one field-scoped sub-query per child. Any other
// property kind falls back to ordinary combination compilation.
func compileSingleProp(s *SinglePropCombination, org *schema.Org, propMap schema.PropMap, boundaries schema.BoundarySource) (predicate.Node, error) {
	prop := propMap[s.Prop]
	if prop == nil {
		return nil, errorf("unrecognized field: %s", s.Prop)
	}

	if prop.Kind != schema.KindField || anyEmptyEquality(s.Conditions()) {
		// empty-string equality means field absence, which cannot be
		// expressed against a single value row
		return compileCombination(&s.BoolCombination, org, propMap, boundaries)
	}

	conditions := s.Conditions()
	wheres := make([]predicate.Node, len(conditions))
	for i, condition := range conditions {
		where, err := compileFieldWhere(condition, prop.Field, org, boundaries)
		if err != nil {
			return nil, err
		}
		wheres[i] = where
	}

	return predicate.FieldMatch{
		Field: prop.Field,
		Where: predicate.Combine(s.Op == BoolOr, wheres...),
	}, nil
}

func anyEmptyEquality(conditions []*Condition) bool {
	for _, condition := range conditions {
		if condition.Comparator == ComparatorEqual && condition.Value == "" {
			return true
		}
	}
	return false
}

func compileCondition(c *Condition, org *schema.Org, propMap schema.PropMap, boundaries schema.BoundarySource) (predicate.Node, error) {
	// a value without a prop implies query against name or URN, e.g. "bob"
	if c.Prop == ImplicitProp {
		return compileImplicit(c, org), nil
	}

	prop := propMap[c.Prop]
	if prop == nil {
		return nil, errorf("unrecognized field: %s", c.Prop)
	}

	switch prop.Kind {
	case schema.KindField:
		// empty string equality means contacts without that field set
		if c.Comparator == ComparatorEqual && c.Value == "" {
			return predicate.Not{Child: predicate.Exists{Field: prop.Field}}, nil
		}
		where, err := compileFieldWhere(c, prop.Field, org, boundaries)
		if err != nil {
			return nil, err
		}
		return predicate.FieldMatch{Field: prop.Field, Where: where}, nil

	case schema.KindURNScheme:
		if org.IsAnon {
			// URN search is disabled for anonymized orgs
			return predicate.None{}, nil
		}
		return compileURN(c, prop.Scheme)

	case schema.KindAttribute:
		return compileAttribute(c, prop.Attribute)
	}

	return nil, errorf("unrecognized field: %s", c.Prop)
}

// compileImplicit builds the predicate for a bare term: a case-insensitive
// name match OR'd with an address match. Anonymized orgs only allow direct
// contact ID lookup in place of the address match.
func compileImplicit(c *Condition, org *schema.Org) predicate.Node {
	name := predicate.Contains{Subject: predicate.Name(), Value: c.Value}

	var urn predicate.Node
	if org.IsAnon {
		if id, err := strconv.ParseInt(c.Value, 10, 64); err == nil {
			urn = predicate.Compare{Subject: predicate.ID(), Op: predicate.OpEqual, Value: id}
		} else {
			urn = predicate.None{}
		}
	} else {
		urn = predicate.Contains{Subject: predicate.URN(""), Value: c.Value}
	}

	return predicate.Or{Children: []predicate.Node{name, urn}}
}

func compileAttribute(c *Condition, attr string) (predicate.Node, error) {
	if attr != "name" {
		return nil, errorf("unsearchable attribute: %s", attr)
	}

	switch c.Comparator {
	case ComparatorEqual:
		return predicate.Compare{Subject: predicate.Name(), Op: predicate.OpEqual, Value: c.Value}, nil
	case ComparatorContains:
		return predicate.Contains{Subject: predicate.Name(), Value: c.Value}, nil
	}
	return nil, errorf("unsupported comparator %s for contact attribute", c.Comparator)
}

func compileURN(c *Condition, scheme string) (predicate.Node, error) {
	switch c.Comparator {
	case ComparatorEqual:
		return predicate.Compare{Subject: predicate.URN(scheme), Op: predicate.OpEqual, Value: c.Value}, nil
	case ComparatorContains:
		return predicate.Contains{Subject: predicate.URN(scheme), Value: c.Value}, nil
	}
	return nil, errorf("unsupported comparator %s for URN", c.Comparator)
}

// compileFieldWhere builds the value-row constraint for one condition on a
// custom field, dispatching on the field's declared value type. The field
// scoping itself is added by the enclosing FieldMatch.
func compileFieldWhere(c *Condition, field *schema.Field, org *schema.Org, boundaries schema.BoundarySource) (predicate.Node, error) {
	switch field.ValueType {
	case schema.TypeText:
		return compileTextWhere(c)
	case schema.TypeDecimal:
		return compileDecimalWhere(c)
	case schema.TypeDatetime:
		return compileDatetimeWhere(c, org)
	case schema.TypeState, schema.TypeDistrict, schema.TypeWard:
		return compileLocationWhere(c, boundaries)
	}
	return nil, errorf("unrecognized field type '%s'", field.ValueType)
}

func compileTextWhere(c *Condition) (predicate.Node, error) {
	subject := predicate.Col(predicate.ColumnText)

	switch c.Comparator {
	case ComparatorEqual:
		return predicate.Compare{Subject: subject, Op: predicate.OpEqual, Value: c.Value}, nil
	case ComparatorContains:
		return predicate.Contains{Subject: subject, Value: c.Value}, nil
	}
	return nil, errorf("unsupported comparator %s for text field", c.Comparator)
}

var decimalOps = map[Comparator]predicate.Op{
	ComparatorEqual:              predicate.OpEqual,
	ComparatorGreaterThan:        predicate.OpGreaterThan,
	ComparatorGreaterThanOrEqual: predicate.OpGreaterThanOrEqual,
	ComparatorLessThan:           predicate.OpLessThan,
	ComparatorLessThanOrEqual:    predicate.OpLessThanOrEqual,
}

func compileDecimalWhere(c *Condition) (predicate.Node, error) {
	op, ok := decimalOps[c.Comparator]
	if !ok {
		return nil, errorf("unsupported comparator %s for decimal field", c.Comparator)
	}

	value, err := decimal.NewFromString(c.Value)
	if err != nil {
		return nil, errorf("can't convert '%s' to a decimal", c.Value)
	}

	return predicate.Compare{Subject: predicate.Col(predicate.ColumnDecimal), Op: op, Value: value}, nil
}

func compileDatetimeWhere(c *Condition, org *schema.Org) (predicate.Node, error) {
	op, ok := decimalOps[c.Comparator]
	if !ok {
		return nil, errorf("unsupported comparator %s for datetime field", c.Comparator)
	}

	// parse as a local date in the org timezone, then work in UTC
	localDate, ok2 := schema.ParseDate(c.Value, org.Location(), org.DayFirst)
	if !ok2 {
		return nil, errorf("unable to parse date: %s", c.Value)
	}
	dayStart := localDate.UTC()
	dayEnd := dayStart.Add(24 * time.Hour)

	subject := predicate.Col(predicate.ColumnDatetime)

	switch op {
	case predicate.OpEqual:
		// anytime within that 24 hour period
		return predicate.DayRange(subject, dayStart), nil
	case predicate.OpLessThanOrEqual:
		// that day and all previous
		return predicate.Compare{Subject: subject, Op: predicate.OpLessThan, Value: dayEnd}, nil
	case predicate.OpGreaterThan:
		// the day after and all subsequent
		return predicate.Compare{Subject: subject, Op: predicate.OpGreaterThanOrEqual, Value: dayEnd}, nil
	default:
		return predicate.Compare{Subject: subject, Op: op, Value: dayStart}, nil
	}
}

func compileLocationWhere(c *Condition, boundaries schema.BoundarySource) (predicate.Node, error) {
	var exact bool
	switch c.Comparator {
	case ComparatorEqual:
		exact = true
	case ComparatorContains:
		exact = false
	default:
		return nil, errorf("unsupported comparator %s for location field", c.Comparator)
	}

	ids, err := boundaries.BoundaryIDs(c.Value, exact)
	if err != nil {
		return nil, &QueryError{Message: "unable to look up locations", Err: err}
	}

	return predicate.InSet{Subject: predicate.Col(predicate.ColumnLocation), IDs: ids}, nil
}
