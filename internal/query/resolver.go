package query

import (
	"slices"
	"strings"

	"github.com/flowline/contactql/internal/schema"
)

// ResolveProps collects all property names referenced by the query and
// matches each against the organization's active custom fields, then the
// searchable contact attributes, then the searchable URN schemes, in that
// order with first match winning. Any name matching none of these fails
// resolution as a whole.
func ResolveProps(q *ContactQuery, org *schema.Org, fields schema.FieldSource) (schema.PropMap, error) {
	names := q.PropNames()

	propMap := make(schema.PropMap, len(names))
	for _, name := range names {
		propMap[name] = nil
	}

	if len(names) > 0 {
		active, err := fields.ActiveFields(org, names)
		if err != nil {
			return nil, &QueryError{Message: "unable to look up fields", Err: err}
		}
		for _, field := range active {
			propMap[field.Key] = &schema.Property{Kind: schema.KindField, Field: field}
		}
	}

	for _, attr := range schema.SearchableAttributes {
		if prop, ok := propMap[attr]; ok && prop == nil {
			propMap[attr] = &schema.Property{Kind: schema.KindAttribute, Attribute: attr}
		}
	}

	for _, scheme := range schema.SearchableSchemes {
		if prop, ok := propMap[scheme]; ok && prop == nil {
			propMap[scheme] = &schema.Property{Kind: schema.KindURNScheme, Scheme: scheme}
		}
	}

	for _, name := range names {
		if propMap[name] == nil {
			return nil, errorf("unrecognized field: %s", name)
		}
	}

	return propMap, nil
}

// ExtractFields resolves the query's properties and returns just the custom
// fields it references, without compiling a predicate.
func ExtractFields(q *ContactQuery, org *schema.Org, fields schema.FieldSource) ([]*schema.Field, error) {
	propMap, err := ResolveProps(q, org, fields)
	if err != nil {
		return nil, err
	}

	resolved := propMap.Fields()
	slices.SortFunc(resolved, func(a, b *schema.Field) int {
		return strings.Compare(a.Key, b.Key)
	})
	return resolved, nil
}
