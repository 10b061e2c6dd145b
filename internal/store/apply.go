package store

import (
	"fmt"
	"strings"

	"github.com/flowline/contactql/internal/predicate"
)

// matchNothing is a condition no row satisfies, used for predicates that
// must yield no contacts (predicate.None, empty ID sets).
const matchNothing = "1 = 0"

// BuildCondition interprets a compiled predicate into a WHERE condition
// string and arguments over the contacts table. Text comparisons are
// case-insensitive; URN and field predicates become IN sub-selects against
// the contact_urns and contact_values tables.
func BuildCondition(node predicate.Node) (string, []any, error) {
	switch p := node.(type) {
	case predicate.And:
		return buildLogical(p.Children, "AND")
	case predicate.Or:
		return buildLogical(p.Children, "OR")
	case predicate.Not:
		inner, args, err := BuildCondition(p.Child)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("NOT (%s)", inner), args, nil
	case predicate.Compare:
		return buildCompare(p)
	case predicate.Contains:
		return buildContains(p)
	case predicate.InSet:
		return buildInSet(p)
	case predicate.Exists:
		return "contacts.id IN (SELECT contact_id FROM contact_values WHERE contact_field_id = ?)",
			[]any{p.Field.ID}, nil
	case predicate.FieldMatch:
		return buildFieldMatch(p)
	case predicate.None:
		return matchNothing, nil, nil
	}
	return "", nil, fmt.Errorf("unsupported predicate node %T", node)
}

func buildLogical(children []predicate.Node, op string) (string, []any, error) {
	conditions := make([]string, len(children))
	var args []any

	for i, child := range children {
		condition, childArgs, err := BuildCondition(child)
		if err != nil {
			return "", nil, err
		}
		conditions[i] = condition
		args = append(args, childArgs...)
	}

	return "(" + strings.Join(conditions, " "+op+" ") + ")", args, nil
}

func buildCompare(p predicate.Compare) (string, []any, error) {
	switch p.Subject.Kind {
	case predicate.SubjectName:
		if p.Op != predicate.OpEqual {
			return "", nil, fmt.Errorf("unsupported operator %s on contact name", p.Op)
		}
		return "LOWER(contacts.name) = ?", []any{lowerString(p.Value)}, nil

	case predicate.SubjectID:
		if p.Op != predicate.OpEqual {
			return "", nil, fmt.Errorf("unsupported operator %s on contact id", p.Op)
		}
		return "contacts.id = ?", []any{p.Value}, nil

	case predicate.SubjectURN:
		if p.Op != predicate.OpEqual {
			return "", nil, fmt.Errorf("unsupported operator %s on URN path", p.Op)
		}
		condition, args := urnSubSelect(p.Subject.Scheme, "LOWER(path) = ?", lowerString(p.Value))
		return condition, args, nil

	case predicate.SubjectColumn:
		return buildColumnCompare(p)
	}
	return "", nil, fmt.Errorf("unsupported compare subject %d", p.Subject.Kind)
}

func buildColumnCompare(p predicate.Compare) (string, []any, error) {
	if p.Subject.Column == predicate.ColumnText {
		if p.Op != predicate.OpEqual {
			return "", nil, fmt.Errorf("unsupported operator %s on text value", p.Op)
		}
		return "LOWER(string_value) = ?", []any{lowerString(p.Value)}, nil
	}

	column, err := valueColumn(p.Subject.Column)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s %s ?", column, string(p.Op)), []any{p.Value}, nil
}

func buildContains(p predicate.Contains) (string, []any, error) {
	pattern := buildContainsPattern(p.Value)

	switch p.Subject.Kind {
	case predicate.SubjectName:
		return fmt.Sprintf("LOWER(contacts.name) LIKE ? %s", likeEscapeClause), []any{pattern}, nil
	case predicate.SubjectURN:
		condition, args := urnSubSelect(p.Subject.Scheme,
			fmt.Sprintf("LOWER(path) LIKE ? %s", likeEscapeClause), pattern)
		return condition, args, nil
	case predicate.SubjectColumn:
		if p.Subject.Column != predicate.ColumnText {
			return "", nil, fmt.Errorf("contains requires a text value column")
		}
		return fmt.Sprintf("LOWER(string_value) LIKE ? %s", likeEscapeClause), []any{pattern}, nil
	}
	return "", nil, fmt.Errorf("unsupported contains subject %d", p.Subject.Kind)
}

func buildInSet(p predicate.InSet) (string, []any, error) {
	if p.Subject.Kind != predicate.SubjectColumn || p.Subject.Column != predicate.ColumnLocation {
		return "", nil, fmt.Errorf("in-set requires the location value column")
	}
	if len(p.IDs) == 0 {
		return matchNothing, nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(p.IDs)), ",")
	args := make([]any, len(p.IDs))
	for i, id := range p.IDs {
		args[i] = id
	}
	return fmt.Sprintf("location_id IN (%s)", placeholders), args, nil
}

func buildFieldMatch(p predicate.FieldMatch) (string, []any, error) {
	where, args, err := BuildCondition(p.Where)
	if err != nil {
		return "", nil, err
	}

	condition := fmt.Sprintf(
		"contacts.id IN (SELECT contact_id FROM contact_values WHERE contact_field_id = ? AND (%s))", where)
	return condition, append([]any{p.Field.ID}, args...), nil
}

// urnSubSelect builds a membership test against the contact_urns table,
// optionally scoped to one scheme.
func urnSubSelect(scheme string, pathCondition string, pathArg any) (string, []any) {
	if scheme == "" {
		return fmt.Sprintf("contacts.id IN (SELECT contact_id FROM contact_urns WHERE %s)", pathCondition),
			[]any{pathArg}
	}
	return fmt.Sprintf("contacts.id IN (SELECT contact_id FROM contact_urns WHERE scheme = ? AND %s)", pathCondition),
		[]any{scheme, pathArg}
}

func valueColumn(column predicate.Column) (string, error) {
	switch column {
	case predicate.ColumnText:
		return "string_value", nil
	case predicate.ColumnDecimal:
		return "decimal_value", nil
	case predicate.ColumnDatetime:
		return "datetime_value", nil
	case predicate.ColumnLocation:
		return "location_id", nil
	}
	return "", fmt.Errorf("unknown value column %d", column)
}

func lowerString(value any) any {
	if s, ok := value.(string); ok {
		return strings.ToLower(s)
	}
	return value
}
