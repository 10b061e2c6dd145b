package query

import (
	"strings"
	"testing"
	"time"

	"github.com/flowline/contactql/internal/predicate"
	"github.com/flowline/contactql/internal/schema"
	"github.com/shopspring/decimal"
)

// stubFields resolves field keys from a fixed set.
type stubFields map[string]*schema.Field

func (s stubFields) ActiveFields(org *schema.Org, keys []string) ([]*schema.Field, error) {
	var fields []*schema.Field
	for _, key := range keys {
		if field, ok := s[key]; ok {
			fields = append(fields, field)
		}
	}
	return fields, nil
}

// stubBoundaries resolves every name to a fixed ID set.
type stubBoundaries []int64

func (s stubBoundaries) BoundaryIDs(name string, exact bool) ([]int64, error) {
	return s, nil
}

func testSchema() stubFields {
	return stubFields{
		"age":    {ID: 10, Key: "age", ValueType: schema.TypeDecimal},
		"email":  {ID: 11, Key: "email", ValueType: schema.TypeText},
		"joined": {ID: 12, Key: "joined", ValueType: schema.TypeDatetime},
		"state":  {ID: 13, Key: "state", ValueType: schema.TypeState},
	}
}

func testOrg() *schema.Org {
	return &schema.Org{ID: 1, Timezone: time.UTC}
}

func compileText(t *testing.T, org *schema.Org, text string) (predicate.Node, error) {
	t.Helper()
	q := mustParse(t, text).Optimized()
	propMap, err := ResolveProps(q, org, testSchema())
	if err != nil {
		return nil, err
	}
	return Compile(q, org, propMap, stubBoundaries{100, 101})
}

func mustCompile(t *testing.T, org *schema.Org, text string) predicate.Node {
	t.Helper()
	compiled, err := compileText(t, org, text)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return compiled
}

func TestCompileImplicit(t *testing.T) {
	compiled := mustCompile(t, testOrg(), "bob")

	or, ok := compiled.(predicate.Or)
	if !ok || len(or.Children) != 2 {
		t.Fatalf("Expected two-child Or, got %#v", compiled)
	}

	name, ok := or.Children[0].(predicate.Contains)
	if !ok || name.Subject.Kind != predicate.SubjectName || name.Value != "bob" {
		t.Errorf("Expected name-contains, got %#v", or.Children[0])
	}

	urn, ok := or.Children[1].(predicate.Contains)
	if !ok || urn.Subject.Kind != predicate.SubjectURN || urn.Subject.Scheme != "" {
		t.Errorf("Expected any-scheme URN-contains, got %#v", or.Children[1])
	}
}

func TestCompileImplicitAnonOrg(t *testing.T) {
	org := testOrg()
	org.IsAnon = true

	// numeric values become a direct contact ID match
	or := mustCompile(t, org, "12345").(predicate.Or)
	id, ok := or.Children[1].(predicate.Compare)
	if !ok || id.Subject.Kind != predicate.SubjectID || id.Value != int64(12345) {
		t.Errorf("Expected ID compare, got %#v", or.Children[1])
	}

	// non-numeric values match nothing on the URN side
	or = mustCompile(t, org, "bob").(predicate.Or)
	if _, ok := or.Children[1].(predicate.None); !ok {
		t.Errorf("Expected None, got %#v", or.Children[1])
	}
}

func TestCompileAttribute(t *testing.T) {
	compiled := mustCompile(t, testOrg(), `name = "Bob Marley"`)
	compare, ok := compiled.(predicate.Compare)
	if !ok || compare.Subject.Kind != predicate.SubjectName || compare.Value != "Bob Marley" {
		t.Fatalf("Expected name compare, got %#v", compiled)
	}

	if _, err := compileText(t, testOrg(), "name > bob"); err == nil ||
		!strings.Contains(err.Error(), "unsupported comparator > for contact attribute") {
		t.Errorf("Expected unsupported comparator error, got %v", err)
	}
}

func TestCompileURN(t *testing.T) {
	compiled := mustCompile(t, testOrg(), "tel = 12345")
	compare, ok := compiled.(predicate.Compare)
	if !ok || compare.Subject.Kind != predicate.SubjectURN || compare.Subject.Scheme != "tel" {
		t.Fatalf("Expected tel-scoped URN compare, got %#v", compiled)
	}

	contains := mustCompile(t, testOrg(), "twitter ~ bob").(predicate.Contains)
	if contains.Subject.Scheme != "twitter" || contains.Value != "bob" {
		t.Errorf("Unexpected URN contains %#v", contains)
	}

	if _, err := compileText(t, testOrg(), "tel > 5"); err == nil ||
		!strings.Contains(err.Error(), "unsupported comparator > for URN") {
		t.Errorf("Expected unsupported comparator error, got %v", err)
	}
}

func TestCompileURNAnonOrg(t *testing.T) {
	org := testOrg()
	org.IsAnon = true

	// URN search is disabled entirely for anonymized orgs
	if _, ok := mustCompile(t, org, "tel = 12345").(predicate.None); !ok {
		t.Fatal("Expected None predicate")
	}
}

func TestCompileDecimalField(t *testing.T) {
	compiled := mustCompile(t, testOrg(), "age > 30")

	match, ok := compiled.(predicate.FieldMatch)
	if !ok || match.Field.Key != "age" {
		t.Fatalf("Expected age FieldMatch, got %#v", compiled)
	}

	compare, ok := match.Where.(predicate.Compare)
	if !ok || compare.Op != predicate.OpGreaterThan {
		t.Fatalf("Expected > compare, got %#v", match.Where)
	}
	value, ok := compare.Value.(decimal.Decimal)
	if !ok || !value.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Expected decimal 30, got %#v", compare.Value)
	}

	if _, err := compileText(t, testOrg(), "age = xx"); err == nil ||
		!strings.Contains(err.Error(), "can't convert 'xx' to a decimal") {
		t.Errorf("Expected conversion error, got %v", err)
	}

	if _, err := compileText(t, testOrg(), "age ~ 30"); err == nil ||
		!strings.Contains(err.Error(), "unsupported comparator ~ for decimal field") {
		t.Errorf("Expected unsupported comparator error, got %v", err)
	}
}

func TestCompileDatetimeField(t *testing.T) {
	dayStart := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	tests := []struct {
		query   string
		op      predicate.Op
		value   time.Time
		isRange bool
	}{
		{query: "joined = 2017-01-01", isRange: true},
		{query: "joined <= 2017-01-01", op: predicate.OpLessThan, value: dayEnd},
		{query: "joined > 2017-01-01", op: predicate.OpGreaterThanOrEqual, value: dayEnd},
		{query: "joined >= 2017-01-01", op: predicate.OpGreaterThanOrEqual, value: dayStart},
		{query: "joined < 2017-01-01", op: predicate.OpLessThan, value: dayStart},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			match := mustCompile(t, testOrg(), tt.query).(predicate.FieldMatch)

			if tt.isRange {
				// equality means anytime in [day, day+24h)
				and, ok := match.Where.(predicate.And)
				if !ok || len(and.Children) != 2 {
					t.Fatalf("Expected day range And, got %#v", match.Where)
				}
				lower := and.Children[0].(predicate.Compare)
				upper := and.Children[1].(predicate.Compare)
				if lower.Op != predicate.OpGreaterThanOrEqual || !lower.Value.(time.Time).Equal(dayStart) {
					t.Errorf("Bad lower bound %#v", lower)
				}
				if upper.Op != predicate.OpLessThan || !upper.Value.(time.Time).Equal(dayEnd) {
					t.Errorf("Bad upper bound %#v", upper)
				}
				return
			}

			compare := match.Where.(predicate.Compare)
			if compare.Op != tt.op || !compare.Value.(time.Time).Equal(tt.value) {
				t.Errorf("Expected %s %v, got %s %v", tt.op, tt.value, compare.Op, compare.Value)
			}
		})
	}

	if _, err := compileText(t, testOrg(), "joined = yesterday"); err == nil ||
		!strings.Contains(err.Error(), "unable to parse date: yesterday") {
		t.Errorf("Expected date parse error, got %v", err)
	}
}

func TestCompileDatetimeFieldTimezone(t *testing.T) {
	kigali := time.FixedZone("Africa/Kigali", 2*60*60)
	org := &schema.Org{ID: 1, Timezone: kigali}

	match := mustCompile(t, org, "joined = 2017-01-01").(predicate.FieldMatch)
	and := match.Where.(predicate.And)
	lower := and.Children[0].(predicate.Compare)

	// midnight in Kigali is 22:00 the previous day in UTC
	expected := time.Date(2016, 12, 31, 22, 0, 0, 0, time.UTC)
	if !lower.Value.(time.Time).Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, lower.Value)
	}
}

func TestCompileLocationField(t *testing.T) {
	match := mustCompile(t, testOrg(), "state = Kigali").(predicate.FieldMatch)

	inSet, ok := match.Where.(predicate.InSet)
	if !ok || inSet.Subject.Column != predicate.ColumnLocation {
		t.Fatalf("Expected location InSet, got %#v", match.Where)
	}
	if len(inSet.IDs) != 2 || inSet.IDs[0] != 100 || inSet.IDs[1] != 101 {
		t.Errorf("Unexpected boundary IDs %v", inSet.IDs)
	}

	if _, err := compileText(t, testOrg(), "state > Kigali"); err == nil ||
		!strings.Contains(err.Error(), "unsupported comparator > for location field") {
		t.Errorf("Expected unsupported comparator error, got %v", err)
	}
}

func TestCompileFieldAbsence(t *testing.T) {
	// empty string equality means contacts without that field set
	compiled := mustCompile(t, testOrg(), `email = ""`)

	not, ok := compiled.(predicate.Not)
	if !ok {
		t.Fatalf("Expected Not, got %#v", compiled)
	}
	exists, ok := not.Child.(predicate.Exists)
	if !ok || exists.Field.Key != "email" {
		t.Fatalf("Expected Exists on email, got %#v", not.Child)
	}
}

func TestCompileSinglePropCombination(t *testing.T) {
	// three conditions on one field compile to a single field-scoped
	// query, not three independent sub-queries
	compiled := mustCompile(t, testOrg(), "age = 1 OR age = 2 OR age = 3")

	match, ok := compiled.(predicate.FieldMatch)
	if !ok || match.Field.Key != "age" {
		t.Fatalf("Expected FieldMatch, got %#v", compiled)
	}

	or, ok := match.Where.(predicate.Or)
	if !ok || len(or.Children) != 3 {
		t.Fatalf("Expected three-way Or, got %#v", match.Where)
	}
	for i, child := range or.Children {
		compare, ok := child.(predicate.Compare)
		if !ok || compare.Op != predicate.OpEqual {
			t.Errorf("Child %d: expected equality compare, got %#v", i, child)
		}
	}
}

func TestCompileSinglePropFallbacks(t *testing.T) {
	// same-prop grouping over a URN scheme falls back to an ordinary
	// combination of scheme-scoped predicates
	compiled := mustCompile(t, testOrg(), "tel = 123 OR tel = 456")
	or, ok := compiled.(predicate.Or)
	if !ok || len(or.Children) != 2 {
		t.Fatalf("Expected Or, got %#v", compiled)
	}

	// absence conditions cannot be folded into a single value-row query
	compiled = mustCompile(t, testOrg(), `email = "" OR email = x`)
	or, ok = compiled.(predicate.Or)
	if !ok || len(or.Children) != 2 {
		t.Fatalf("Expected Or, got %#v", compiled)
	}
	if _, ok := or.Children[0].(predicate.Not); !ok {
		t.Errorf("Expected absence child, got %#v", or.Children[0])
	}
}

func TestResolveProps(t *testing.T) {
	org := testOrg()
	q := mustParse(t, "age > 30 name ~ bob tel = 123 bob")

	propMap, err := ResolveProps(q, org, testSchema())
	if err != nil {
		t.Fatalf("Resolution failed: %v", err)
	}

	if propMap["age"].Kind != schema.KindField {
		t.Errorf("age should resolve to a field")
	}
	if propMap["name"].Kind != schema.KindAttribute {
		t.Errorf("name should resolve to an attribute")
	}
	if propMap["tel"].Kind != schema.KindURNScheme {
		t.Errorf("tel should resolve to a URN scheme")
	}
	if _, ok := propMap[ImplicitProp]; ok {
		t.Errorf("implicit prop should not be resolved")
	}

	_, err = ResolveProps(mustParse(t, "xyz = 1"), org, testSchema())
	if err == nil || !strings.Contains(err.Error(), "unrecognized field: xyz") {
		t.Errorf("Expected unrecognized field error, got %v", err)
	}
}

func TestExtractFields(t *testing.T) {
	q := mustParse(t, "age > 30 AND joined < 2020-01-01 AND name = bob")

	fields, err := ExtractFields(q, testOrg(), testSchema())
	if err != nil {
		t.Fatalf("ExtractFields failed: %v", err)
	}

	if len(fields) != 2 || fields[0].Key != "age" || fields[1].Key != "joined" {
		t.Errorf("Unexpected fields %v", fields)
	}
}
