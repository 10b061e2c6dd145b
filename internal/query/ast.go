package query

import (
	"strings"
)

// Comparator is one of the six canonical comparison symbols. The aliases
// accepted by the grammar (is, has, ~~) are normalized away when a
// condition is constructed.
type Comparator string

const (
	ComparatorEqual              Comparator = "="
	ComparatorContains           Comparator = "~"
	ComparatorGreaterThan        Comparator = ">"
	ComparatorGreaterThanOrEqual Comparator = ">="
	ComparatorLessThan           Comparator = "<"
	ComparatorLessThanOrEqual    Comparator = "<="
)

var comparatorAliases = map[string]Comparator{
	"is":  ComparatorEqual,
	"has": ComparatorContains,
	"~~":  ComparatorContains,
}

// BoolOperator combines conditions with a logical AND or OR.
type BoolOperator string

const (
	BoolAnd BoolOperator = "AND"
	BoolOr  BoolOperator = "OR"
)

// ImplicitProp is the sentinel property of a bare term with no explicit
// property, e.g. the query `bob`.
const ImplicitProp = "*"

// QueryNode is a node in a parsed query: either a condition or a boolean
// combination of other nodes. Nodes are immutable once built.
type QueryNode interface {
	// PropNames appends the property names referenced under this node.
	PropNames(names []string) []string

	// Equals reports deep structural equality.
	Equals(other QueryNode) bool

	String() string

	queryNode()
}

// Condition is a leaf comparison of one property against a literal value.
type Condition struct {
	Prop       string
	Comparator Comparator
	Value      string
}

// NewCondition creates a condition, normalizing comparator aliases.
func NewCondition(prop string, comparator string, value string) *Condition {
	comp := Comparator(strings.ToLower(comparator))
	if alias, ok := comparatorAliases[string(comp)]; ok {
		comp = alias
	}
	return &Condition{Prop: strings.ToLower(prop), Comparator: comp, Value: value}
}

func (c *Condition) queryNode() {}

// PropNames appends this condition's property name.
func (c *Condition) PropNames(names []string) []string {
	return append(names, c.Prop)
}

// Equals reports structural equality with another node.
func (c *Condition) Equals(other QueryNode) bool {
	o, ok := other.(*Condition)
	return ok && c.Prop == o.Prop && c.Comparator == o.Comparator && c.Value == o.Value
}

func (c *Condition) String() string {
	return c.Prop + string(c.Comparator) + c.Value
}

// BoolCombination combines two or more child nodes with AND or OR.
type BoolCombination struct {
	Op       BoolOperator
	Children []QueryNode
}

// NewBoolCombination creates a boolean combination of the given children.
func NewBoolCombination(op BoolOperator, children ...QueryNode) *BoolCombination {
	return &BoolCombination{Op: op, Children: children}
}

func (b *BoolCombination) queryNode() {}

// PropNames appends the property names of all children, in order.
func (b *BoolCombination) PropNames(names []string) []string {
	for _, child := range b.Children {
		names = child.PropNames(names)
	}
	return names
}

// Equals reports structural equality with another node.
func (b *BoolCombination) Equals(other QueryNode) bool {
	o, ok := other.(*BoolCombination)
	return ok && b.Op == o.Op && childrenEqual(b.Children, o.Children)
}

func childrenEqual(a, b []QueryNode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

func (b *BoolCombination) String() string {
	rendered := make([]string, len(b.Children))
	for i, child := range b.Children {
		rendered[i] = child.String()
	}
	return string(b.Op) + "(" + strings.Join(rendered, ", ") + ")"
}

// SinglePropCombination is a combination whose children are all conditions
// on the same property, allowing them to be evaluated with a single query
// against the value store.
type SinglePropCombination struct {
	BoolCombination
	Prop string
}

// NewSinglePropCombination creates a same-property combination. It returns
// an error if any child is not a condition on prop: that is a programming
// error in the caller and must be caught before the node is used.
func NewSinglePropCombination(prop string, op BoolOperator, children ...*Condition) (*SinglePropCombination, error) {
	nodes := make([]QueryNode, len(children))
	for i, child := range children {
		if child.Prop != prop {
			return nil, errorf("condition on %s cannot be grouped under %s", child.Prop, prop)
		}
		nodes[i] = child
	}
	return &SinglePropCombination{
		BoolCombination: BoolCombination{Op: op, Children: nodes},
		Prop:            prop,
	}, nil
}

// Conditions returns the children as conditions.
func (s *SinglePropCombination) Conditions() []*Condition {
	conditions := make([]*Condition, len(s.Children))
	for i, child := range s.Children {
		conditions[i] = child.(*Condition)
	}
	return conditions
}

// Equals reports structural equality with another node.
func (s *SinglePropCombination) Equals(other QueryNode) bool {
	o, ok := other.(*SinglePropCombination)
	return ok && s.Prop == o.Prop && s.Op == o.Op && childrenEqual(s.Children, o.Children)
}

func (s *SinglePropCombination) String() string {
	rendered := make([]string, len(s.Children))
	for i, child := range s.Conditions() {
		rendered[i] = string(child.Comparator) + " " + child.Value
	}
	return string(s.Op) + "[" + s.Prop + "](" + strings.Join(rendered, ", ") + ")"
}

// ContactQuery is a parsed contact search query: a hierarchy of conditions
// and boolean combinations of conditions.
type ContactQuery struct {
	Root QueryNode
}

// NewContactQuery wraps a root node.
func NewContactQuery(root QueryNode) *ContactQuery {
	return &ContactQuery{Root: root}
}

// Optimized returns an equivalent query that is cheaper to evaluate:
// associative nestings are flattened and sibling conditions on the same
// property are grouped for single-query evaluation.
func (q *ContactQuery) Optimized() *ContactQuery {
	return NewContactQuery(splitByProp(simplify(q.Root)))
}

// PropNames returns the distinct property names referenced by the query,
// excluding the implicit property.
func (q *ContactQuery) PropNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, name := range q.Root.PropNames(nil) {
		if name != ImplicitProp && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Equals reports deep structural equality of two queries.
func (q *ContactQuery) Equals(other *ContactQuery) bool {
	return other != nil && q.Root.Equals(other.Root)
}

func (q *ContactQuery) String() string {
	return q.Root.String()
}
