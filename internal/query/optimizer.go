package query

// simplify flattens associative nestings: `x OR y OR z` parses as
// OR(OR(x, y), z) but is equivalent to OR(x, y, z). Children combined with
// a different operator are left untouched. The set and relative order of
// leaf conditions never changes, only the nesting. Idempotent.
func simplify(node QueryNode) QueryNode {
	combination, ok := node.(*BoolCombination)
	if !ok {
		return node
	}

	children := make([]QueryNode, len(combination.Children))
	for i, child := range combination.Children {
		children[i] = simplify(child)
	}

	var flattened []QueryNode
	for _, child := range children {
		if sub, ok := child.(*BoolCombination); ok && sub.Op == combination.Op {
			flattened = append(flattened, sub.Children...)
		} else {
			flattened = append(flattened, child)
		}
	}

	return NewBoolCombination(combination.Op, flattened...)
}

// splitByProp groups sibling conditions which share a property: the
// expression OR(a=1, b=2, a=3) becomes OR(OR[a](=1, =3), b=2) so that the
// conditions on `a` can be checked with a single query on its values.
// Grouping requires both the same property and the parent's own operator;
// anything else would change the query's truth value.
func splitByProp(node QueryNode) QueryNode {
	combination, ok := node.(*BoolCombination)
	if !ok {
		return node
	}

	children := make([]QueryNode, len(combination.Children))
	for i, child := range combination.Children {
		children[i] = splitByProp(child)
	}

	// partition children into ordered buckets: conditions on a concrete
	// property bucket together at the position of their first occurrence,
	// everything else keeps its own singleton bucket
	type bucket struct {
		prop       string
		conditions []*Condition
		other      QueryNode
	}

	var buckets []*bucket
	byProp := make(map[string]*bucket)

	for _, child := range children {
		condition, ok := child.(*Condition)
		if !ok || condition.Prop == ImplicitProp {
			buckets = append(buckets, &bucket{other: child})
			continue
		}
		b := byProp[condition.Prop]
		if b == nil {
			b = &bucket{prop: condition.Prop}
			byProp[condition.Prop] = b
			buckets = append(buckets, b)
		}
		b.conditions = append(b.conditions, condition)
	}

	var newChildren []QueryNode
	for _, b := range buckets {
		switch {
		case b.other != nil:
			newChildren = append(newChildren, b.other)
		case len(b.conditions) > 1:
			single, err := NewSinglePropCombination(b.prop, combination.Op, b.conditions...)
			if err != nil {
				// buckets are partitioned by prop, so this cannot happen
				panic(err)
			}
			newChildren = append(newChildren, single)
		default:
			newChildren = append(newChildren, b.conditions[0])
		}
	}

	if len(newChildren) == 1 {
		return newChildren[0]
	}

	return NewBoolCombination(combination.Op, newChildren...)
}
