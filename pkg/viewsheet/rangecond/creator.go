package rangecond

import (
	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
)

// ListCreator compiles composite lower/upper bounds into a condition tree.
// A composite bound compares like a tuple: level i decides unless it equals
// the bound, in which case level i+1 refines. A nil bound is the null
// member, ordered before every non-null value.
type ListCreator struct {
	mins, maxes    []any
	refs           []string
	lowerInclusive bool
	upperInclusive bool
	nullable       bool
}

func NewListCreator(mins, maxes []any, refs []string, b Bounds) *ListCreator {
	mustSameLength(mins, maxes, refs)
	return &ListCreator{
		mins:           mins,
		maxes:          maxes,
		refs:           refs,
		lowerInclusive: b.LowerInclusive,
		upperInclusive: b.UpperInclusive,
		nullable:       b.Nullable,
	}
}

// Tree returns the unsimplified tree.
func (c *ListCreator) Tree() *Node {
	if len(c.refs) == 0 {
		return True()
	}
	return And(c.lower(0), c.upper(0))
}

// Create builds the simplified condition list.
func (c *ListCreator) Create() *condition.List {
	field := ""
	if len(c.refs) > 0 {
		field = c.refs[0]
	}
	return Flatten(Simplify(c.Tree()), field)
}

func (c *ListCreator) last(i int) bool {
	return i == len(c.refs)-1
}

// lower builds "levels i.. are above the lower bound".
func (c *ListCreator) lower(i int) *Node {
	ref, bound := c.refs[i], c.mins[i]

	if c.last(i) {
		if bound == nil {
			if c.lowerInclusive {
				return True()
			}
			return Leaf(ref, condition.NotNull())
		}
		return Leaf(ref, condition.Greater(bound, c.lowerInclusive))
	}

	var above, equal *Node
	if bound == nil {
		above = Leaf(ref, condition.NotNull())
		equal = Leaf(ref, condition.IsNull())
	} else {
		above = Leaf(ref, condition.Greater(bound, false))
		equal = Leaf(ref, condition.Equal(bound))
	}
	return Or(above, And(equal, c.lower(i+1)))
}

// upper builds "levels i.. are below the upper bound".
func (c *ListCreator) upper(i int) *Node {
	ref, bound := c.refs[i], c.maxes[i]

	if c.last(i) {
		var below *Node
		switch {
		case bound == nil && c.upperInclusive:
			below = Leaf(ref, condition.IsNull())
		case bound == nil:
			below = False()
		default:
			below = Leaf(ref, condition.Less(bound, c.upperInclusive))
		}
		if c.nullable && bound != nil {
			return Or(Leaf(ref, condition.IsNull()), below)
		}
		if c.nullable {
			return Leaf(ref, condition.IsNull())
		}
		return below
	}

	var under, equal *Node
	if bound == nil {
		under = False()
		equal = Leaf(ref, condition.IsNull())
	} else {
		under = Leaf(ref, condition.Less(bound, false))
		equal = Leaf(ref, condition.Equal(bound))
	}
	return Or(under, And(equal, c.upper(i+1)))
}
