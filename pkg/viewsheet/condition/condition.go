// Package condition models query filter condition lists.
//
// A List is a flat sequence of condition items separated by AND/OR
// junctions. Every entry carries a nesting level: entries at a deeper level
// bind tighter than the junctions around them, and at the same level AND
// binds tighter than OR.
package condition

import (
	"fmt"
	"strings"
)

type Op int

const (
	OpEqual Op = iota
	OpLess
	OpGreater
	OpNull
	OpOneOf
	OpBetween
	// OpNever matches no row.
	OpNever
)

func (o Op) String() string {
	switch o {
	case OpEqual:
		return "="
	case OpLess:
		return "<"
	case OpGreater:
		return ">"
	case OpNull:
		return "is null"
	case OpOneOf:
		return "one of"
	case OpBetween:
		return "between"
	case OpNever:
		return "never"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Condition is a single comparison against a field value.
type Condition struct {
	Op     Op
	Values []any
	// Equal makes OpLess/OpGreater inclusive.
	Equal   bool
	Negated bool
}

func Equal(v any) Condition        { return Condition{Op: OpEqual, Values: []any{v}} }
func IsNull() Condition            { return Condition{Op: OpNull} }
func NotNull() Condition           { return Condition{Op: OpNull, Negated: true} }
func Never() Condition             { return Condition{Op: OpNever} }
func OneOf(vs ...any) Condition    { return Condition{Op: OpOneOf, Values: vs} }
func Between(lo, hi any) Condition { return Condition{Op: OpBetween, Values: []any{lo, hi}} }

func Less(v any, inclusive bool) Condition {
	return Condition{Op: OpLess, Values: []any{v}, Equal: inclusive}
}

func Greater(v any, inclusive bool) Condition {
	return Condition{Op: OpGreater, Values: []any{v}, Equal: inclusive}
}

// Eval tests a single field value. A nil value only satisfies null tests,
// negated or not, matching SQL comparison semantics.
func (c Condition) Eval(v any) bool {
	if c.Op == OpNever {
		return false
	}
	if c.Op == OpNull {
		return (v == nil) != c.Negated
	}
	if v == nil {
		return false
	}

	var ok bool
	switch c.Op {
	case OpEqual:
		ok = c.compareAt(v, 0, func(n int) bool { return n == 0 })
	case OpLess:
		ok = c.compareAt(v, 0, func(n int) bool { return n < 0 || (c.Equal && n == 0) })
	case OpGreater:
		ok = c.compareAt(v, 0, func(n int) bool { return n > 0 || (c.Equal && n == 0) })
	case OpOneOf:
		for i := range c.Values {
			if c.compareAt(v, i, func(n int) bool { return n == 0 }) {
				ok = true
				break
			}
		}
	case OpBetween:
		ok = c.compareAt(v, 0, func(n int) bool { return n >= 0 }) &&
			c.compareAt(v, 1, func(n int) bool { return n <= 0 })
	default:
		panic(fmt.Sprintf("condition: unknown operation %d", int(c.Op)))
	}
	return ok != c.Negated
}

// arity returns the allowed number of values for the operation. A
// negative max means unbounded.
func (o Op) arity() (lo, hi int, ok bool) {
	switch o {
	case OpEqual, OpLess, OpGreater:
		return 1, 1, true
	case OpBetween:
		return 2, 2, true
	case OpOneOf:
		return 1, -1, true
	case OpNull, OpNever:
		return 0, 0, true
	}
	return 0, 0, false
}

// check reports a condition whose values do not fit its operation.
func (c Condition) check() error {
	lo, hi, ok := c.Op.arity()
	if !ok {
		return fmt.Errorf("unknown operation %d", int(c.Op))
	}
	n := len(c.Values)
	if n < lo || (hi >= 0 && n > hi) {
		return fmt.Errorf("%s takes %s values, got %d", c.Op, arityText(lo, hi), n)
	}
	return nil
}

func arityText(lo, hi int) string {
	switch {
	case hi < 0:
		return fmt.Sprintf("at least %d", lo)
	case lo == hi:
		return fmt.Sprintf("%d", lo)
	}
	return fmt.Sprintf("%d to %d", lo, hi)
}

func (c Condition) compareAt(v any, i int, test func(int) bool) bool {
	if i >= len(c.Values) || c.Values[i] == nil {
		return false
	}
	n, ok := Compare(v, c.Values[i])
	return ok && test(n)
}

func (c Condition) String() string {
	var b strings.Builder
	if c.Negated {
		b.WriteString("not ")
	}
	b.WriteString(c.Op.String())
	if c.Equal && (c.Op == OpLess || c.Op == OpGreater) {
		b.WriteString("=")
	}
	for i, v := range c.Values {
		if i == 0 {
			b.WriteString(" ")
		} else {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v", v)
	}
	return b.String()
}

func (c Condition) clone() Condition {
	if c.Values != nil {
		c.Values = append([]any(nil), c.Values...)
	}
	return c
}
