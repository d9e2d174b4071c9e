package condition

import (
	"fmt"
	"strings"
)

// ToSQL renders the list as a parameterised WHERE clause body using `?`
// placeholders. An empty list renders as an empty string.
func ToSQL(l *List) (string, []any, error) {
	if l.IsEmpty() {
		return "", nil, nil
	}
	if err := l.Validate(); err != nil {
		return "", nil, err
	}
	root, err := build(l.entries)
	if err != nil {
		return "", nil, err
	}
	var (
		b    strings.Builder
		args []any
	)
	writeSQL(&b, &args, root)
	return b.String(), args, nil
}

func writeSQL(b *strings.Builder, args *[]any, e *expr) {
	if e.item != nil {
		writeItemSQL(b, args, e.item)
		return
	}
	op := " AND "
	if e.junction == Or {
		op = " OR "
	}
	b.WriteString("(")
	for i, c := range e.children {
		if i > 0 {
			b.WriteString(op)
		}
		writeSQL(b, args, c)
	}
	b.WriteString(")")
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func writeItemSQL(b *strings.Builder, args *[]any, it *Item) {
	c := it.Condition
	col := quoteIdent(it.Field)

	switch c.Op {
	case OpNever:
		b.WriteString("1 = 0")
		return
	case OpNull:
		if c.Negated {
			fmt.Fprintf(b, "%s IS NOT NULL", col)
		} else {
			fmt.Fprintf(b, "%s IS NULL", col)
		}
		return
	}

	var clause string
	switch c.Op {
	case OpEqual:
		clause = col + " = ?"
		*args = append(*args, c.Values[0])
	case OpLess:
		clause = col + " < ?"
		if c.Equal {
			clause = col + " <= ?"
		}
		*args = append(*args, c.Values[0])
	case OpGreater:
		clause = col + " > ?"
		if c.Equal {
			clause = col + " >= ?"
		}
		*args = append(*args, c.Values[0])
	case OpOneOf:
		marks := make([]string, len(c.Values))
		for i := range c.Values {
			marks[i] = "?"
		}
		clause = fmt.Sprintf("%s IN (%s)", col, strings.Join(marks, ", "))
		*args = append(*args, c.Values...)
	case OpBetween:
		clause = col + " BETWEEN ? AND ?"
		*args = append(*args, c.Values[0], c.Values[1])
	default:
		panic(fmt.Sprintf("condition: unknown operation %d", int(c.Op)))
	}

	if c.Negated {
		// keep SQL null semantics: a null column never satisfies a negated comparison
		fmt.Fprintf(b, "(%s IS NOT NULL AND NOT (%s))", col, clause)
		return
	}
	b.WriteString(clause)
}
