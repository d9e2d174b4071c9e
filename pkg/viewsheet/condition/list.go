package condition

import (
	"errors"
	"fmt"
	"strings"
)

type Junction int

const (
	And Junction = iota
	Or
)

func (j Junction) String() string {
	if j == Or {
		return "or"
	}
	return "and"
}

// Item is a condition applied to a field.
type Item struct {
	Field     string
	Condition Condition
}

// Entry is either an Item or a Junction, at a nesting level.
type Entry struct {
	Item       *Item
	Junction   Junction
	IsJunction bool
	Level      int
}

type List struct {
	entries []Entry
}

func NewList() *List {
	return &List{}
}

// Single returns a list holding one item.
func Single(field string, c Condition) *List {
	l := NewList()
	l.AddItem(field, c, 0)
	return l
}

func (l *List) AddItem(field string, c Condition, level int) {
	l.entries = append(l.entries, Entry{Item: &Item{Field: field, Condition: c}, Level: level})
}

func (l *List) AddJunction(j Junction, level int) {
	l.entries = append(l.entries, Entry{Junction: j, IsJunction: true, Level: level})
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// IsEmpty reports whether the list restricts nothing.
func (l *List) IsEmpty() bool {
	return l.Len() == 0
}

func (l *List) At(i int) Entry {
	return l.entries[i]
}

// Items returns the condition items in order.
func (l *List) Items() []Item {
	if l == nil {
		return nil
	}
	items := make([]Item, 0, (len(l.entries)+1)/2)
	for _, e := range l.entries {
		if !e.IsJunction {
			items = append(items, *e.Item)
		}
	}
	return items
}

// Fields returns the distinct fields referenced by the list.
func (l *List) Fields() []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range l.Items() {
		if !seen[it.Field] {
			seen[it.Field] = true
			out = append(out, it.Field)
		}
	}
	return out
}

func (l *List) Clone() *List {
	if l == nil {
		return nil
	}
	c := &List{entries: make([]Entry, len(l.entries))}
	for i, e := range l.entries {
		if e.Item != nil {
			it := *e.Item
			it.Condition = it.Condition.clone()
			e.Item = &it
		}
		c.entries[i] = e
	}
	return c
}

func (l *List) Equal(o *List) bool {
	return l.String() == o.String()
}

var ErrMalformed = errors.New("malformed condition list")

// Validate checks that items and junctions alternate and that every item
// carries the values its operation needs.
func (l *List) Validate() error {
	for i, e := range l.entries {
		wantJunction := i%2 == 1
		if e.IsJunction != wantJunction {
			return fmt.Errorf("%w: entry %d", ErrMalformed, i)
		}
		if e.IsJunction {
			continue
		}
		if e.Item == nil {
			return fmt.Errorf("%w: entry %d has no item", ErrMalformed, i)
		}
		if err := e.Item.Condition.check(); err != nil {
			return fmt.Errorf("%w: entry %d on %q: %v", ErrMalformed, i, e.Item.Field, err)
		}
	}
	if len(l.entries) > 0 && len(l.entries)%2 == 0 {
		return fmt.Errorf("%w: trailing junction", ErrMalformed)
	}
	return nil
}

func (l *List) String() string {
	if l.IsEmpty() {
		return ""
	}
	root, err := build(l.entries)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return root.String()
}

// shifted returns a copy with every level increased by n.
func (l *List) shifted(n int) []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.Clone().entries {
		e.Level += n
		out[i] = e
	}
	return out
}

// AndMerge combines lists with AND. Empty lists restrict nothing and are
// skipped.
func AndMerge(lists ...*List) *List {
	return merge(And, lists)
}

// OrMerge combines lists with OR. Any empty list makes the result empty.
func OrMerge(lists ...*List) *List {
	for _, l := range lists {
		if l.IsEmpty() {
			return NewList()
		}
	}
	return merge(Or, lists)
}

func merge(j Junction, lists []*List) *List {
	var parts []*List
	for _, l := range lists {
		if !l.IsEmpty() {
			parts = append(parts, l)
		}
	}
	switch len(parts) {
	case 0:
		return NewList()
	case 1:
		return parts[0].Clone()
	}

	out := NewList()
	for i, p := range parts {
		if i > 0 {
			out.AddJunction(j, 0)
		}
		out.entries = append(out.entries, p.shifted(1)...)
	}
	return out
}

// expr is the evaluation tree rebuilt from a flat list.
type expr struct {
	item     *Item
	junction Junction
	children []*expr
}

func build(entries []Entry) (*expr, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: empty segment", ErrMalformed)
	}
	if len(entries) == 1 {
		if entries[0].IsJunction {
			return nil, fmt.Errorf("%w: dangling junction", ErrMalformed)
		}
		return &expr{item: entries[0].Item}, nil
	}

	minLevel := -1
	for _, e := range entries {
		if e.IsJunction && (minLevel < 0 || e.Level < minLevel) {
			minLevel = e.Level
		}
	}
	if minLevel < 0 {
		return nil, fmt.Errorf("%w: items without junction", ErrMalformed)
	}

	split := And
	for _, e := range entries {
		if e.IsJunction && e.Level == minLevel && e.Junction == Or {
			split = Or
			break
		}
	}

	node := &expr{junction: split}
	start := 0
	for i, e := range entries {
		if e.IsJunction && e.Level == minLevel && e.Junction == split {
			child, err := build(entries[start:i])
			if err != nil {
				return nil, err
			}
			node.children = append(node.children, child)
			start = i + 1
		}
	}
	child, err := build(entries[start:])
	if err != nil {
		return nil, err
	}
	node.children = append(node.children, child)
	return node, nil
}

func (e *expr) eval(row Row) bool {
	if e.item != nil {
		v, _ := row.Value(e.item.Field)
		return e.item.Condition.Eval(v)
	}
	if e.junction == Or {
		for _, c := range e.children {
			if c.eval(row) {
				return true
			}
		}
		return false
	}
	for _, c := range e.children {
		if !c.eval(row) {
			return false
		}
	}
	return true
}

func (e *expr) String() string {
	if e.item != nil {
		return fmt.Sprintf("[%s %s]", e.item.Field, e.item.Condition)
	}
	parts := make([]string, len(e.children))
	for i, c := range e.children {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, " "+e.junction.String()+" ") + ")"
}
