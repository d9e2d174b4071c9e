package selection

import (
	"sort"
	"strings"

	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
)

// State is a bit set describing a selection value.
type State int

const (
	StateSelected State = 1 << iota
	StateIncluded
	StateExcluded
	StateCompatible
)

func (s State) Has(f State) bool { return s&f != 0 }

// Value is one entry of a selection list.
type Value struct {
	Label      string
	Value      any
	State      State
	Level      int
	FormatSpec string
}

func (v *Value) IsSelected() bool {
	return v.State.Has(StateSelected)
}

func (v *Value) SetSelected(sel bool) {
	if sel {
		v.State |= StateSelected
	} else {
		v.State &^= StateSelected
	}
}

func (v *Value) Clone() *Value {
	c := *v
	if t, ok := v.Value.(Tuple); ok {
		c.Value = NewTuple(t.Values, t.Level)
	}
	return &c
}

func (v *Value) Equal(o *Value) bool {
	return v.Label == o.Label && Key(v.Value, nil) == Key(o.Value, nil) &&
		v.State == o.State && v.Level == o.Level && v.FormatSpec == o.FormatSpec
}

// List is an ordered selection list.
type List struct {
	values []*Value
}

func NewList(values ...*Value) *List {
	return &List{values: values}
}

func (l *List) Add(v *Value) {
	l.values = append(l.values, v)
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.values)
}

func (l *List) At(i int) *Value {
	return l.values[i]
}

func (l *List) Values() []*Value {
	return append([]*Value(nil), l.values...)
}

// Find returns the entry whose value matches v after normalization.
func (l *List) Find(v any) *Value {
	k := Key(v, nil)
	for _, sv := range l.values {
		if Key(sv.Value, nil) == k {
			return sv
		}
	}
	return nil
}

// Selected returns the selected entries in list order.
func (l *List) Selected() []*Value {
	var out []*Value
	for _, sv := range l.values {
		if sv.IsSelected() {
			out = append(out, sv)
		}
	}
	return out
}

// Select marks the entries contained in set as selected and clears others.
func (l *List) Select(s *Set) {
	for _, sv := range l.values {
		sv.SetSelected(s.Contains(sv.Value))
	}
}

type SortOrder int

const (
	SortNone SortOrder = iota
	SortAsc
	SortDesc
)

// Sort orders entries by value, falling back to label when values are not
// comparable. The sort is stable.
func (l *List) Sort(order SortOrder) {
	if order == SortNone {
		return
	}
	sort.SliceStable(l.values, func(i, j int) bool {
		a, b := l.values[i], l.values[j]
		n, ok := condition.Compare(Normalize(a.Value, nil), Normalize(b.Value, nil))
		if !ok {
			n = strings.Compare(a.Label, b.Label)
		}
		if order == SortDesc {
			return n > 0
		}
		return n < 0
	})
}

func (l *List) Clone() *List {
	if l == nil {
		return nil
	}
	c := &List{values: make([]*Value, len(l.values))}
	for i, v := range l.values {
		c.values[i] = v.Clone()
	}
	return c
}

func (l *List) Equal(o *List) bool {
	if l.Len() != o.Len() {
		return false
	}
	for i := range l.values {
		if !l.values[i].Equal(o.values[i]) {
			return false
		}
	}
	return true
}
