// Package rangecond compiles range selections (sliders, calendars) into
// condition lists.
package rangecond

import (
	"fmt"
	"sync"

	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
)

// Bounds holds the inclusivity and nullability flags of a range.
type Bounds struct {
	LowerInclusive bool
	UpperInclusive bool
	Nullable       bool
}

// RangeCondition is an immutable composite range over one or more ordered
// fields. Conditions sharing an ID are alternatives of the same control.
type RangeCondition struct {
	id     string
	mins   []any
	maxes  []any
	refs   []string
	bounds Bounds

	once      sync.Once
	list      *condition.List
	predicate condition.Predicate
}

// New panics when mins, maxes and refs differ in length.
func New(id string, mins, maxes []any, refs []string, b Bounds) *RangeCondition {
	mustSameLength(mins, maxes, refs)
	return &RangeCondition{
		id:     id,
		mins:   append([]any(nil), mins...),
		maxes:  append([]any(nil), maxes...),
		refs:   append([]string(nil), refs...),
		bounds: b,
	}
}

func mustSameLength(mins, maxes []any, refs []string) {
	if len(mins) != len(maxes) || len(maxes) != len(refs) {
		panic(fmt.Sprintf("rangecond: bounds length mismatch: mins=%d maxes=%d refs=%d",
			len(mins), len(maxes), len(refs)))
	}
}

func (r *RangeCondition) ID() string     { return r.id }
func (r *RangeCondition) Mins() []any    { return append([]any(nil), r.mins...) }
func (r *RangeCondition) Maxes() []any   { return append([]any(nil), r.maxes...) }
func (r *RangeCondition) Refs() []string { return append([]string(nil), r.refs...) }
func (r *RangeCondition) Bounds() Bounds { return r.bounds }

func (r *RangeCondition) compile() {
	r.once.Do(func() {
		r.list = NewListCreator(r.mins, r.maxes, r.refs, r.bounds).Create()
		pred, err := condition.Compile(r.list)
		if err != nil {
			panic(fmt.Sprintf("rangecond: generated malformed list: %v", err))
		}
		r.predicate = pred
	})
}

// ConditionList returns a copy of the compiled list.
func (r *RangeCondition) ConditionList() *condition.List {
	r.compile()
	return r.list.Clone()
}

// Evaluator returns the cached row predicate.
func (r *RangeCondition) Evaluator() condition.Predicate {
	r.compile()
	return r.predicate
}

func (r *RangeCondition) Evaluate(row condition.Row) bool {
	return r.Evaluator()(row)
}

func (r *RangeCondition) String() string {
	return fmt.Sprintf("range[%s] %v..%v on %v", r.id, r.mins, r.maxes, r.refs)
}

// MergeRanges ORs conditions that share an ID and ANDs the groups, keeping
// first-seen group order.
func MergeRanges(conds ...*RangeCondition) *condition.List {
	var order []string
	groups := map[string][]*condition.List{}
	for _, c := range conds {
		if c == nil {
			continue
		}
		if _, ok := groups[c.id]; !ok {
			order = append(order, c.id)
		}
		groups[c.id] = append(groups[c.id], c.ConditionList())
	}

	merged := make([]*condition.List, 0, len(order))
	for _, id := range order {
		merged = append(merged, condition.OrMerge(groups[id]...))
	}
	return condition.AndMerge(merged...)
}

// MergeInto ANDs the merged ranges into an existing query filter.
func MergeInto(filter *condition.List, conds ...*RangeCondition) *condition.List {
	return condition.AndMerge(filter, MergeRanges(conds...))
}
