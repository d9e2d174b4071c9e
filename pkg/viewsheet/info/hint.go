package info

import "strings"

// ChangeHint accumulates what a copy operation changed. Each flag maps to a
// different downstream invalidation.
type ChangeHint uint8

const NoneChanged ChangeHint = 0

const (
	// InputDataChanged means the assembly's own query input changed.
	InputDataChanged ChangeHint = 1 << iota
	// OutputDataChanged means data the assembly feeds to others changed.
	OutputDataChanged
	// ViewChanged means only the rendering needs refreshing.
	ViewChanged
)

func (h ChangeHint) Union(o ChangeHint) ChangeHint {
	return h | o
}

func (h ChangeHint) Has(f ChangeHint) bool {
	return h&f == f && f != 0
}

func (h ChangeHint) IsNone() bool {
	return h == NoneChanged
}

func (h ChangeHint) String() string {
	if h == NoneChanged {
		return "none"
	}
	var parts []string
	if h.Has(InputDataChanged) {
		parts = append(parts, "input")
	}
	if h.Has(OutputDataChanged) {
		parts = append(parts, "output")
	}
	if h.Has(ViewChanged) {
		parts = append(parts, "view")
	}
	return strings.Join(parts, "|")
}

// Apply copies other into target with all three operations and returns the
// combined hint. The view copy is deep.
func Apply(target, other AssemblyInfo) ChangeHint {
	hint := NoneChanged
	if target.CopyViewInfo(other, true) {
		hint = hint.Union(ViewChanged)
	}
	hint = target.CopyInputDataInfo(other, hint)
	if target.CopyOutputDataInfo(other) {
		hint = hint.Union(OutputDataChanged)
	}
	return hint
}
