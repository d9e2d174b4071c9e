package selection

import (
	"sort"

	"github.com/hashicorp/go-set/v2"
)

type entry struct {
	key   string
	value any
}

func (e entry) Hash() string {
	return e.key
}

// Set is a selection set with normalized membership.
type Set struct {
	items *set.HashSet[entry, string]
	norm  Normalizer
}

func NewSet(values ...any) *Set {
	return NewSetWith(nil, values...)
}

// NewSetWith uses norm as the generic value normalizer.
func NewSetWith(norm Normalizer, values ...any) *Set {
	if norm == nil {
		norm = DefaultNormalizer
	}
	s := &Set{items: set.NewHashSet[entry, string](len(values)), norm: norm}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

func (s *Set) entry(v any) entry {
	return entry{key: Key(v, s.norm), value: v}
}

// Add reports whether v was not present yet.
func (s *Set) Add(v any) bool {
	return s.items.Insert(s.entry(v))
}

func (s *Set) Contains(v any) bool {
	return s.items.Contains(s.entry(v))
}

func (s *Set) Remove(v any) bool {
	return s.items.Remove(s.entry(v))
}

func (s *Set) Len() int {
	return s.items.Size()
}

func (s *Set) Clear() {
	s.items = set.NewHashSet[entry, string](0)
}

// Values returns the stored values ordered by membership key.
func (s *Set) Values() []any {
	entries := s.items.Slice()
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = e.value
	}
	return out
}

func (s *Set) Clone() *Set {
	return &Set{items: s.items.Copy(), norm: s.norm}
}

func (s *Set) Equal(o *Set) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Len() != o.Len() {
		return false
	}
	for _, e := range s.items.Slice() {
		if !o.items.Contains(e) {
			return false
		}
	}
	return true
}
