package selection

import "sort"

type mapEntry struct {
	key   any
	value any
}

// Map associates values with selection keys compared after normalization.
type Map struct {
	m    map[string]mapEntry
	norm Normalizer
}

func NewMap() *Map {
	return &Map{m: map[string]mapEntry{}, norm: DefaultNormalizer}
}

func (m *Map) Put(k, v any) {
	m.m[Key(k, m.norm)] = mapEntry{key: k, value: v}
}

func (m *Map) Get(k any) (any, bool) {
	e, ok := m.m[Key(k, m.norm)]
	return e.value, ok
}

func (m *Map) ContainsKey(k any) bool {
	_, ok := m.m[Key(k, m.norm)]
	return ok
}

func (m *Map) Delete(k any) {
	delete(m.m, Key(k, m.norm))
}

func (m *Map) Len() int {
	return len(m.m)
}

// Keys returns the original keys ordered by membership key.
func (m *Map) Keys() []any {
	ks := make([]string, 0, len(m.m))
	for k := range m.m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	out := make([]any, len(ks))
	for i, k := range ks {
		out[i] = m.m[k].key
	}
	return out
}

func (m *Map) Clone() *Map {
	c := &Map{m: make(map[string]mapEntry, len(m.m)), norm: m.norm}
	for k, v := range m.m {
		c.m[k] = v
	}
	return c
}
