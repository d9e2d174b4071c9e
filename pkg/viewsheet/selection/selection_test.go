package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_TupleScalarEquivalence(t *testing.T) {
	s := NewSet()
	s.Add(NewTuple([]any{"x"}, 1))

	assert.True(t, s.Contains("x"))
	assert.True(t, s.Contains(NewTuple([]any{"x"}, 1)))
	assert.False(t, s.Contains("y"))
}

func TestSet_NumericNormalization(t *testing.T) {
	s := NewSet(1, int64(2), float32(3))

	assert.True(t, s.Contains(1.0))
	assert.True(t, s.Contains(2))
	assert.True(t, s.Contains(uint8(3)))
	assert.False(t, s.Add(1.0), "normalized duplicates are not added")
	assert.Equal(t, 3, s.Len())
}

func TestSet_MultiValueTuples(t *testing.T) {
	s := NewSet(NewTuple([]any{2020, "Q1"}, 2))

	assert.True(t, s.Contains(NewTuple([]any{2020.0, "Q1"}, 2)))
	assert.False(t, s.Contains(NewTuple([]any{2020, "Q2"}, 2)))
	assert.False(t, s.Contains(2020))
}

func TestSet_RemoveCloneEqual(t *testing.T) {
	s := NewSet("a", "b")
	c := s.Clone()

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, c.Len(), "clone does not share storage")
	assert.False(t, s.Equal(c))
	assert.True(t, c.Equal(NewSet("b", "a")))
	assert.Equal(t, []any{"a", "b"}, c.Values())
}

func TestSet_CustomNormalizer(t *testing.T) {
	day := func(v any) any {
		if tm, ok := v.(time.Time); ok {
			return tm.UTC().Truncate(24 * time.Hour)
		}
		return DefaultNormalizer(v)
	}
	s := NewSetWith(day, time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC))
	assert.True(t, s.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMap(t *testing.T) {
	m := NewMap()
	m.Put(NewTuple([]any{1}, 1), "one")
	m.Put("b", 2)

	v, ok := m.Get(1.0)
	require.True(t, ok)
	assert.Equal(t, "one", v)
	assert.True(t, m.ContainsKey("b"))

	c := m.Clone()
	m.Delete(1)
	assert.False(t, m.ContainsKey(1))
	assert.True(t, c.ContainsKey(1))
	assert.Equal(t, 1, m.Len())
}

type member string

func (m member) FullCaption() string { return string(m) }

func TestCubeSet_LegacyCaptions(t *testing.T) {
	tests := []struct {
		name   string
		stored any
		query  any
		want   bool
	}{
		{name: "direct", stored: "[Geo].[USA].[CA]", query: "[Geo].[USA].[CA]", want: true},
		{name: "legacy bare caption", stored: "CA", query: "[Geo].[USA].[CA]", want: true},
		{name: "legacy slash path", stored: "USA/CA", query: "[Geo].[USA].[CA]", want: true},
		{name: "captioned member", stored: member("[Geo].[USA].[CA]"), query: "[USA].[CA]", want: true},
		{name: "different leaf", stored: "USA/NV", query: "[Geo].[USA].[CA]", want: false},
		{name: "non string", stored: "1", query: 1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewCubeSet(tt.stored).Contains(tt.query))
		})
	}
}

func TestList(t *testing.T) {
	l := NewList(
		&Value{Label: "West", Value: "w"},
		&Value{Label: "East", Value: "e"},
		&Value{Label: "North", Value: "n", State: StateSelected},
	)

	l.Select(NewSet(NewTuple([]any{"e"}, 1)))
	selected := l.Selected()
	require.Len(t, selected, 1)
	assert.Equal(t, "East", selected[0].Label)

	c := l.Clone()
	l.Sort(SortAsc)
	assert.Equal(t, "e", l.At(0).Value)
	assert.Equal(t, "w", c.At(0).Value, "clone keeps original order")
	assert.False(t, l.Equal(c))

	assert.NotNil(t, l.Find("n"))
	assert.Nil(t, l.Find("s"))

	l.Sort(SortDesc)
	assert.Equal(t, "w", l.At(0).Value)
}

func TestKey_TupleElementsCannotForgeSeparators(t *testing.T) {
	tests := []struct {
		name   string
		stored Tuple
		query  Tuple
	}{
		{
			"separator inside a string",
			NewTuple([]any{"a", "b", "c"}, 3),
			NewTuple([]any{"a|s:b", "c"}, 2),
		},
		{
			"nested tuple text",
			NewTuple([]any{NewTuple([]any{"a", "b"}, 2), "c"}, 2),
			NewTuple([]any{"(s:a|s:b)", "c"}, 2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, Key(tt.stored, nil), Key(tt.query, nil))
			assert.False(t, NewSet(tt.stored).Contains(tt.query))
			assert.True(t, NewSet(tt.stored).Contains(tt.stored))
		})
	}
}

func TestSet_LargeIntegersStayDistinct(t *testing.T) {
	s := NewSet(int64(1<<53+1), uint64(1<<63+1))

	assert.False(t, s.Contains(int64(1<<53)))
	assert.True(t, s.Contains(int64(1<<53+1)))
	assert.False(t, s.Contains(uint64(1<<63)))
	assert.True(t, s.Contains(uint64(1<<63+1)))
	assert.True(t, NewSet(2).Contains(2.0))
	assert.False(t, NewSet(2).Contains(2.5))
}
