package selection

import (
	"fmt"
	"strings"
)

// Captioned values expose the full OLAP member caption, e.g.
// "[Geography].[USA].[CA]".
type Captioned interface {
	FullCaption() string
}

// CubeSet accepts legacy selections that stored bare or partial member
// captions instead of member values.
type CubeSet struct {
	*Set
}

func NewCubeSet(values ...any) *CubeSet {
	return &CubeSet{Set: NewSet(values...)}
}

// Contains matches direct membership, then the full caption string, then a
// segment-wise comparison where the shorter path must equal the tail of the
// longer one.
func (c *CubeSet) Contains(v any) bool {
	if c.Set.Contains(v) {
		return true
	}
	s, ok := v.(string)
	if !ok {
		if cp, isCap := v.(Captioned); isCap {
			s, ok = cp.FullCaption(), true
		}
	}
	if !ok || s == "" {
		return false
	}

	want := PathSegments(s)
	for _, stored := range c.Values() {
		caption := captionOf(stored)
		if caption == s {
			return true
		}
		if segmentsMatch(PathSegments(caption), want) {
			return true
		}
	}
	return false
}

func (c *CubeSet) Clone() *CubeSet {
	return &CubeSet{Set: c.Set.Clone()}
}

func captionOf(v any) string {
	if cp, ok := v.(Captioned); ok {
		return cp.FullCaption()
	}
	return fmt.Sprintf("%v", v)
}

// PathSegments splits "[A].[B].[C]" or "A/B/C" into its segments.
func PathSegments(caption string) []string {
	caption = strings.TrimSpace(caption)
	if strings.HasPrefix(caption, "[") && strings.HasSuffix(caption, "]") {
		return strings.Split(caption[1:len(caption)-1], "].[")
	}
	return strings.Split(caption, "/")
}

func segmentsMatch(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	off := len(b) - len(a)
	for i := range a {
		if a[i] != b[off+i] {
			return false
		}
	}
	return true
}
