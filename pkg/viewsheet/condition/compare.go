package condition

import (
	"cmp"
	"strings"
	"time"
)

// Compare orders two non-nil values. Numbers of any width compare
// numerically, exactly when both are integers; strings compare lexically,
// times chronologically and false sorts before true. ok is false when the
// values are not comparable.
func Compare(a, b any) (n int, ok bool) {
	if ia, isInt := toInteger(a); isInt {
		if ib, isInt := toInteger(b); isInt {
			return ia.compare(ib), true
		}
	}
	if fa, isNum := toFloat(a); isNum {
		fb, isNum := toFloat(b)
		if !isNum {
			return 0, false
		}
		return cmpOrdered(fa, fb), true
	}

	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

func cmpOrdered(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// integer holds any Go integer without loss.
type integer struct {
	i        int64
	u        uint64
	unsigned bool
}

func (a integer) compare(b integer) int {
	switch {
	case !a.unsigned && !b.unsigned:
		return cmp.Compare(a.i, b.i)
	case a.unsigned && b.unsigned:
		return cmp.Compare(a.u, b.u)
	case !a.unsigned:
		if a.i < 0 {
			return -1
		}
		return cmp.Compare(uint64(a.i), b.u)
	default:
		if b.i < 0 {
			return 1
		}
		return cmp.Compare(a.u, uint64(b.i))
	}
}

func toInteger(v any) (integer, bool) {
	switch n := v.(type) {
	case int:
		return integer{i: int64(n)}, true
	case int8:
		return integer{i: int64(n)}, true
	case int16:
		return integer{i: int64(n)}, true
	case int32:
		return integer{i: int64(n)}, true
	case int64:
		return integer{i: n}, true
	case uint:
		return integer{u: uint64(n), unsigned: true}, true
	case uint8:
		return integer{u: uint64(n), unsigned: true}, true
	case uint16:
		return integer{u: uint64(n), unsigned: true}, true
	case uint32:
		return integer{u: uint64(n), unsigned: true}, true
	case uint64:
		return integer{u: n, unsigned: true}, true
	}
	return integer{}, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
