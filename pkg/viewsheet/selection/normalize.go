// Package selection holds selection-state collections. Membership compares
// normalized values, so a one-element tuple matches its scalar and numbers
// of equal value match across widths.
package selection

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Tuple is a multi-level selection value, e.g. year/month of a calendar.
type Tuple struct {
	Values []any
	Level  int
}

func NewTuple(values []any, level int) Tuple {
	return Tuple{Values: append([]any(nil), values...), Level: level}
}

func (t Tuple) String() string {
	parts := make([]string, len(t.Values))
	for i, v := range t.Values {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Normalizer canonicalizes scalar values before comparison.
type Normalizer func(any) any

// DefaultNormalizer maps integers of every width, and floats holding an
// integer, to int64 (uint64 above the int64 range) so that they compare
// exactly. Other floats become float64, times move to UTC and byte slices
// become strings.
func DefaultNormalizer(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return fromUnsigned(uint64(n))
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return fromUnsigned(n)
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case time.Time:
		return n.UTC()
	case []byte:
		return string(n)
	}
	return v
}

func fromUnsigned(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return u
}

func fromFloat(f float64) any {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < -math.MinInt64 {
		return int64(f)
	}
	return f
}

// Normalize collapses a one-element tuple to its element and passes every
// other value through norm.
func Normalize(v any, norm Normalizer) any {
	if norm == nil {
		norm = DefaultNormalizer
	}
	switch t := v.(type) {
	case Tuple:
		if len(t.Values) == 1 {
			return Normalize(t.Values[0], norm)
		}
		vals := make([]any, len(t.Values))
		for i, e := range t.Values {
			vals[i] = Normalize(e, norm)
		}
		return Tuple{Values: vals, Level: t.Level}
	case *Tuple:
		if t == nil {
			return nil
		}
		return Normalize(*t, norm)
	}
	return norm(v)
}

// key renders a normalized value as a hash key. Tuple levels are not part
// of the identity.
func key(v any) string {
	switch t := v.(type) {
	case nil:
		return "n:"
	case string:
		return "s:" + t
	case int64:
		return "i:" + strconv.FormatInt(t, 10)
	case uint64:
		return "u:" + strconv.FormatUint(t, 10)
	case float64:
		return "f:" + strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return "b:" + strconv.FormatBool(t)
	case time.Time:
		return "t:" + t.Format(time.RFC3339Nano)
	case Tuple:
		// length prefixes keep element text from forging separators
		parts := make([]string, len(t.Values))
		for i, e := range t.Values {
			k := key(e)
			parts[i] = strconv.Itoa(len(k)) + ":" + k
		}
		return "(" + strings.Join(parts, "|") + ")"
	}
	return fmt.Sprintf("%T:%v", v, v)
}

// Key returns the membership key of v under norm.
func Key(v any, norm Normalizer) string {
	return key(Normalize(v, norm))
}
