package dynamic

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Codec parses, formats, converts and copies runtime values of type T.
type Codec[T any] struct {
	Parse   func(s string) (T, error)
	Format  func(t T) string
	Convert func(raw any) (T, error)
	Copy    func(t T) T
}

func identity[T any](t T) T { return t }

var StringCodec = Codec[string]{
	Parse:   func(s string) (string, error) { return s, nil },
	Format:  identity[string],
	Convert: cast.ToStringE,
	Copy:    identity[string],
}

var IntCodec = Codec[int]{
	Parse: func(s string) (int, error) {
		return strconv.Atoi(strings.TrimSpace(s))
	},
	Format:  strconv.Itoa,
	Convert: cast.ToIntE,
	Copy:    identity[int],
}

var FloatCodec = Codec[float64]{
	Parse: func(s string) (float64, error) {
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	},
	Format: func(f float64) string {
		return strconv.FormatFloat(f, 'g', -1, 64)
	},
	Convert: cast.ToFloat64E,
	Copy:    identity[float64],
}

var BoolCodec = Codec[bool]{
	Parse: func(s string) (bool, error) {
		return strconv.ParseBool(strings.TrimSpace(s))
	},
	Format:  strconv.FormatBool,
	Convert: cast.ToBoolE,
	Copy:    identity[bool],
}

// ColorCodec handles RGB colors written as #RRGGBB, 0xRRGGBB or decimal.
var ColorCodec = Codec[int]{
	Parse:  ParseColor,
	Format: FormatColor,
	Convert: func(raw any) (int, error) {
		if s, ok := raw.(string); ok {
			return ParseColor(s)
		}
		return cast.ToIntE(raw)
	},
	Copy: identity[int],
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

var DateCodec = Codec[time.Time]{
	Parse: ParseDate,
	Format: func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	},
	Convert: func(raw any) (time.Time, error) {
		if s, ok := raw.(string); ok {
			return ParseDate(s)
		}
		return cast.ToTimeE(raw)
	},
	Copy: identity[time.Time],
}

func ParseColor(s string) (int, error) {
	s = strings.TrimSpace(s)
	var (
		v   int64
		err error
	)
	switch {
	case strings.HasPrefix(s, "#"):
		v, err = strconv.ParseInt(s[1:], 16, 64)
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		v, err = strconv.ParseInt(s[2:], 16, 64)
	default:
		v, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return int(v & 0xFFFFFF), nil
}

func FormatColor(c int) string {
	return fmt.Sprintf("#%06x", c&0xFFFFFF)
}

func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// Convenience constructors for the typed variants.

func NewString(design, def string) *Value[string] { return New(design, def, StringCodec) }
func NewInt(design string, def int) *Value[int]   { return New(design, def, IntCodec) }
func NewFloat(design string, def float64) *Value[float64] {
	return New(design, def, FloatCodec)
}
func NewBool(design string, def bool) *Value[bool] { return New(design, def, BoolCodec) }
func NewColor(design string, def int) *Value[int]  { return New(design, def, ColorCodec) }
func NewDate(design string, def time.Time) *Value[time.Time] {
	return New(design, def, DateCodec)
}

// Typed literal helpers.

func IntOf(n int) *Value[int]           { return NewInt(strconv.Itoa(n), n) }
func BoolOf(b bool) *Value[bool]        { return NewBool(strconv.FormatBool(b), b) }
func FloatOf(f float64) *Value[float64] { return NewFloat(FloatCodec.Format(f), f) }
func NullString() *Value[string]        { return NewNull("", StringCodec) }
func NullColor() *Value[int]            { return NewNull(0, ColorCodec) }
func NullDate() *Value[time.Time]       { return NewNull(time.Time{}, DateCodec) }
