package info

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/viewsheet/selection"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

var ErrNotCloneable = errors.New("value cannot be cloned")

const (
	typeNull    = "null"
	typeString  = "string"
	typeInteger = "integer"
	typeDouble  = "double"
	typeBoolean = "boolean"
	typeDate    = "date"
	typeTuple   = "tuple"
)

// valueElement writes a scalar or tuple value with its type tag.
func valueElement(name string, v any) *xmlutil.Element {
	el := xmlutil.NewElement(name)
	switch t := v.(type) {
	case nil:
		el.SetAttr("type", typeNull)
	case string:
		el.SetAttr("type", typeString)
		el.Text, el.CDATA = t, true
	case bool:
		el.SetAttr("type", typeBoolean)
		el.Text = strconv.FormatBool(t)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		el.SetAttr("type", typeInteger)
		el.Text = fmt.Sprintf("%d", t)
	case float32:
		el.SetAttr("type", typeDouble)
		el.Text = strconv.FormatFloat(float64(t), 'g', -1, 32)
	case float64:
		el.SetAttr("type", typeDouble)
		el.Text = strconv.FormatFloat(t, 'g', -1, 64)
	case time.Time:
		el.SetAttr("type", typeDate)
		el.Text = t.Format(time.RFC3339Nano)
	case selection.Tuple:
		el.SetAttr("type", typeTuple).SetIntAttr("level", t.Level)
		for _, e := range t.Values {
			el.Append(valueElement("value", e))
		}
	default:
		el.SetAttr("type", typeString)
		el.Text, el.CDATA = fmt.Sprintf("%v", t), true
	}
	return el
}

// parseValue is the inverse of valueElement. Integers come back as int.
func parseValue(el *xmlutil.Element) (any, error) {
	typ, _ := el.Attr("type")
	switch typ {
	case typeNull:
		return nil, nil
	case typeString, "":
		return el.Text, nil
	case typeBoolean:
		return strconv.ParseBool(el.Text)
	case typeInteger:
		n, err := strconv.ParseInt(el.Text, 10, 64)
		return int(n), err
	case typeDouble:
		return strconv.ParseFloat(el.Text, 64)
	case typeDate:
		return time.Parse(time.RFC3339Nano, el.Text)
	case typeTuple:
		vals := make([]any, 0, len(el.Children))
		for _, c := range el.ChildrenNamed("value") {
			v, err := parseValue(c)
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
		return selection.NewTuple(vals, el.IntAttr("level", 0)), nil
	}
	return nil, fmt.Errorf("unknown value type %q", typ)
}

func valuesElement(name string, vs []any) *xmlutil.Element {
	el := xmlutil.NewElement(name)
	for _, v := range vs {
		el.Append(valueElement("value", v))
	}
	return el
}

// parseValues returns ok=false when the named child is missing.
func parseValues(parent *xmlutil.Element, name string) ([]any, bool, error) {
	el := parent.Child(name)
	if el == nil {
		return nil, false, nil
	}
	var out []any
	for _, c := range el.ChildrenNamed("value") {
		v, err := parseValue(c)
		if err != nil {
			return nil, true, fmt.Errorf("parse %s: %w", name, err)
		}
		out = append(out, v)
	}
	return out, true, nil
}

func stringsElement(name string, ss []string) *xmlutil.Element {
	el := xmlutil.NewElement(name)
	for _, s := range ss {
		el.Append(xmlutil.TextElement("string", s))
	}
	return el
}

func parseStrings(parent *xmlutil.Element, name string) ([]string, bool) {
	el := parent.Child(name)
	if el == nil {
		return nil, false
	}
	var out []string
	for _, c := range el.ChildrenNamed("string") {
		out = append(out, c.Text)
	}
	return out, true
}

// cloneValue copies the scalar and tuple values an assembly may hold.
func cloneValue(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64, time.Time:
		return t, nil
	case selection.Tuple:
		vals, err := cloneValues(t.Values)
		if err != nil {
			return nil, err
		}
		return selection.Tuple{Values: vals, Level: t.Level}, nil
	case interface{ Clone() any }:
		return t.Clone(), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNotCloneable, v)
}

func cloneValues(vs []any) ([]any, error) {
	if vs == nil {
		return nil, nil
	}
	out := make([]any, len(vs))
	for i, v := range vs {
		c, err := cloneValue(v)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func valueEqual(a, b any) bool {
	return selection.Key(a, nil) == selection.Key(b, nil)
}

func valuesEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !valueEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func dynamicElement(name string, p dynamic.Property) *xmlutil.Element {
	return xmlutil.NullableTextElement(name, p.DesignPtr())
}

// parseDynamic sets the design value of p from the named child, leaving p
// unchanged when the child is missing.
func parseDynamic(parent *xmlutil.Element, name string, p dynamic.Property) {
	if s, ok := parent.NullableText(name); ok {
		p.SetDesignPtr(s)
	}
}

// copyDynamic copies the design value of src into *dst, keeping the target
// object when one exists.
func copyDynamic[T any](dst **dynamic.Value[T], src *dynamic.Value[T]) bool {
	if *dst == nil || src == nil {
		if *dst == src {
			return false
		}
		*dst = src.Clone()
		return true
	}
	return (*dst).CopyFrom(src)
}

func copyDynamicSlice[T any](dst *[]*dynamic.Value[T], src []*dynamic.Value[T]) bool {
	if dynamicSliceEqual(*dst, src) {
		return false
	}
	*dst = cloneDynamicSlice(src)
	return true
}

func dynamicSliceEqual[T any](a, b []*dynamic.Value[T]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func cloneDynamicSlice[T any](vs []*dynamic.Value[T]) []*dynamic.Value[T] {
	if vs == nil {
		return nil
	}
	out := make([]*dynamic.Value[T], len(vs))
	for i, v := range vs {
		out[i] = v.Clone()
	}
	return out
}

func copyField[T comparable](dst *T, src T) bool {
	if *dst == src {
		return false
	}
	*dst = src
	return true
}

// properties is a list of dynamic properties that refresh together.
type properties []dynamic.Property

func (ps properties) reset() {
	for _, p := range ps {
		if p != nil {
			p.ResetRuntime()
		}
	}
}

func (ps properties) refresh(ctx context.Context, ev dynamic.Evaluator) {
	for _, p := range ps {
		if p != nil {
			p.Refresh(ctx, ev)
		}
	}
}

func dynamicSliceProps[T any](vs []*dynamic.Value[T]) properties {
	ps := make(properties, 0, len(vs))
	for _, v := range vs {
		ps = append(ps, v)
	}
	return ps
}
