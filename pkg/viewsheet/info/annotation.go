package info

import (
	"context"
	"fmt"

	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

// AnnotationType is what an annotation is attached to.
type AnnotationType int

const (
	AnnotationAssembly AnnotationType = iota
	AnnotationData
	AnnotationViewsheet
)

// DataValueKind discriminates DataValue implementations.
type DataValueKind int

const (
	ChartData DataValueKind = iota + 1
	TableData
)

// trailingChartText is written after the chart data value children.
// Existing documents carry it and parsers ignore it.
const trailingChartText = "Calcc"

// DataValue anchors a data annotation to a chart point or a table cell.
type DataValue interface {
	Kind() DataValueKind
	Equal(o DataValue) bool

	clone() (DataValue, error)
	write(el *xmlutil.Element)
	parse(el *xmlutil.Element) error
}

// NewDataValue returns an empty data value of kind.
func NewDataValue(kind DataValueKind) (DataValue, error) {
	switch kind {
	case ChartData:
		return &ChartDataValue{}, nil
	case TableData:
		return &TableDataValue{}, nil
	}
	return nil, fmt.Errorf("unknown data value kind %d", int(kind))
}

// ChartDataValue identifies a chart point by measure and dimension values.
type ChartDataValue struct {
	Measure    string
	Dimensions []string
	Values     []any
}

func (c *ChartDataValue) Kind() DataValueKind {
	return ChartData
}

func (c *ChartDataValue) Equal(o DataValue) bool {
	oc, ok := o.(*ChartDataValue)
	return ok && c.Measure == oc.Measure &&
		stringsEqual(c.Dimensions, oc.Dimensions) && valuesEqual(c.Values, oc.Values)
}

func (c *ChartDataValue) clone() (DataValue, error) {
	vals, err := cloneValues(c.Values)
	if err != nil {
		return nil, err
	}
	return &ChartDataValue{
		Measure:    c.Measure,
		Dimensions: append([]string(nil), c.Dimensions...),
		Values:     vals,
	}, nil
}

func (c *ChartDataValue) write(el *xmlutil.Element) {
	el.SetAttr("class", "ChartDataValue")
	el.Append(
		xmlutil.TextElement("measure", c.Measure),
		stringsElement("dimensions", c.Dimensions),
		valuesElement("values", c.Values),
	)
	el.Trailing = trailingChartText
}

func (c *ChartDataValue) parse(el *xmlutil.Element) error {
	c.Measure, _ = el.ChildText("measure")
	c.Dimensions, _ = parseStrings(el, "dimensions")
	vals, _, err := parseValues(el, "values")
	if err != nil {
		return err
	}
	c.Values = vals
	return nil
}

// TableDataValue identifies a table cell.
type TableDataValue struct {
	Row   int
	Col   int
	Value any
}

func (t *TableDataValue) Kind() DataValueKind {
	return TableData
}

func (t *TableDataValue) Equal(o DataValue) bool {
	ot, ok := o.(*TableDataValue)
	return ok && t.Row == ot.Row && t.Col == ot.Col && valueEqual(t.Value, ot.Value)
}

func (t *TableDataValue) clone() (DataValue, error) {
	v, err := cloneValue(t.Value)
	if err != nil {
		return nil, err
	}
	return &TableDataValue{Row: t.Row, Col: t.Col, Value: v}, nil
}

func (t *TableDataValue) write(el *xmlutil.Element) {
	el.SetAttr("class", "TableDataValue").SetIntAttr("row", t.Row).SetIntAttr("col", t.Col)
	el.Append(valueElement("value", t.Value))
}

func (t *TableDataValue) parse(el *xmlutil.Element) error {
	t.Row = el.IntAttr("row", 0)
	t.Col = el.IntAttr("col", 0)
	if ve := el.Child("value"); ve != nil {
		v, err := parseValue(ve)
		if err != nil {
			return err
		}
		t.Value = v
	}
	return nil
}

func dataValueEqual(a, b DataValue) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// AnnotationInfo is a note attached to an assembly, a data point or the
// viewsheet. The note is drawn by a rectangle connected through a line.
type AnnotationInfo struct {
	BaseInfo

	Type      AnnotationType
	Line      string
	Rectangle string
	// Value is set for data annotations only.
	Value DataValue
}

func NewAnnotation() *AnnotationInfo {
	return &AnnotationInfo{BaseInfo: newBaseInfo(Size{Width: 1, Height: 1})}
}

func (a *AnnotationInfo) Kind() Kind {
	return KindAnnotation
}

func (a *AnnotationInfo) CopyViewInfo(other AssemblyInfo, _ bool) bool {
	o, ok := peer[*AnnotationInfo](a, other)
	if !ok {
		return false
	}
	changed := a.BaseInfo.copyViewInfo(&o.BaseInfo)
	changed = copyField(&a.Type, o.Type) || changed
	changed = copyField(&a.Line, o.Line) || changed
	changed = copyField(&a.Rectangle, o.Rectangle) || changed
	if !dataValueEqual(a.Value, o.Value) {
		a.Value = o.Value
		if o.Value != nil {
			if v, err := o.Value.clone(); err == nil {
				a.Value = v
			}
		}
		changed = true
	}
	return changed
}

func (a *AnnotationInfo) CopyInputDataInfo(other AssemblyInfo, hint ChangeHint) ChangeHint {
	o, ok := peer[*AnnotationInfo](a, other)
	if !ok {
		return hint
	}
	return a.BaseInfo.copyInputDataInfo(&o.BaseInfo, hint)
}

func (a *AnnotationInfo) CopyOutputDataInfo(other AssemblyInfo) bool {
	o, ok := peer[*AnnotationInfo](a, other)
	if !ok {
		return false
	}
	return a.BaseInfo.copyOutputDataInfo(&o.BaseInfo)
}

func (a *AnnotationInfo) ShallowCopy() AssemblyInfo {
	cp := *a
	return &cp
}

func (a *AnnotationInfo) DeepCopy() AssemblyInfo {
	cp, err := a.deepCopy()
	return deepCopied(a, cp, err)
}

func (a *AnnotationInfo) deepCopy() (*AnnotationInfo, error) {
	cp := *a
	cp.BaseInfo = a.BaseInfo.deepCopy()
	if a.Value != nil {
		v, err := a.Value.clone()
		if err != nil {
			return nil, fmt.Errorf("clone annotation value: %w", err)
		}
		cp.Value = v
	}
	return &cp, nil
}

func (a *AnnotationInfo) ResetRuntime() {
	a.BaseInfo.props().reset()
}

func (a *AnnotationInfo) Resolve(ctx context.Context, ev dynamic.Evaluator) {
	a.BaseInfo.props().refresh(ctx, ev)
}

func (a *AnnotationInfo) writeContents(el *xmlutil.Element) {
	el.SetIntAttr("annotationType", int(a.Type))
	if a.Line != "" {
		el.Append(xmlutil.TextElement("line", a.Line))
	}
	if a.Rectangle != "" {
		el.Append(xmlutil.TextElement("rectangle", a.Rectangle))
	}
	if a.Value != nil {
		ve := xmlutil.NewElement("dataValue")
		a.Value.write(ve)
		el.Append(ve)
	}
}

func (a *AnnotationInfo) parseContents(el *xmlutil.Element) error {
	a.Type = AnnotationType(el.IntAttr("annotationType", int(a.Type)))
	a.Line, _ = el.ChildText("line")
	a.Rectangle, _ = el.ChildText("rectangle")
	a.Value = nil

	ve := el.Child("dataValue")
	if ve == nil {
		return nil
	}
	var kind DataValueKind
	switch class, _ := ve.Attr("class"); class {
	case "ChartDataValue":
		kind = ChartData
	case "TableDataValue":
		kind = TableData
	default:
		return fmt.Errorf("%w: data value class %q", ErrUnknownKind, class)
	}
	v, err := NewDataValue(kind)
	if err != nil {
		return err
	}
	if err := v.parse(ve); err != nil {
		return fmt.Errorf("parse annotation value: %w", err)
	}
	a.Value = v
	return nil
}
