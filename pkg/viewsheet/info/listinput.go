package info

import (
	"fmt"

	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/viewsheet/selection"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

// Binding points a list or scalar at a dataset column.
type Binding struct {
	Table     string
	Column    string
	Aggregate string
}

func (b *Binding) Equal(o *Binding) bool {
	if b == nil || o == nil {
		return b == o
	}
	return *b == *o
}

func (b *Binding) Clone() *Binding {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

func copyBinding(dst **Binding, src *Binding) bool {
	if (*dst).Equal(src) {
		return false
	}
	*dst = src.Clone()
	return true
}

func bindingElement(b *Binding) *xmlutil.Element {
	el := xmlutil.NewElement("binding").SetAttr("table", b.Table).SetAttr("column", b.Column)
	if b.Aggregate != "" {
		el.SetAttr("aggregate", b.Aggregate)
	}
	return el
}

func parseBinding(parent *xmlutil.Element) *Binding {
	el := parent.Child("binding")
	if el == nil {
		return nil
	}
	b := &Binding{}
	b.Table, _ = el.Attr("table")
	b.Column, _ = el.Attr("column")
	b.Aggregate, _ = el.Attr("aggregate")
	return b
}

// ListInput is the shared state of list based input assemblies. The list
// data is either embedded (Labels and Values), bound to a dataset column or
// supplied by a variable.
type ListInput struct {
	BaseInfo

	Title    *TitleInfo
	Labels   []string
	Values   []any
	DataType string
	Binding  *Binding
	// Variable names the variable supplying the list values, e.g. "$(region)".
	Variable string
	SortType selection.SortOrder
	Columns  *dynamic.Value[int]
}

func newListInput(title string) ListInput {
	return ListInput{
		BaseInfo: newBaseInfo(Size{Width: 100, Height: 120}),
		Title:    NewTitleInfo(title),
		DataType: typeString,
		Columns:  dynamic.IntOf(1),
	}
}

func (l *ListInput) TitleText() string {
	return l.Title.Text()
}

// VariableBound reports whether the list values come from a variable.
func (l *ListInput) VariableBound() bool {
	return l.Variable != ""
}

// Contains reports whether v is one of the list values.
func (l *ListInput) Contains(v any) bool {
	for _, e := range l.Values {
		if valueEqual(e, v) {
			return true
		}
	}
	return false
}

func (l *ListInput) props() properties {
	return append(append(l.BaseInfo.props(), l.Title.props()...), l.Columns)
}

func (l *ListInput) copyViewInfo(o *ListInput) bool {
	changed := l.BaseInfo.copyViewInfo(&o.BaseInfo)
	changed = copyTitle(&l.Title, o.Title) || changed
	changed = copyDynamic(&l.Columns, o.Columns) || changed
	changed = copyField(&l.SortType, o.SortType) || changed
	return changed
}

func (l *ListInput) copyInputDataInfo(o *ListInput, hint ChangeHint) ChangeHint {
	hint = l.BaseInfo.copyInputDataInfo(&o.BaseInfo, hint)
	changed := copyBinding(&l.Binding, o.Binding)
	changed = copyField(&l.Variable, o.Variable) || changed
	changed = copyField(&l.DataType, o.DataType) || changed
	if !stringsEqual(l.Labels, o.Labels) {
		l.Labels = append([]string(nil), o.Labels...)
		changed = true
	}
	if !valuesEqual(l.Values, o.Values) {
		vals, err := cloneValues(o.Values)
		if err != nil {
			vals = append([]any(nil), o.Values...)
		}
		l.Values = vals
		changed = true
	}
	if changed {
		hint = hint.Union(InputDataChanged)
	}
	return hint
}

func (l *ListInput) deepCopy() (ListInput, error) {
	c := *l
	c.BaseInfo = l.BaseInfo.deepCopy()
	c.Title = l.Title.Clone()
	c.Columns = l.Columns.Clone()
	c.Binding = l.Binding.Clone()
	c.Labels = append([]string(nil), l.Labels...)
	vals, err := cloneValues(l.Values)
	if err != nil {
		return c, fmt.Errorf("clone list values: %w", err)
	}
	c.Values = vals
	return c, nil
}

func (l *ListInput) writeList(el *xmlutil.Element) {
	el.SetAttr("dataType", l.DataType).SetIntAttr("sortType", int(l.SortType))
	el.Append(l.Title.WriteXML(), dynamicElement("columnCount", l.Columns))
	if l.Binding != nil {
		el.Append(bindingElement(l.Binding))
	}
	if l.Variable != "" {
		el.Append(xmlutil.TextElement("variable", l.Variable))
	}
	el.Append(stringsElement("labels", l.Labels), valuesElement("values", l.Values))
}

func (l *ListInput) parseList(el *xmlutil.Element) error {
	if t, ok := el.Attr("dataType"); ok {
		l.DataType = t
	}
	l.SortType = selection.SortOrder(el.IntAttr("sortType", int(l.SortType)))
	parseTitleFrom(el, l.Title)
	parseDynamic(el, "columnCount", l.Columns)
	l.Binding = parseBinding(el)
	l.Variable, _ = el.ChildText("variable")
	if labels, ok := parseStrings(el, "labels"); ok {
		l.Labels = labels
	}
	vals, ok, err := parseValues(el, "values")
	if err != nil {
		return err
	}
	if ok {
		l.Values = vals
	}
	return nil
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
