package info

import (
	"context"
	"fmt"

	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/viewsheet/selection"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

// SelectionListInfo filters other assemblies by the values selected from a
// bound column.
type SelectionListInfo struct {
	BaseInfo

	Title    *TitleInfo
	Binding  *Binding
	SortType selection.SortOrder
	// Selected is the persisted selection state.
	Selected *selection.Set
	// List is the last computed list, nil before the first query.
	List  *selection.List
	Drill *DrillFilterInfo
}

func NewSelectionList() *SelectionListInfo {
	return &SelectionListInfo{
		BaseInfo: newBaseInfo(Size{Width: 100, Height: 120}),
		Title:    NewTitleInfo("SelectionList"),
		SortType: selection.SortAsc,
		Selected: selection.NewSet(),
		Drill:    NewDrillFilterInfo(),
	}
}

func (s *SelectionListInfo) Kind() Kind {
	return KindSelectionList
}

func (s *SelectionListInfo) TitleText() string {
	return s.Title.Text()
}

func (s *SelectionListInfo) DrillFilter() *DrillFilterInfo {
	return s.Drill
}

// ConditionList restricts the bound column to the selected values. No
// selection means no restriction.
func (s *SelectionListInfo) ConditionList() *condition.List {
	if s.Binding == nil || s.Selected.Len() == 0 {
		return condition.NewList()
	}
	return condition.Single(s.Binding.Column, condition.OneOf(s.Selected.Values()...))
}

// SetList installs a freshly computed list and marks the selected values.
func (s *SelectionListInfo) SetList(l *selection.List) {
	l.Select(s.Selected)
	l.Sort(s.SortType)
	s.List = l
}

func (s *SelectionListInfo) props() properties {
	return append(s.BaseInfo.props(), s.Title.props()...)
}

func (s *SelectionListInfo) CopyViewInfo(other AssemblyInfo, _ bool) bool {
	o, ok := peer[*SelectionListInfo](s, other)
	if !ok {
		return false
	}
	changed := s.BaseInfo.copyViewInfo(&o.BaseInfo)
	changed = copyTitle(&s.Title, o.Title) || changed
	changed = copyField(&s.SortType, o.SortType) || changed
	return changed
}

// CopyInputDataInfo flags a selection change as an output change: the
// list itself is unchanged but every assembly it filters must re-query.
func (s *SelectionListInfo) CopyInputDataInfo(other AssemblyInfo, hint ChangeHint) ChangeHint {
	o, ok := peer[*SelectionListInfo](s, other)
	if !ok {
		return hint
	}
	hint = s.BaseInfo.copyInputDataInfo(&o.BaseInfo, hint)
	if copyBinding(&s.Binding, o.Binding) {
		hint = hint.Union(InputDataChanged)
	}
	if copyDrill(&s.Drill, o.Drill) {
		hint = hint.Union(InputDataChanged)
	}
	if !s.Selected.Equal(o.Selected) {
		s.Selected = o.Selected.Clone()
		hint = hint.Union(OutputDataChanged)
	}
	return hint
}

func (s *SelectionListInfo) CopyOutputDataInfo(other AssemblyInfo) bool {
	o, ok := peer[*SelectionListInfo](s, other)
	if !ok {
		return false
	}
	changed := s.BaseInfo.copyOutputDataInfo(&o.BaseInfo)
	if !listEqual(s.List, o.List) {
		s.List = o.List.Clone()
		changed = true
	}
	return changed
}

func listEqual(a, b *selection.List) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func (s *SelectionListInfo) ShallowCopy() AssemblyInfo {
	cp := *s
	return &cp
}

func (s *SelectionListInfo) DeepCopy() AssemblyInfo {
	cp := &SelectionListInfo{
		BaseInfo: s.BaseInfo.deepCopy(),
		Title:    s.Title.Clone(),
		Binding:  s.Binding.Clone(),
		SortType: s.SortType,
		Selected: s.Selected.Clone(),
		Drill:    s.Drill.Clone(),
	}
	if s.List != nil {
		cp.List = s.List.Clone()
	}
	return cp
}

func (s *SelectionListInfo) ResetRuntime() {
	s.props().reset()
}

func (s *SelectionListInfo) Resolve(ctx context.Context, ev dynamic.Evaluator) {
	s.props().refresh(ctx, ev)
}

func (s *SelectionListInfo) writeContents(el *xmlutil.Element) {
	el.SetIntAttr("sortType", int(s.SortType))
	el.Append(s.Title.WriteXML())
	if s.Binding != nil {
		el.Append(bindingElement(s.Binding))
	}
	el.Append(valuesElement("selectedValues", s.Selected.Values()))
	if s.List != nil {
		le := xmlutil.NewElement("selectionList")
		for _, v := range s.List.Values() {
			ve := valueElement("selectionValue", v.Value)
			ve.SetAttr("label", v.Label).SetIntAttr("state", int(v.State)).SetIntAttr("level", v.Level)
			if v.FormatSpec != "" {
				ve.SetAttr("format", v.FormatSpec)
			}
			le.Append(ve)
		}
		el.Append(le)
	}
	el.Append(s.Drill.WriteXML())
}

func (s *SelectionListInfo) parseContents(el *xmlutil.Element) error {
	s.SortType = selection.SortOrder(el.IntAttr("sortType", int(s.SortType)))
	parseTitleFrom(el, s.Title)
	s.Binding = parseBinding(el)

	vals, ok, err := parseValues(el, "selectedValues")
	if err != nil {
		return err
	}
	if ok {
		s.Selected = selection.NewSet(vals...)
	}

	if le := el.Child("selectionList"); le != nil {
		l := selection.NewList()
		for _, ve := range le.ChildrenNamed("selectionValue") {
			v, err := parseValue(ve)
			if err != nil {
				return fmt.Errorf("parse selection value: %w", err)
			}
			label, _ := ve.Attr("label")
			format, _ := ve.Attr("format")
			l.Add(&selection.Value{
				Label:      label,
				Value:      v,
				State:      selection.State(ve.IntAttr("state", 0)),
				Level:      ve.IntAttr("level", 0),
				FormatSpec: format,
			})
		}
		s.List = l
	}

	if de := el.Child("drillFilterInfo"); de != nil {
		return s.Drill.ParseXML(de)
	}
	return nil
}
