package info

import (
	"context"

	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

// Line styles.
const (
	LineNone   = 0
	LineThin   = 1
	LineDashed = 2
	LineDotted = 3
)

// Shape is the state shared by drawn shapes. Shapes only carry view state.
type Shape struct {
	BaseInfo

	LineStyle *dynamic.Value[int]
	Shadow    bool
}

func newShape(size Size) Shape {
	return Shape{BaseInfo: newBaseInfo(size), LineStyle: dynamic.IntOf(LineThin)}
}

func (s *Shape) props() properties {
	return append(s.BaseInfo.props(), s.LineStyle)
}

func (s *Shape) copyViewInfo(o *Shape) bool {
	changed := s.BaseInfo.copyViewInfo(&o.BaseInfo)
	changed = copyDynamic(&s.LineStyle, o.LineStyle) || changed
	changed = copyField(&s.Shadow, o.Shadow) || changed
	return changed
}

func (s *Shape) deepCopy() Shape {
	return Shape{BaseInfo: s.BaseInfo.deepCopy(), LineStyle: s.LineStyle.Clone(), Shadow: s.Shadow}
}

func (s *Shape) writeShape(el *xmlutil.Element) {
	el.SetBoolAttr("shadow", s.Shadow)
	el.Append(dynamicElement("lineStyle", s.LineStyle))
}

func (s *Shape) parseShape(el *xmlutil.Element) {
	s.Shadow = el.BoolAttr("shadow", s.Shadow)
	parseDynamic(el, "lineStyle", s.LineStyle)
}

// Arrow heads of a line end.
const (
	ArrowNone = iota
	ArrowOpen
	ArrowFilled
)

// LineInfo is a line between two points, optionally anchored to other
// assemblies.
type LineInfo struct {
	Shape

	Start       Point
	End         Point
	BeginArrow  int
	EndArrow    int
	StartAnchor string
	EndAnchor   string
}

func NewLine() *LineInfo {
	return &LineInfo{Shape: newShape(Size{Width: 100, Height: 1}), End: Point{X: 100}}
}

func (l *LineInfo) Kind() Kind {
	return KindLine
}

func (l *LineInfo) CopyViewInfo(other AssemblyInfo, _ bool) bool {
	o, ok := peer[*LineInfo](l, other)
	if !ok {
		return false
	}
	changed := l.Shape.copyViewInfo(&o.Shape)
	changed = copyField(&l.Start, o.Start) || changed
	changed = copyField(&l.End, o.End) || changed
	changed = copyField(&l.BeginArrow, o.BeginArrow) || changed
	changed = copyField(&l.EndArrow, o.EndArrow) || changed
	changed = copyField(&l.StartAnchor, o.StartAnchor) || changed
	changed = copyField(&l.EndAnchor, o.EndAnchor) || changed
	return changed
}

func (l *LineInfo) CopyInputDataInfo(other AssemblyInfo, hint ChangeHint) ChangeHint {
	o, ok := peer[*LineInfo](l, other)
	if !ok {
		return hint
	}
	return l.BaseInfo.copyInputDataInfo(&o.BaseInfo, hint)
}

func (l *LineInfo) CopyOutputDataInfo(other AssemblyInfo) bool {
	o, ok := peer[*LineInfo](l, other)
	if !ok {
		return false
	}
	return l.BaseInfo.copyOutputDataInfo(&o.BaseInfo)
}

func (l *LineInfo) ShallowCopy() AssemblyInfo {
	cp := *l
	return &cp
}

func (l *LineInfo) DeepCopy() AssemblyInfo {
	cp := *l
	cp.Shape = l.Shape.deepCopy()
	return &cp
}

func (l *LineInfo) ResetRuntime() {
	l.props().reset()
}

func (l *LineInfo) Resolve(ctx context.Context, ev dynamic.Evaluator) {
	l.props().refresh(ctx, ev)
}

func (l *LineInfo) writeContents(el *xmlutil.Element) {
	l.writeShape(el)
	el.SetIntAttr("beginArrow", l.BeginArrow).SetIntAttr("endArrow", l.EndArrow)
	el.Append(pointElement("startPos", l.Start), pointElement("endPos", l.End))
	if l.StartAnchor != "" {
		el.Append(xmlutil.TextElement("startAnchor", l.StartAnchor))
	}
	if l.EndAnchor != "" {
		el.Append(xmlutil.TextElement("endAnchor", l.EndAnchor))
	}
}

func (l *LineInfo) parseContents(el *xmlutil.Element) error {
	l.parseShape(el)
	l.BeginArrow = el.IntAttr("beginArrow", l.BeginArrow)
	l.EndArrow = el.IntAttr("endArrow", l.EndArrow)
	parsePoint(el, "startPos", &l.Start)
	parsePoint(el, "endPos", &l.End)
	l.StartAnchor, _ = el.ChildText("startAnchor")
	l.EndAnchor, _ = el.ChildText("endAnchor")
	return nil
}

// RectangleInfo is a filled rectangle.
type RectangleInfo struct {
	Shape

	RoundCorner int
}

func NewRectangle() *RectangleInfo {
	return &RectangleInfo{Shape: newShape(Size{Width: 100, Height: 75})}
}

func (r *RectangleInfo) Kind() Kind {
	return KindRectangle
}

func (r *RectangleInfo) CopyViewInfo(other AssemblyInfo, _ bool) bool {
	o, ok := peer[*RectangleInfo](r, other)
	if !ok {
		return false
	}
	changed := r.Shape.copyViewInfo(&o.Shape)
	changed = copyField(&r.RoundCorner, o.RoundCorner) || changed
	return changed
}

func (r *RectangleInfo) CopyInputDataInfo(other AssemblyInfo, hint ChangeHint) ChangeHint {
	o, ok := peer[*RectangleInfo](r, other)
	if !ok {
		return hint
	}
	return r.BaseInfo.copyInputDataInfo(&o.BaseInfo, hint)
}

func (r *RectangleInfo) CopyOutputDataInfo(other AssemblyInfo) bool {
	o, ok := peer[*RectangleInfo](r, other)
	if !ok {
		return false
	}
	return r.BaseInfo.copyOutputDataInfo(&o.BaseInfo)
}

func (r *RectangleInfo) ShallowCopy() AssemblyInfo {
	cp := *r
	return &cp
}

func (r *RectangleInfo) DeepCopy() AssemblyInfo {
	return &RectangleInfo{Shape: r.Shape.deepCopy(), RoundCorner: r.RoundCorner}
}

func (r *RectangleInfo) ResetRuntime() {
	r.props().reset()
}

func (r *RectangleInfo) Resolve(ctx context.Context, ev dynamic.Evaluator) {
	r.props().refresh(ctx, ev)
}

func (r *RectangleInfo) writeContents(el *xmlutil.Element) {
	r.writeShape(el)
	el.SetIntAttr("roundCorner", r.RoundCorner)
}

func (r *RectangleInfo) parseContents(el *xmlutil.Element) error {
	r.parseShape(el)
	r.RoundCorner = el.IntAttr("roundCorner", r.RoundCorner)
	return nil
}

// OvalInfo is an ellipse inscribed in its bounds.
type OvalInfo struct {
	Shape
}

func NewOval() *OvalInfo {
	return &OvalInfo{Shape: newShape(Size{Width: 100, Height: 75})}
}

func (o *OvalInfo) Kind() Kind {
	return KindOval
}

func (o *OvalInfo) CopyViewInfo(other AssemblyInfo, _ bool) bool {
	p, ok := peer[*OvalInfo](o, other)
	if !ok {
		return false
	}
	return o.Shape.copyViewInfo(&p.Shape)
}

func (o *OvalInfo) CopyInputDataInfo(other AssemblyInfo, hint ChangeHint) ChangeHint {
	p, ok := peer[*OvalInfo](o, other)
	if !ok {
		return hint
	}
	return o.BaseInfo.copyInputDataInfo(&p.BaseInfo, hint)
}

func (o *OvalInfo) CopyOutputDataInfo(other AssemblyInfo) bool {
	p, ok := peer[*OvalInfo](o, other)
	if !ok {
		return false
	}
	return o.BaseInfo.copyOutputDataInfo(&p.BaseInfo)
}

func (o *OvalInfo) ShallowCopy() AssemblyInfo {
	cp := *o
	return &cp
}

func (o *OvalInfo) DeepCopy() AssemblyInfo {
	return &OvalInfo{Shape: o.Shape.deepCopy()}
}

func (o *OvalInfo) ResetRuntime() {
	o.props().reset()
}

func (o *OvalInfo) Resolve(ctx context.Context, ev dynamic.Evaluator) {
	o.props().refresh(ctx, ev)
}

func (o *OvalInfo) writeContents(el *xmlutil.Element) {
	o.writeShape(el)
}

func (o *OvalInfo) parseContents(el *xmlutil.Element) error {
	o.parseShape(el)
	return nil
}
