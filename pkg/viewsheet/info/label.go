package info

import (
	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

// Label placements.
const (
	LabelBottom = iota
	LabelTop
	LabelCenter
)

// LabelInfo is the value label of a gauge.
type LabelInfo struct {
	Visible  *dynamic.Value[bool]
	Position *dynamic.Value[int]
	Format   *Format
}

func NewLabelInfo() *LabelInfo {
	return &LabelInfo{
		Visible:  dynamic.BoolOf(true),
		Position: dynamic.IntOf(LabelBottom),
		Format:   NewFormat(),
	}
}

func (l *LabelInfo) props() properties {
	return append(properties{l.Visible, l.Position}, l.Format.props()...)
}

func (l *LabelInfo) Equal(o *LabelInfo) bool {
	if l == nil || o == nil {
		return l == o
	}
	return l.Visible.Equal(o.Visible) && l.Position.Equal(o.Position) && l.Format.Equal(o.Format)
}

func (l *LabelInfo) Clone() *LabelInfo {
	if l == nil {
		return nil
	}
	return &LabelInfo{Visible: l.Visible.Clone(), Position: l.Position.Clone(), Format: l.Format.Clone()}
}

func copyLabel(dst **LabelInfo, src *LabelInfo) bool {
	if (*dst).Equal(src) {
		return false
	}
	if *dst == nil || src == nil {
		*dst = src.Clone()
		return true
	}
	d := *dst
	d.Visible.CopyFrom(src.Visible)
	d.Position.CopyFrom(src.Position)
	copyFormat(&d.Format, src.Format)
	return true
}

func (l *LabelInfo) WriteXML() *xmlutil.Element {
	return xmlutil.NewElement("labelInfo").SetAttr("class", "LabelInfo").Append(
		dynamicElement("labelVisible", l.Visible),
		dynamicElement("labelPosition", l.Position),
		l.Format.WriteXML("labelFormat"),
	)
}

func (l *LabelInfo) ParseXML(el *xmlutil.Element) {
	parseDynamic(el, "labelVisible", l.Visible)
	parseDynamic(el, "labelPosition", l.Position)
	if f := el.Child("labelFormat"); f != nil {
		l.Format.ParseXML(f)
	}
}
