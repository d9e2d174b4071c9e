package info

import (
	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

// ScaleInfo is the numeric axis of a gauge. Null bounds and units mean the
// value is computed from the data.
type ScaleInfo struct {
	Min          *dynamic.Value[float64]
	Max          *dynamic.Value[float64]
	MajorInc     *dynamic.Value[float64]
	MinorInc     *dynamic.Value[float64]
	Logarithmic  *dynamic.Value[bool]
	Reversed     *dynamic.Value[bool]
	LabelVisible *dynamic.Value[bool]
	TickVisible  *dynamic.Value[bool]
}

func NewScaleInfo() *ScaleInfo {
	return &ScaleInfo{
		Min:          dynamic.NewNull(0.0, dynamic.FloatCodec),
		Max:          dynamic.NewNull(100.0, dynamic.FloatCodec),
		MajorInc:     dynamic.NewNull(0.0, dynamic.FloatCodec),
		MinorInc:     dynamic.NewNull(0.0, dynamic.FloatCodec),
		Logarithmic:  dynamic.BoolOf(false),
		Reversed:     dynamic.BoolOf(false),
		LabelVisible: dynamic.BoolOf(true),
		TickVisible:  dynamic.BoolOf(true),
	}
}

// Bounds returns the resolved min and max, using defaults for null bounds.
func (s *ScaleInfo) Bounds() (float64, float64) {
	return s.Min.RuntimeValue(true), s.Max.RuntimeValue(true)
}

func (s *ScaleInfo) props() properties {
	return properties{s.Min, s.Max, s.MajorInc, s.MinorInc, s.Logarithmic, s.Reversed, s.LabelVisible, s.TickVisible}
}

func (s *ScaleInfo) Equal(o *ScaleInfo) bool {
	if s == nil || o == nil {
		return s == o
	}
	a, b := s.props(), o.props()
	for i := range a {
		if !designEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func designEqual(a, b dynamic.Property) bool {
	x, y := a.DesignPtr(), b.DesignPtr()
	if x == nil || y == nil {
		return x == y
	}
	return *x == *y
}

func (s *ScaleInfo) Clone() *ScaleInfo {
	if s == nil {
		return nil
	}
	return &ScaleInfo{
		Min:          s.Min.Clone(),
		Max:          s.Max.Clone(),
		MajorInc:     s.MajorInc.Clone(),
		MinorInc:     s.MinorInc.Clone(),
		Logarithmic:  s.Logarithmic.Clone(),
		Reversed:     s.Reversed.Clone(),
		LabelVisible: s.LabelVisible.Clone(),
		TickVisible:  s.TickVisible.Clone(),
	}
}

func copyScale(dst **ScaleInfo, src *ScaleInfo) bool {
	if (*dst).Equal(src) {
		return false
	}
	if *dst == nil || src == nil {
		*dst = src.Clone()
		return true
	}
	d, sp := (*dst).props(), src.props()
	for i := range d {
		if !designEqual(d[i], sp[i]) {
			d[i].SetDesignPtr(sp[i].DesignPtr())
			d[i].ResetRuntime()
		}
	}
	return true
}

func (s *ScaleInfo) WriteXML() *xmlutil.Element {
	return xmlutil.NewElement("scaleInfo").SetAttr("class", "ScaleInfo").Append(
		dynamicElement("min", s.Min),
		dynamicElement("max", s.Max),
		dynamicElement("majorInc", s.MajorInc),
		dynamicElement("minorInc", s.MinorInc),
		dynamicElement("logarithmic", s.Logarithmic),
		dynamicElement("reversed", s.Reversed),
		dynamicElement("labelVisible", s.LabelVisible),
		dynamicElement("tickVisible", s.TickVisible),
	)
}

func (s *ScaleInfo) ParseXML(el *xmlutil.Element) {
	parseDynamic(el, "min", s.Min)
	parseDynamic(el, "max", s.Max)
	parseDynamic(el, "majorInc", s.MajorInc)
	parseDynamic(el, "minorInc", s.MinorInc)
	parseDynamic(el, "logarithmic", s.Logarithmic)
	parseDynamic(el, "reversed", s.Reversed)
	parseDynamic(el, "labelVisible", s.LabelVisible)
	parseDynamic(el, "tickVisible", s.TickVisible)
}
