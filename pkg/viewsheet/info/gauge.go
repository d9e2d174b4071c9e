package info

import (
	"context"
	"fmt"

	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

// GaugeInfo shows one aggregated value against a numeric scale with colored
// ranges.
type GaugeInfo struct {
	BaseInfo

	Binding *Binding
	// Value is the last computed value, nil before the first query.
	Value any

	FaceID      int
	Scale       *ScaleInfo
	Label       *LabelInfo
	Ranges      []*dynamic.Value[float64]
	RangeColors []*dynamic.Value[int]
	// Periods restricts the bound data to comparison periods.
	Periods *CustomPeriods
	Drill   *DrillFilterInfo
}

func NewGauge() *GaugeInfo {
	return &GaugeInfo{
		BaseInfo: newBaseInfo(Size{Width: 200, Height: 200}),
		FaceID:   10,
		Scale:    NewScaleInfo(),
		Label:    NewLabelInfo(),
		Periods:  NewCustomPeriods(),
		Drill:    NewDrillFilterInfo(),
	}
}

func (g *GaugeInfo) Kind() Kind {
	return KindGauge
}

// AddRange appends a colored range ending at upper.
func (g *GaugeInfo) AddRange(upper, color string) {
	g.Ranges = append(g.Ranges, dynamic.NewFloat(upper, 0))
	g.RangeColors = append(g.RangeColors, dynamic.NewColor(color, 0))
}

// RangeIndex returns the index of the first range whose upper bound is at
// least v, or -1.
func (g *GaugeInfo) RangeIndex(v float64) int {
	for i, r := range g.Ranges {
		if r.IsNull() {
			continue
		}
		if v <= r.RuntimeValue(true) {
			return i
		}
	}
	return -1
}

func (g *GaugeInfo) DrillFilter() *DrillFilterInfo {
	return g.Drill
}

func (g *GaugeInfo) props() properties {
	ps := append(g.BaseInfo.props(), g.Scale.props()...)
	ps = append(ps, g.Label.props()...)
	ps = append(ps, dynamicSliceProps(g.Ranges)...)
	ps = append(ps, dynamicSliceProps(g.RangeColors)...)
	return append(ps, g.Periods.props()...)
}

func (g *GaugeInfo) CopyViewInfo(other AssemblyInfo, _ bool) bool {
	o, ok := peer[*GaugeInfo](g, other)
	if !ok {
		return false
	}
	changed := g.BaseInfo.copyViewInfo(&o.BaseInfo)
	changed = copyField(&g.FaceID, o.FaceID) || changed
	changed = copyScale(&g.Scale, o.Scale) || changed
	changed = copyLabel(&g.Label, o.Label) || changed
	changed = copyDynamicSlice(&g.Ranges, o.Ranges) || changed
	changed = copyDynamicSlice(&g.RangeColors, o.RangeColors) || changed
	return changed
}

func (g *GaugeInfo) CopyInputDataInfo(other AssemblyInfo, hint ChangeHint) ChangeHint {
	o, ok := peer[*GaugeInfo](g, other)
	if !ok {
		return hint
	}
	hint = g.BaseInfo.copyInputDataInfo(&o.BaseInfo, hint)
	changed := copyBinding(&g.Binding, o.Binding)
	if !g.Periods.Equal(o.Periods) {
		g.Periods = o.Periods.Clone()
		changed = true
	}
	changed = copyDrill(&g.Drill, o.Drill) || changed
	if changed {
		hint = hint.Union(InputDataChanged)
	}
	return hint
}

func (g *GaugeInfo) CopyOutputDataInfo(other AssemblyInfo) bool {
	o, ok := peer[*GaugeInfo](g, other)
	if !ok {
		return false
	}
	changed := g.BaseInfo.copyOutputDataInfo(&o.BaseInfo)
	if !valueEqual(g.Value, o.Value) {
		g.Value = o.Value
		changed = true
	}
	return changed
}

func (g *GaugeInfo) ShallowCopy() AssemblyInfo {
	cp := *g
	return &cp
}

func (g *GaugeInfo) DeepCopy() AssemblyInfo {
	cp, err := g.deepCopy()
	return deepCopied(g, cp, err)
}

func (g *GaugeInfo) deepCopy() (*GaugeInfo, error) {
	v, err := cloneValue(g.Value)
	if err != nil {
		return nil, fmt.Errorf("clone gauge value: %w", err)
	}
	return &GaugeInfo{
		BaseInfo:    g.BaseInfo.deepCopy(),
		Binding:     g.Binding.Clone(),
		Value:       v,
		FaceID:      g.FaceID,
		Scale:       g.Scale.Clone(),
		Label:       g.Label.Clone(),
		Ranges:      cloneDynamicSlice(g.Ranges),
		RangeColors: cloneDynamicSlice(g.RangeColors),
		Periods:     g.Periods.Clone(),
		Drill:       g.Drill.Clone(),
	}, nil
}

func (g *GaugeInfo) ResetRuntime() {
	g.props().reset()
}

func (g *GaugeInfo) Resolve(ctx context.Context, ev dynamic.Evaluator) {
	g.props().refresh(ctx, ev)
}

func (g *GaugeInfo) writeContents(el *xmlutil.Element) {
	el.SetIntAttr("face", g.FaceID)
	if g.Binding != nil {
		el.Append(bindingElement(g.Binding))
	}
	el.Append(valueElement("value", g.Value), g.Scale.WriteXML(), g.Label.WriteXML())

	ranges := xmlutil.NewElement("ranges")
	for i, r := range g.Ranges {
		re := xmlutil.NewElement("range").Append(dynamicElement("upper", r))
		if i < len(g.RangeColors) {
			re.Append(dynamicElement("color", g.RangeColors[i]))
		}
		ranges.Append(re)
	}
	el.Append(ranges, g.Periods.WriteXML(), g.Drill.WriteXML())
}

func (g *GaugeInfo) parseContents(el *xmlutil.Element) error {
	g.FaceID = el.IntAttr("face", g.FaceID)
	g.Binding = parseBinding(el)
	if ve := el.Child("value"); ve != nil {
		v, err := parseValue(ve)
		if err != nil {
			return fmt.Errorf("parse gauge value: %w", err)
		}
		g.Value = v
	}
	if se := el.Child("scaleInfo"); se != nil {
		g.Scale.ParseXML(se)
	}
	if le := el.Child("labelInfo"); le != nil {
		g.Label.ParseXML(le)
	}
	if rs := el.Child("ranges"); rs != nil {
		g.Ranges, g.RangeColors = nil, nil
		for _, re := range rs.ChildrenNamed("range") {
			upper := dynamic.NewNull(0.0, dynamic.FloatCodec)
			color := dynamic.NullColor()
			parseDynamic(re, "upper", upper)
			parseDynamic(re, "color", color)
			g.Ranges = append(g.Ranges, upper)
			g.RangeColors = append(g.RangeColors, color)
		}
	}
	if pe := el.Child("customPeriods"); pe != nil {
		g.Periods.ParseXML(pe)
	}
	if de := el.Child("drillFilterInfo"); de != nil {
		if err := g.Drill.ParseXML(de); err != nil {
			return err
		}
	}
	return nil
}
