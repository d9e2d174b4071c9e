package info

import (
	"context"
	"slices"

	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

// Container references child assemblies by name. The children are owned by
// the viewsheet, not by the container.
type Container struct {
	BaseInfo

	Assemblies []string
}

func newContainer(size Size) Container {
	return Container{BaseInfo: newBaseInfo(size)}
}

// HasChild reports whether name is one of the child assemblies.
func (c *Container) HasChild(name string) bool {
	return slices.Contains(c.Assemblies, name)
}

// ChildInfos resolves the children through lookup, skipping names that no
// longer resolve.
func (c *Container) ChildInfos(lookup Lookup) []AssemblyInfo {
	out := make([]AssemblyInfo, 0, len(c.Assemblies))
	for _, name := range c.Assemblies {
		if ai, ok := lookup.Assembly(name); ok {
			out = append(out, ai)
		}
	}
	return out
}

// RemoveChild drops name from the child list.
func (c *Container) RemoveChild(name string) bool {
	for i, n := range c.Assemblies {
		if n == name {
			c.Assemblies = append(c.Assemblies[:i:i], c.Assemblies[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Container) copyViewInfo(o *Container, deep bool) bool {
	changed := c.BaseInfo.copyViewInfo(&o.BaseInfo)
	if deep && !stringsEqual(c.Assemblies, o.Assemblies) {
		c.Assemblies = append([]string(nil), o.Assemblies...)
		changed = true
	}
	return changed
}

func (c *Container) deepCopy() Container {
	return Container{
		BaseInfo:   c.BaseInfo.deepCopy(),
		Assemblies: append([]string(nil), c.Assemblies...),
	}
}

func (c *Container) writeChildren(el *xmlutil.Element) {
	el.Append(stringsElement("assemblies", c.Assemblies))
}

func (c *Container) parseChildren(el *xmlutil.Element) {
	if names, ok := parseStrings(el, "assemblies"); ok {
		c.Assemblies = names
	}
}

// TabInfo shows one child at a time, selected through the tab labels.
type TabInfo struct {
	Container

	Labels []*dynamic.Value[string]
	// Selected is the name of the visible child.
	Selected     *dynamic.Value[string]
	RoundCorner  int
	ActiveFormat *Format
}

func NewTab() *TabInfo {
	return &TabInfo{
		Container:    newContainer(Size{Width: 200, Height: 20}),
		Selected:     dynamic.NullString(),
		ActiveFormat: NewFormat(),
	}
}

func (t *TabInfo) Kind() Kind {
	return KindTab
}

// AddChild appends a child with its tab label.
func (t *TabInfo) AddChild(name, label string) {
	t.Assemblies = append(t.Assemblies, name)
	t.Labels = append(t.Labels, dynamic.NewString(label, name))
}

// RemoveChild drops name and its tab label.
func (t *TabInfo) RemoveChild(name string) bool {
	for i, n := range t.Assemblies {
		if n == name {
			t.Assemblies = append(t.Assemblies[:i:i], t.Assemblies[i+1:]...)
			if i < len(t.Labels) {
				t.Labels = append(t.Labels[:i:i], t.Labels[i+1:]...)
			}
			return true
		}
	}
	return false
}

// SelectedChild returns the visible child name, defaulting to the first.
func (t *TabInfo) SelectedChild() string {
	if s := t.Selected.RuntimeValue(false); s != "" && t.HasChild(s) {
		return s
	}
	if len(t.Assemblies) > 0 {
		return t.Assemblies[0]
	}
	return ""
}

func (t *TabInfo) props() properties {
	ps := append(t.BaseInfo.props(), t.Selected)
	ps = append(ps, dynamicSliceProps(t.Labels)...)
	return append(ps, t.ActiveFormat.props()...)
}

func (t *TabInfo) CopyViewInfo(other AssemblyInfo, deep bool) bool {
	o, ok := peer[*TabInfo](t, other)
	if !ok {
		return false
	}
	changed := t.Container.copyViewInfo(&o.Container, deep)
	if deep {
		changed = copyDynamicSlice(&t.Labels, o.Labels) || changed
	}
	changed = copyDynamic(&t.Selected, o.Selected) || changed
	changed = copyField(&t.RoundCorner, o.RoundCorner) || changed
	changed = copyFormat(&t.ActiveFormat, o.ActiveFormat) || changed
	return changed
}

func (t *TabInfo) CopyInputDataInfo(other AssemblyInfo, hint ChangeHint) ChangeHint {
	o, ok := peer[*TabInfo](t, other)
	if !ok {
		return hint
	}
	return t.BaseInfo.copyInputDataInfo(&o.BaseInfo, hint)
}

func (t *TabInfo) CopyOutputDataInfo(other AssemblyInfo) bool {
	o, ok := peer[*TabInfo](t, other)
	if !ok {
		return false
	}
	return t.BaseInfo.copyOutputDataInfo(&o.BaseInfo)
}

func (t *TabInfo) ShallowCopy() AssemblyInfo {
	cp := *t
	return &cp
}

func (t *TabInfo) DeepCopy() AssemblyInfo {
	return &TabInfo{
		Container:    t.Container.deepCopy(),
		Labels:       cloneDynamicSlice(t.Labels),
		Selected:     t.Selected.Clone(),
		RoundCorner:  t.RoundCorner,
		ActiveFormat: t.ActiveFormat.Clone(),
	}
}

func (t *TabInfo) ResetRuntime() {
	t.props().reset()
}

func (t *TabInfo) Resolve(ctx context.Context, ev dynamic.Evaluator) {
	t.props().refresh(ctx, ev)
}

func (t *TabInfo) writeContents(el *xmlutil.Element) {
	el.SetIntAttr("roundCorner", t.RoundCorner)
	t.writeChildren(el)
	labels := xmlutil.NewElement("labels")
	for _, l := range t.Labels {
		labels.Append(dynamicElement("label", l))
	}
	el.Append(labels, dynamicElement("selected", t.Selected), t.ActiveFormat.WriteXML("activeFormat"))
}

func (t *TabInfo) parseContents(el *xmlutil.Element) error {
	t.RoundCorner = el.IntAttr("roundCorner", t.RoundCorner)
	t.parseChildren(el)
	if ls := el.Child("labels"); ls != nil {
		t.Labels = nil
		for _, le := range ls.ChildrenNamed("label") {
			l := dynamic.NullString()
			if le.BoolAttr(xmlutil.StrictNullAttr, false) {
				l.SetDesignPtr(nil)
			} else {
				l.SetDesignValue(le.Text)
			}
			t.Labels = append(t.Labels, l)
		}
	}
	parseDynamic(el, "selected", t.Selected)
	if f := el.Child("activeFormat"); f != nil {
		t.ActiveFormat.ParseXML(f)
	}
	return nil
}

// GroupContainerInfo draws a background behind a group of children.
type GroupContainerInfo struct {
	Container

	BackgroundImage string
	ImageAlpha      *dynamic.Value[int]
	Tiled           bool
}

func NewGroupContainer() *GroupContainerInfo {
	return &GroupContainerInfo{
		Container:  newContainer(Size{Width: 300, Height: 200}),
		ImageAlpha: dynamic.IntOf(100),
	}
}

func (g *GroupContainerInfo) Kind() Kind {
	return KindGroupContainer
}

func (g *GroupContainerInfo) props() properties {
	return append(g.BaseInfo.props(), g.ImageAlpha)
}

func (g *GroupContainerInfo) CopyViewInfo(other AssemblyInfo, deep bool) bool {
	o, ok := peer[*GroupContainerInfo](g, other)
	if !ok {
		return false
	}
	changed := g.Container.copyViewInfo(&o.Container, deep)
	changed = copyField(&g.BackgroundImage, o.BackgroundImage) || changed
	changed = copyDynamic(&g.ImageAlpha, o.ImageAlpha) || changed
	changed = copyField(&g.Tiled, o.Tiled) || changed
	return changed
}

func (g *GroupContainerInfo) CopyInputDataInfo(other AssemblyInfo, hint ChangeHint) ChangeHint {
	o, ok := peer[*GroupContainerInfo](g, other)
	if !ok {
		return hint
	}
	return g.BaseInfo.copyInputDataInfo(&o.BaseInfo, hint)
}

func (g *GroupContainerInfo) CopyOutputDataInfo(other AssemblyInfo) bool {
	o, ok := peer[*GroupContainerInfo](g, other)
	if !ok {
		return false
	}
	return g.BaseInfo.copyOutputDataInfo(&o.BaseInfo)
}

func (g *GroupContainerInfo) ShallowCopy() AssemblyInfo {
	cp := *g
	return &cp
}

func (g *GroupContainerInfo) DeepCopy() AssemblyInfo {
	return &GroupContainerInfo{
		Container:       g.Container.deepCopy(),
		BackgroundImage: g.BackgroundImage,
		ImageAlpha:      g.ImageAlpha.Clone(),
		Tiled:           g.Tiled,
	}
}

func (g *GroupContainerInfo) ResetRuntime() {
	g.props().reset()
}

func (g *GroupContainerInfo) Resolve(ctx context.Context, ev dynamic.Evaluator) {
	g.props().refresh(ctx, ev)
}

func (g *GroupContainerInfo) writeContents(el *xmlutil.Element) {
	el.SetBoolAttr("tiled", g.Tiled)
	g.writeChildren(el)
	el.Append(xmlutil.TextElement("backgroundImage", g.BackgroundImage), dynamicElement("imageAlpha", g.ImageAlpha))
}

func (g *GroupContainerInfo) parseContents(el *xmlutil.Element) error {
	g.Tiled = el.BoolAttr("tiled", g.Tiled)
	g.parseChildren(el)
	if s, ok := el.ChildText("backgroundImage"); ok {
		g.BackgroundImage = s
	}
	parseDynamic(el, "imageAlpha", g.ImageAlpha)
	return nil
}
