package info

import (
	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

const DefaultTitleHeight = 18

// TitleInfo is the title bar of a titled assembly.
type TitleInfo struct {
	Title   *dynamic.Value[string]
	Visible *dynamic.Value[bool]
	Height  *dynamic.Value[int]
	Padding Insets
}

func NewTitleInfo(title string) *TitleInfo {
	return &TitleInfo{
		Title:   dynamic.NewString(title, ""),
		Visible: dynamic.BoolOf(true),
		Height:  dynamic.IntOf(DefaultTitleHeight),
	}
}

// Text is the resolved title text.
func (t *TitleInfo) Text() string {
	return t.Title.RuntimeValue(true)
}

func (t *TitleInfo) IsVisible() bool {
	return t.Visible.RuntimeValue(true)
}

func (t *TitleInfo) props() properties {
	return properties{t.Title, t.Visible, t.Height}
}

func (t *TitleInfo) Equal(o *TitleInfo) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.Title.Equal(o.Title) && t.Visible.Equal(o.Visible) &&
		t.Height.Equal(o.Height) && t.Padding == o.Padding
}

func (t *TitleInfo) Clone() *TitleInfo {
	if t == nil {
		return nil
	}
	return &TitleInfo{
		Title:   t.Title.Clone(),
		Visible: t.Visible.Clone(),
		Height:  t.Height.Clone(),
		Padding: t.Padding,
	}
}

func copyTitle(dst **TitleInfo, src *TitleInfo) bool {
	if (*dst).Equal(src) {
		return false
	}
	if *dst == nil || src == nil {
		*dst = src.Clone()
		return true
	}
	d := *dst
	d.Title.CopyFrom(src.Title)
	d.Visible.CopyFrom(src.Visible)
	d.Height.CopyFrom(src.Height)
	d.Padding = src.Padding
	return true
}

func (t *TitleInfo) WriteXML() *xmlutil.Element {
	return xmlutil.NewElement("titleInfo").SetAttr("class", "TitleInfo").Append(
		dynamicElement("titleValue", t.Title),
		dynamicElement("titleVisible", t.Visible),
		dynamicElement("titleHeight", t.Height),
		insetsElement("padding", t.Padding),
	)
}

func (t *TitleInfo) ParseXML(el *xmlutil.Element) {
	parseDynamic(el, "titleValue", t.Title)
	parseDynamic(el, "titleVisible", t.Visible)
	parseDynamic(el, "titleHeight", t.Height)
	parseInsets(el, "padding", &t.Padding)
}

// parseTitleFrom reads the titleInfo child of parent, falling back to the
// flat layout where the title is a <title> child and the visibility and
// height are attributes of parent.
func parseTitleFrom(parent *xmlutil.Element, t *TitleInfo) {
	if el := parent.Child("titleInfo"); el != nil {
		t.ParseXML(el)
		return
	}
	if s, ok := parent.NullableText("title"); ok {
		t.Title.SetDesignPtr(s)
	}
	if v, ok := parent.Attr("titleVisible"); ok {
		t.Visible.SetDesignValue(v)
	}
	if v, ok := parent.Attr("titleHeight"); ok {
		t.Height.SetDesignValue(v)
	}
}
