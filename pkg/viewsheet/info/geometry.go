package info

import "github.com/de-tools/vsstate/pkg/xmlutil"

// Point is a pixel offset.
type Point struct {
	X, Y int
}

// Size is a pixel size.
type Size struct {
	Width, Height int
}

// Insets is a padding box.
type Insets struct {
	Top, Left, Bottom, Right int
}

func pointElement(name string, p Point) *xmlutil.Element {
	return xmlutil.NewElement(name).SetIntAttr("x", p.X).SetIntAttr("y", p.Y)
}

func parsePoint(el *xmlutil.Element, name string, p *Point) {
	if c := el.Child(name); c != nil {
		p.X = c.IntAttr("x", p.X)
		p.Y = c.IntAttr("y", p.Y)
	}
}

func sizeElement(name string, s Size) *xmlutil.Element {
	return xmlutil.NewElement(name).SetIntAttr("width", s.Width).SetIntAttr("height", s.Height)
}

func parseSize(el *xmlutil.Element, name string, s *Size) {
	if c := el.Child(name); c != nil {
		s.Width = c.IntAttr("width", s.Width)
		s.Height = c.IntAttr("height", s.Height)
	}
}

func insetsElement(name string, in Insets) *xmlutil.Element {
	return xmlutil.NewElement(name).
		SetIntAttr("top", in.Top).
		SetIntAttr("left", in.Left).
		SetIntAttr("bottom", in.Bottom).
		SetIntAttr("right", in.Right)
}

func parseInsets(el *xmlutil.Element, name string, in *Insets) {
	if c := el.Child(name); c != nil {
		in.Top = c.IntAttr("top", in.Top)
		in.Left = c.IntAttr("left", in.Left)
		in.Bottom = c.IntAttr("bottom", in.Bottom)
		in.Right = c.IntAttr("right", in.Right)
	}
}
