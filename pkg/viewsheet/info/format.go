package info

import (
	"github.com/cespare/xxhash/v2"

	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

// Alignment bits of Format.Alignment.
const (
	AlignLeft   = 1
	AlignCenter = 2
	AlignRight  = 4
	AlignTop    = 8
	AlignMiddle = 16
	AlignBottom = 32
)

// Format is the user format of an assembly or one of its regions. Every
// attribute is dual-valued; a null design value inherits from the parent.
type Format struct {
	Foreground *dynamic.Value[int]
	Background *dynamic.Value[int]
	Font       *dynamic.Value[string]
	Alignment  *dynamic.Value[int]
	Wrapping   *dynamic.Value[bool]
	Alpha      *dynamic.Value[int]
	// FormatName and FormatSpec select a value formatter, e.g. "DecimalFormat"
	// with "#,##0.00".
	FormatName *dynamic.Value[string]
	FormatSpec *dynamic.Value[string]
}

func NewFormat() *Format {
	return &Format{
		Foreground: dynamic.NullColor(),
		Background: dynamic.NullColor(),
		Font:       dynamic.NullString(),
		Alignment:  dynamic.NewNull(AlignLeft|AlignTop, dynamic.IntCodec),
		Wrapping:   dynamic.NewNull(false, dynamic.BoolCodec),
		Alpha:      dynamic.NewNull(100, dynamic.IntCodec),
		FormatName: dynamic.NullString(),
		FormatSpec: dynamic.NullString(),
	}
}

func (f *Format) props() properties {
	return properties{f.Foreground, f.Background, f.Font, f.Alignment, f.Wrapping, f.Alpha, f.FormatName, f.FormatSpec}
}

func (f *Format) Equal(o *Format) bool {
	if f == nil || o == nil {
		return f == o
	}
	return f.Foreground.Equal(o.Foreground) &&
		f.Background.Equal(o.Background) &&
		f.Font.Equal(o.Font) &&
		f.Alignment.Equal(o.Alignment) &&
		f.Wrapping.Equal(o.Wrapping) &&
		f.Alpha.Equal(o.Alpha) &&
		f.FormatName.Equal(o.FormatName) &&
		f.FormatSpec.Equal(o.FormatSpec)
}

// Hash is consistent with Equal.
func (f *Format) Hash() uint64 {
	if f == nil {
		return 0
	}
	d := xxhash.New()
	for _, p := range f.props() {
		if s := p.DesignPtr(); s != nil {
			_, _ = d.WriteString(*s)
		}
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

func (f *Format) Clone() *Format {
	if f == nil {
		return nil
	}
	return &Format{
		Foreground: f.Foreground.Clone(),
		Background: f.Background.Clone(),
		Font:       f.Font.Clone(),
		Alignment:  f.Alignment.Clone(),
		Wrapping:   f.Wrapping.Clone(),
		Alpha:      f.Alpha.Clone(),
		FormatName: f.FormatName.Clone(),
		FormatSpec: f.FormatSpec.Clone(),
	}
}

// copyFormat copies src into *dst in place when they differ.
func copyFormat(dst **Format, src *Format) bool {
	if (*dst).Equal(src) {
		return false
	}
	if *dst == nil || src == nil {
		*dst = src.Clone()
		return true
	}
	d := *dst
	d.Foreground.CopyFrom(src.Foreground)
	d.Background.CopyFrom(src.Background)
	d.Font.CopyFrom(src.Font)
	d.Alignment.CopyFrom(src.Alignment)
	d.Wrapping.CopyFrom(src.Wrapping)
	d.Alpha.CopyFrom(src.Alpha)
	d.FormatName.CopyFrom(src.FormatName)
	d.FormatSpec.CopyFrom(src.FormatSpec)
	return true
}

func (f *Format) WriteXML(name string) *xmlutil.Element {
	return xmlutil.NewElement(name).Append(
		dynamicElement("foreground", f.Foreground),
		dynamicElement("background", f.Background),
		dynamicElement("font", f.Font),
		dynamicElement("alignment", f.Alignment),
		dynamicElement("wrapping", f.Wrapping),
		dynamicElement("alpha", f.Alpha),
		dynamicElement("formatName", f.FormatName),
		dynamicElement("formatSpec", f.FormatSpec),
	)
}

func (f *Format) ParseXML(el *xmlutil.Element) {
	parseDynamic(el, "foreground", f.Foreground)
	parseDynamic(el, "background", f.Background)
	parseDynamic(el, "font", f.Font)
	parseDynamic(el, "alignment", f.Alignment)
	parseDynamic(el, "wrapping", f.Wrapping)
	parseDynamic(el, "alpha", f.Alpha)
	parseDynamic(el, "formatName", f.FormatName)
	parseDynamic(el, "formatSpec", f.FormatSpec)
}
