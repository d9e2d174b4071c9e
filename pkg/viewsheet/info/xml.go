package info

import (
	"fmt"
	"io"

	"github.com/de-tools/vsstate/pkg/xmlutil"
)

const assemblyElement = "assemblyInfo"

// WriteXML renders ai as an <assemblyInfo class="..."> element.
func WriteXML(ai AssemblyInfo) *xmlutil.Element {
	el := xmlutil.NewElement(assemblyElement).SetAttr("class", ai.Kind().Class())
	ai.Base().writeBase(el)
	ai.writeContents(el)
	return el
}

// ParseXML reconstructs an assembly info from its element. The class
// attribute selects the kind; missing children keep their defaults.
func ParseXML(el *xmlutil.Element) (AssemblyInfo, error) {
	class, _ := el.Attr("class")
	kind, err := KindFromClass(class)
	if err != nil {
		return nil, err
	}
	ai, err := New(kind, "")
	if err != nil {
		return nil, err
	}
	ai.Base().parseBase(el)
	if err := ai.parseContents(el); err != nil {
		return nil, fmt.Errorf("parse %s %q: %w", kind, ai.Base().Name(), err)
	}
	return ai, nil
}

func Marshal(ai AssemblyInfo) string {
	return xmlutil.String(WriteXML(ai))
}

func Unmarshal(r io.Reader) (AssemblyInfo, error) {
	el, err := xmlutil.Parse(r)
	if err != nil {
		return nil, err
	}
	return ParseXML(el)
}

func UnmarshalString(s string) (AssemblyInfo, error) {
	el, err := xmlutil.ParseString(s)
	if err != nil {
		return nil, err
	}
	return ParseXML(el)
}

// ParseAll reads every assembly element under a <viewsheet> root.
func ParseAll(root *xmlutil.Element) ([]AssemblyInfo, error) {
	els := root.ChildrenNamed(assemblyElement)
	out := make([]AssemblyInfo, 0, len(els))
	for _, el := range els {
		ai, err := ParseXML(el)
		if err != nil {
			return nil, err
		}
		out = append(out, ai)
	}
	return out, nil
}
