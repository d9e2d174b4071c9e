// Package xmlutil holds the element tree used by the viewsheet persisted format.
//
// Elements are decoded into a small DOM so parsers can probe for optional
// children and legacy attributes without binding to a fixed struct layout.
package xmlutil

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const StrictNullAttr = "strictNull"

type Element struct {
	Name     string
	Attrs    []xml.Attr
	Children []*Element
	Text     string
	// CDATA wraps Text in a CDATA section when encoded.
	CDATA bool
	// Trailing is raw character data emitted after the element's children.
	Trailing string
}

func NewElement(name string) *Element {
	return &Element{Name: name}
}

func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name.Local == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return e
}

func (e *Element) SetBoolAttr(name string, v bool) *Element {
	return e.SetAttr(name, strconv.FormatBool(v))
}

func (e *Element) SetIntAttr(name string, v int) *Element {
	return e.SetAttr(name, strconv.Itoa(v))
}

func (e *Element) Attr(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// IntAttr returns the attribute as int, or def when absent or malformed.
func (e *Element) IntAttr(name string, def int) int {
	s, ok := e.Attr(name)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

func (e *Element) BoolAttr(name string, def bool) bool {
	s, ok := e.Attr(name)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		if c != nil {
			e.Children = append(e.Children, c)
		}
	}
	return e
}

// Child returns the first direct child with the given name.
func (e *Element) Child(name string) *Element {
	if e == nil {
		return nil
	}
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (e *Element) ChildrenNamed(name string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// TextElement builds <name><![CDATA[value]]></name>.
func TextElement(name, value string) *Element {
	return &Element{Name: name, Text: value, CDATA: true}
}

// NullableTextElement writes a strictNull marker when value is nil so that an
// empty string and a persisted null survive a round trip distinctly.
func NullableTextElement(name string, value *string) *Element {
	if value == nil {
		return NewElement(name).SetAttr(StrictNullAttr, "true")
	}
	return TextElement(name, *value)
}

// NullableText is the inverse of NullableTextElement. A missing element
// reports ok=false so the caller keeps its prior value.
func (e *Element) NullableText(name string) (value *string, ok bool) {
	c := e.Child(name)
	if c == nil {
		return nil, false
	}
	if c.BoolAttr(StrictNullAttr, false) {
		return nil, true
	}
	s := c.Text
	return &s, true
}

// ChildText returns the text of the named child and whether it was present.
func (e *Element) ChildText(name string) (string, bool) {
	c := e.Child(name)
	if c == nil {
		return "", false
	}
	return c.Text, true
}

var ErrEmptyDocument = errors.New("empty xml document")

// Parse decodes a single root element.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	var stack []*Element
	var root *Element

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local, Attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			} else if root == nil {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			cur := stack[len(stack)-1]
			if len(cur.Children) == 0 {
				cur.Text += string(t)
			} else {
				cur.Trailing += string(t)
			}
		}
	}

	if root == nil {
		return nil, ErrEmptyDocument
	}
	trimWhitespace(root)
	return root, nil
}

func ParseString(s string) (*Element, error) {
	return Parse(strings.NewReader(s))
}

// pretty-printed documents leave indentation text around child elements
func trimWhitespace(e *Element) {
	if len(e.Children) > 0 {
		if strings.TrimSpace(e.Text) == "" {
			e.Text = ""
		}
		for _, c := range e.Children {
			trimWhitespace(c)
		}
	}
	if strings.TrimSpace(e.Trailing) == "" {
		e.Trailing = ""
	}
}

// Encode writes the element tree. CDATA sections are split when the payload
// itself contains the terminator.
func Encode(w io.Writer, e *Element) error {
	var buf bytes.Buffer
	writeElement(&buf, e)
	_, err := w.Write(buf.Bytes())
	return err
}

func String(e *Element) string {
	var buf bytes.Buffer
	writeElement(&buf, e)
	return buf.String()
}

func writeElement(buf *bytes.Buffer, e *Element) {
	buf.WriteByte('<')
	buf.WriteString(e.Name)
	for _, a := range e.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name.Local)
		buf.WriteString(`="`)
		_ = xml.EscapeText(buf, []byte(a.Value))
		buf.WriteByte('"')
	}
	buf.WriteByte('>')

	if e.Text != "" || (e.CDATA && len(e.Children) == 0) {
		if e.CDATA {
			writeCDATA(buf, e.Text)
		} else {
			_ = xml.EscapeText(buf, []byte(e.Text))
		}
	}
	for _, c := range e.Children {
		writeElement(buf, c)
	}
	if e.Trailing != "" {
		_ = xml.EscapeText(buf, []byte(e.Trailing))
	}

	buf.WriteString("</")
	buf.WriteString(e.Name)
	buf.WriteByte('>')
}

func writeCDATA(buf *bytes.Buffer, s string) {
	buf.WriteString("<![CDATA[")
	buf.WriteString(strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>"))
	buf.WriteString("]]>")
}
