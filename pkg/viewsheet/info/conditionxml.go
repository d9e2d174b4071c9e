package info

import (
	"fmt"

	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

var opNames = map[condition.Op]string{
	condition.OpEqual:   "equal",
	condition.OpLess:    "less",
	condition.OpGreater: "greater",
	condition.OpNull:    "null",
	condition.OpOneOf:   "oneOf",
	condition.OpBetween: "between",
	condition.OpNever:   "never",
}

// ConditionListElement writes a condition list as a flat sequence of item
// and junction elements.
func ConditionListElement(name string, l *condition.List) *xmlutil.Element {
	el := xmlutil.NewElement(name).SetAttr("class", "ConditionList")
	for i := range l.Len() {
		e := l.At(i)
		if e.IsJunction {
			el.Append(xmlutil.NewElement("junction").
				SetAttr("type", e.Junction.String()).
				SetIntAttr("level", e.Level))
			continue
		}
		c := e.Item.Condition
		item := xmlutil.NewElement("item").
			SetAttr("op", opNames[c.Op]).
			SetIntAttr("level", e.Level)
		item.Append(xmlutil.TextElement("field", e.Item.Field))
		if c.Equal {
			item.SetBoolAttr("equal", true)
		}
		if c.Negated {
			item.SetBoolAttr("negated", true)
		}
		for _, v := range c.Values {
			item.Append(valueElement("value", v))
		}
		el.Append(item)
	}
	return el
}

func ParseConditionList(el *xmlutil.Element) (*condition.List, error) {
	l := condition.NewList()
	for _, c := range el.Children {
		level := c.IntAttr("level", 0)
		switch c.Name {
		case "junction":
			j := condition.And
			if t, _ := c.Attr("type"); t == condition.Or.String() {
				j = condition.Or
			}
			l.AddJunction(j, level)
		case "item":
			name, _ := c.Attr("op")
			op, ok := opFromName(name)
			if !ok {
				return nil, fmt.Errorf("parse condition item: unknown op %q", name)
			}
			cond := condition.Condition{
				Op:      op,
				Equal:   c.BoolAttr("equal", false),
				Negated: c.BoolAttr("negated", false),
			}
			for _, ve := range c.ChildrenNamed("value") {
				v, err := parseValue(ve)
				if err != nil {
					return nil, fmt.Errorf("parse condition value: %w", err)
				}
				cond.Values = append(cond.Values, v)
			}
			field, _ := c.ChildText("field")
			l.AddItem(field, cond, level)
		}
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func opFromName(name string) (condition.Op, bool) {
	for op, n := range opNames {
		if n == name {
			return op, true
		}
	}
	return 0, false
}
