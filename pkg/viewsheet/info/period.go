package info

import (
	"time"

	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

// DatePeriod is a closed date interval used by date comparison.
type DatePeriod struct {
	Start *dynamic.Value[time.Time]
	End   *dynamic.Value[time.Time]
}

func NewDatePeriod(start, end time.Time) *DatePeriod {
	p := &DatePeriod{Start: dynamic.NullDate(), End: dynamic.NullDate()}
	if !start.IsZero() {
		p.Start.SetDesignTyped(start)
	}
	if !end.IsZero() {
		p.End.SetDesignTyped(end)
	}
	return p
}

// Contains reports whether t falls in the period. A null bound is open.
func (p *DatePeriod) Contains(t time.Time) bool {
	if !p.Start.IsNull() && t.Before(p.Start.RuntimeValue(true)) {
		return false
	}
	if !p.End.IsNull() && t.After(p.End.RuntimeValue(true)) {
		return false
	}
	return true
}

// Condition renders the period as a condition on field.
func (p *DatePeriod) Condition() condition.Condition {
	switch {
	case p.Start.IsNull() && p.End.IsNull():
		return condition.NotNull()
	case p.Start.IsNull():
		return condition.Less(p.End.RuntimeValue(true), true)
	case p.End.IsNull():
		return condition.Greater(p.Start.RuntimeValue(true), true)
	}
	return condition.Between(p.Start.RuntimeValue(true), p.End.RuntimeValue(true))
}

func (p *DatePeriod) Equal(o *DatePeriod) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Start.Equal(o.Start) && p.End.Equal(o.End)
}

func (p *DatePeriod) Clone() *DatePeriod {
	if p == nil {
		return nil
	}
	return &DatePeriod{Start: p.Start.Clone(), End: p.End.Clone()}
}

func (p *DatePeriod) props() properties {
	return properties{p.Start, p.End}
}

func (p *DatePeriod) WriteXML() *xmlutil.Element {
	return xmlutil.NewElement("datePeriod").SetAttr("class", "DatePeriod").Append(
		dynamicElement("start", p.Start),
		dynamicElement("end", p.End),
	)
}

func (p *DatePeriod) ParseXML(el *xmlutil.Element) {
	parseDynamic(el, "start", p.Start)
	parseDynamic(el, "end", p.End)
}

// CustomPeriods is an ordered list of user defined comparison periods.
type CustomPeriods struct {
	Periods []*DatePeriod
}

func NewCustomPeriods(periods ...*DatePeriod) *CustomPeriods {
	return &CustomPeriods{Periods: periods}
}

func (c *CustomPeriods) Add(p *DatePeriod) {
	c.Periods = append(c.Periods, p)
}

func (c *CustomPeriods) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Periods)
}

// Contains reports whether any period contains t.
func (c *CustomPeriods) Contains(t time.Time) bool {
	if c == nil {
		return false
	}
	for _, p := range c.Periods {
		if p.Contains(t) {
			return true
		}
	}
	return false
}

// ConditionList ORs the period conditions on field. No periods means no
// restriction.
func (c *CustomPeriods) ConditionList(field string) *condition.List {
	if c.Len() == 0 {
		return condition.NewList()
	}
	lists := make([]*condition.List, 0, c.Len())
	for _, p := range c.Periods {
		lists = append(lists, condition.Single(field, p.Condition()))
	}
	return condition.OrMerge(lists...)
}

func (c *CustomPeriods) Equal(o *CustomPeriods) bool {
	if c.Len() != o.Len() {
		return false
	}
	for i := range c.Len() {
		if !c.Periods[i].Equal(o.Periods[i]) {
			return false
		}
	}
	return true
}

func (c *CustomPeriods) Clone() *CustomPeriods {
	if c == nil {
		return nil
	}
	out := &CustomPeriods{Periods: make([]*DatePeriod, len(c.Periods))}
	for i, p := range c.Periods {
		out.Periods[i] = p.Clone()
	}
	return out
}

func (c *CustomPeriods) props() properties {
	if c == nil {
		return nil
	}
	var ps properties
	for _, p := range c.Periods {
		ps = append(ps, p.props()...)
	}
	return ps
}

func (c *CustomPeriods) WriteXML() *xmlutil.Element {
	el := xmlutil.NewElement("customPeriods").SetAttr("class", "CustomPeriods")
	if c == nil {
		return el
	}
	for _, p := range c.Periods {
		el.Append(p.WriteXML())
	}
	return el
}

func (c *CustomPeriods) ParseXML(el *xmlutil.Element) {
	c.Periods = nil
	for _, pe := range el.ChildrenNamed("datePeriod") {
		p := NewDatePeriod(time.Time{}, time.Time{})
		p.ParseXML(pe)
		c.Periods = append(c.Periods, p)
	}
}
