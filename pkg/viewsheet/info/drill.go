package info

import (
	"fmt"
	"sync"

	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

// DrillCondition is one accumulated drill action.
type DrillCondition struct {
	Field      string
	Conditions *condition.List
}

// DrillFilterInfo is the drill stack of an assembly. Entries are kept most
// recent first; the merged list is cached until the next mutation. It is
// safe for concurrent use.
type DrillFilterInfo struct {
	mu       sync.RWMutex
	conds    []DrillCondition
	allConds *condition.List
}

func NewDrillFilterInfo() *DrillFilterInfo {
	return &DrillFilterInfo{}
}

// SetDrillFilterConditionList pushes l for field. A nil list pops the most
// recent entry for field instead.
func (d *DrillFilterInfo) SetDrillFilterConditionList(field string, l *condition.List) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.allConds = nil
	if l == nil {
		for i, c := range d.conds {
			if c.Field == field {
				d.conds = append(d.conds[:i:i], d.conds[i+1:]...)
				return
			}
		}
		return
	}
	d.conds = append([]DrillCondition{{Field: field, Conditions: l.Clone()}}, d.conds...)
}

// DrillFilterConditionList returns the most recent list for field.
func (d *DrillFilterInfo) DrillFilterConditionList(field string) (*condition.List, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, c := range d.conds {
		if c.Field == field {
			return c.Conditions.Clone(), true
		}
	}
	return nil, false
}

func (d *DrillFilterInfo) Contains(field string) bool {
	_, ok := d.DrillFilterConditionList(field)
	return ok
}

// Fields lists the drilled fields, most recent first, without repeats.
func (d *DrillFilterInfo) Fields() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	seen := make(map[string]bool, len(d.conds))
	var out []string
	for _, c := range d.conds {
		if !seen[c.Field] {
			seen[c.Field] = true
			out = append(out, c.Field)
		}
	}
	return out
}

func (d *DrillFilterInfo) Len() int {
	if d == nil {
		return 0
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.conds)
}

func (d *DrillFilterInfo) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conds = nil
	d.allConds = nil
}

// AllConditions ANDs every accumulated list. The result is cached.
func (d *DrillFilterInfo) AllConditions() *condition.List {
	if d == nil {
		return condition.NewList()
	}
	d.mu.RLock()
	all := d.allConds
	d.mu.RUnlock()
	if all != nil {
		return all.Clone()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.allConds == nil {
		lists := make([]*condition.List, len(d.conds))
		for i, c := range d.conds {
			lists[i] = c.Conditions
		}
		d.allConds = condition.AndMerge(lists...)
	}
	return d.allConds.Clone()
}

func (d *DrillFilterInfo) snapshot() []DrillCondition {
	if d == nil {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]DrillCondition(nil), d.conds...)
}

func (d *DrillFilterInfo) Equal(o *DrillFilterInfo) bool {
	if d == nil || o == nil {
		return d == o
	}
	a, b := d.snapshot(), o.snapshot()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Field != b[i].Field || !a[i].Conditions.Equal(b[i].Conditions) {
			return false
		}
	}
	return true
}

func (d *DrillFilterInfo) Clone() *DrillFilterInfo {
	if d == nil {
		return nil
	}
	conds := d.snapshot()
	for i := range conds {
		conds[i].Conditions = conds[i].Conditions.Clone()
	}
	return &DrillFilterInfo{conds: conds}
}

func copyDrill(dst **DrillFilterInfo, src *DrillFilterInfo) bool {
	if (*dst).Equal(src) {
		return false
	}
	if *dst == nil || src == nil {
		*dst = src.Clone()
		return true
	}
	c := src.Clone()
	d := *dst
	d.mu.Lock()
	d.conds = c.conds
	d.allConds = nil
	d.mu.Unlock()
	return true
}

func (d *DrillFilterInfo) WriteXML() *xmlutil.Element {
	el := xmlutil.NewElement("drillFilterInfo").SetAttr("class", "DrillFilterInfo")
	for _, c := range d.snapshot() {
		dc := xmlutil.NewElement("drillCondition").SetAttr("field", c.Field)
		dc.Append(ConditionListElement("conditionList", c.Conditions))
		el.Append(dc)
	}
	return el
}

func (d *DrillFilterInfo) ParseXML(el *xmlutil.Element) error {
	var conds []DrillCondition
	for _, dc := range el.ChildrenNamed("drillCondition") {
		field, _ := dc.Attr("field")
		l := condition.NewList()
		if ce := dc.Child("conditionList"); ce != nil {
			var err error
			if l, err = ParseConditionList(ce); err != nil {
				return fmt.Errorf("parse drill condition %q: %w", field, err)
			}
		}
		conds = append(conds, DrillCondition{Field: field, Conditions: l})
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.conds = conds
	d.allConds = nil
	return nil
}
