package info

import (
	"context"
	"fmt"

	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

// CheckBoxInfo is a multi-select list input.
type CheckBoxInfo struct {
	ListInput

	Selected []any
}

func NewCheckBox() *CheckBoxInfo {
	return &CheckBoxInfo{ListInput: newListInput("CheckBox")}
}

func (c *CheckBoxInfo) Kind() Kind {
	return KindCheckBox
}

// Validate drops selected values that are no longer list values.
func (c *CheckBoxInfo) Validate() {
	if len(c.Selected) == 0 {
		return
	}
	kept := make([]any, 0, len(c.Selected))
	for _, v := range c.Selected {
		if c.Contains(v) {
			kept = append(kept, v)
		}
	}
	c.Selected = kept
}

func (c *CheckBoxInfo) CopyViewInfo(other AssemblyInfo, _ bool) bool {
	o, ok := peer[*CheckBoxInfo](c, other)
	if !ok {
		return false
	}
	return c.copyViewInfo(&o.ListInput)
}

func (c *CheckBoxInfo) CopyInputDataInfo(other AssemblyInfo, hint ChangeHint) ChangeHint {
	o, ok := peer[*CheckBoxInfo](c, other)
	if !ok {
		return hint
	}
	return c.copyInputDataInfo(&o.ListInput, hint)
}

func (c *CheckBoxInfo) CopyOutputDataInfo(other AssemblyInfo) bool {
	o, ok := peer[*CheckBoxInfo](c, other)
	if !ok {
		return false
	}
	changed := c.copyOutputDataInfo(&o.BaseInfo)
	if !valuesEqual(c.Selected, o.Selected) {
		c.Selected = ownedValues(c, o.Selected)
		changed = true
	}
	return changed
}

func (c *CheckBoxInfo) ShallowCopy() AssemblyInfo {
	cp := *c
	return &cp
}

func (c *CheckBoxInfo) DeepCopy() AssemblyInfo {
	cp, err := c.deepCopy()
	return deepCopied(c, cp, err)
}

func (c *CheckBoxInfo) deepCopy() (*CheckBoxInfo, error) {
	li, err := c.ListInput.deepCopy()
	if err != nil {
		return nil, err
	}
	sel, err := cloneValues(c.Selected)
	if err != nil {
		return nil, fmt.Errorf("clone selected values: %w", err)
	}
	return &CheckBoxInfo{ListInput: li, Selected: sel}, nil
}

func (c *CheckBoxInfo) ResetRuntime() {
	c.props().reset()
}

func (c *CheckBoxInfo) Resolve(ctx context.Context, ev dynamic.Evaluator) {
	c.props().refresh(ctx, ev)
}

func (c *CheckBoxInfo) writeContents(el *xmlutil.Element) {
	c.writeList(el)
	el.Append(valuesElement("selectedObjects", c.Selected))
}

func (c *CheckBoxInfo) parseContents(el *xmlutil.Element) error {
	if err := c.parseList(el); err != nil {
		return err
	}
	sel, ok, err := parseValues(el, "selectedObjects")
	if err != nil {
		return err
	}
	if ok {
		c.Selected = sel
	}
	return nil
}
