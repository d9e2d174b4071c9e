package info

import (
	"context"
	"fmt"

	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

// RadioButtonInfo is a single-select list input.
type RadioButtonInfo struct {
	ListInput

	Selected any
}

func NewRadioButton() *RadioButtonInfo {
	return &RadioButtonInfo{ListInput: newListInput("RadioButton")}
}

func (r *RadioButtonInfo) Kind() Kind {
	return KindRadioButton
}

// Validate keeps a selection that is still a list value. A stale selection
// survives when the list comes from a variable, since the variable may not
// be resolved yet; otherwise the first value is selected.
func (r *RadioButtonInfo) Validate() {
	if r.Selected != nil && r.Contains(r.Selected) {
		return
	}
	if r.Selected != nil && r.VariableBound() {
		return
	}
	if len(r.Values) > 0 {
		r.Selected = r.Values[0]
		return
	}
	r.Selected = nil
}

func (r *RadioButtonInfo) CopyViewInfo(other AssemblyInfo, _ bool) bool {
	o, ok := peer[*RadioButtonInfo](r, other)
	if !ok {
		return false
	}
	return r.copyViewInfo(&o.ListInput)
}

func (r *RadioButtonInfo) CopyInputDataInfo(other AssemblyInfo, hint ChangeHint) ChangeHint {
	o, ok := peer[*RadioButtonInfo](r, other)
	if !ok {
		return hint
	}
	return r.copyInputDataInfo(&o.ListInput, hint)
}

func (r *RadioButtonInfo) CopyOutputDataInfo(other AssemblyInfo) bool {
	o, ok := peer[*RadioButtonInfo](r, other)
	if !ok {
		return false
	}
	changed := r.copyOutputDataInfo(&o.BaseInfo)
	if !valueEqual(r.Selected, o.Selected) {
		r.Selected = ownedValue(r, o.Selected)
		changed = true
	}
	return changed
}

func (r *RadioButtonInfo) ShallowCopy() AssemblyInfo {
	cp := *r
	return &cp
}

func (r *RadioButtonInfo) DeepCopy() AssemblyInfo {
	cp, err := r.deepCopy()
	return deepCopied(r, cp, err)
}

func (r *RadioButtonInfo) deepCopy() (*RadioButtonInfo, error) {
	li, err := r.ListInput.deepCopy()
	if err != nil {
		return nil, err
	}
	sel, err := cloneValue(r.Selected)
	if err != nil {
		return nil, fmt.Errorf("clone selected value: %w", err)
	}
	return &RadioButtonInfo{ListInput: li, Selected: sel}, nil
}

func (r *RadioButtonInfo) ResetRuntime() {
	r.props().reset()
}

func (r *RadioButtonInfo) Resolve(ctx context.Context, ev dynamic.Evaluator) {
	r.props().refresh(ctx, ev)
}

func (r *RadioButtonInfo) writeContents(el *xmlutil.Element) {
	r.writeList(el)
	el.Append(valueElement("selectedObject", r.Selected))
}

func (r *RadioButtonInfo) parseContents(el *xmlutil.Element) error {
	if err := r.parseList(el); err != nil {
		return err
	}
	if se := el.Child("selectedObject"); se != nil {
		v, err := parseValue(se)
		if err != nil {
			return fmt.Errorf("parse selected object: %w", err)
		}
		r.Selected = v
	}
	return nil
}
