// Package registry holds the live assemblies of one viewsheet and resolves
// the by-name references between them.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/viewsheet/info"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

var (
	ErrNotFound  = errors.New("assembly not found")
	ErrDuplicate = errors.New("assembly already exists")
)

// DrillHolder is an assembly that carries a drill stack.
type DrillHolder interface {
	DrillFilter() *info.DrillFilterInfo
}

type childRemover interface {
	RemoveChild(name string) bool
}

// Viewsheet maps assembly names to their infos, keeping insertion order.
type Viewsheet struct {
	mu         sync.RWMutex
	name       string
	order      []string
	assemblies map[string]info.AssemblyInfo
}

func New(name string) *Viewsheet {
	return &Viewsheet{name: name, assemblies: make(map[string]info.AssemblyInfo)}
}

func (v *Viewsheet) Name() string {
	return v.name
}

func (v *Viewsheet) Add(ai info.AssemblyInfo) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	name := ai.Base().Name()
	if _, ok := v.assemblies[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	v.assemblies[name] = ai
	v.order = append(v.order, name)
	return nil
}

// Put adds ai or replaces the assembly with the same name in place.
func (v *Viewsheet) Put(ai info.AssemblyInfo) {
	v.mu.Lock()
	defer v.mu.Unlock()

	name := ai.Base().Name()
	if _, ok := v.assemblies[name]; !ok {
		v.order = append(v.order, name)
	}
	v.assemblies[name] = ai
}

func (v *Viewsheet) Assembly(name string) (info.AssemblyInfo, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	ai, ok := v.assemblies[name]
	return ai, ok
}

// Get is Assembly with an error for missing names.
func (v *Viewsheet) Get(name string) (info.AssemblyInfo, error) {
	ai, ok := v.Assembly(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, name, v.name)
	}
	return ai, nil
}

// Remove deletes the assembly and drops it from every container.
func (v *Viewsheet) Remove(name string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.assemblies[name]; !ok {
		return false
	}
	delete(v.assemblies, name)
	for i, n := range v.order {
		if n == name {
			v.order = append(v.order[:i:i], v.order[i+1:]...)
			break
		}
	}
	for _, ai := range v.assemblies {
		if c, ok := ai.(childRemover); ok {
			c.RemoveChild(name)
		}
	}
	return true
}

func (v *Viewsheet) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.order)
}

func (v *Viewsheet) Names() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]string(nil), v.order...)
}

// Assemblies returns the infos in insertion order.
func (v *Viewsheet) Assemblies() []info.AssemblyInfo {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]info.AssemblyInfo, len(v.order))
	for i, n := range v.order {
		out[i] = v.assemblies[n]
	}
	return out
}

// Apply copies next into the live assembly of the same name and returns
// the change hint.
func (v *Viewsheet) Apply(next info.AssemblyInfo) (info.ChangeHint, error) {
	live, err := v.Get(next.Base().Name())
	if err != nil {
		return info.NoneChanged, err
	}
	if live.Kind() != next.Kind() {
		return info.NoneChanged, fmt.Errorf("%w: %s is %s, got %s",
			info.ErrKindMismatch, next.Base().Name(), live.Kind(), next.Kind())
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	return info.Apply(live, next), nil
}

func (v *Viewsheet) ResetRuntime() {
	for _, ai := range v.Assemblies() {
		ai.ResetRuntime()
	}
}

// Resolve refreshes the runtime values of every assembly.
func (v *Viewsheet) Resolve(ctx context.Context, ev dynamic.Evaluator) {
	for _, ai := range v.Assemblies() {
		ai.Resolve(ctx, ev)
	}
}

// DrillConditions ANDs the drill stacks of every assembly.
func (v *Viewsheet) DrillConditions() *condition.List {
	var lists []*condition.List
	for _, ai := range v.Assemblies() {
		if d, ok := ai.(DrillHolder); ok {
			lists = append(lists, d.DrillFilter().AllConditions())
		}
	}
	return condition.AndMerge(lists...)
}

// SelectionConditions ANDs the selections of every selection list bound to
// table, except the one named exclude.
func (v *Viewsheet) SelectionConditions(table, exclude string) *condition.List {
	var lists []*condition.List
	for _, ai := range v.Assemblies() {
		sl, ok := ai.(*info.SelectionListInfo)
		if !ok || sl.Name() == exclude || sl.Binding == nil || sl.Binding.Table != table {
			continue
		}
		lists = append(lists, sl.ConditionList())
	}
	return condition.AndMerge(lists...)
}

func (v *Viewsheet) WriteXML() *xmlutil.Element {
	el := xmlutil.NewElement("viewsheet").SetAttr("name", v.name)
	for _, ai := range v.Assemblies() {
		el.Append(info.WriteXML(ai))
	}
	return el
}

// Parse builds a viewsheet from a <viewsheet> element.
func Parse(el *xmlutil.Element) (*Viewsheet, error) {
	name, _ := el.Attr("name")
	vs := New(name)
	infos, err := info.ParseAll(el)
	if err != nil {
		return nil, fmt.Errorf("parse viewsheet %q: %w", name, err)
	}
	for _, ai := range infos {
		if err := vs.Add(ai); err != nil {
			return nil, err
		}
	}
	return vs, nil
}
