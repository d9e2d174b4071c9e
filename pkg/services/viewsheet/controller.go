// Package viewsheet runs live viewsheet sessions over the persisted
// assembly infos.
package viewsheet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/vsstate/pkg/adapters"
	"github.com/de-tools/vsstate/pkg/store/duckdb/assembly"
	"github.com/de-tools/vsstate/pkg/store/duckdb/dataset"
	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/viewsheet/info"
	"github.com/de-tools/vsstate/pkg/viewsheet/rangecond"
	"github.com/de-tools/vsstate/pkg/viewsheet/registry"
	"github.com/de-tools/vsstate/pkg/viewsheet/selection"
)

var (
	ErrSessionNotFound = errors.New("viewsheet session not found")
	ErrNotDrillable    = errors.New("assembly has no drill filter")
)

type Controller interface {
	// Open loads every persisted assembly of name into a new session and
	// returns the session id.
	Open(ctx context.Context, name string) (string, error)
	Close(ctx context.Context, id string) error
	// Describe runs fn with the live viewsheet while holding the session
	// lock. Reading runtime values fills their caches, so every read of a
	// live assembly goes through here.
	Describe(ctx context.Context, id string, fn func(vs *registry.Viewsheet) error) error
	// Apply copies next into the live assembly of the same name, adding it
	// when absent, and persists the assembly when anything changed.
	Apply(ctx context.Context, id string, next info.AssemblyInfo) (info.ChangeHint, error)
	// Refresh drops every runtime value and resolves it again with ev.
	Refresh(ctx context.Context, id string, ev dynamic.Evaluator) error
	// Filter queries a dataset table with the ranges ANDed with the session
	// drill, selection and period conditions.
	Filter(ctx context.Context, id string, q Query) (*Result, error)
	// Drill pushes l on the drill stack of field, or pops the latest entry
	// when l is nil.
	Drill(ctx context.Context, id, assembly, field string, l *condition.List) error
	// Populate recomputes the lists of the bound selection lists.
	Populate(ctx context.Context, id string) error
}

type Query struct {
	Table   string
	Columns []string
	// DateField receives the custom periods of gauges bound to Table.
	DateField string
	Ranges    []*rangecond.RangeCondition
}

type Result struct {
	Condition *condition.List
	Rows      []condition.MapRow
}

type session struct {
	mu       sync.Mutex
	vs       *registry.Viewsheet
	openedAt time.Time
	// lastUsed is guarded by the controller mutex.
	lastUsed time.Time
}

type DefaultController struct {
	assemblies assembly.Store
	datasets   dataset.Store

	mu       sync.Mutex
	sessions map[string]*session
}

func NewController(assemblies assembly.Store, datasets dataset.Store) *DefaultController {
	return &DefaultController{
		assemblies: assemblies,
		datasets:   datasets,
		sessions:   make(map[string]*session),
	}
}

func (ctrl *DefaultController) Open(ctx context.Context, name string) (string, error) {
	logger := zerolog.Ctx(ctx)

	records, err := ctrl.assemblies.ListAssemblies(ctx, name)
	if err != nil {
		return "", fmt.Errorf("list assemblies of %s: %w", name, err)
	}

	vs := registry.New(name)
	for i := range records {
		ai, err := adapters.MapStoreAssemblyToInfo(&records[i])
		if err != nil {
			logger.Warn().Err(err).Str("viewsheet", name).Str("assembly", records[i].Name).
				Msg("skipping undecodable assembly")
			continue
		}
		if err := vs.Add(ai); err != nil {
			return "", err
		}
	}

	id := uuid.NewString()
	ctrl.mu.Lock()
	now := time.Now()
	ctrl.sessions[id] = &session{vs: vs, openedAt: now, lastUsed: now}
	ctrl.mu.Unlock()

	logger.Info().Str("viewsheet", name).Str("session", id).Int("assemblies", vs.Len()).Msg("viewsheet opened")
	return id, nil
}

func (ctrl *DefaultController) Close(ctx context.Context, id string) error {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if _, ok := ctrl.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(ctrl.sessions, id)
	zerolog.Ctx(ctx).Info().Str("session", id).Msg("viewsheet closed")
	return nil
}

func (ctrl *DefaultController) session(id string) (*session, error) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	s, ok := ctrl.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.lastUsed = time.Now()
	return s, nil
}

// evictIdle closes the sessions unused since cutoff and returns their ids.
func (ctrl *DefaultController) evictIdle(cutoff time.Time) []string {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	var evicted []string
	for id, s := range ctrl.sessions {
		if s.lastUsed.Before(cutoff) {
			delete(ctrl.sessions, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

func (ctrl *DefaultController) Sessions() int {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	return len(ctrl.sessions)
}

func (ctrl *DefaultController) Describe(_ context.Context, id string, fn func(vs *registry.Viewsheet) error) error {
	s, err := ctrl.session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.vs)
}

func (ctrl *DefaultController) Apply(ctx context.Context, id string, next info.AssemblyInfo) (info.ChangeHint, error) {
	s, err := ctrl.session(id)
	if err != nil {
		return info.NoneChanged, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	name := next.Base().Name()
	hint, err := s.vs.Apply(next)
	if errors.Is(err, registry.ErrNotFound) {
		if err := s.vs.Add(next); err != nil {
			return info.NoneChanged, err
		}
		hint = info.InputDataChanged | info.OutputDataChanged | info.ViewChanged
	} else if err != nil {
		return info.NoneChanged, err
	}

	zerolog.Ctx(ctx).Debug().Str("session", id).Str("assembly", name).Stringer("hint", hint).Msg("assembly applied")
	if hint.IsNone() {
		return hint, nil
	}
	if err := ctrl.persist(ctx, s.vs, name); err != nil {
		return hint, err
	}
	return hint, nil
}

func (ctrl *DefaultController) persist(ctx context.Context, vs *registry.Viewsheet, name string) error {
	live, err := vs.Get(name)
	if err != nil {
		return err
	}
	position := 0
	for i, n := range vs.Names() {
		if n == name {
			position = i
			break
		}
	}
	if err := ctrl.assemblies.SaveAssembly(ctx, adapters.MapInfoToStoreAssembly(vs.Name(), position, live)); err != nil {
		return fmt.Errorf("persist %s/%s: %w", vs.Name(), name, err)
	}
	return nil
}

func (ctrl *DefaultController) Refresh(ctx context.Context, id string, ev dynamic.Evaluator) error {
	s, err := ctrl.session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vs.ResetRuntime()
	s.vs.Resolve(ctx, ev)
	zerolog.Ctx(ctx).Debug().Str("session", id).Msg("viewsheet refreshed")
	return nil
}

// conditions collects the session state restricting table.
func conditions(vs *registry.Viewsheet, table, dateField string) *condition.List {
	lists := []*condition.List{vs.DrillConditions(), vs.SelectionConditions(table, "")}
	if dateField != "" {
		for _, ai := range vs.Assemblies() {
			g, ok := ai.(*info.GaugeInfo)
			if !ok || g.Binding == nil || g.Binding.Table != table || g.Periods.Len() == 0 {
				continue
			}
			lists = append(lists, g.Periods.ConditionList(dateField))
		}
	}
	return condition.AndMerge(lists...)
}

func (ctrl *DefaultController) Filter(ctx context.Context, id string, q Query) (*Result, error) {
	s, err := ctrl.session(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	l := rangecond.MergeInto(conditions(s.vs, q.Table, q.DateField), q.Ranges...)
	s.mu.Unlock()

	zerolog.Ctx(ctx).Debug().Str("session", id).Str("table", q.Table).Str("condition", l.String()).Msg("filtering dataset")
	rows, err := ctrl.datasets.Query(ctx, q.Table, l, q.Columns...)
	if err != nil {
		return nil, err
	}
	return &Result{Condition: l, Rows: rows}, nil
}

func (ctrl *DefaultController) Drill(ctx context.Context, id, name, field string, l *condition.List) error {
	s, err := ctrl.session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ai, err := s.vs.Get(name)
	if err != nil {
		return err
	}
	holder, ok := ai.(registry.DrillHolder)
	if !ok {
		return fmt.Errorf("%w: %s is %s", ErrNotDrillable, name, ai.Kind())
	}
	holder.DrillFilter().SetDrillFilterConditionList(field, l)

	zerolog.Ctx(ctx).Debug().Str("session", id).Str("assembly", name).Str("field", field).
		Bool("pop", l == nil).Msg("drill filter changed")
	return ctrl.persist(ctx, s.vs, name)
}

func (ctrl *DefaultController) Populate(ctx context.Context, id string) error {
	s, err := ctrl.session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	drill := s.vs.DrillConditions()
	for _, ai := range s.vs.Assemblies() {
		sl, ok := ai.(*info.SelectionListInfo)
		if !ok || sl.Binding == nil {
			continue
		}
		b := sl.Binding
		l := condition.AndMerge(drill, s.vs.SelectionConditions(b.Table, sl.Name()))
		values, err := ctrl.datasets.Distinct(ctx, b.Table, b.Column, l)
		if err != nil {
			return fmt.Errorf("populate %s: %w", sl.Name(), err)
		}

		list := selection.NewList()
		for _, v := range values {
			list.Add(&selection.Value{Label: fmt.Sprint(v), Value: v, State: selection.StateCompatible})
		}
		sl.SetList(list)
		zerolog.Ctx(ctx).Debug().Str("assembly", sl.Name()).Int("values", len(values)).Msg("selection list populated")
	}
	return nil
}
