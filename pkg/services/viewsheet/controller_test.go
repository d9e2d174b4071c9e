package viewsheet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/vsstate/pkg/adapters"
	"github.com/de-tools/vsstate/pkg/models/store"
	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
	"github.com/de-tools/vsstate/pkg/viewsheet/info"
	"github.com/de-tools/vsstate/pkg/viewsheet/rangecond"
	"github.com/de-tools/vsstate/pkg/viewsheet/registry"
	"github.com/de-tools/vsstate/pkg/viewsheet/selection"
)

type mockAssemblyStore struct {
	mock.Mock
}

func (m *mockAssemblyStore) ListViewsheets(ctx context.Context) ([]store.Viewsheet, error) {
	args := m.Called(ctx)
	return args.Get(0).([]store.Viewsheet), args.Error(1)
}

func (m *mockAssemblyStore) CreateViewsheet(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *mockAssemblyStore) DeleteViewsheet(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *mockAssemblyStore) ListAssemblies(ctx context.Context, viewsheet string) ([]store.Assembly, error) {
	args := m.Called(ctx, viewsheet)
	return args.Get(0).([]store.Assembly), args.Error(1)
}

func (m *mockAssemblyStore) GetAssembly(ctx context.Context, id store.AssemblyIdentity) (*store.Assembly, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Assembly), args.Error(1)
}

func (m *mockAssemblyStore) SaveAssembly(ctx context.Context, a store.Assembly) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAssemblyStore) SaveAssemblies(ctx context.Context, viewsheet string, assemblies []store.Assembly) error {
	return m.Called(ctx, viewsheet, assemblies).Error(0)
}

func (m *mockAssemblyStore) DeleteAssembly(ctx context.Context, id store.AssemblyIdentity) error {
	return m.Called(ctx, id).Error(0)
}

type mockDatasetStore struct {
	mock.Mock
}

func (m *mockDatasetStore) Query(
	ctx context.Context,
	table string,
	l *condition.List,
	columns ...string,
) ([]condition.MapRow, error) {
	args := m.Called(ctx, table, l, columns)
	return args.Get(0).([]condition.MapRow), args.Error(1)
}

func (m *mockDatasetStore) Count(ctx context.Context, table string, l *condition.List) (int64, error) {
	args := m.Called(ctx, table, l)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockDatasetStore) Distinct(ctx context.Context, table, column string, l *condition.List) ([]any, error) {
	args := m.Called(ctx, table, column, l)
	return args.Get(0).([]any), args.Error(1)
}

func (m *mockDatasetStore) LoadCSV(ctx context.Context, table, path string) error {
	return m.Called(ctx, table, path).Error(0)
}

func record(t *testing.T, ai info.AssemblyInfo) store.Assembly {
	t.Helper()
	return store.Assembly{Viewsheet: "sales", Name: ai.Base().Name(), Kind: ai.Kind().Class(), XML: info.Marshal(ai)}
}

func newCheckBox(name, title string) *info.CheckBoxInfo {
	cb := info.NewCheckBox()
	cb.SetName(name)
	cb.Title.Title.SetDesignValue(title)
	cb.Values = []any{"East", "West"}
	cb.Labels = []string{"East", "West"}
	return cb
}

func newStates() *info.SelectionListInfo {
	sl := info.NewSelectionList()
	sl.SetName("states")
	sl.Binding = &info.Binding{Table: "orders", Column: "state"}
	sl.Selected.Add("CA")
	return sl
}

func newRevenue() *info.GaugeInfo {
	g := info.NewGauge()
	g.SetName("revenue")
	g.Binding = &info.Binding{Table: "orders", Column: "amount", Aggregate: "sum"}
	g.Periods.Add(info.NewDatePeriod(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	))
	return g
}

type fixture struct {
	assemblies *mockAssemblyStore
	datasets   *mockDatasetStore
	ctrl       *DefaultController
	id         string
}

func setupFixture(t *testing.T, infos ...info.AssemblyInfo) *fixture {
	t.Helper()
	assemblies := &mockAssemblyStore{}
	datasets := &mockDatasetStore{}

	records := make([]store.Assembly, 0, len(infos))
	for _, ai := range infos {
		records = append(records, record(t, ai))
	}
	assemblies.On("ListAssemblies", mock.Anything, "sales").Return(records, nil).Once()

	ctrl := NewController(assemblies, datasets)
	id, err := ctrl.Open(context.Background(), "sales")
	require.NoError(t, err)

	return &fixture{assemblies: assemblies, datasets: datasets, ctrl: ctrl, id: id}
}

// viewsheetOf returns the live registry of a session without locking it.
// Tests only use it between controller calls.
func viewsheetOf(ctrl *DefaultController, id string) (*registry.Viewsheet, error) {
	s, err := ctrl.session(id)
	if err != nil {
		return nil, err
	}
	return s.vs, nil
}

func savedNamed(name string) any {
	return mock.MatchedBy(func(a store.Assembly) bool { return a.Name == name && a.Viewsheet == "sales" })
}

func TestController_Open(t *testing.T) {
	t.Run("loads assemblies in stored order", func(t *testing.T) {
		f := setupFixture(t, newCheckBox("flags", "Flags"), newStates(), newRevenue())

		vs, err := viewsheetOf(f.ctrl, f.id)

		require.NoError(t, err)
		assert.Equal(t, "sales", vs.Name())
		assert.Equal(t, []string{"flags", "states", "revenue"}, vs.Names())
	})

	t.Run("skips undecodable records", func(t *testing.T) {
		assemblies := &mockAssemblyStore{}
		assemblies.On("ListAssemblies", mock.Anything, "sales").Return([]store.Assembly{
			record(t, newStates()),
			{Viewsheet: "sales", Name: "broken", XML: "<assemblyInfo class=\"NoSuchAssemblyInfo\"/>"},
		}, nil)
		ctrl := NewController(assemblies, &mockDatasetStore{})

		id, err := ctrl.Open(context.Background(), "sales")

		require.NoError(t, err)
		vs, err := viewsheetOf(ctrl, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"states"}, vs.Names())
	})

	t.Run("store error", func(t *testing.T) {
		assemblies := &mockAssemblyStore{}
		assemblies.On("ListAssemblies", mock.Anything, "sales").Return([]store.Assembly(nil), errors.New("boom"))

		_, err := NewController(assemblies, &mockDatasetStore{}).Open(context.Background(), "sales")

		assert.Error(t, err)
	})

	t.Run("close forgets the session", func(t *testing.T) {
		f := setupFixture(t)

		require.NoError(t, f.ctrl.Close(context.Background(), f.id))

		_, err := viewsheetOf(f.ctrl, f.id)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.ErrorIs(t, f.ctrl.Close(context.Background(), f.id), ErrSessionNotFound)
	})
}

func TestController_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("view change persists", func(t *testing.T) {
		// Given
		f := setupFixture(t, newCheckBox("flags", "Flags"))
		f.assemblies.On("SaveAssembly", mock.Anything, savedNamed("flags")).Return(nil).Once()

		// When
		hint, err := f.ctrl.Apply(ctx, f.id, newCheckBox("flags", "Regions"))

		// Then
		require.NoError(t, err)
		assert.True(t, hint.Has(info.ViewChanged))
		assert.False(t, hint.Has(info.InputDataChanged))
		f.assemblies.AssertExpectations(t)
	})

	t.Run("identical info changes nothing", func(t *testing.T) {
		f := setupFixture(t, newCheckBox("flags", "Flags"))

		hint, err := f.ctrl.Apply(ctx, f.id, newCheckBox("flags", "Flags"))

		require.NoError(t, err)
		assert.True(t, hint.IsNone())
		f.assemblies.AssertNotCalled(t, "SaveAssembly", mock.Anything, mock.Anything)
	})

	t.Run("selection change is output data", func(t *testing.T) {
		f := setupFixture(t, newStates())
		f.assemblies.On("SaveAssembly", mock.Anything, savedNamed("states")).Return(nil).Once()

		next := newStates()
		next.Selected.Add("NY")
		hint, err := f.ctrl.Apply(ctx, f.id, next)

		require.NoError(t, err)
		assert.True(t, hint.Has(info.OutputDataChanged))

		vs, _ := viewsheetOf(f.ctrl, f.id)
		live, _ := vs.Get("states")
		assert.True(t, live.(*info.SelectionListInfo).Selected.Contains("NY"))
	})

	t.Run("unknown assembly is added", func(t *testing.T) {
		f := setupFixture(t)
		f.assemblies.On("SaveAssembly", mock.Anything, savedNamed("flags")).Return(nil).Once()

		hint, err := f.ctrl.Apply(ctx, f.id, newCheckBox("flags", "Flags"))

		require.NoError(t, err)
		assert.Equal(t, "input|output|view", hint.String())
	})

	t.Run("kind mismatch", func(t *testing.T) {
		f := setupFixture(t, newStates())

		bad := info.NewGauge()
		bad.SetName("states")
		_, err := f.ctrl.Apply(ctx, f.id, bad)

		assert.ErrorIs(t, err, info.ErrKindMismatch)
	})

	t.Run("unknown session", func(t *testing.T) {
		f := setupFixture(t)

		_, err := f.ctrl.Apply(ctx, "nope", newStates())

		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("persist failure surfaces", func(t *testing.T) {
		f := setupFixture(t, newCheckBox("flags", "Flags"))
		f.assemblies.On("SaveAssembly", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		hint, err := f.ctrl.Apply(ctx, f.id, newCheckBox("flags", "Other"))

		assert.Error(t, err)
		assert.True(t, hint.Has(info.ViewChanged))
	})
}

func TestController_Refresh(t *testing.T) {
	// Given a title bound to a variable
	f := setupFixture(t, newCheckBox("flags", "$(region)"))

	// When
	err := f.ctrl.Refresh(context.Background(), f.id, Variables{"region": "West"})

	// Then
	require.NoError(t, err)
	vs, _ := viewsheetOf(f.ctrl, f.id)
	live, _ := vs.Get("flags")
	assert.Equal(t, "West", live.(*info.CheckBoxInfo).Title.Text())

	require.NoError(t, f.ctrl.Refresh(context.Background(), f.id, Variables{"region": "East"}))
	assert.Equal(t, "East", live.(*info.CheckBoxInfo).Title.Text())
}

func TestController_Filter(t *testing.T) {
	// Given a selection on state, a gauge period and a drill on year
	f := setupFixture(t, newStates(), newRevenue())
	f.assemblies.On("SaveAssembly", mock.Anything, savedNamed("revenue")).Return(nil)
	require.NoError(t, f.ctrl.Drill(context.Background(), f.id, "revenue", "year",
		condition.Single("year", condition.Equal(2024))))

	amount := rangecond.New("amount", []any{100}, []any{500}, []string{"amount"},
		rangecond.Bounds{LowerInclusive: true, UpperInclusive: true})

	var got *condition.List
	f.datasets.On("Query", mock.Anything, "orders", mock.Anything, []string{"state"}).
		Run(func(args mock.Arguments) { got = args.Get(2).(*condition.List) }).
		Return([]condition.MapRow{{"state": "CA"}}, nil)

	// When
	res, err := f.ctrl.Filter(context.Background(), f.id, Query{
		Table:     "orders",
		Columns:   []string{"state"},
		DateField: "order_date",
		Ranges:    []*rangecond.RangeCondition{amount},
	})

	// Then
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.ElementsMatch(t, []string{"year", "state", "order_date", "amount"}, got.Fields())

	pred, err := condition.Compile(got)
	require.NoError(t, err)
	match := condition.MapRow{
		"year": 2024, "state": "CA", "amount": 250,
		"order_date": time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, pred(match))

	outside := condition.MapRow{
		"year": 2024, "state": "CA", "amount": 250,
		"order_date": time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
	}
	assert.False(t, pred(outside))
}

func TestController_Drill(t *testing.T) {
	ctx := context.Background()

	t.Run("push and pop", func(t *testing.T) {
		f := setupFixture(t, newRevenue())
		f.assemblies.On("SaveAssembly", mock.Anything, savedNamed("revenue")).Return(nil).Twice()

		require.NoError(t, f.ctrl.Drill(ctx, f.id, "revenue", "year", condition.Single("year", condition.Equal(2024))))
		vs, _ := viewsheetOf(f.ctrl, f.id)
		live, _ := vs.Get("revenue")
		assert.True(t, live.(*info.GaugeInfo).Drill.Contains("year"))

		require.NoError(t, f.ctrl.Drill(ctx, f.id, "revenue", "year", nil))
		assert.False(t, live.(*info.GaugeInfo).Drill.Contains("year"))
		f.assemblies.AssertExpectations(t)
	})

	t.Run("not drillable", func(t *testing.T) {
		f := setupFixture(t, newCheckBox("flags", "Flags"))

		err := f.ctrl.Drill(ctx, f.id, "flags", "year", condition.Single("year", condition.Equal(2024)))

		assert.ErrorIs(t, err, ErrNotDrillable)
	})
}

func TestController_Populate(t *testing.T) {
	// Given
	f := setupFixture(t, newStates())
	f.datasets.On("Distinct", mock.Anything, "orders", "state", mock.Anything).
		Return([]any{"NY", "CA", "TX"}, nil)

	// When
	require.NoError(t, f.ctrl.Populate(context.Background(), f.id))

	// Then
	vs, _ := viewsheetOf(f.ctrl, f.id)
	live, _ := vs.Get("states")
	list := live.(*info.SelectionListInfo).List
	require.Equal(t, 3, list.Len())
	assert.Equal(t, "CA", list.At(0).Label)
	assert.True(t, list.At(0).IsSelected())
	assert.False(t, list.Find("NY").IsSelected())
	assert.True(t, list.Find("TX").State.Has(selection.StateCompatible))
}

func TestVariables_Evaluate(t *testing.T) {
	vars := Variables{"region": "West", "limit": 10}
	ctx := context.Background()

	tests := []struct {
		name    string
		expr    string
		want    any
		wantErr error
	}{
		{name: "variable reference", expr: "$(region)", want: "West"},
		{name: "bare expression", expr: "=limit", want: 10},
		{name: "script", expr: "=limit * 2", wantErr: ErrUnsupportedExpression},
		{name: "literal", expr: "West", wantErr: ErrUnsupportedExpression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := vars.Evaluate(ctx, tt.expr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := vars.Evaluate(ctx, "$(missing)")
	assert.Error(t, err)
}

func TestController_DescribeHoldsSessionLock(t *testing.T) {
	// Given a session whose title resolves through a variable
	title := newCheckBox("flags", "$(region)")
	f := setupFixture(t, title)
	ctx := context.Background()

	// When refreshes run while another request reads the assemblies
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			assert.NoError(t, f.ctrl.Refresh(ctx, f.id, Variables{"region": "West"}))
		}
	}()

	var titles []string
	for i := 0; i < 200; i++ {
		err := f.ctrl.Describe(ctx, f.id, func(vs *registry.Viewsheet) error {
			for _, ai := range vs.Assemblies() {
				titles = append(titles, adapters.MapInfoToAPI(ai, nil).Title)
			}
			return nil
		})
		require.NoError(t, err)
	}
	<-done

	// Then every read saw a whole assembly and the race detector stays quiet
	assert.Len(t, titles, 200)
	assert.ErrorIs(t, f.ctrl.Describe(ctx, "missing", func(*registry.Viewsheet) error { return nil }), ErrSessionNotFound)
}
