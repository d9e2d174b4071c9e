package viewsheet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/vsstate/pkg/models/api"
	"github.com/de-tools/vsstate/pkg/models/store"
	"github.com/de-tools/vsstate/pkg/services/config"
	vsservice "github.com/de-tools/vsstate/pkg/services/viewsheet"
	"github.com/de-tools/vsstate/pkg/store/duckdb/assembly"
	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/viewsheet/info"
	"github.com/de-tools/vsstate/pkg/viewsheet/registry"
)

type mockController struct {
	mock.Mock
}

func (m *mockController) Open(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *mockController) Close(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockController) Describe(ctx context.Context, id string, fn func(vs *registry.Viewsheet) error) error {
	args := m.Called(ctx, id)
	if err := args.Error(1); err != nil {
		return err
	}
	return fn(args.Get(0).(*registry.Viewsheet))
}

func (m *mockController) Apply(ctx context.Context, id string, next info.AssemblyInfo) (info.ChangeHint, error) {
	args := m.Called(ctx, id, next)
	return args.Get(0).(info.ChangeHint), args.Error(1)
}

func (m *mockController) Refresh(ctx context.Context, id string, ev dynamic.Evaluator) error {
	return m.Called(ctx, id, ev).Error(0)
}

func (m *mockController) Filter(ctx context.Context, id string, q vsservice.Query) (*vsservice.Result, error) {
	args := m.Called(ctx, id, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vsservice.Result), args.Error(1)
}

func (m *mockController) Drill(ctx context.Context, id, name, field string, l *condition.List) error {
	return m.Called(ctx, id, name, field, l).Error(0)
}

func (m *mockController) Populate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockAssemblyStore struct {
	mock.Mock
	assembly.Store
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

func newCheckBox(name, title string) *info.CheckBoxInfo {
	cb := info.NewCheckBox()
	cb.SetName(name)
	cb.Title.Title.SetDesignValue(title)
	return cb
}

func setupRouter(t *testing.T, ctrl *mockController, assemblies *mockAssemblyStore) http.Handler {
	t.Helper()
	catalog := config.EmptyCatalog()
	router := chi.NewRouter()
	router.Route("/api/v1", NewHandler(ctrl, assemblies, catalog, config.DefaultLocale).Routes)
	return router
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListAssemblies(t *testing.T) {
	tests := []struct {
		name           string
		records        []store.Assembly
		expectedStatus int
		expectedNames  []string
	}{
		{
			name: "decodes stored assemblies",
			records: []store.Assembly{
				{Viewsheet: "sales", Name: "flags", XML: info.Marshal(newCheckBox("flags", "Flags"))},
				{Viewsheet: "sales", Name: "broken", XML: "<nope"},
			},
			expectedStatus: http.StatusOK,
			expectedNames:  []string{"flags"},
		},
		{
			name:           "empty viewsheet",
			records:        []store.Assembly{},
			expectedStatus: http.StatusOK,
			expectedNames:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assemblies := new(mockAssemblyStore)
			assemblies.On("ListAssemblies", mock.Anything, "sales").Return(tt.records, nil)
			router := setupRouter(t, new(mockController), assemblies)

			rec := do(t, router, http.MethodGet, "/api/v1/viewsheets/sales/assemblies", "")

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var response api.Viewsheet
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
			names := []string{}
			for _, a := range response.Assemblies {
				names = append(names, a.Name)
			}
			assert.Equal(t, tt.expectedNames, names)
			assemblies.AssertExpectations(t)
		})
	}
}

func TestListAssemblies_LocalizesTitles(t *testing.T) {
	// Given a catalog translating the title
	path := t.TempDir() + "/catalog.ini"
	require.NoError(t, writeFile(path, "[de]\nFlags = Fahnen\n"))
	catalog, err := config.NewCatalog(path)
	require.NoError(t, err)

	assemblies := new(mockAssemblyStore)
	assemblies.On("ListAssemblies", mock.Anything, "sales").Return([]store.Assembly{
		{Viewsheet: "sales", Name: "flags", XML: info.Marshal(newCheckBox("flags", "Flags"))},
	}, nil)
	router := chi.NewRouter()
	router.Route("/api/v1", NewHandler(new(mockController), assemblies, catalog, "en").Routes)

	// When
	rec := do(t, router, http.MethodGet, "/api/v1/viewsheets/sales/assemblies?locale=de", "")

	// Then
	require.Equal(t, http.StatusOK, rec.Code)
	var response api.Viewsheet
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	require.Len(t, response.Assemblies, 1)
	assert.Equal(t, "Fahnen", response.Assemblies[0].Title)
	assert.Equal(t, "CheckBoxAssemblyInfo", response.Assemblies[0].Class)
}

func TestGetAssembly(t *testing.T) {
	xml := info.Marshal(newCheckBox("flags", "Flags"))
	assemblies := new(mockAssemblyStore)
	assemblies.On("GetAssembly", mock.Anything, store.AssemblyIdentity{Viewsheet: "sales", Name: "flags"}).
		Return(&store.Assembly{Viewsheet: "sales", Name: "flags", XML: xml}, nil)
	assemblies.On("GetAssembly", mock.Anything, store.AssemblyIdentity{Viewsheet: "sales", Name: "nope"}).
		Return(nil, assembly.ErrNotFound)
	router := setupRouter(t, new(mockController), assemblies)

	rec := do(t, router, http.MethodGet, "/api/v1/viewsheets/sales/assemblies/flags", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, xml, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/v1/viewsheets/sales/assemblies/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutAssembly(t *testing.T) {
	body := info.Marshal(newCheckBox("flags", "Regions"))
	named := mock.MatchedBy(func(ai info.AssemblyInfo) bool { return ai.Base().Name() == "flags" })

	t.Run("short-lived session", func(t *testing.T) {
		ctrl := new(mockController)
		ctrl.On("Open", mock.Anything, "sales").Return("s1", nil)
		ctrl.On("Apply", mock.Anything, "s1", named).Return(info.ViewChanged, nil)
		ctrl.On("Close", mock.Anything, "s1").Return(nil)
		router := setupRouter(t, ctrl, new(mockAssemblyStore))

		rec := do(t, router, http.MethodPut, "/api/v1/viewsheets/sales/assemblies/flags", body)

		assert.Equal(t, http.StatusOK, rec.Code)
		var hint api.ChangeHint
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&hint))
		assert.Equal(t, api.ChangeHint{Hint: "view", ViewChanged: true}, hint)
		ctrl.AssertExpectations(t)
	})

	t.Run("existing session", func(t *testing.T) {
		ctrl := new(mockController)
		ctrl.On("Apply", mock.Anything, "s9", named).Return(info.NoneChanged, nil)
		router := setupRouter(t, ctrl, new(mockAssemblyStore))

		rec := do(t, router, http.MethodPut, "/api/v1/viewsheets/sales/assemblies/flags?session=s9", body)

		assert.Equal(t, http.StatusOK, rec.Code)
		ctrl.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
	})

	t.Run("kind mismatch", func(t *testing.T) {
		ctrl := new(mockController)
		ctrl.On("Apply", mock.Anything, "s9", named).Return(info.NoneChanged, info.ErrKindMismatch)
		router := setupRouter(t, ctrl, new(mockAssemblyStore))

		rec := do(t, router, http.MethodPut, "/api/v1/viewsheets/sales/assemblies/flags?session=s9", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("name mismatch", func(t *testing.T) {
		router := setupRouter(t, new(mockController), new(mockAssemblyStore))

		rec := do(t, router, http.MethodPut, "/api/v1/viewsheets/sales/assemblies/other?session=s9", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed xml", func(t *testing.T) {
		router := setupRouter(t, new(mockController), new(mockAssemblyStore))

		rec := do(t, router, http.MethodPut, "/api/v1/viewsheets/sales/assemblies/flags", "<assemblyInfo")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSessions(t *testing.T) {
	vs := registry.New("sales")
	require.NoError(t, vs.Add(newCheckBox("flags", "Flags")))

	ctrl := new(mockController)
	ctrl.On("Open", mock.Anything, "sales").Return("s1", nil)
	ctrl.On("Describe", mock.Anything, "s1").Return(vs, nil)
	ctrl.On("Describe", mock.Anything, "gone").Return(nil, vsservice.ErrSessionNotFound)
	ctrl.On("Close", mock.Anything, "s1").Return(nil)
	ctrl.On("Refresh", mock.Anything, "s1", vsservice.Variables{"region": "West"}).Return(nil)
	ctrl.On("Populate", mock.Anything, "s1").Return(nil)
	router := setupRouter(t, ctrl, new(mockAssemblyStore))

	rec := do(t, router, http.MethodPost, "/api/v1/viewsheets/sales/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var opened api.Viewsheet
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&opened))
	assert.Equal(t, "s1", opened.Session)
	require.Len(t, opened.Assemblies, 1)

	rec = do(t, router, http.MethodPost, "/api/v1/sessions/s1/refresh", `{"variables":{"region":"West"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/sessions/s1/populate", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/sessions/gone/assemblies", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/v1/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	ctrl.AssertExpectations(t)
}

func TestFilter(t *testing.T) {
	ctrl := new(mockController)
	ctrl.On("Filter", mock.Anything, "s1", mock.MatchedBy(func(q vsservice.Query) bool {
		return q.Table == "orders" && len(q.Ranges) == 1 && q.Ranges[0].ID() == "amount"
	})).Return(&vsservice.Result{
		Condition: condition.Single("amount", condition.Greater(100.0, true)),
		Rows:      []condition.MapRow{{"state": "CA"}},
	}, nil)
	router := setupRouter(t, ctrl, new(mockAssemblyStore))

	body := `{"table":"orders","ranges":[{"id":"amount","mins":[100],"maxes":[null],"refs":["amount"],"lower_inclusive":true}]}`
	rec := do(t, router, http.MethodPost, "/api/v1/sessions/s1/filter", body)

	require.Equal(t, http.StatusOK, rec.Code)
	var response api.FilterResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, 1, response.Count)
	assert.Equal(t, "CA", response.Rows[0]["state"])

	rec = do(t, router, http.MethodPost, "/api/v1/sessions/s1/filter",
		`{"table":"orders","ranges":[{"id":"x","mins":[1,2],"maxes":[3],"refs":["a","b"]}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDrill(t *testing.T) {
	ctrl := new(mockController)
	ctrl.On("Drill", mock.Anything, "s1", "revenue", "year", mock.MatchedBy(func(l *condition.List) bool {
		return l != nil && l.Fields()[0] == "year"
	})).Return(nil)
	ctrl.On("Drill", mock.Anything, "s1", "revenue", "year", (*condition.List)(nil)).Return(nil)
	ctrl.On("Drill", mock.Anything, "s1", "flags", "year", mock.Anything).Return(vsservice.ErrNotDrillable)
	router := setupRouter(t, ctrl, new(mockAssemblyStore))

	rec := do(t, router, http.MethodPost, "/api/v1/sessions/s1/assemblies/revenue/drill", `{"field":"year","values":[2024]}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/sessions/s1/assemblies/revenue/drill", `{"field":"year"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/sessions/s1/assemblies/flags/drill", `{"field":"year","values":[1]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/sessions/s1/assemblies/revenue/drill", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluateRanges(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedMatch  []bool
	}{
		{
			name: "composite year/month range",
			body: `{"ranges":[{"id":"p","mins":[2023,12],"maxes":[2024,1],"refs":["year","month"],
				"lower_inclusive":true,"upper_inclusive":true}],
				"rows":[{"year":2023,"month":11},{"year":2023,"month":12},{"year":2024,"month":1},{"year":2024,"month":2}]}`,
			expectedStatus: http.StatusOK,
			expectedMatch:  []bool{false, true, true, false},
		},
		{
			name: "same id alternatives are ORed",
			body: `{"ranges":[
				{"id":"q","mins":[1],"maxes":[2],"refs":["q"],"lower_inclusive":true,"upper_inclusive":true},
				{"id":"q","mins":[4],"maxes":[4],"refs":["q"],"lower_inclusive":true,"upper_inclusive":true}],
				"rows":[{"q":1},{"q":3},{"q":4}]}`,
			expectedStatus: http.StatusOK,
			expectedMatch:  []bool{true, false, true},
		},
		{
			name:           "malformed body",
			body:           `{"ranges":`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(t, new(mockController), new(mockAssemblyStore))

			rec := do(t, router, http.MethodPost, "/api/v1/ranges/evaluate", tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedMatch == nil {
				return
			}
			var response api.RangeEvaluateResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
			assert.Equal(t, tt.expectedMatch, response.Matches)
			assert.NotEmpty(t, response.Condition)
		})
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
