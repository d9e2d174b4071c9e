package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/vsstate/pkg/models/api"
	"github.com/de-tools/vsstate/pkg/services/config"
	"github.com/de-tools/vsstate/pkg/services/viewsheet"
	"github.com/de-tools/vsstate/pkg/store/duckdb"
	"github.com/de-tools/vsstate/pkg/store/duckdb/assembly"
	"github.com/de-tools/vsstate/pkg/store/duckdb/dataset"
	"github.com/de-tools/vsstate/pkg/viewsheet/info"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE orders (state VARCHAR, amount DOUBLE)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO orders VALUES ('CA', 50), ('CA', 250), ('NY', 300), ('TX', 900)`)
	require.NoError(t, err)

	assemblies, err := assembly.NewStore(db)
	require.NoError(t, err)
	datasets, err := dataset.NewStore(db)
	require.NoError(t, err)

	router := ConfigureRouter(Config{
		Addr:            ":0",
		ShutdownTimeout: time.Second,
		Dependencies: Dependencies{
			Viewsheets: viewsheet.NewController(assemblies, datasets),
			Assemblies: assemblies,
			Catalog:    config.EmptyCatalog(),
			Locale:     config.DefaultLocale,
			Logger:     zerolog.New(zerolog.NewTestWriter(t)),
		},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func send(t *testing.T, method, url, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "Failed to send request")
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestWebAPI_AssemblyLifecycle(t *testing.T) {
	srv := setupServer(t)
	base := srv.URL + "/api/v1/viewsheets/sales/assemblies"

	states := info.NewSelectionList()
	states.SetName("states")
	states.Binding = &info.Binding{Table: "orders", Column: "state"}
	states.Selected.Add("CA")
	body := info.Marshal(states)

	// new assembly
	status, data := send(t, http.MethodPut, base+"/states", body)
	require.Equal(t, http.StatusOK, status, string(data))
	assert.Equal(t, "input|output|view", decode[api.ChangeHint](t, data).Hint)

	// unchanged
	status, data = send(t, http.MethodPut, base+"/states", body)
	require.Equal(t, http.StatusOK, status, string(data))
	assert.Equal(t, "none", decode[api.ChangeHint](t, data).Hint)

	// listed
	status, data = send(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, status)
	listed := decode[api.Viewsheet](t, data)
	require.Len(t, listed.Assemblies, 1)
	assert.Equal(t, "states", listed.Assemblies[0].Name)
	assert.Equal(t, "SelectionList", listed.Assemblies[0].Title)

	// stored as XML
	status, data = send(t, http.MethodGet, base+"/states", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, body, string(data))

	status, _ = send(t, http.MethodGet, base+"/missing", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestWebAPI_SessionFilter(t *testing.T) {
	srv := setupServer(t)

	states := info.NewSelectionList()
	states.SetName("states")
	states.Binding = &info.Binding{Table: "orders", Column: "state"}
	states.Selected.Add("CA")
	status, data := send(t, http.MethodPut, srv.URL+"/api/v1/viewsheets/sales/assemblies/states", info.Marshal(states))
	require.Equal(t, http.StatusOK, status, string(data))

	status, data = send(t, http.MethodPost, srv.URL+"/api/v1/viewsheets/sales/sessions", "")
	require.Equal(t, http.StatusCreated, status, string(data))
	session := decode[api.Viewsheet](t, data).Session
	require.NotEmpty(t, session)

	// the CA selection and the amount range both apply
	filter := `{"table":"orders","ranges":[{"id":"amount","mins":[100],"maxes":[1000],"refs":["amount"],
		"lower_inclusive":true,"upper_inclusive":true}]}`
	status, data = send(t, http.MethodPost, srv.URL+"/api/v1/sessions/"+session+"/filter", filter)
	require.Equal(t, http.StatusOK, status, string(data))
	res := decode[api.FilterResponse](t, data)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "CA", res.Rows[0]["state"])
	assert.EqualValues(t, 250, res.Rows[0]["amount"])

	status, _ = send(t, http.MethodPost, srv.URL+"/api/v1/sessions/"+session+"/populate", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = send(t, http.MethodDelete, srv.URL+"/api/v1/sessions/"+session, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = send(t, http.MethodPost, srv.URL+"/api/v1/sessions/"+session+"/filter", filter)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestWebAPI_Health(t *testing.T) {
	srv := setupServer(t)

	status, _ := send(t, http.MethodGet, srv.URL+"/healthz", "")

	assert.Equal(t, http.StatusOK, status)
}
