package viewsheet

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/vsstate/pkg/adapters"
	"github.com/de-tools/vsstate/pkg/models/api"
	"github.com/de-tools/vsstate/pkg/models/store"
	"github.com/de-tools/vsstate/pkg/services/config"
	vsservice "github.com/de-tools/vsstate/pkg/services/viewsheet"
	"github.com/de-tools/vsstate/pkg/store/duckdb/assembly"
	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
	"github.com/de-tools/vsstate/pkg/viewsheet/info"
	"github.com/de-tools/vsstate/pkg/viewsheet/rangecond"
	"github.com/de-tools/vsstate/pkg/viewsheet/registry"
)

const maxBodySize = 4 << 20

type Handler struct {
	ctrl          vsservice.Controller
	assemblies    assembly.Store
	catalog       config.Catalog
	defaultLocale string
}

func NewHandler(
	ctrl vsservice.Controller,
	assemblies assembly.Store,
	catalog config.Catalog,
	defaultLocale string,
) *Handler {
	if catalog == nil {
		catalog = config.EmptyCatalog()
	}
	return &Handler{
		ctrl:          ctrl,
		assemblies:    assemblies,
		catalog:       catalog,
		defaultLocale: defaultLocale,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/viewsheets/{viewsheet}/assemblies", h.ListAssemblies)
	r.Get("/viewsheets/{viewsheet}/assemblies/{assembly}", h.GetAssembly)
	r.Put("/viewsheets/{viewsheet}/assemblies/{assembly}", h.PutAssembly)
	r.Post("/viewsheets/{viewsheet}/sessions", h.OpenSession)

	r.Delete("/sessions/{session}", h.CloseSession)
	r.Get("/sessions/{session}/assemblies", h.ListSessionAssemblies)
	r.Post("/sessions/{session}/refresh", h.Refresh)
	r.Post("/sessions/{session}/populate", h.Populate)
	r.Post("/sessions/{session}/filter", h.Filter)
	r.Post("/sessions/{session}/assemblies/{assembly}/drill", h.Drill)

	r.Post("/ranges/evaluate", h.EvaluateRanges)
}

func (h *Handler) localizer(r *http.Request) func(string) string {
	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = h.defaultLocale
	}
	return h.catalog.Localizer(locale)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, vsservice.ErrSessionNotFound),
		errors.Is(err, registry.ErrNotFound),
		errors.Is(err, assembly.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, info.ErrKindMismatch),
		errors.Is(err, info.ErrUnknownKind),
		errors.Is(err, vsservice.ErrNotDrillable),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, r, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (h *Handler) ListAssemblies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vs := chi.URLParam(r, "viewsheet")

	records, err := h.assemblies.ListAssemblies(ctx, vs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	localize := h.localizer(r)
	response := api.Viewsheet{Name: vs, Assemblies: []api.Assembly{}}
	for i := range records {
		ai, err := adapters.MapStoreAssemblyToInfo(&records[i])
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("assembly", records[i].Name).Msg("skipping undecodable assembly")
			continue
		}
		response.Assemblies = append(response.Assemblies, adapters.MapInfoToAPI(ai, localize))
	}
	writeJSON(w, r, http.StatusOK, response)
}

// GetAssembly returns the persisted XML of one assembly.
func (h *Handler) GetAssembly(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := h.assemblies.GetAssembly(ctx, store.AssemblyIdentity{
		Viewsheet: chi.URLParam(r, "viewsheet"),
		Name:      chi.URLParam(r, "assembly"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, a.XML); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to write assembly")
	}
}

// PutAssembly applies an XML assembly info. Without a session query
// parameter the change runs in a short-lived session.
func (h *Handler) PutAssembly(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vs := chi.URLParam(r, "viewsheet")
	name := chi.URLParam(r, "assembly")

	next, err := info.Unmarshal(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if next.Base().Name() == "" {
		next.Base().SetName(name)
	}
	if next.Base().Name() != name {
		writeError(w, r, fmt.Errorf("%w: body names %q, path names %q", errBadRequest, next.Base().Name(), name))
		return
	}

	id := r.URL.Query().Get("session")
	if id == "" {
		if id, err = h.ctrl.Open(ctx, vs); err != nil {
			writeError(w, r, err)
			return
		}
		defer func() {
			if err := h.ctrl.Close(ctx, id); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close session")
			}
		}()
	}

	hint, err := h.ctrl.Apply(ctx, id, next)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapHintToAPI(hint))
}

func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "viewsheet")

	id, err := h.ctrl.Open(ctx, name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.sessionResponse(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, out)
}

func (h *Handler) sessionResponse(r *http.Request, id string) (api.Viewsheet, error) {
	localize := h.localizer(r)
	var out api.Viewsheet
	err := h.ctrl.Describe(r.Context(), id, func(vs *registry.Viewsheet) error {
		out = api.Viewsheet{Name: vs.Name(), Session: id, Assemblies: []api.Assembly{}}
		for _, ai := range vs.Assemblies() {
			out.Assemblies = append(out.Assemblies, adapters.MapInfoToAPI(ai, localize))
		}
		return nil
	})
	return out, err
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Close(r.Context(), chi.URLParam(r, "session")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListSessionAssemblies(w http.ResponseWriter, r *http.Request) {
	out, err := h.sessionResponse(r, chi.URLParam(r, "session"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "session")
	if err := h.ctrl.Refresh(r.Context(), id, vsservice.Variables(req.Variables)); err != nil {
		writeError(w, r, err)
		return
	}
	h.ListSessionAssemblies(w, r)
}

func (h *Handler) Populate(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Populate(r.Context(), chi.URLParam(r, "session")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Filter(w http.ResponseWriter, r *http.Request) {
	var req api.FilterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ranges, err := adapters.MapAPIRangesToDomain(req.Ranges)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	res, err := h.ctrl.Filter(r.Context(), chi.URLParam(r, "session"), vsservice.Query{
		Table:     req.Table,
		Columns:   req.Columns,
		DateField: req.DateField,
		Ranges:    ranges,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := api.FilterResponse{Condition: res.Condition.String(), Count: len(res.Rows), Rows: make([]map[string]any, len(res.Rows))}
	for i, row := range res.Rows {
		response.Rows[i] = row
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (h *Handler) Drill(w http.ResponseWriter, r *http.Request) {
	var req api.DrillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Field == "" {
		writeError(w, r, fmt.Errorf("%w: field is required", errBadRequest))
		return
	}

	var l *condition.List
	if len(req.Values) > 0 {
		l = condition.Single(req.Field, condition.OneOf(req.Values...))
	}
	err := h.ctrl.Drill(r.Context(), chi.URLParam(r, "session"), chi.URLParam(r, "assembly"), req.Field, l)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EvaluateRanges compiles the merged ranges and tests each row.
func (h *Handler) EvaluateRanges(w http.ResponseWriter, r *http.Request) {
	var req api.RangeEvaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ranges, err := adapters.MapAPIRangesToDomain(req.Ranges)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	l := rangecond.MergeRanges(ranges...)
	pred, err := condition.Compile(l)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := api.RangeEvaluateResponse{Condition: l.String(), Matches: make([]bool, len(req.Rows))}
	for i, row := range req.Rows {
		response.Matches[i] = pred(condition.MapRow(row))
	}
	writeJSON(w, r, http.StatusOK, response)
}
