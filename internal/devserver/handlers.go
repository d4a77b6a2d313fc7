package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/openradius/radops/internal/api"
	"github.com/openradius/radops/internal/grid"
)

// maxBodySize bounds request bodies; the largest legitimate payload is a
// bulk action over one page of ids.
const maxBodySize = 1 << 20

// Routes builds the API router. Exported so tests can drive the full
// stack through httptest.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/preferences/{table}", s.handleGetPreference)
		r.Put("/preferences/{table}", s.handlePutPreference)
		r.Delete("/preferences/{table}", s.handleDeletePreference)

		r.Get("/subscribers", s.handleListSubscribers)
		r.Post("/subscribers", s.handleCreateSubscriber)
		r.Post("/subscribers/bulk", s.handleBulkSubscribers)
		r.Get("/subscribers/{id}", s.handleGetSubscriber)
		r.Put("/subscribers/{id}", s.handleUpdateSubscriber)
		r.Delete("/subscribers/{id}", s.handleDeleteSubscriber)
		r.Post("/subscribers/{id}/restore", s.handleRestoreSubscriber)

		r.Get("/radius-users", s.handleListRadiusUsers)
		r.Put("/radius-users/{id}", s.handleUpdateRadiusUser)
		r.Delete("/radius-users/{id}", s.handleDeleteRadiusUser)

		r.Get("/operators", s.handleListOperators)
	})

	return r
}

// listEnvelope is the shared search response shape.
type listEnvelope struct {
	Data         any `json:"data"`
	TotalRecords int `json:"totalRecords"`
	TotalPages   int `json:"totalPages"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, format string, args ...any) {
	respondJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}

// respondStoreError maps store sentinels to HTTP statuses.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respondError(w, http.StatusNotFound, "%s", err)
	case errors.Is(err, ErrConflict):
		respondError(w, http.StatusConflict, "%s", err)
	default:
		respondError(w, http.StatusInternalServerError, "%s", err)
	}
}

// parseListParams reads the search contract's query string. Anything
// malformed falls back to a default rather than erroring; a hand-edited
// deep link should degrade, not break.
func parseListParams(r *http.Request) ListParams {
	q := r.URL.Query()
	p := ListParams{Page: 1, PageSize: 25, Status: api.StatusActive}

	if n, err := strconv.Atoi(q.Get(grid.ParamPage)); err == nil && n >= 1 {
		p.Page = n
	}
	if raw := q.Get(grid.ParamPageSize); raw != "" {
		if size, err := grid.ParsePageSize(raw); err == nil {
			p.PageSize = size
		}
	}
	p.Search = q.Get(grid.ParamSearch)
	p.Sort = q.Get(grid.ParamSortField)
	p.Desc = q.Get(grid.ParamSortDirection) == "desc"
	if q.Get("status") == string(api.StatusTrashed) {
		p.Status = api.StatusTrashed
	}
	return p
}

func totalPagesFor(p ListParams, total int) int {
	return grid.Query{PageSize: p.PageSize}.TotalPages(total)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSubscribers(w http.ResponseWriter, r *http.Request) {
	p := parseListParams(r)
	subs, total, err := s.store.ListSubscribers(r.Context(), p)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if subs == nil {
		subs = []api.Subscriber{}
	}
	respondJSON(w, http.StatusOK, listEnvelope{
		Data:         subs,
		TotalRecords: total,
		TotalPages:   totalPagesFor(p, total),
	})
}

func (s *Server) handleGetSubscriber(w http.ResponseWriter, r *http.Request) {
	sub, err := s.store.GetSubscriber(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(out); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: %s", err)
		return false
	}
	return true
}

func (s *Server) handleCreateSubscriber(w http.ResponseWriter, r *http.Request) {
	var in api.SubscriberInput
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Username == "" {
		respondError(w, http.StatusBadRequest, "username is required")
		return
	}
	sub, err := s.store.CreateSubscriber(r.Context(), in)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleUpdateSubscriber(w http.ResponseWriter, r *http.Request) {
	var in api.SubscriberInput
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Username == "" {
		respondError(w, http.StatusBadRequest, "username is required")
		return
	}
	sub, err := s.store.UpdateSubscriber(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

func (s *Server) handleDeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	if err := s.store.TrashSubscriber(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestoreSubscriber(w http.ResponseWriter, r *http.Request) {
	sub, err := s.store.RestoreSubscriber(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respondStoreError(w, err)
			return
		}
		respondError(w, http.StatusConflict, "%s", err)
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

func (s *Server) handleBulkSubscribers(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Action string   `json:"action"`
		IDs    []string `json:"ids"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if len(in.IDs) == 0 {
		respondError(w, http.StatusBadRequest, "ids is empty")
		return
	}
	result, err := s.store.BulkSubscribers(r.Context(), in.Action, in.IDs)
	if err != nil {
		respondError(w, http.StatusBadRequest, "%s", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListRadiusUsers(w http.ResponseWriter, r *http.Request) {
	p := parseListParams(r)
	users, total, err := s.store.ListRadiusUsers(r.Context(), p)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if users == nil {
		users = []api.RadiusUser{}
	}
	respondJSON(w, http.StatusOK, listEnvelope{
		Data:         users,
		TotalRecords: total,
		TotalPages:   totalPagesFor(p, total),
	})
}

func (s *Server) handleUpdateRadiusUser(w http.ResponseWriter, r *http.Request) {
	var in api.RadiusUserInput
	if !decodeBody(w, r, &in) {
		return
	}
	user, err := s.store.UpdateRadiusUser(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteRadiusUser(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteRadiusUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListOperators(w http.ResponseWriter, r *http.Request) {
	ops, err := s.store.ListOperators(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if ops == nil {
		ops = []api.Operator{}
	}
	respondJSON(w, http.StatusOK, listEnvelope{
		Data:         ops,
		TotalRecords: len(ops),
		TotalPages:   1,
	})
}

func (s *Server) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	payload, err := s.store.GetPreference(r.Context(), table)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if payload == nil {
		respondError(w, http.StatusNotFound, "no preference saved for %s", table)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (s *Server) handlePutPreference(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	payload, err := io.ReadAll(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "read body: %s", err)
		return
	}
	// Stored opaquely: a newer console may save keys this server has
	// never heard of, and they must round-trip untouched.
	if !json.Valid(payload) {
		respondError(w, http.StatusBadRequest, "payload is not valid JSON")
		return
	}
	if err := s.store.PutPreference(r.Context(), table, payload); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeletePreference(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePreference(r.Context(), chi.URLParam(r, "table")); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
