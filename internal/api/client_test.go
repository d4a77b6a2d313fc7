package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openradius/radops/internal/grid"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, Token: "test-token"}, nil)
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{}, nil)
	assert.Error(t, err, "empty base URL refuses")

	_, err = NewClient(Config{BaseURL: "ftp://example.com"}, nil)
	assert.Error(t, err, "non-http scheme refuses")

	_, err = NewClient(Config{BaseURL: "http://localhost:8900/"}, nil)
	assert.NoError(t, err)
}

func TestSearchSubscribers(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	var gotAuth string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []Subscriber{
				{ID: "s1", Username: "jdoe", FirstName: "John", LastName: "Doe"},
			},
			"totalRecords": 42,
			"totalPages":   2,
		})
	})

	c := newTestClient(t, handler)

	q := grid.NewQuery(25)
	q.SetSearch("doe")
	q.ToggleSort("username")
	q.ToggleSort("username") // desc
	q.SetPage(2)

	subs, info, err := c.SearchSubscribers(context.Background(), q, StatusTrashed)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/subscribers", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, map[string]string{
		"page":          "2",
		"pageSize":      "25",
		"search":        "doe",
		"sortField":     "username",
		"sortDirection": "desc",
		"status":        "trashed",
	}, gotQuery)

	require.Len(t, subs, 1)
	assert.Equal(t, "jdoe", subs[0].Username)
	assert.Equal(t, 42, info.TotalRecords)
	assert.Equal(t, 2, info.TotalPages)
}

func TestSearchSubscribers_PageSizeAll(t *testing.T) {
	var gotSize string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSize = r.URL.Query().Get("pageSize")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []Subscriber{}})
	})

	c := newTestClient(t, handler)

	q := grid.NewQuery(grid.PageSizeAll)
	_, _, err := c.SearchSubscribers(context.Background(), q, StatusActive)
	require.NoError(t, err)
	assert.Equal(t, "all", gotSize)
}

func TestBulkSubscribers_PartialFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Action string   `json:"action"`
			IDs    []string `json:"ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, BulkDisable, body.Action)
		assert.Equal(t, []string{"1", "2", "3"}, body.IDs)

		_ = json.NewEncoder(w).Encode(BulkResult{
			Succeeded: []string{"1", "3"},
			Failed:    map[string]string{"2": "has open invoice"},
		})
	})

	c := newTestClient(t, handler)

	res, err := c.BulkSubscribers(context.Background(), BulkDisable, []string{"1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, res.Succeeded)
	assert.Equal(t, "has open invoice", res.Failed["2"])
}

func TestClient_DecodesBackendError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "username taken"})
	})

	c := newTestClient(t, handler)

	_, err := c.CreateSubscriber(context.Background(), SubscriberInput{Username: "jdoe"})
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "username taken")
}

func TestListOperators(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/operators", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery, "full-collection fetch carries no paging")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []Operator{
				{ID: "o1", FirstName: "Ada", LastName: "Lovelace", Role: "admin", Enabled: true},
			},
		})
	})

	c := newTestClient(t, handler)

	ops, err := c.ListOperators(context.Background())
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "Ada Lovelace", ops[0].Name())
}

func TestSubscriberRow(t *testing.T) {
	created := time.Date(2026, 2, 14, 8, 30, 0, 0, time.UTC)
	sub := Subscriber{
		ID: "s1", Username: "jdoe", FirstName: "John", LastName: "Doe",
		Enabled: true, Balance: 12.5, CreatedAt: created,
	}

	assert.Equal(t, "s1", sub.RowID())
	assert.Equal(t, "John Doe", sub.Value("name"), "composite name field")
	assert.Equal(t, true, sub.Value("enabled"), "status sort field maps to the flag")
	assert.Equal(t, "enabled", sub.Cell("status"))
	assert.Equal(t, "12.50", sub.Cell("balance"))
	assert.Equal(t, "2026-02-14 08:30", sub.Cell("created"))
}
