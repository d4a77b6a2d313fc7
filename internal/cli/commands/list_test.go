package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openradius/radops/internal/cli/config"
	"github.com/openradius/radops/internal/cli/testutil"
)

// loadTestConfig points the loaded configuration at a test backend and
// resets it when the test finishes.
func loadTestConfig(t *testing.T, apiURL string) {
	t.Helper()
	path := testutil.WriteTestConfig(t, apiURL)
	_, err := config.Load(path, nil)
	require.NoError(t, err)
	t.Cleanup(config.ResetConfig)
}

func subscribersBackend(t *testing.T) (*httptest.Server, *url.Values) {
	t.Helper()
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/subscribers", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{"id":"1","username":"jdoe","firstName":"John","lastName":"Doe","email":"jdoe@example.net","plan":"fiber-100","enabled":true,"balance":12.5,"createdAt":"2025-01-02T10:00:00Z"},
				{"id":"2","username":"jdoeven","firstName":"Jan","lastName":"Doeven","email":"jan@example.net","plan":"dsl-20","enabled":false,"balance":0,"createdAt":"2025-02-03T11:00:00Z"}
			],
			"totalRecords": 2,
			"totalPages": 1
		}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &gotQuery
}

func runListCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewListCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestListForwardsQueryToBackend(t *testing.T) {
	srv, gotQuery := subscribersBackend(t)
	loadTestConfig(t, srv.URL)

	out, err := runListCommand(t, "subscribers", "--format=csv", "--search=doe", "--status=trashed", "--sort-field=name")
	require.NoError(t, err)

	q := *gotQuery
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "25", q.Get("pageSize"))
	assert.Equal(t, "doe", q.Get("search"))
	assert.Equal(t, "name", q.Get("sortField"))
	assert.Equal(t, "asc", q.Get("sortDirection"))
	assert.Equal(t, "trashed", q.Get("status"))

	assert.Contains(t, out, "jdoe")
	assert.Contains(t, out, "Jan Doeven")
}

func TestListCSVHeaderMatchesColumns(t *testing.T) {
	srv, _ := subscribersBackend(t)
	loadTestConfig(t, srv.URL)

	out, err := runListCommand(t, "subscribers", "--format=csv")
	require.NoError(t, err)

	// Default-visible subscriber columns; "created" is hidden by default.
	assert.Contains(t, out, "username,name,email,plan,status,balance")
	assert.NotContains(t, out, "created")
}

func TestListJSONEnvelope(t *testing.T) {
	srv, _ := subscribersBackend(t)
	loadTestConfig(t, srv.URL)

	out, err := runListCommand(t, "subscribers", "--format=json")
	require.NoError(t, err)

	var envelope struct {
		Data         []map[string]any `json:"data"`
		TotalRecords int              `json:"totalRecords"`
		TotalPages   int              `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &envelope))
	assert.Len(t, envelope.Data, 2)
	assert.Equal(t, 2, envelope.TotalRecords)
	assert.Equal(t, "jdoe", envelope.Data[0]["username"])
}

func TestListMarkdown(t *testing.T) {
	srv, _ := subscribersBackend(t)
	loadTestConfig(t, srv.URL)

	out, err := runListCommand(t, "subscribers", "--format=md")
	require.NoError(t, err)
	assert.Contains(t, out, "| Username |")
	assert.Contains(t, out, "| jdoe |")
	testutil.AssertValidMarkdown(t, out)
}

func TestListRejectsUnsortableField(t *testing.T) {
	srv, _ := subscribersBackend(t)
	loadTestConfig(t, srv.URL)

	_, err := runListCommand(t, "radius-users", "--sort-field=framedIp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not sortable")
}

func TestListSessionsWithoutRadacct(t *testing.T) {
	srv, _ := subscribersBackend(t)
	loadTestConfig(t, srv.URL)

	_, err := runListCommand(t, "sessions")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
