package tui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openradius/radops/internal/api"
	"github.com/openradius/radops/internal/grid"
	"github.com/openradius/radops/internal/tui/gridview"
)

// fakeBackend is the API the console talks to in tests: canned collections
// plus a record of every mutation.
type fakeBackend struct {
	mu          sync.Mutex
	subscribers []api.Subscriber
	radiusUsers []api.RadiusUser
	operators   []api.Operator

	deleted  []string
	restored []string
	created  []api.SubscriberInput
	updated  map[string]api.SubscriberInput
	bulk     *api.BulkResult // response for the next bulk call
	bulkGot  struct {
		Action string   `json:"action"`
		IDs    []string `json:"ids"`
	}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		subscribers: []api.Subscriber{
			{ID: "s1", Username: "jdoe", FirstName: "John", LastName: "Doe", Email: "jdoe@example.net", Plan: "gold", Enabled: true, Balance: 12.5},
			{ID: "s2", Username: "asmith", FirstName: "Ada", LastName: "Smith", Email: "ada@example.net", Plan: "silver", Enabled: false},
		},
		radiusUsers: []api.RadiusUser{
			{ID: "r1", Username: "jdoe", GroupName: "default", FramedIP: "10.0.0.8", Enabled: true},
		},
		operators: []api.Operator{
			{ID: "o1", FirstName: "Root", LastName: "Operator", Email: "root@example.net", Role: "admin", Enabled: true},
		},
		updated: make(map[string]api.SubscriberInput),
	}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/preferences/{table}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("PUT /api/v1/preferences/{table}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /api/v1/preferences/{table}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/v1/subscribers", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, map[string]any{
			"data": b.subscribers, "totalRecords": len(b.subscribers), "totalPages": 1,
		})
	})
	mux.HandleFunc("POST /api/v1/subscribers", func(w http.ResponseWriter, r *http.Request) {
		var in api.SubscriberInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.mu.Lock()
		b.created = append(b.created, in)
		b.mu.Unlock()
		writeJSON(w, api.Subscriber{ID: "new", Username: in.Username})
	})
	mux.HandleFunc("PUT /api/v1/subscribers/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in api.SubscriberInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.mu.Lock()
		b.updated[r.PathValue("id")] = in
		b.mu.Unlock()
		writeJSON(w, api.Subscriber{ID: r.PathValue("id"), Username: in.Username})
	})
	mux.HandleFunc("DELETE /api/v1/subscribers/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.deleted = append(b.deleted, r.PathValue("id"))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/v1/subscribers/{id}/restore", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.restored = append(b.restored, r.PathValue("id"))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/v1/subscribers/bulk", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		_ = json.NewDecoder(r.Body).Decode(&b.bulkGot)
		res := b.bulk
		if res == nil {
			res = &api.BulkResult{Succeeded: b.bulkGot.IDs}
		}
		writeJSON(w, res)
	})

	mux.HandleFunc("GET /api/v1/radius-users", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, map[string]any{
			"data": b.radiusUsers, "totalRecords": len(b.radiusUsers), "totalPages": 1,
		})
	})
	mux.HandleFunc("DELETE /api/v1/radius-users/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.deleted = append(b.deleted, "radius:"+r.PathValue("id"))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/v1/operators", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, map[string]any{"data": b.operators})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type appFixture struct {
	backend *fakeBackend
	app     *App
	now     time.Time
	copied  []string
}

func newAppFixture(t *testing.T, opts ...func(*Config)) *appFixture {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	client, err := api.NewClient(api.Config{BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	f := &appFixture{
		backend: backend,
		now:     time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	cfg := Config{
		Deps:           Deps{Client: client},
		PageSize:       25,
		WriteClipboard: func(s string) error { f.copied = append(f.copied, s); return nil },
		Now:            func() time.Time { return f.now },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	f.app = New(cfg)
	return f
}

// start sizes the app and settles every view through preference load and
// first fetch, without scheduling the real-time tick.
func (f *appFixture) start(t *testing.T) {
	t.Helper()
	f.app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	for i := range f.app.views {
		f.drain(f.app.views[i].Init())
	}
}

// drain executes a command tree, feeding every produced message back into
// the app. Tick messages are dropped: tests advance the clock themselves.
func (f *appFixture) drain(cmd tea.Cmd) {
	for _, msg := range collectMsgs(cmd) {
		if _, ok := msg.(tickMsg); ok {
			continue
		}
		_, next := f.app.Update(msg)
		f.drain(next)
	}
}

func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collectMsgs(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func (f *appFixture) key(s string) {
	var msg tea.KeyMsg
	switch s {
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	_, cmd := f.app.Update(msg)
	f.drain(cmd)
}

func TestTabSwitchingByNumberAndTab(t *testing.T) {
	f := newAppFixture(t)
	f.start(t)

	require.Equal(t, TableSubscribers, f.app.tables[f.app.active])

	f.key("3")
	assert.Equal(t, TableSessions, f.app.tables[f.app.active])

	f.key("tab")
	assert.Equal(t, TableOperators, f.app.tables[f.app.active])

	_, cmd := f.app.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	f.drain(cmd)
	assert.Equal(t, TableSessions, f.app.tables[f.app.active])
}

func TestInitialTableAndLinkReproduceView(t *testing.T) {
	link := url.Values{}
	link.Set(grid.ParamSearch, "doe")
	link.Set(grid.ParamPage, "1")
	f := newAppFixture(t, func(cfg *Config) {
		cfg.InitialTable = TableRadiusUsers
		cfg.InitialLink = link
	})
	f.app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	f.drain(f.app.Init())

	assert.Equal(t, TableRadiusUsers, f.app.tables[f.app.active])
	assert.Equal(t, "doe", f.app.views[f.app.active].Query().Search)
}

func TestQuitIsGatedWhileSearchInputOwnsKeys(t *testing.T) {
	f := newAppFixture(t)
	f.start(t)

	f.key("/")
	require.True(t, f.app.views[f.app.active].InputActive())

	_, cmd := f.app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd != nil {
		_, isQuit := cmd().(tea.QuitMsg)
		assert.False(t, isQuit, "q must type into the search box, not quit")
	}

	f.key("esc")
	_, cmd = f.app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
}

func TestAsyncMessagesRouteToOwningTable(t *testing.T) {
	f := newAppFixture(t)
	f.start(t)

	// Kick a subscribers refetch, then switch tabs before the response is
	// applied. The rows must land in the subscribers view anyway.
	subs := f.app.viewFor(TableSubscribers)
	view, cmd := subs.Reload(false)
	*subs = view

	f.key("4")
	require.Equal(t, TableOperators, f.app.tables[f.app.active])

	f.drain(cmd)
	assert.False(t, f.app.viewFor(TableSubscribers).Loading(), "response applied to background tab")
}

func TestDeleteConfirmRunsMutationAndReloads(t *testing.T) {
	f := newAppFixture(t)
	f.start(t)

	f.key("d")
	require.NotNil(t, f.app.confirm, "delete opens a confirmation")
	assert.Contains(t, f.app.confirm.body, "jdoe")

	f.key("y")
	require.Nil(t, f.app.confirm)
	assert.Equal(t, []string{"s1"}, f.backend.deleted)
	assert.Contains(t, f.app.toastText, "trashed")
	assert.False(t, f.app.toastErr)
}

func TestConfirmDeclineRunsNothing(t *testing.T) {
	f := newAppFixture(t)
	f.start(t)

	f.key("d")
	require.NotNil(t, f.app.confirm)
	f.key("n")
	assert.Nil(t, f.app.confirm)
	assert.Empty(t, f.backend.deleted)
}

func TestEditFormSubmitsUpdate(t *testing.T) {
	f := newAppFixture(t)
	f.start(t)

	f.key("e")
	require.NotNil(t, f.app.form, "edit opens the record form")
	assert.Equal(t, "jdoe", f.app.form.fields[0].input.Value())

	f.app.form.fields[3].input.SetValue("john@new.example.net")
	f.key("ctrl+s")

	require.Nil(t, f.app.form)
	got, ok := f.backend.updated["s1"]
	require.True(t, ok)
	assert.Equal(t, "john@new.example.net", got.Email)
	assert.Contains(t, f.app.toastText, "saved")
}

func TestFormValidationBlocksSubmit(t *testing.T) {
	f := newAppFixture(t)
	f.start(t)

	f.key("n")
	require.NotNil(t, f.app.form)

	f.app.form.fields[0].input.SetValue("") // username required
	f.key("ctrl+s")

	require.NotNil(t, f.app.form, "invalid form stays open")
	assert.Contains(t, f.app.form.err, "username")
	assert.Empty(t, f.backend.created)
}

func TestBulkKeepsFailedIdentifiersSelected(t *testing.T) {
	f := newAppFixture(t)
	f.start(t)

	f.backend.bulk = &api.BulkResult{
		Succeeded: []string{"s1"},
		Failed:    map[string]string{"s2": "has open invoice"},
	}

	f.key("a") // select the page
	require.Equal(t, 2, f.app.viewFor(TableSubscribers).SelectionCount())

	f.key("B")
	require.NotNil(t, f.app.pick, "bulk opens the action menu")
	f.key("enter") // first option: enable

	assert.Equal(t, "enable", f.backend.bulkGot.Action)
	assert.Equal(t, []string{"s1", "s2"}, f.backend.bulkGot.IDs)

	sel := f.app.viewFor(TableSubscribers).SelectedIDs()
	assert.Equal(t, []string{"s2"}, sel, "failed id stays selected for retry")
	assert.True(t, f.app.toastErr)
	assert.Contains(t, f.app.toastText, "s2")
}

func TestBulkMenuOffersRestoreOnTrashedPartition(t *testing.T) {
	f := newAppFixture(t)
	f.start(t)

	f.key("t") // switch to trashed
	require.Equal(t, "trashed", f.app.viewFor(TableSubscribers).Partition())

	f.key("a")
	f.key("B")
	require.NotNil(t, f.app.pick)
	assert.Contains(t, f.app.pick.options[0].label, "Restore")
}

func TestToastExpiresOnTick(t *testing.T) {
	f := newAppFixture(t)
	f.start(t)

	f.app.setToast("saved", false)
	require.NotEmpty(t, f.app.toastText)

	f.app.Update(tickMsg(f.now.Add(2 * time.Second)))
	assert.Equal(t, "saved", f.app.toastText, "toast survives until expiry")

	f.app.Update(tickMsg(f.now.Add(5 * time.Second)))
	assert.Empty(t, f.app.toastText)
}

func TestHeaderClickSortsThroughMouseTranslation(t *testing.T) {
	f := newAppFixture(t)
	f.start(t)

	// Username header starts at cell 4; the tab bar occupies line 0 of
	// the window, so the grid header row is window line 1.
	press := tea.MouseMsg{X: 5, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	release := tea.MouseMsg{X: 5, Y: 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone}

	_, cmd := f.app.Update(press)
	f.drain(cmd)
	_, cmd = f.app.Update(release)
	f.drain(cmd)

	q := f.app.viewFor(TableSubscribers).Query()
	assert.Equal(t, "username", q.SortField)
	assert.Equal(t, grid.Asc, q.SortDirection)
}

func TestYankLinkCopiesConsoleCommand(t *testing.T) {
	f := newAppFixture(t)
	f.start(t)

	f.key("/")
	f.key("doe")
	f.key("enter")
	f.key("Y")

	require.Len(t, f.copied, 1)
	assert.Contains(t, f.copied[0], "radops console subscribers")
	assert.Contains(t, f.copied[0], "--search=doe")
}

func TestYankRowCopiesJSON(t *testing.T) {
	f := newAppFixture(t)
	f.start(t)

	f.key("y")
	require.Len(t, f.copied, 1)
	assert.Contains(t, f.copied[0], `"username": "jdoe"`)
}

func TestSessionsWithoutAccountingDatabaseReportsInline(t *testing.T) {
	f := newAppFixture(t)
	f.start(t)

	f.key("3")
	body := f.app.views[f.app.active].View()
	assert.Contains(t, body, "accounting database not configured")
}

func TestConsoleCommand(t *testing.T) {
	v := url.Values{}
	v.Set(grid.ParamSearch, "doe smith")
	v.Set(grid.ParamPage, "2")

	got := ConsoleCommand("subscribers", v)
	assert.Equal(t, `radops console subscribers --page=2 --search="doe smith"`, got)
}

func TestConsoleCommandSpellsFlagNames(t *testing.T) {
	v := url.Values{}
	v.Set(grid.ParamSortField, "username")
	v.Set(grid.ParamSortDirection, "desc")
	v.Set(grid.ParamPageSize, "all")
	v.Set(gridview.ParamStatus, "trashed")

	got := ConsoleCommand("subscribers", v)
	assert.Equal(t, `radops console subscribers --page-size=all --sort-direction=desc --sort-field=username --status=trashed`, got)
}

func TestStatusMsgBecomesToast(t *testing.T) {
	f := newAppFixture(t)
	f.start(t)

	f.app.Update(gridview.StatusMsg{Text: "layout reset to defaults"})
	assert.Equal(t, "layout reset to defaults", f.app.toastText)
	assert.False(t, f.app.toastErr)
}
