package gridview

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/openradius/radops/internal/grid"
)

// TableMsg is implemented by every asynchronous message a grid view emits.
// The app routes such messages to the view owning the table, whichever tab
// is active; everything else goes to the active view only.
type TableMsg interface {
	GridTable() string
}

// StatusMsg asks the app to surface a transient notice. Emitted for
// preference write failures and layout resets; fetch errors render inline
// in the body instead.
type StatusMsg struct {
	Text string
	Err  bool
}

func statusCmd(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text, Err: isErr} }
}

// fetchKey identifies the query parameters a fetch was issued with. A
// response applies only while its key still matches current state, which is
// what makes overlapping fetches safe: the stale one misses the match and
// is dropped, regardless of arrival order.
type fetchKey struct {
	partition string
	query     grid.Query
}

func (m Model) currentKey() fetchKey {
	return fetchKey{partition: m.Partition(), query: m.query}
}

type rowsMsg struct {
	table  string
	key    fetchKey
	result grid.Result
	err    error
}

func (msg rowsMsg) GridTable() string { return msg.table }

type prefsMsg struct {
	table string
	snap  *grid.Snapshot
	err   error
}

func (msg prefsMsg) GridTable() string { return msg.table }

type prefSavedMsg struct {
	table string
	err   error
}

func (msg prefSavedMsg) GridTable() string { return msg.table }

type prefClearedMsg struct {
	table string
	err   error
}

func (msg prefClearedMsg) GridTable() string { return msg.table }

// fetch captures the current key and returns the command that performs it.
func (m Model) fetch() (Model, tea.Cmd) {
	key := m.currentKey()
	m.loading = true
	m.loadErr = nil

	table, fn := m.Table(), m.cfg.Fetch
	return m, func() tea.Msg {
		res, err := fn(context.Background(), key.query, key.partition)
		return rowsMsg{table: table, key: key, result: res, err: err}
	}
}

func (m Model) loadPrefsCmd() tea.Cmd {
	table, store := m.Table(), m.cfg.Prefs
	return func() tea.Msg {
		snap, err := store.Get(context.Background(), table)
		return prefsMsg{table: table, snap: snap, err: err}
	}
}

// savePrefsCmd writes the complete current snapshot: full replace, never a
// patch. Sort state rides along since the layout does not own it.
func (m Model) savePrefsCmd() tea.Cmd {
	snap := m.layout.Snapshot()
	snap.SortField = m.query.SortField
	if m.query.SortField != "" {
		snap.SortDirection = string(m.query.SortDirection)
	}
	table, store := m.Table(), m.cfg.Prefs
	return func() tea.Msg {
		err := store.Put(context.Background(), table, snap)
		return prefSavedMsg{table: table, err: err}
	}
}

func (m Model) clearPrefsCmd() tea.Cmd {
	table, store := m.Table(), m.cfg.Prefs
	return func() tea.Msg {
		err := store.Delete(context.Background(), table)
		return prefClearedMsg{table: table, err: err}
	}
}

func (m Model) applyRows(msg rowsMsg) (Model, tea.Cmd) {
	if msg.key != m.currentKey() {
		// Issued against parameters the operator has since changed;
		// another fetch is already on its way.
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.loadErr = msg.err
		m.cfg.Logger.Error("fetch failed", "table", msg.table, "error", msg.err)
		return m, nil
	}

	m.rows = msg.result.Rows
	m.totalRecords = msg.result.TotalRecords
	m.totalPages = msg.result.TotalPages
	if m.totalPages < 1 {
		m.totalPages = 1
	}

	// A shrunken result may strand the page past the end; land on the last
	// page instead of an empty one.
	if m.query.Page > m.totalPages {
		m.query.SetPage(m.totalPages)
		return m.fetch()
	}

	m.scroll = m.virt.ClampOffset(m.scroll, len(m.rows), m.bodyHeight())
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m, nil
}

func (m Model) applyPrefs(msg prefsMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		// Silent fallback to defaults: the operator is not told, and saving
		// is still allowed; blocking writes forever on a flaky load would
		// lose every later edit.
		m.cfg.Logger.Debug("preference load failed", "table", msg.table, "error", msg.err)
	}
	if msg.snap != nil {
		m.layout.MergePersisted(*msg.snap)
		// A sort carried by an opened link wins over the persisted one.
		if !m.sortFromLink && msg.snap.SortField != "" && m.cfg.Registry.SortableField(msg.snap.SortField) {
			m.query.SetSort(msg.snap.SortField, grid.Direction(msg.snap.SortDirection))
		}
	}
	m.sortFromLink = false
	m.syncer.MarkLoaded()
	return m.fetch()
}
