package gridview

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openradius/radops/internal/grid"
)

func TestViewRendersOnlyTheVisibleWindow(t *testing.T) {
	f := newFixture()
	m := f.model()
	m.rows = makeRows(500)
	m.totalRecords = 500
	m.totalPages = 20
	m.loading = false
	m.scroll = 100
	m.cursor = 100

	out := m.View()
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 24, "header, separator, body window, status, input")
	assert.Contains(t, lines[bodyTop], "name 100", "body starts at the scroll offset")
	assert.Contains(t, lines[bodyTop+19], "name 119")
	assert.NotContains(t, out, "name 200", "rows past the window are never materialized")
}

func TestHeaderCheckboxShowsTriState(t *testing.T) {
	f := newFixture()
	m := f.ready(t, f.model())
	require.Len(t, m.rows, 5)

	assert.Contains(t, m.viewHeader(), "[ ]")

	m.sel.ToggleOne("row-001")
	assert.Contains(t, m.viewHeader(), "[~]", "partial page selection")

	m.sel.TogglePage(m.pageIDs())
	assert.Contains(t, m.viewHeader(), "[x]", "full page selection")
}

func TestHeaderShowsSortArrow(t *testing.T) {
	f := newFixture()
	m := f.ready(t, f.model())

	m.query.SetSort("name", grid.Asc)
	assert.Contains(t, m.viewHeader(), "Name ↑")

	m.query.SetSort("name", grid.Desc)
	assert.Contains(t, m.viewHeader(), "Name ↓")

	m.query.SetSort("quantity", grid.Asc)
	assert.Contains(t, m.viewHeader(), "Qty ↑", "sort-key columns mark their header")
}

func TestColumnsPastTheWidthAreDroppedWhole(t *testing.T) {
	f := newFixture()
	m := f.ready(t, f.model()).SetSize(30, 24)

	header := m.viewHeader()
	assert.Contains(t, header, "Name")
	assert.NotContains(t, header, "Email", "a column that does not fully fit is dropped")
	assert.NotContains(t, header, "Em", "never a clipped fragment")
}

func TestBodyStates(t *testing.T) {
	f := newFixture()
	m := f.model()

	assert.Contains(t, m.viewBody(), "loading…")

	m.loading = false
	assert.Contains(t, m.viewBody(), "no records")

	m.query.SetSearch("zz")
	assert.Contains(t, m.viewBody(), `no records match "zz"`)
}

func TestActionHintsFollowCallbacksAndPartition(t *testing.T) {
	f := newFixture()
	m := f.model(func(cfg *Config) {
		cfg.Partitions = []string{"active", "trashed"}
		cfg.Callbacks = Callbacks{
			Edit:    func(grid.Row) tea.Cmd { return nil },
			Delete:  func(grid.Row) tea.Cmd { return nil },
			Restore: func(grid.Row) tea.Cmd { return nil },
		}
	})

	assert.Equal(t, "e d", m.actionHints(), "restore is hidden on the default partition")

	m.partition = 1
	assert.Equal(t, "e u d", m.actionHints())
}

func TestStatusLineSummarizesTheView(t *testing.T) {
	f := newFixture()
	f.fetch.respond = func(q grid.Query, _ string) (grid.Result, error) {
		return grid.Result{Rows: makeRows(25), TotalRecords: 30, TotalPages: 2}, nil
	}
	m := f.ready(t, f.model())
	m.query.SetSort("name", grid.Asc)
	m.sel.ToggleOne("row-001")
	m.sel.ToggleOne("row-002")

	status := m.viewStatus()
	assert.Contains(t, status, "widgets")
	assert.Contains(t, status, "30 records")
	assert.Contains(t, status, "page 1/2")
	assert.Contains(t, status, "25/page")
	assert.Contains(t, status, "2 selected")
	assert.Contains(t, status, "name ↑")
}

func TestColumnsPanelListsDataColumns(t *testing.T) {
	f := newFixture()
	m := f.ready(t, f.model())
	m.mode = modeColumns
	m.layout.SetVisibility("qty", false)

	panel := m.viewColumnsPanel()
	assert.Contains(t, panel, "column settings")
	assert.Contains(t, panel, "> [x] Name")
	assert.Contains(t, panel, "[ ] Qty")
	assert.Contains(t, panel, "12 cells")
	assert.NotContains(t, panel, "_select", "pinned pseudo-columns are not editable")
}

func TestPadCell(t *testing.T) {
	assert.Equal(t, "ab   ", padCell("ab", 5, grid.AlignStart))
	assert.Equal(t, "   ab", padCell("ab", 5, grid.AlignEnd))
	assert.Equal(t, " ab  ", padCell("ab", 5, grid.AlignCenter))
	assert.Equal(t, "abcd…", padCell("abcdefgh", 5, grid.AlignStart))
	assert.Equal(t, "", padCell("ab", 0, grid.AlignStart))
}
