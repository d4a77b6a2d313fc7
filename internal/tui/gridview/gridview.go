// Package gridview binds the grid engine to a bubbletea view: one Model per
// table, owning that table's layout, query, selection, and gesture state,
// and translating key and mouse input into engine operations. All state
// changes happen on the program's update loop; the only concurrency is the
// command goroutines bubbletea runs for fetches and preference writes, which
// communicate results back as messages.
package gridview

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/openradius/radops/internal/grid"
)

// pxPerCell converts the pixel widths the preference payload speaks (shared
// with the web console) into terminal cells. MinColumnWidth of 60px renders
// as 6 cells.
const pxPerCell = 10

// guardWindow is how long after a resize release header clicks stay
// suppressed before the guard expires on its own.
const guardWindow = 400 * time.Millisecond

// searchDebounce is how long typing in the search input must pause before
// the accumulated term is fetched. Enter commits immediately.
const searchDebounce = 300 * time.Millisecond

// mode selects what the view's body shows and where key input goes.
type mode int

const (
	modeBrowse  mode = iota // grid body, full keymap
	modeSearch              // search input focused, runes go to it
	modeColumns             // column management panel
)

// FetchFunc loads one page of rows for the view. The partition argument is
// the active record partition for tables that have more than one, empty
// otherwise. Implementations run off the update loop and must be safe for
// overlapping calls; the view discards responses whose key no longer
// matches.
type FetchFunc func(ctx context.Context, q grid.Query, partition string) (grid.Result, error)

// Callbacks are the row and bulk actions the owning app wires in. A nil
// callback disables its key. Each returns the command that performs the
// mutation; the app refreshes the view when it completes.
type Callbacks struct {
	Create   func() tea.Cmd
	Edit     func(row grid.Row) tea.Cmd
	Delete   func(row grid.Row) tea.Cmd
	Restore  func(row grid.Row) tea.Cmd
	Bulk     func(ids []string) tea.Cmd
	YankRow  func(row grid.Row) tea.Cmd
	YankLink func(link url.Values) tea.Cmd
}

// Config assembles one grid view.
type Config struct {
	Registry *grid.Registry
	Fetch    FetchFunc
	Prefs    grid.PreferenceStore

	// Invalidate drops a client-mode source's cached collection so a
	// refresh re-reads. Nil for server-mode tables.
	Invalidate func()

	// Partitions lists the record partitions the table exposes, the first
	// being the default. Nil for single-partition tables.
	Partitions []string

	DefaultPageSize int
	SaveDebounce    time.Duration // zero means grid.DefaultSaveDebounce

	Callbacks Callbacks
	Styles    Styles
	Logger    *slog.Logger

	// Now is the clock the debounce and guard logic read. Tests inject a
	// fake; nil means time.Now.
	Now func() time.Time
}

// Model is the bubbletea model for one table. Copies share the engine state
// behind the embedded pointers, as bubbles components do.
type Model struct {
	cfg  Config
	keys keyMap

	layout  *grid.Layout
	query   grid.Query
	sel     *grid.Selection
	resizer *grid.Resizer
	reorder *grid.Reorderer
	syncer  *grid.Syncer
	virt    grid.Virtualizer

	partition int // index into cfg.Partitions, 0 when none

	rows         []grid.Row
	totalRecords int
	totalPages   int
	loading      bool
	loadErr      error

	cursor int // row index within rows
	scroll int // first body row shown

	width  int
	height int

	mode      mode
	search    textinput.Model
	colCursor int

	pressKey   string    // header cell under the last mouse press
	guardUntil time.Time // resize guard expiry
	searchDue  time.Time // pending debounced search fetch, zero when none

	// sortFromLink marks the sort as set by an opened link, which wins
	// over the persisted sort when the preference load resolves.
	sortFromLink bool
}

// New builds a view. The layout seeds from registry defaults so the first
// paint is complete; persisted preferences merge in once loaded.
func New(cfg Config) Model {
	if cfg.DefaultPageSize == 0 {
		cfg.DefaultPageSize = 25
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	search := textinput.New()
	search.Prompt = "search: "
	search.Placeholder = "type to filter"
	search.CharLimit = 120

	m := Model{
		cfg:     cfg,
		keys:    newKeyMap(),
		layout:  grid.NewLayout(cfg.Registry),
		query:   grid.NewQuery(cfg.DefaultPageSize),
		sel:     grid.NewSelection(),
		resizer: &grid.Resizer{},
		reorder: grid.NewReorderer(cfg.Registry),
		syncer:  grid.NewSyncer(cfg.SaveDebounce),
		virt:    grid.Virtualizer{RowHeight: 1, Overscan: 5},
		search:  search,
		loading: true,
	}
	// Every effective layout mutation arms the debounced save, wherever it
	// came from: a drag, the column panel, or a merged preference does not
	// count because the gate is still closed then.
	syncer, now := m.syncer, cfg.Now
	m.layout.OnChange(func() { syncer.NoteChange(now()) })
	return m
}

// Init starts the preference load. The first fetch is issued when the load
// resolves, so it already carries the persisted sort.
func (m Model) Init() tea.Cmd {
	return m.loadPrefsCmd()
}

// Table returns the table identity, which doubles as the routing key for
// this view's asynchronous messages.
func (m Model) Table() string { return m.cfg.Registry.Table() }

// Query returns the current search/sort/paginate state.
func (m Model) Query() grid.Query { return m.query }

// Partition returns the active partition name, empty for single-partition
// tables.
func (m Model) Partition() string {
	if len(m.cfg.Partitions) == 0 {
		return ""
	}
	return m.cfg.Partitions[m.partition]
}

func (m Model) defaultPartition() bool { return m.partition == 0 }

// SelectedIDs returns the checked row identifiers across all pages.
func (m Model) SelectedIDs() []string { return m.sel.IDs() }

// SelectionCount returns the number of checked rows.
func (m Model) SelectionCount() int { return m.sel.Count() }

// RemoveFromSelection unchecks the given ids, keeping the rest. The app
// calls it with a bulk action's succeeded ids so failed ones stay selected
// for retry.
func (m Model) RemoveFromSelection(ids []string) { m.sel.Remove(ids) }

// ClearSelection unchecks everything.
func (m Model) ClearSelection() { m.sel.Clear() }

// CursorRow returns the row under the cursor.
func (m Model) CursorRow() (grid.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil, false
	}
	return m.rows[m.cursor], true
}

// Loading reports whether a fetch is outstanding.
func (m Model) Loading() bool { return m.loading }

// InputActive reports whether a text input owns the keyboard, so the app
// must not treat printable keys as shortcuts.
func (m Model) InputActive() bool { return m.mode == modeSearch }

// SetSize gives the view its render area in cells.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.search.Width = width - 12
	m.scroll = m.virt.ClampOffset(m.scroll, len(m.rows), m.bodyHeight())
	return m
}

// Reload re-fetches the current page, dropping a client-mode cache first
// when asked. Used by the app after mutations and by the refresh key.
func (m Model) Reload(invalidate bool) (Model, tea.Cmd) {
	if invalidate && m.cfg.Invalidate != nil {
		m.cfg.Invalidate()
	}
	return m.fetch()
}

// ParamStatus carries the active partition in deep links, alongside the
// query parameters from the grid package.
const ParamStatus = "status"

// DeepLink encodes the current view state as shareable parameters: the
// query in its wire form plus the partition when not the default.
func (m Model) DeepLink() url.Values {
	v := grid.EncodeQuery(m.query, m.cfg.DefaultPageSize)
	if len(m.cfg.Partitions) > 0 && !m.defaultPartition() {
		v.Set(ParamStatus, m.Partition())
	}
	return v
}

// ApplyLink restores view state from deep-link parameters and fetches.
// Unknown sort fields and partitions fall back to defaults, so a stale
// link still lands on a usable view.
func (m Model) ApplyLink(v url.Values) (Model, tea.Cmd) {
	q := grid.DecodeQuery(v, m.cfg.DefaultPageSize)
	if q.SortField != "" && !m.cfg.Registry.SortableField(q.SortField) {
		q.SortField = ""
		q.SortDirection = grid.Asc
	}
	m.query = q
	m.sortFromLink = q.SortField != ""
	if status := v.Get(ParamStatus); status != "" {
		for i, p := range m.cfg.Partitions {
			if p == status {
				if i != m.partition {
					m.partition = i
					m.sel.Clear()
				}
				break
			}
		}
	}
	if q.Search != "" {
		m.search.SetValue(q.Search)
	}
	return m.fetch()
}

// now returns the injected clock's time.
func (m Model) now() time.Time { return m.cfg.Now() }

// pageIDs returns the identifiers of the rows on the current page, the
// scope of the header checkbox.
func (m Model) pageIDs() []string {
	ids := make([]string, len(m.rows))
	for i, r := range m.rows {
		ids[i] = r.RowID()
	}
	return ids
}

// bodyHeight is the line count available to rows: total height minus the
// header, its separator, and the two footer lines.
func (m Model) bodyHeight() int {
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}
