package gridview

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/openradius/radops/internal/grid"
)

// Update handles one message. Asynchronous results are keyed to this view's
// table by the app's router, so they apply even while another tab is shown.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case rowsMsg:
		return m.applyRows(msg)
	case prefsMsg:
		return m.applyPrefs(msg)
	case prefSavedMsg:
		if msg.err != nil {
			m.cfg.Logger.Error("preference save failed", "table", msg.table, "error", msg.err)
			return m, statusCmd("saving layout failed, will retry on next change", true)
		}
		return m, nil
	case prefClearedMsg:
		if msg.err != nil {
			m.cfg.Logger.Error("preference delete failed", "table", msg.table, "error", msg.err)
			return m, statusCmd("clearing saved layout failed", true)
		}
		return m, statusCmd("layout reset to defaults", false)
	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeColumns:
			return m.updateColumns(msg)
		default:
			return m.updateBrowse(msg)
		}
	case tea.MouseMsg:
		return m.updateMouse(msg)
	}
	return m, nil
}

// Tick drives the time-based policies from the app's single clock: due
// debounced saves fire, a paused search issues its fetch, and an expired
// resize guard returns to idle so the next header click sorts normally.
func (m Model) Tick(now time.Time) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.syncer.TakeDue(now) {
		cmds = append(cmds, m.savePrefsCmd())
	}
	if !m.searchDue.IsZero() && !now.Before(m.searchDue) {
		m.searchDue = time.Time{}
		var fetchCmd tea.Cmd
		m, fetchCmd = m.fetch()
		cmds = append(cmds, fetchCmd)
	}
	if m.resizer.Guarding() && !m.resizer.Resizing() && now.After(m.guardUntil) {
		m.resizer.ClearGuard()
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.search.Blur()
		m.mode = modeBrowse
		if !m.searchDue.IsZero() {
			m.searchDue = time.Time{}
			return m.fetch()
		}
		return m, nil
	}

	var inputCmd tea.Cmd
	m.search, inputCmd = m.search.Update(msg)

	// Each keystroke updates the query but only restarts the debounce
	// window; the fetch fires from Tick once typing pauses.
	if term := m.search.Value(); term != m.query.Search {
		m.query.SetSearch(term)
		m.searchDue = m.now().Add(searchDebounce)
	}
	return m, inputCmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (Model, tea.Cmd) {
	keys, cb := m.keys, m.cfg.Callbacks

	switch {
	case key.Matches(msg, keys.up):
		m.moveCursor(-1)
	case key.Matches(msg, keys.down):
		m.moveCursor(1)
	case key.Matches(msg, keys.pageUp):
		m.moveCursor(-m.bodyHeight())
	case key.Matches(msg, keys.pageDown):
		m.moveCursor(m.bodyHeight())
	case key.Matches(msg, keys.top):
		m.moveCursor(-len(m.rows))
	case key.Matches(msg, keys.bottom):
		m.moveCursor(len(m.rows))

	case key.Matches(msg, keys.prevPage):
		if m.query.Page > 1 {
			m.query.SetPage(m.query.Page - 1)
			return m.fetch()
		}
	case key.Matches(msg, keys.nextPage):
		if m.query.Page < m.totalPages {
			m.query.SetPage(m.query.Page + 1)
			return m.fetch()
		}
	case key.Matches(msg, keys.sizeDown):
		return m.stepPageSize(-1)
	case key.Matches(msg, keys.sizeUp):
		return m.stepPageSize(1)

	case key.Matches(msg, keys.search):
		m.mode = modeSearch
		return m, m.search.Focus()

	case key.Matches(msg, keys.selectRow):
		if row, ok := m.CursorRow(); ok {
			m.sel.ToggleOne(row.RowID())
		}
	case key.Matches(msg, keys.selectPage):
		m.sel.TogglePage(m.pageIDs())

	case key.Matches(msg, keys.columns):
		m.mode = modeColumns
		return m, nil

	case key.Matches(msg, keys.partition):
		if len(m.cfg.Partitions) > 1 {
			return m.switchPartition()
		}

	case key.Matches(msg, keys.refresh):
		return m.Reload(true)

	case key.Matches(msg, keys.create):
		if cb.Create != nil {
			return m, cb.Create()
		}
	case key.Matches(msg, keys.edit):
		if row, ok := m.CursorRow(); ok && cb.Edit != nil {
			return m, cb.Edit(row)
		}
	case key.Matches(msg, keys.del):
		if row, ok := m.CursorRow(); ok && cb.Delete != nil {
			return m, cb.Delete(row)
		}
	case key.Matches(msg, keys.restore):
		if row, ok := m.CursorRow(); ok && cb.Restore != nil {
			return m, cb.Restore(row)
		}
	case key.Matches(msg, keys.bulk):
		if cb.Bulk != nil && m.sel.Count() > 0 {
			return m, cb.Bulk(m.sel.IDs())
		}
	case key.Matches(msg, keys.yankRow):
		if row, ok := m.CursorRow(); ok && cb.YankRow != nil {
			return m, cb.YankRow(row)
		}
	case key.Matches(msg, keys.yankLink):
		if cb.YankLink != nil {
			return m, cb.YankLink(m.DeepLink())
		}

	case key.Matches(msg, keys.reset):
		return m.resetLayout()

	case msg.String() == "esc":
		if m.query.Search != "" {
			m.search.SetValue("")
			m.query.SetSearch("")
			return m.fetch()
		}
	}
	return m, nil
}

// switchPartition moves to the next record partition. Identifiers may
// collide across partitions, so the selection always empties, and the view
// lands back on page 1.
func (m Model) switchPartition() (Model, tea.Cmd) {
	m.partition = (m.partition + 1) % len(m.cfg.Partitions)
	m.sel.Clear()
	m.query.SetPage(1)
	return m.fetch()
}

// resetLayout restores registry defaults and deletes the persisted
// preference. The pending save is disarmed first so a trailing debounced
// PUT cannot resurrect what the DELETE just removed.
func (m Model) resetLayout() (Model, tea.Cmd) {
	m.syncer.Disarm()
	m.layout.ResetToDefaults()
	m.query.SetSort("", grid.Asc)
	clear := m.clearPrefsCmd()
	var fetchCmd tea.Cmd
	m, fetchCmd = m.fetch()
	return m, tea.Batch(clear, fetchCmd)
}

func (m Model) stepPageSize(dir int) (Model, tea.Cmd) {
	idx := pageSizeIndex(m.query.PageSize) + dir
	if idx < 0 || idx >= len(grid.PageSizes) {
		return m, nil
	}
	next := grid.PageSizes[idx]
	if next == m.query.PageSize {
		return m, nil
	}
	m.query.SetPageSize(next)
	return m.fetch()
}

// pageSizeIndex locates size in the offered catalogue. Sizes smuggled in by
// a hand-edited link map to the default slot so stepping stays sensible.
func pageSizeIndex(size int) int {
	for i, s := range grid.PageSizes {
		if s == size {
			return i
		}
	}
	return 1
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.ensureCursorVisible()
}

func (m *Model) ensureCursorVisible() {
	bodyH := m.bodyHeight()
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+bodyH {
		m.scroll = m.cursor - bodyH + 1
	}
	m.scroll = m.virt.ClampOffset(m.scroll, len(m.rows), bodyH)
}

func (m Model) updateColumns(msg tea.KeyMsg) (Model, tea.Cmd) {
	keys := m.keys
	dataKeys := m.orderedDataKeys()
	if m.colCursor >= len(dataKeys) {
		m.colCursor = len(dataKeys) - 1
	}
	if m.colCursor < 0 {
		m.colCursor = 0
	}
	var current string
	if len(dataKeys) > 0 {
		current = dataKeys[m.colCursor]
	}

	switch {
	case key.Matches(msg, keys.close):
		m.mode = modeBrowse

	case key.Matches(msg, keys.up):
		if m.colCursor > 0 {
			m.colCursor--
		}
	case key.Matches(msg, keys.down):
		if m.colCursor < len(dataKeys)-1 {
			m.colCursor++
		}

	case key.Matches(msg, keys.panelToggle):
		if current != "" {
			m.layout.SetVisibility(current, !m.layout.Visible(current))
		}

	case key.Matches(msg, keys.panelAll):
		m.toggleAllVisible(dataKeys)

	case key.Matches(msg, keys.panelLeft):
		if m.colCursor > 0 {
			m.layout.Reorder(current, dataKeys[m.colCursor-1])
			m.colCursor--
		}
	case key.Matches(msg, keys.panelRight):
		if current != "" && m.colCursor < len(dataKeys)-1 {
			m.layout.Reorder(current, dataKeys[m.colCursor+1])
			m.colCursor++
		}

	case key.Matches(msg, keys.panelWider):
		if current != "" {
			m.layout.SetWidth(current, m.layout.Width(current)+2*pxPerCell)
		}
	case key.Matches(msg, keys.panelSlimer):
		if current != "" {
			m.layout.SetWidth(current, m.layout.Width(current)-2*pxPerCell)
		}

	case key.Matches(msg, keys.panelSort):
		if field, ok := m.cfg.Registry.SortFieldFor(current); ok {
			m.query.ToggleSort(field)
			m.syncer.NoteChange(m.now())
			return m.fetch()
		}

	case key.Matches(msg, keys.reset):
		return m.resetLayout()
	}
	return m, nil
}

// toggleAllVisible is the panel's master checkbox: everything visible hides
// all, anything else shows all.
func (m *Model) toggleAllVisible(dataKeys []string) {
	allOn := true
	for _, k := range dataKeys {
		if !m.layout.Visible(k) {
			allOn = false
			break
		}
	}
	for _, k := range dataKeys {
		m.layout.SetVisibility(k, !allOn)
	}
}

// orderedDataKeys returns the data columns in current display order, the
// sequence the column panel edits.
func (m Model) orderedDataKeys() []string {
	var keys []string
	for _, k := range m.layout.Order() {
		if !m.cfg.Registry.IsPinned(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

func (m Model) updateMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if m.mode == modeColumns {
		return m, nil
	}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scroll = m.virt.ClampOffset(m.scroll-3, len(m.rows), m.bodyHeight())
	case msg.Button == tea.MouseButtonWheelDown:
		m.scroll = m.virt.ClampOffset(m.scroll+3, len(m.rows), m.bodyHeight())
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		return m.mousePress(msg.X, msg.Y)
	case msg.Action == tea.MouseActionMotion:
		m.mouseMotion(msg.X, msg.Y)
	case msg.Action == tea.MouseActionRelease:
		return m.mouseRelease(msg.X, msg.Y)
	}
	return m, nil
}

// mousePress starts gestures. On the header row a press lands either on a
// divider, starting a resize, or on a cell, arming a reorder drag that
// degrades to a sort click when released in place.
func (m Model) mousePress(x, y int) (Model, tea.Cmd) {
	if y == headerLine {
		if s, ok := m.hitDivider(x); ok && !m.cfg.Registry.IsPinned(s.key) {
			m.resizer.Begin(s.key, x*pxPerCell, m.layout.Width(s.key))
			return m, nil
		}
		s, ok := m.hitSpan(x)
		if !ok {
			return m, nil
		}
		if s.key == grid.KeySelect {
			m.sel.TogglePage(m.pageIDs())
			return m, nil
		}
		m.pressKey = s.key
		m.reorder.Begin(s.key)
		return m, nil
	}

	if row, ok := m.hitRow(y); ok {
		m.cursor = row
		m.ensureCursorVisible()
		if s, ok := m.hitSpan(x); ok && s.key == grid.KeySelect {
			m.sel.ToggleOne(m.rows[row].RowID())
		}
	}
	return m, nil
}

func (m *Model) mouseMotion(x, y int) {
	if m.resizer.Resizing() {
		if key, width, ok := m.resizer.Move(x * pxPerCell); ok {
			m.layout.SetWidth(key, width)
		}
		return
	}
	if m.reorder.Active() {
		if y == headerLine {
			if s, ok := m.hitSpan(x); ok {
				m.reorder.Over(s.key)
				return
			}
		}
		m.reorder.Over("")
	}
}

func (m Model) mouseRelease(x, y int) (Model, tea.Cmd) {
	if m.resizer.Resizing() {
		m.resizer.End()
		m.guardUntil = m.now().Add(guardWindow)
		m.pressKey = ""
		return m, nil
	}

	if m.reorder.Active() {
		pressed := m.pressKey
		m.pressKey = ""
		if from, to, ok := m.reorder.Drop(); ok {
			m.layout.Reorder(from, to)
			return m, nil
		}
		// Released where it started: that is a click, not a drag.
		if y == headerLine {
			if s, ok := m.hitSpan(x); ok && s.key == pressed {
				return m.sortClick(s.key)
			}
		}
		return m, nil
	}

	m.pressKey = ""
	if y == headerLine {
		if s, ok := m.hitSpan(x); ok {
			return m.sortClick(s.key)
		}
	}
	return m, nil
}

// sortClick toggles sort on a header cell. The first click after a resize
// release is swallowed by the guard; the next one sorts.
func (m Model) sortClick(key string) (Model, tea.Cmd) {
	if m.resizer.Guarding() {
		m.resizer.ClearGuard()
		if m.now().Before(m.guardUntil) {
			return m, nil
		}
	}
	field, ok := m.cfg.Registry.SortFieldFor(key)
	if !ok {
		return m, nil
	}
	m.query.ToggleSort(field)
	m.syncer.NoteChange(m.now())
	return m.fetch()
}
