package gridview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/openradius/radops/internal/grid"
)

// Fixed line positions within the view's local frame. The app translates
// mouse coordinates into this frame before forwarding.
const (
	headerLine    = 0
	separatorLine = 1
	bodyTop       = 2
)

// Cell widths of the pinned pseudo-columns.
const (
	selectCells  = 3
	actionsCells = 7
)

// Styles are the lipgloss styles a grid view renders with. The app builds
// them from the active theme.
type Styles struct {
	Header       lipgloss.Style
	HeaderActive lipgloss.Style // sorted column
	HeaderDrag   lipgloss.Style // column being dragged or resized
	HeaderTarget lipgloss.Style // reorder drop target
	Divider      lipgloss.Style
	Row          lipgloss.Style
	RowCursor    lipgloss.Style
	RowSelected  lipgloss.Style
	Muted        lipgloss.Style
	Error        lipgloss.Style
}

// DefaultStyles returns a usable monochrome-ish style set; themes replace it.
func DefaultStyles() Styles {
	base := lipgloss.NewStyle()
	return Styles{
		Header:       base.Bold(true),
		HeaderActive: base.Bold(true).Underline(true),
		HeaderDrag:   base.Bold(true).Reverse(true),
		HeaderTarget: base.Bold(true).Underline(true).Reverse(true),
		Divider:      base.Faint(true),
		Row:          base,
		RowCursor:    base.Reverse(true),
		RowSelected:  base.Bold(true),
		Muted:        base.Faint(true),
		Error:        base.Foreground(lipgloss.Color("9")),
	}
}

// span is one rendered column: content cells [start, end), divider at end.
type span struct {
	key   string
	start int
	end   int
}

// spans lays the visible columns out left to right. Both rendering and
// mouse hit-testing read the same geometry.
func (m Model) spans() []span {
	x := 0
	keys := m.layout.VisibleKeys()
	out := make([]span, 0, len(keys))
	for _, key := range keys {
		w := m.cellWidth(key)
		out = append(out, span{key: key, start: x, end: x + w})
		x += w + 1
	}
	return out
}

// cellWidth converts a column's pixel width into cells.
func (m Model) cellWidth(key string) int {
	switch key {
	case grid.KeySelect:
		return selectCells
	case grid.KeyActions:
		return actionsCells
	}
	w := m.layout.Width(key) / pxPerCell
	if floor := grid.MinColumnWidth / pxPerCell; w < floor {
		w = floor
	}
	return w
}

// hitSpan resolves x to the column whose content cells contain it.
func (m Model) hitSpan(x int) (span, bool) {
	for _, s := range m.spans() {
		if x >= s.start && x < s.end {
			return s, true
		}
	}
	return span{}, false
}

// hitDivider resolves x to the column whose trailing divider it sits on,
// the grab handle for resizing.
func (m Model) hitDivider(x int) (span, bool) {
	for _, s := range m.spans() {
		if x == s.end {
			return s, true
		}
	}
	return span{}, false
}

// hitRow resolves a body y coordinate to a row index on the current page.
func (m Model) hitRow(y int) (int, bool) {
	if y < bodyTop || y >= bodyTop+m.bodyHeight() {
		return 0, false
	}
	row := m.scroll + (y - bodyTop)
	if row < 0 || row >= len(m.rows) {
		return 0, false
	}
	return row, true
}

func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteByte('\n')
	b.WriteString(m.viewSeparator())
	b.WriteByte('\n')
	if m.mode == modeColumns {
		b.WriteString(m.viewColumnsPanel())
	} else {
		b.WriteString(m.viewBody())
	}
	b.WriteString(m.viewStatus())
	b.WriteByte('\n')
	b.WriteString(m.viewInputLine())
	return b.String()
}

func (m Model) viewHeader() string {
	st := m.cfg.Styles
	var b strings.Builder
	for _, s := range m.fittingSpans() {
		text := padCell(m.headerText(s.key), s.end-s.start, m.headerAlign(s.key))
		b.WriteString(m.headerStyle(s.key, st).Render(text))
		b.WriteString(st.Divider.Render("│"))
	}
	return b.String()
}

// fittingSpans drops the columns that do not fully fit the view width,
// divider included, so rendered lines never need ANSI-aware clipping.
func (m Model) fittingSpans() []span {
	all := m.spans()
	out := all[:0:0]
	for _, s := range all {
		if s.end+1 > m.width {
			break
		}
		out = append(out, s)
	}
	return out
}

func (m Model) headerText(key string) string {
	switch key {
	case grid.KeySelect:
		switch m.sel.PageState(m.pageIDs()) {
		case grid.PageAll:
			return "[x]"
		case grid.PageSome:
			return "[~]"
		default:
			return "[ ]"
		}
	case grid.KeyActions:
		return ""
	}
	col, _ := m.cfg.Registry.Column(key)
	label := col.Label
	if field, ok := m.cfg.Registry.SortFieldFor(key); ok && field == m.query.SortField {
		if m.query.SortDirection == grid.Desc {
			label += " ↓"
		} else {
			label += " ↑"
		}
	}
	return label
}

func (m Model) headerAlign(key string) grid.Align {
	if col, ok := m.cfg.Registry.Column(key); ok {
		return col.Align
	}
	return grid.AlignStart
}

func (m Model) headerStyle(key string, st Styles) lipgloss.Style {
	switch {
	case m.reorder.Active() && m.reorder.Dragging() == key:
		return st.HeaderDrag
	case m.reorder.Active() && m.reorder.Target() == key:
		return st.HeaderTarget
	case m.resizer.Resizing() && m.resizer.Key() == key:
		return st.HeaderDrag
	}
	if field, ok := m.cfg.Registry.SortFieldFor(key); ok && field == m.query.SortField {
		return st.HeaderActive
	}
	return st.Header
}

func (m Model) viewSeparator() string {
	var b strings.Builder
	for _, s := range m.fittingSpans() {
		b.WriteString(strings.Repeat("─", s.end-s.start))
		b.WriteString("┼")
	}
	return m.cfg.Styles.Divider.Render(b.String())
}

func (m Model) viewBody() string {
	st := m.cfg.Styles
	bodyH := m.bodyHeight()
	var b strings.Builder

	switch {
	case m.loadErr != nil:
		b.WriteString(st.Error.Render(" " + m.loadErr.Error()))
		b.WriteByte('\n')
		return b.String() + strings.Repeat("\n", bodyH-1)
	case m.loading && len(m.rows) == 0:
		b.WriteString(st.Muted.Render(" loading…"))
		b.WriteByte('\n')
		return b.String() + strings.Repeat("\n", bodyH-1)
	case len(m.rows) == 0:
		msg := " no records"
		if m.query.Search != "" {
			msg = fmt.Sprintf(" no records match %q", m.query.Search)
		}
		b.WriteString(st.Muted.Render(msg))
		b.WriteByte('\n')
		return b.String() + strings.Repeat("\n", bodyH-1)
	}

	frame := m.virt.Frame(len(m.rows), m.scroll, bodyH)
	last := m.scroll + bodyH - 1
	if last > frame.End {
		last = frame.End
	}
	lines := 0
	for i := m.scroll; i <= last; i++ {
		b.WriteString(m.renderRow(m.rows[i], i))
		b.WriteByte('\n')
		lines++
	}
	for ; lines < bodyH; lines++ {
		b.WriteByte('\n')
	}
	return b.String()
}

func (m Model) renderRow(row grid.Row, idx int) string {
	st := m.cfg.Styles
	var b strings.Builder
	for _, s := range m.fittingSpans() {
		b.WriteString(padCell(m.cellText(row, s.key), s.end-s.start, m.headerAlign(s.key)))
		b.WriteString("│")
	}
	line := b.String()
	switch {
	case idx == m.cursor:
		return st.RowCursor.Render(line)
	case m.sel.Has(row.RowID()):
		return st.RowSelected.Render(line)
	default:
		return st.Row.Render(line)
	}
}

func (m Model) cellText(row grid.Row, key string) string {
	switch key {
	case grid.KeySelect:
		if m.sel.Has(row.RowID()) {
			return "[x]"
		}
		return "[ ]"
	case grid.KeyActions:
		return m.actionHints()
	}
	return row.Cell(key)
}

// actionHints lists the row action keys this table offers.
func (m Model) actionHints() string {
	cb := m.cfg.Callbacks
	var hints []string
	if cb.Edit != nil {
		hints = append(hints, "e")
	}
	if cb.Restore != nil && !m.defaultPartition() {
		hints = append(hints, "u")
	}
	if cb.Delete != nil {
		hints = append(hints, "d")
	}
	return strings.Join(hints, " ")
}

func (m Model) viewStatus() string {
	st := m.cfg.Styles
	parts := []string{m.Table()}
	if p := m.Partition(); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, fmt.Sprintf("%d records", m.totalRecords))
	parts = append(parts, fmt.Sprintf("page %d/%d", m.query.Page, m.totalPages))
	parts = append(parts, grid.FormatPageSize(m.query.PageSize)+"/page")
	if n := m.sel.Count(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if m.query.SortField != "" {
		dir := "↑"
		if m.query.SortDirection == grid.Desc {
			dir = "↓"
		}
		parts = append(parts, m.query.SortField+" "+dir)
	}
	if m.loading {
		parts = append(parts, "loading…")
	}
	return st.Muted.Render(clipLine(" "+strings.Join(parts, " · "), m.width))
}

func (m Model) viewInputLine() string {
	if m.mode == modeSearch || m.query.Search != "" {
		// The input scrolls within its own width; no clipping here.
		return " " + m.search.View()
	}
	hints := "/ search · ←/→ page · [/] size · space select · a page · c columns"
	if len(m.cfg.Partitions) > 1 {
		hints += " · t partition"
	}
	hints += " · ? help"
	return m.cfg.Styles.Muted.Render(clipLine(" "+hints, m.width))
}

func (m Model) viewColumnsPanel() string {
	st := m.cfg.Styles
	bodyH := m.bodyHeight()
	dataKeys := m.orderedDataKeys()

	var b strings.Builder
	b.WriteString(st.Header.Render(" column settings"))
	b.WriteByte('\n')
	lines := 1

	for i, key := range dataKeys {
		if lines >= bodyH-1 {
			break
		}
		col, _ := m.cfg.Registry.Column(key)
		mark := "[ ]"
		if m.layout.Visible(key) {
			mark = "[x]"
		}
		cursor := "  "
		if i == m.colCursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s %-18s %3d cells", cursor, mark, col.Label, m.cellWidth(key))
		if field, ok := m.cfg.Registry.SortFieldFor(key); ok && field == m.query.SortField {
			if m.query.SortDirection == grid.Desc {
				line += "  sorted ↓"
			} else {
				line += "  sorted ↑"
			}
		}
		if i == m.colCursor {
			b.WriteString(st.RowCursor.Render(clipLine(line, m.width)))
		} else {
			b.WriteString(clipLine(line, m.width))
		}
		b.WriteByte('\n')
		lines++
	}

	b.WriteString(st.Muted.Render(" space show/hide · a all · </> move · +/- width · s sort · R reset · esc close"))
	b.WriteByte('\n')
	lines++
	for ; lines < bodyH; lines++ {
		b.WriteByte('\n')
	}
	return b.String()
}

// padCell truncates and pads content to an exact cell count, wide runes
// accounted for.
func padCell(s string, width int, align grid.Align) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, "…")
	switch align {
	case grid.AlignEnd:
		return runewidth.FillLeft(s, width)
	case grid.AlignCenter:
		gap := width - runewidth.StringWidth(s)
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return runewidth.FillRight(s, width)
	}
}

// clipLine bounds a single line to the view width. Columns past the edge
// are dropped whole by the span loop; this trims the partial remainder.
func clipLine(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "")
}
