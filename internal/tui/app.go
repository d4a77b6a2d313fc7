// Package tui is the operator console: a tabbed shell over one grid view
// per table, plus the modal forms and dialogs that run mutations against
// the backend. All state lives on the single bubbletea update loop; I/O
// runs in commands and returns as messages.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/openradius/radops/internal/api"
	"github.com/openradius/radops/internal/grid"
	"github.com/openradius/radops/internal/tui/gridview"
)

// chromeTop is the line count above the grid area: the tab bar. Mouse
// coordinates shift by it before a view sees them.
const chromeTop = 1

// chromeBottom is the line count below the grid area: the app status bar.
const chromeBottom = 1

// tickEvery drives the console clock. Debounced preference saves, resize
// guard expiry, and toast expiry all ride on it.
const tickEvery = 250 * time.Millisecond

// Config assembles the console.
type Config struct {
	Deps     Deps
	Theme    string
	PageSize int
	Logger   *slog.Logger

	// InitialTable and InitialLink reproduce a deep-linked view on start.
	InitialTable string
	InitialLink  url.Values

	// WriteClipboard is the yank sink. Nil disables yanking; the program
	// wires the system clipboard in.
	WriteClipboard func(string) error

	// Now is the console clock, injectable for tests.
	Now func() time.Time
}

type tickMsg time.Time

// actionKind names a row or bulk action a grid view requested.
type actionKind int

const (
	actCreate actionKind = iota
	actEdit
	actDelete
	actRestore
	actBulk
)

// actionMsg is emitted by grid-view callbacks. The app reacts by opening
// the matching overlay; the mutation itself runs only after the operator
// confirms.
type actionMsg struct {
	table string
	kind  actionKind
	row   grid.Row
	ids   []string
}

// mutationMsg reports a single-record mutation's outcome.
type mutationMsg struct {
	table string
	text  string
	err   error
}

// bulkMsg reports a bulk mutation's outcome. Failed identifiers stay
// selected so the operator can retry them.
type bulkMsg struct {
	table  string
	action string
	result *api.BulkResult
	err    error
}

// clipboardMsg reports a yank's outcome.
type clipboardMsg struct {
	what string
	err  error
}

type appKeyMap struct {
	nextTab key.Binding
	prevTab key.Binding
	tabs    []key.Binding // 1..n direct jumps
	helpKey key.Binding
	quit    key.Binding
}

func newAppKeyMap(tables []string) appKeyMap {
	km := appKeyMap{
		nextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next table"),
		),
		prevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev table"),
		),
		helpKey: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
	for i, table := range tables {
		n := fmt.Sprintf("%d", i+1)
		km.tabs = append(km.tabs, key.NewBinding(
			key.WithKeys(n),
			key.WithHelp(n, table),
		))
	}
	return km
}

// helpMap feeds bubbles/help the app bindings followed by the active
// view's groups.
type helpMap struct {
	app  appKeyMap
	view gridview.Model
}

func (h helpMap) ShortHelp() []key.Binding {
	return []key.Binding{h.app.nextTab, h.app.helpKey, h.app.quit}
}

func (h helpMap) FullHelp() [][]key.Binding {
	groups := [][]key.Binding{
		{h.app.nextTab, h.app.prevTab, h.app.helpKey, h.app.quit},
	}
	return append(groups, h.view.HelpBindings()...)
}

// App is the root bubbletea model.
type App struct {
	cfg    Config
	styles styles
	keys   appKeyMap
	help   help.Model

	tables []string
	res    []resource
	views  []gridview.Model
	active int

	form    *form
	confirm *confirmDialog
	pick    *pickDialog

	showHelp bool

	toastText  string
	toastErr   bool
	toastUntil time.Time

	width  int
	height int
}

// New builds the console over the given backends.
func New(cfg Config) *App {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = 25
	}

	st := newStyles(cfg.Theme)
	res := resources(cfg.Deps, cfg.PageSize)

	a := &App{
		cfg:    cfg,
		styles: st,
		help:   help.New(),
		res:    res,
	}
	a.help.ShowAll = true

	for _, r := range res {
		r := r
		table := r.registry.Table()
		a.tables = append(a.tables, table)

		gcfg := gridview.Config{
			Registry:        r.registry,
			Fetch:           r.fetch,
			Prefs:           cfg.Deps.Client.Preferences(),
			Invalidate:      r.invalidate,
			Partitions:      r.partitions,
			DefaultPageSize: r.pageSize,
			Styles:          st.grid,
			Logger:          cfg.Logger.With("table", table),
			Now:             cfg.Now,
			Callbacks:       a.callbacksFor(table, r),
		}
		a.views = append(a.views, gridview.New(gcfg))
	}
	a.keys = newAppKeyMap(a.tables)

	if cfg.InitialTable != "" {
		for i, t := range a.tables {
			if t == cfg.InitialTable {
				a.active = i
				break
			}
		}
	}
	return a
}

// callbacksFor wires a table's actions. Callbacks emit messages; the
// overlays they open run the mutations.
func (a *App) callbacksFor(table string, r resource) gridview.Callbacks {
	emit := func(kind actionKind) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return actionMsg{table: table, kind: kind} }
		}
	}
	emitRow := func(kind actionKind) func(grid.Row) tea.Cmd {
		return func(row grid.Row) tea.Cmd {
			return func() tea.Msg { return actionMsg{table: table, kind: kind, row: row} }
		}
	}

	cb := gridview.Callbacks{
		YankRow:  a.yankRowCmd,
		YankLink: a.yankLinkCmd(table),
	}
	if r.creatable {
		cb.Create = emit(actCreate)
	}
	if r.editable {
		cb.Edit = emitRow(actEdit)
	}
	if r.deletable {
		cb.Delete = emitRow(actDelete)
	}
	if r.restorable {
		cb.Restore = emitRow(actRestore)
	}
	if r.bulk {
		cb.Bulk = func(ids []string) tea.Cmd {
			return func() tea.Msg { return actionMsg{table: table, kind: actBulk, ids: ids} }
		}
	}
	return cb
}

func (a *App) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(a.views)+1)
	for i := range a.views {
		if i == a.active && len(a.cfg.InitialLink) > 0 {
			// ApplyLink fetches with the decoded query, replacing the
			// fetch Init would have issued after the preference load.
			// Preferences still load first so the layout merges.
			cmds = append(cmds, a.views[i].Init())
			view, cmd := a.views[i].ApplyLink(a.cfg.InitialLink)
			a.views[i] = view
			cmds = append(cmds, cmd)
			continue
		}
		cmds = append(cmds, a.views[i].Init())
	}
	cmds = append(cmds, a.scheduleTick())
	return tea.Batch(cmds...)
}

func (a *App) scheduleTick() tea.Cmd {
	return tea.Tick(tickEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width - 4
		gridH := msg.Height - chromeTop - chromeBottom
		if gridH < 1 {
			gridH = 1
		}
		for i := range a.views {
			a.views[i] = a.views[i].SetSize(msg.Width, gridH)
		}
		return a, nil

	case tickMsg:
		now := time.Time(msg)
		if a.toastText != "" && now.After(a.toastUntil) {
			a.toastText = ""
		}
		var cmds []tea.Cmd
		for i := range a.views {
			view, cmd := a.views[i].Tick(now)
			a.views[i] = view
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		cmds = append(cmds, a.scheduleTick())
		return a, tea.Batch(cmds...)

	case gridview.StatusMsg:
		a.setToast(msg.Text, msg.Err)
		return a, nil

	case actionMsg:
		return a.openAction(msg)

	case mutationMsg:
		if msg.err != nil {
			a.setToast(msg.text+" failed: "+msg.err.Error(), true)
			return a, nil
		}
		a.setToast(msg.text, false)
		return a, a.reloadTable(msg.table)

	case bulkMsg:
		return a.applyBulk(msg)

	case clipboardMsg:
		if msg.err != nil {
			a.setToast("copy failed: "+msg.err.Error(), true)
		} else {
			a.setToast(msg.what+" copied", false)
		}
		return a, nil

	case tea.MouseMsg:
		if a.overlayActive() {
			return a, nil
		}
		msg.Y -= chromeTop
		view, cmd := a.views[a.active].Update(msg)
		a.views[a.active] = view
		return a, cmd

	case tea.KeyMsg:
		return a.updateKeys(msg)
	}

	// Asynchronous view messages route by table, whichever tab is active;
	// a fetch for a background tab must land in that tab.
	if tm, ok := msg.(gridview.TableMsg); ok {
		for i := range a.views {
			if a.views[i].Table() == tm.GridTable() {
				view, cmd := a.views[i].Update(msg)
				a.views[i] = view
				return a, cmd
			}
		}
	}
	return a, nil
}

func (a *App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Overlays own the keyboard while open.
	switch {
	case a.form != nil:
		done, cmd := a.form.update(msg)
		if done {
			a.form = nil
		}
		return a, cmd
	case a.confirm != nil:
		done, cmd := a.confirm.update(msg)
		if done {
			a.confirm = nil
		}
		return a, cmd
	case a.pick != nil:
		done, cmd := a.pick.update(msg)
		if done {
			a.pick = nil
		}
		return a, cmd
	case a.showHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.showHelp = false
		}
		return a, nil
	}

	inputActive := a.views[a.active].InputActive()
	if !inputActive {
		switch {
		case key.Matches(msg, a.keys.quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.helpKey):
			a.showHelp = true
			return a, nil
		case key.Matches(msg, a.keys.nextTab):
			return a, a.switchTab((a.active + 1) % len(a.views))
		case key.Matches(msg, a.keys.prevTab):
			return a, a.switchTab((a.active + len(a.views) - 1) % len(a.views))
		}
		for i, b := range a.keys.tabs {
			if key.Matches(msg, b) {
				return a, a.switchTab(i)
			}
		}
	} else if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	view, cmd := a.views[a.active].Update(msg)
	a.views[a.active] = view
	return a, cmd
}

func (a *App) switchTab(i int) tea.Cmd {
	a.active = i
	return nil
}

func (a *App) overlayActive() bool {
	return a.form != nil || a.confirm != nil || a.pick != nil || a.showHelp
}

func (a *App) setToast(text string, isErr bool) {
	text = strings.TrimSpace(text)
	a.toastText = text
	a.toastErr = isErr
	a.toastUntil = a.cfg.Now().Add(4 * time.Second)
}

// reloadTable refreshes a table after a mutation, dropping any client-mode
// cache so the re-read sees the change.
func (a *App) reloadTable(table string) tea.Cmd {
	for i := range a.views {
		if a.views[i].Table() == table {
			view, cmd := a.views[i].Reload(true)
			a.views[i] = view
			return cmd
		}
	}
	return nil
}

func (a *App) viewFor(table string) *gridview.Model {
	for i := range a.views {
		if a.views[i].Table() == table {
			return &a.views[i]
		}
	}
	return nil
}

// openAction translates a grid callback into the overlay that runs it.
func (a *App) openAction(msg actionMsg) (tea.Model, tea.Cmd) {
	switch msg.table {
	case TableSubscribers:
		return a.openSubscriberAction(msg)
	case TableRadiusUsers:
		return a.openRadiusAction(msg)
	}
	return a, nil
}

func (a *App) openSubscriberAction(msg actionMsg) (tea.Model, tea.Cmd) {
	client := a.cfg.Deps.Client
	switch msg.kind {
	case actCreate:
		a.form = subscriberForm(nil, func(in api.SubscriberInput) tea.Cmd {
			return func() tea.Msg {
				_, err := client.CreateSubscriber(context.Background(), in)
				return mutationMsg{table: TableSubscribers, text: "subscriber " + in.Username + " created", err: err}
			}
		})
	case actEdit:
		rec, ok := rowSubscriber(msg.row)
		if !ok {
			return a, nil
		}
		a.form = subscriberForm(&rec, func(in api.SubscriberInput) tea.Cmd {
			return func() tea.Msg {
				_, err := client.UpdateSubscriber(context.Background(), rec.ID, in)
				return mutationMsg{table: TableSubscribers, text: "subscriber " + in.Username + " saved", err: err}
			}
		})
	case actDelete:
		rec, ok := rowSubscriber(msg.row)
		if !ok {
			return a, nil
		}
		a.confirm = &confirmDialog{
			title: "Delete subscriber",
			body:  fmt.Sprintf("Move %s (%s) to trash?", rec.Username, rec.Name()),
			run: func() tea.Msg {
				err := client.DeleteSubscriber(context.Background(), rec.ID)
				return mutationMsg{table: TableSubscribers, text: "subscriber " + rec.Username + " trashed", err: err}
			},
		}
	case actRestore:
		rec, ok := rowSubscriber(msg.row)
		if !ok {
			return a, nil
		}
		a.confirm = &confirmDialog{
			title: "Restore subscriber",
			body:  fmt.Sprintf("Restore %s from trash?", rec.Username),
			run: func() tea.Msg {
				err := client.RestoreSubscriber(context.Background(), rec.ID)
				return mutationMsg{table: TableSubscribers, text: "subscriber " + rec.Username + " restored", err: err}
			},
		}
	case actBulk:
		a.pick = a.subscriberBulkMenu(msg.ids)
	}
	return a, nil
}

// subscriberBulkMenu offers the actions valid for the current partition:
// trash plus enable/disable on active records, restore on trashed ones.
func (a *App) subscriberBulkMenu(ids []string) *pickDialog {
	client := a.cfg.Deps.Client
	view := a.viewFor(TableSubscribers)
	trashed := view != nil && view.Partition() == string(api.StatusTrashed)

	run := func(action string) tea.Cmd {
		return func() tea.Msg {
			res, err := client.BulkSubscribers(context.Background(), action, ids)
			return bulkMsg{table: TableSubscribers, action: action, result: res, err: err}
		}
	}

	n := len(ids)
	p := &pickDialog{title: fmt.Sprintf("Bulk action · %d selected", n)}
	if trashed {
		p.options = []pickOption{
			{label: fmt.Sprintf("Restore %d subscribers", n), run: run(api.BulkRestore)},
			{label: fmt.Sprintf("Delete %d subscribers", n), run: run(api.BulkDelete)},
		}
	} else {
		p.options = []pickOption{
			{label: fmt.Sprintf("Enable %d subscribers", n), run: run(api.BulkEnable)},
			{label: fmt.Sprintf("Disable %d subscribers", n), run: run(api.BulkDisable)},
			{label: fmt.Sprintf("Trash %d subscribers", n), run: run(api.BulkDelete)},
		}
	}
	return p
}

func (a *App) openRadiusAction(msg actionMsg) (tea.Model, tea.Cmd) {
	client := a.cfg.Deps.Client
	switch msg.kind {
	case actEdit:
		rec, ok := rowRadiusUser(msg.row)
		if !ok {
			return a, nil
		}
		a.form = radiusUserForm(rec, func(in api.RadiusUserInput) tea.Cmd {
			return func() tea.Msg {
				_, err := client.UpdateRadiusUser(context.Background(), rec.ID, in)
				return mutationMsg{table: TableRadiusUsers, text: "radius user " + in.Username + " saved", err: err}
			}
		})
	case actDelete:
		rec, ok := rowRadiusUser(msg.row)
		if !ok {
			return a, nil
		}
		a.confirm = &confirmDialog{
			title: "Delete radius user",
			body:  fmt.Sprintf("Delete %s permanently?", rec.Username),
			run: func() tea.Msg {
				err := client.DeleteRadiusUser(context.Background(), rec.ID)
				return mutationMsg{table: TableRadiusUsers, text: "radius user " + rec.Username + " deleted", err: err}
			},
		}
	}
	return a, nil
}

// applyBulk surfaces a bulk outcome. Succeeded identifiers leave the
// selection; failed ones stay selected for retry, and the toast names the
// failure count.
func (a *App) applyBulk(msg bulkMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.setToast("bulk "+msg.action+" failed: "+msg.err.Error(), true)
		return a, nil
	}
	view := a.viewFor(msg.table)
	if view == nil || msg.result == nil {
		return a, nil
	}
	view.RemoveFromSelection(msg.result.Succeeded)

	if len(msg.result.Failed) > 0 {
		ids := make([]string, 0, len(msg.result.Failed))
		for id := range msg.result.Failed {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		a.setToast(fmt.Sprintf("bulk %s: %d done, %d failed (%s)",
			msg.action, len(msg.result.Succeeded), len(ids), strings.Join(ids, ", ")), true)
	} else {
		a.setToast(fmt.Sprintf("bulk %s: %d done", msg.action, len(msg.result.Succeeded)), false)
	}
	return a, a.reloadTable(msg.table)
}

// yankRowCmd copies the cursor row as JSON.
func (a *App) yankRowCmd(row grid.Row) tea.Cmd {
	write := a.cfg.WriteClipboard
	if write == nil {
		return nil
	}
	return func() tea.Msg {
		data, err := json.MarshalIndent(row, "", "  ")
		if err == nil {
			err = write(string(data))
		}
		return clipboardMsg{what: "row", err: err}
	}
}

// yankLinkCmd copies a command line that reopens the current view.
func (a *App) yankLinkCmd(table string) func(url.Values) tea.Cmd {
	write := a.cfg.WriteClipboard
	return func(link url.Values) tea.Cmd {
		if write == nil {
			return nil
		}
		cmdline := ConsoleCommand(table, link)
		return func() tea.Msg {
			return clipboardMsg{what: "link", err: write(cmdline)}
		}
	}
}

// linkFlags maps deep-link parameter names to the console flag spellings,
// so a copied command line parses back through the same decode path.
var linkFlags = map[string]string{
	grid.ParamPage:          "page",
	grid.ParamPageSize:      "page-size",
	grid.ParamSearch:        "search",
	grid.ParamSortField:     "sort-field",
	grid.ParamSortDirection: "sort-direction",
	gridview.ParamStatus:    "status",
}

// ConsoleCommand renders deep-link parameters as the radops invocation
// that reproduces the view. Keys are emitted in stable order.
func ConsoleCommand(table string, v url.Values) string {
	parts := []string{"radops", "console", table}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		flag, ok := linkFlags[k]
		if !ok {
			continue
		}
		val := v.Get(k)
		if strings.ContainsAny(val, " \t\"'") {
			val = fmt.Sprintf("%q", val)
		}
		parts = append(parts, "--"+flag+"="+val)
	}
	return strings.Join(parts, " ")
}

func (a *App) View() string {
	if a.width <= 0 || a.height <= 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(a.viewTabs())
	b.WriteByte('\n')

	switch {
	case a.showHelp:
		b.WriteString(a.viewHelp())
	case a.form != nil:
		b.WriteString(a.form.view(a.styles, a.width))
	case a.confirm != nil:
		b.WriteString(a.confirm.view(a.styles, a.width))
	case a.pick != nil:
		b.WriteString(a.pick.view(a.styles, a.width))
	default:
		b.WriteString(a.views[a.active].View())
	}
	b.WriteByte('\n')
	b.WriteString(a.viewStatusBar())
	return b.String()
}

func (a *App) viewTabs() string {
	st := a.styles
	var cells []string
	for i, table := range a.tables {
		label := fmt.Sprintf("%d %s", i+1, table)
		if i == a.active {
			cells = append(cells, st.tabActive.Render(label))
		} else {
			cells = append(cells, st.tabInactive.Render(label))
		}
	}
	return st.tabsRow.Render(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
}

func (a *App) viewStatusBar() string {
	st := a.styles
	if a.toastText != "" {
		style := st.toastInfo
		if a.toastErr {
			style = st.toastError
		}
		return " " + style.Render(a.toastText)
	}
	return " " + st.statusBar.Render("tab switch · ? help · q quit")
}

func (a *App) viewHelp() string {
	hm := helpMap{app: a.keys, view: a.views[a.active]}
	body := a.styles.overlayTitle.Render("Keys") + "\n\n" + a.help.View(hm)
	return a.styles.overlay.MaxWidth(a.width).Render(body)
}
