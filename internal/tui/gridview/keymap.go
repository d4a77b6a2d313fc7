package gridview

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up         key.Binding
	down       key.Binding
	pageUp     key.Binding
	pageDown   key.Binding
	top        key.Binding
	bottom     key.Binding
	prevPage   key.Binding
	nextPage   key.Binding
	sizeDown   key.Binding
	sizeUp     key.Binding
	search     key.Binding
	selectRow  key.Binding
	selectPage key.Binding
	columns    key.Binding
	partition  key.Binding
	refresh    key.Binding
	create     key.Binding
	edit       key.Binding
	del        key.Binding
	restore    key.Binding
	bulk       key.Binding
	yankRow    key.Binding
	yankLink   key.Binding
	reset      key.Binding

	// column panel
	panelToggle key.Binding
	panelLeft   key.Binding
	panelRight  key.Binding
	panelWider  key.Binding
	panelSlimer key.Binding
	panelSort   key.Binding
	panelAll    key.Binding
	close       key.Binding
}

// HelpBindings groups this view's bindings for a help overlay, roughly by
// concern: movement, query, selection and layout, record actions.
func (m Model) HelpBindings() [][]key.Binding {
	k := m.keys
	return [][]key.Binding{
		{k.up, k.down, k.pageUp, k.pageDown, k.top, k.bottom},
		{k.search, k.prevPage, k.nextPage, k.sizeDown, k.sizeUp},
		{k.selectRow, k.selectPage, k.columns, k.partition, k.refresh, k.reset},
		{k.create, k.edit, k.del, k.restore, k.bulk, k.yankRow, k.yankLink},
	}
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "row up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "row down"),
		),
		pageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		pageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first row"),
		),
		bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last row"),
		),
		prevPage: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev page"),
		),
		nextPage: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next page"),
		),
		sizeDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "smaller pages"),
		),
		sizeUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "larger pages"),
		),
		search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		selectRow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select row"),
		),
		selectPage: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select page"),
		),
		columns: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "columns"),
		),
		partition: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "active/trashed"),
		),
		refresh: key.NewBinding(
			key.WithKeys("f5", "ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		create: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit"),
		),
		del: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		restore: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "restore"),
		),
		bulk: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", "bulk action"),
		),
		yankRow: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy row"),
		),
		yankLink: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy link"),
		),
		reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset layout"),
		),

		panelToggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "show/hide"),
		),
		panelLeft: key.NewBinding(
			key.WithKeys("<", ","),
			key.WithHelp("<", "move left"),
		),
		panelRight: key.NewBinding(
			key.WithKeys(">", "."),
			key.WithHelp(">", "move right"),
		),
		panelWider: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "wider"),
		),
		panelSlimer: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "narrower"),
		),
		panelSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		panelAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle all"),
		),
		close: key.NewBinding(
			key.WithKeys("esc", "c"),
			key.WithHelp("esc", "close"),
		),
	}
}
