package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmDialog asks before a destructive mutation runs. Only y confirms;
// esc and n dismiss.
type confirmDialog struct {
	title string
	body  string
	run   tea.Cmd
}

func (c *confirmDialog) update(msg tea.KeyMsg) (done bool, cmd tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		return true, c.run
	case "n", "N", "esc":
		return true, nil
	}
	return false, nil
}

func (c *confirmDialog) view(st styles, width int) string {
	var b strings.Builder
	b.WriteString(st.overlayTitle.Render(c.title))
	b.WriteString("\n\n")
	b.WriteString(c.body)
	b.WriteString("\n\n")
	b.WriteString(st.hint.Render("y confirm · n cancel"))
	return st.overlay.MaxWidth(width).Render(b.String())
}

// pickDialog offers a short list of actions, one of which runs on enter.
// The bulk menu uses it.
type pickDialog struct {
	title   string
	options []pickOption
	cursor  int
}

type pickOption struct {
	label string
	run   tea.Cmd
}

func (p *pickDialog) update(msg tea.KeyMsg) (done bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return true, nil
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.options)-1 {
			p.cursor++
		}
	case "enter":
		return true, p.options[p.cursor].run
	}
	return false, nil
}

func (p *pickDialog) view(st styles, width int) string {
	var b strings.Builder
	b.WriteString(st.overlayTitle.Render(p.title))
	b.WriteString("\n\n")
	for i, opt := range p.options {
		marker := "  "
		label := st.fieldLabel.Render(opt.label)
		if i == p.cursor {
			marker = "> "
			label = st.fieldFocus.Render(opt.label)
		}
		b.WriteString(marker)
		b.WriteString(label)
		b.WriteByte('\n')
	}
	b.WriteString("\n")
	b.WriteString(st.hint.Render("enter run · esc cancel"))
	return st.overlay.MaxWidth(width).Render(b.String())
}
