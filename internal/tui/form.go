package tui

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/openradius/radops/internal/api"
	"github.com/openradius/radops/internal/grid"
)

// formField is one text entry of a record form.
type formField struct {
	key   string
	label string
	input textinput.Model
}

// form is the modal record editor. Fields come first in focus order, the
// toggle last. Submit validates, then hands the collected values to the
// closure the opener installed.
type form struct {
	title  string
	fields []formField

	toggleLabel string
	toggleOn    bool
	hasToggle   bool

	focus int // 0..len(fields)-1 fields, len(fields) the toggle
	err   string

	validate func(values map[string]string) error
	submit   func(values map[string]string, toggleOn bool) tea.Cmd
}

func newField(key, label, value string, limit int) formField {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = limit
	in.SetValue(value)
	return formField{key: key, label: label, input: in}
}

func (f *form) focusCurrent() tea.Cmd {
	for i := range f.fields {
		if i == f.focus {
			continue
		}
		f.fields[i].input.Blur()
	}
	if f.focus < len(f.fields) {
		return f.fields[f.focus].input.Focus()
	}
	return nil
}

func (f *form) lastFocus() int {
	if f.hasToggle {
		return len(f.fields)
	}
	return len(f.fields) - 1
}

func (f *form) values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, fld := range f.fields {
		out[fld.key] = strings.TrimSpace(fld.input.Value())
	}
	return out
}

// update consumes a key message. done reports the form closed; cmd carries
// the mutation when it closed by submitting.
func (f *form) update(msg tea.KeyMsg) (done bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc":
		return true, nil
	case "tab", "down":
		f.focus++
		if f.focus > f.lastFocus() {
			f.focus = 0
		}
		return false, f.focusCurrent()
	case "shift+tab", "up":
		f.focus--
		if f.focus < 0 {
			f.focus = f.lastFocus()
		}
		return false, f.focusCurrent()
	case "ctrl+s":
		return f.trySubmit()
	case "enter":
		if f.focus == f.lastFocus() {
			return f.trySubmit()
		}
		f.focus++
		return false, f.focusCurrent()
	case " ":
		if f.hasToggle && f.focus == len(f.fields) {
			f.toggleOn = !f.toggleOn
			return false, nil
		}
	}

	if f.focus < len(f.fields) {
		var inputCmd tea.Cmd
		f.fields[f.focus].input, inputCmd = f.fields[f.focus].input.Update(msg)
		return false, inputCmd
	}
	return false, nil
}

func (f *form) trySubmit() (bool, tea.Cmd) {
	vals := f.values()
	if f.validate != nil {
		if err := f.validate(vals); err != nil {
			f.err = err.Error()
			return false, nil
		}
	}
	return true, f.submit(vals, f.toggleOn)
}

func (f *form) view(st styles, width int) string {
	var b strings.Builder
	b.WriteString(st.overlayTitle.Render(f.title))
	b.WriteString("\n\n")
	for i, fld := range f.fields {
		label := st.fieldLabel.Render(fld.label)
		if i == f.focus {
			label = st.fieldFocus.Render(fld.label)
		}
		b.WriteString(fmt.Sprintf("%-24s %s\n", label, fld.input.View()))
	}
	if f.hasToggle {
		mark := "[ ]"
		if f.toggleOn {
			mark = "[x]"
		}
		label := st.fieldLabel.Render(f.toggleLabel)
		if f.focus == len(f.fields) {
			label = st.fieldFocus.Render(f.toggleLabel)
		}
		b.WriteString(fmt.Sprintf("%-24s %s\n", label, mark))
	}
	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(st.grid.Error.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(st.hint.Render("enter/ctrl+s save · tab next · esc cancel"))
	return st.overlay.MaxWidth(width).Render(b.String())
}

// subscriberForm builds the create/edit form for a subscriber. existing is
// nil for create.
func subscriberForm(existing *api.Subscriber, submit func(api.SubscriberInput) tea.Cmd) *form {
	var cur api.Subscriber
	title := "New subscriber"
	if existing != nil {
		cur = *existing
		title = "Edit " + cur.Username
	}

	f := &form{
		title: title,
		fields: []formField{
			newField("username", "Username", cur.Username, 64),
			newField("first", "First name", cur.FirstName, 64),
			newField("last", "Last name", cur.LastName, 64),
			newField("email", "Email", cur.Email, 128),
			newField("plan", "Plan", cur.Plan, 64),
			newField("balance", "Balance", trimFloat(cur.Balance, existing != nil), 16),
		},
		toggleLabel: "Enabled",
		toggleOn:    existing == nil || cur.Enabled,
		hasToggle:   true,
	}
	f.validate = func(v map[string]string) error {
		if v["username"] == "" {
			return fmt.Errorf("username is required")
		}
		if v["email"] != "" {
			if _, err := mail.ParseAddress(v["email"]); err != nil {
				return fmt.Errorf("email %q is not valid", v["email"])
			}
		}
		if v["balance"] != "" {
			if _, err := strconv.ParseFloat(v["balance"], 64); err != nil {
				return fmt.Errorf("balance must be a number")
			}
		}
		return nil
	}
	f.submit = func(v map[string]string, on bool) tea.Cmd {
		balance, _ := strconv.ParseFloat(v["balance"], 64)
		return submit(api.SubscriberInput{
			Username:  v["username"],
			FirstName: v["first"],
			LastName:  v["last"],
			Email:     v["email"],
			Plan:      v["plan"],
			Enabled:   on,
			Balance:   balance,
		})
	}
	return f
}

// radiusUserForm builds the edit form for a RADIUS user row.
func radiusUserForm(cur api.RadiusUser, submit func(api.RadiusUserInput) tea.Cmd) *form {
	expires := ""
	if !cur.ExpiresAt.IsZero() {
		expires = cur.ExpiresAt.Format("2006-01-02")
	}
	f := &form{
		title: "Edit " + cur.Username,
		fields: []formField{
			newField("username", "Username", cur.Username, 64),
			newField("group", "Group", cur.GroupName, 64),
			newField("framedIp", "Framed IP", cur.FramedIP, 64),
			newField("expires", "Expires (YYYY-MM-DD)", expires, 10),
		},
		toggleLabel: "Enabled",
		toggleOn:    cur.Enabled,
		hasToggle:   true,
	}
	f.validate = func(v map[string]string) error {
		if v["username"] == "" {
			return fmt.Errorf("username is required")
		}
		if v["expires"] != "" {
			if _, err := time.Parse("2006-01-02", v["expires"]); err != nil {
				return fmt.Errorf("expires must be YYYY-MM-DD")
			}
		}
		return nil
	}
	f.submit = func(v map[string]string, on bool) tea.Cmd {
		var exp time.Time
		if v["expires"] != "" {
			exp, _ = time.Parse("2006-01-02", v["expires"])
		}
		return submit(api.RadiusUserInput{
			Username:  v["username"],
			GroupName: v["group"],
			FramedIP:  v["framedIp"],
			Enabled:   on,
			ExpiresAt: exp,
		})
	}
	return f
}

// rowSubscriber recovers the typed record behind a grid row. Rows for the
// subscribers table are api.Subscriber values.
func rowSubscriber(row grid.Row) (api.Subscriber, bool) {
	s, ok := row.(api.Subscriber)
	return s, ok
}

func rowRadiusUser(row grid.Row) (api.RadiusUser, bool) {
	u, ok := row.(api.RadiusUser)
	return u, ok
}

func trimFloat(v float64, keep bool) string {
	if !keep {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
