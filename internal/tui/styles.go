package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/openradius/radops/internal/tui/gridview"
)

// theme is the palette a style set is built from. Two are shipped; the
// active one comes from ui.theme in the configuration.
type theme struct {
	accent    lipgloss.Color
	accentDim lipgloss.Color
	text      lipgloss.Color
	muted     lipgloss.Color
	danger    lipgloss.Color
	success   lipgloss.Color
	surface   lipgloss.Color
}

func darkTheme() theme {
	return theme{
		accent:    lipgloss.Color("39"),
		accentDim: lipgloss.Color("31"),
		text:      lipgloss.Color("252"),
		muted:     lipgloss.Color("243"),
		danger:    lipgloss.Color("203"),
		success:   lipgloss.Color("42"),
		surface:   lipgloss.Color("236"),
	}
}

func lightTheme() theme {
	return theme{
		accent:    lipgloss.Color("26"),
		accentDim: lipgloss.Color("32"),
		text:      lipgloss.Color("235"),
		muted:     lipgloss.Color("245"),
		danger:    lipgloss.Color("160"),
		success:   lipgloss.Color("28"),
		surface:   lipgloss.Color("254"),
	}
}

type styles struct {
	tabActive, tabInactive lipgloss.Style
	tabsRow                lipgloss.Style
	statusBar, statusSeg   lipgloss.Style
	toastInfo, toastError  lipgloss.Style
	overlay, overlayTitle  lipgloss.Style
	fieldLabel, fieldFocus lipgloss.Style
	hint                   lipgloss.Style

	grid gridview.Styles
}

// newStyles builds the style set for a theme name; anything unknown falls
// back to dark.
func newStyles(name string) styles {
	t := darkTheme()
	if name == "light" {
		t = lightTheme()
	}
	base := lipgloss.NewStyle()

	return styles{
		tabActive:    base.Bold(true).Foreground(t.accent).Padding(0, 1),
		tabInactive:  base.Foreground(t.muted).Padding(0, 1),
		tabsRow:      base,
		statusBar:    base.Foreground(t.muted),
		statusSeg:    base.Foreground(t.muted).MarginRight(2),
		toastInfo:    base.Foreground(t.success).Bold(true),
		toastError:   base.Foreground(t.danger).Bold(true),
		overlay:      base.Border(lipgloss.RoundedBorder()).BorderForeground(t.accentDim).Padding(1, 2),
		overlayTitle: base.Bold(true).Foreground(t.accent),
		fieldLabel:   base.Foreground(t.muted),
		fieldFocus:   base.Foreground(t.accent).Bold(true),
		hint:         base.Foreground(t.muted).Faint(true),

		grid: gridview.Styles{
			Header:       base.Bold(true).Foreground(t.text),
			HeaderActive: base.Bold(true).Foreground(t.accent).Underline(true),
			HeaderDrag:   base.Bold(true).Foreground(t.text).Background(t.surface).Reverse(true),
			HeaderTarget: base.Bold(true).Foreground(t.accent).Reverse(true),
			Divider:      base.Foreground(t.muted).Faint(true),
			Row:          base.Foreground(t.text),
			RowCursor:    base.Foreground(t.text).Reverse(true),
			RowSelected:  base.Foreground(t.accent).Bold(true),
			Muted:        base.Foreground(t.muted),
			Error:        base.Foreground(t.danger),
		},
	}
}
