package output

import "github.com/charmbracelet/lipgloss"

// Styles are the lipgloss styles used by text-mode command output.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	// Status glyphs, pre-set so call sites render them with String().
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// DefaultStyles returns the standard command-output palette. Adaptive
// colors keep it readable on light and dark terminals.
func DefaultStyles() Styles {
	return Styles{
		Header1: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "39"}),
		Header2: lipgloss.NewStyle().Bold(true),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Faint(true),

		Success: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "42"}),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "214"}),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "196"}),

		StatusSuccess: lipgloss.NewStyle().SetString("✓").Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "42"}),
		StatusFailed:  lipgloss.NewStyle().SetString("✗").Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "196"}),
	}
}
