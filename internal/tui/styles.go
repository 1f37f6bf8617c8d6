package tui

import "github.com/charmbracelet/lipgloss"

// Styles collects the lipgloss styles for the browse screen.
type Styles struct {
	Title       lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	Selected    lipgloss.Style
	Normal      lipgloss.Style
	Muted       lipgloss.Style
	Amount      lipgloss.Style
	Error       lipgloss.Style
	Footer      lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		TabActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 2),
		TabInactive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 2),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")),
		Normal: lipgloss.NewStyle(),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),
		Amount: lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		Footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1),
	}
}
