package ui

import "github.com/charmbracelet/lipgloss"

const (
	colorCyan = "#00A3E0"
	colorRed  = "#FF5555"
)

// StyleSet holds the lipgloss styles of the text output.
type StyleSet struct {
	Header  lipgloss.Style
	Name    lipgloss.Style
	Source  lipgloss.Style
	Deleted lipgloss.Style
	Failed  lipgloss.Style
}

func newStyleSet(r *lipgloss.Renderer) *StyleSet {
	return &StyleSet{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color(colorCyan)),
		Name:    r.NewStyle().Bold(true),
		Source:  r.NewStyle().Italic(true),
		Deleted: r.NewStyle().Bold(true).Foreground(lipgloss.Color(colorRed)),
		Failed:  r.NewStyle().Foreground(lipgloss.Color(colorRed)),
	}
}
