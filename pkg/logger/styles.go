package logger

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	charm "github.com/charmbracelet/log"
)

const (
	colorCyan   = "#00A3E0"
	colorGreen  = "#00A700"
	colorYellow = "#FFD700"
	colorRed    = "#FF5555"
	colorGray   = "#808080"
)

// getLogStyles returns the level and key styles used by every logger we create.
func getLogStyles() *charm.Styles {
	styles := charm.DefaultStyles()

	levelStyle := func(label string, color string) lipgloss.Style {
		return lipgloss.NewStyle().
			SetString(strings.ToUpper(label)).
			Bold(true).
			MaxWidth(4).
			Foreground(lipgloss.Color(color))
	}

	styles.Levels[TraceLevel] = levelStyle("trce", colorGray)
	styles.Levels[charm.DebugLevel] = levelStyle("debu", colorCyan)
	styles.Levels[charm.InfoLevel] = levelStyle("info", colorGreen)
	styles.Levels[charm.WarnLevel] = levelStyle("warn", colorYellow)
	styles.Levels[charm.ErrorLevel] = levelStyle("erro", colorRed)

	styles.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed))
	styles.Values["err"] = lipgloss.NewStyle().Bold(true)
	styles.Keys["host"] = lipgloss.NewStyle().Foreground(lipgloss.Color(colorCyan))
	styles.Keys["file"] = lipgloss.NewStyle().Foreground(lipgloss.Color(colorCyan))
	styles.Keys["variable"] = lipgloss.NewStyle().Foreground(lipgloss.Color(colorCyan))

	return styles
}
