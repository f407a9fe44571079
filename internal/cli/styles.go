package cli

import "github.com/charmbracelet/lipgloss"

// Shared lipgloss styles for text output. Colors degrade gracefully on
// non-color terminals.
var (
	styleTitle   = lipgloss.NewStyle().Bold(true)
	styleMuted   = lipgloss.NewStyle().Faint(true)
	styleGood    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleBad     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleUnread  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleSection = lipgloss.NewStyle().Bold(true).Underline(true)
)

// urgencyStyle maps intervention urgency to a display style.
func urgencyStyle(urgency string) lipgloss.Style {
	switch urgency {
	case "critical", "high":
		return styleBad
	case "medium":
		return styleWarn
	default:
		return styleMuted
	}
}

// healthStyle maps sprint health status to a display style.
func healthStyle(status string) lipgloss.Style {
	switch status {
	case "ahead", "on_track":
		return styleGood
	case "at_risk":
		return styleWarn
	default:
		return styleBad
	}
}
