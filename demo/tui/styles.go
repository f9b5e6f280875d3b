package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
const (
	colorAccent    = "#5F5FD7"
	colorSuccess   = "#2AA876"
	colorError     = "#D75F5F"
	colorMuted     = "#6C6C6C"
	colorHighlight = "#FAFAFA"
)

// Styles for the demo client
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorAccent)).
			MarginTop(1).
			MarginBottom(1)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorMuted))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorAccent)).
			Padding(1, 2)

	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorHighlight)).
			Background(lipgloss.Color(colorAccent)).
			Padding(0, 1)
)
