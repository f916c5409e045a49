package tui

import "github.com/charmbracelet/lipgloss"

// Nebula brand colors, same palette the web client used for its
// gradient bars.
const (
	colorPink   = lipgloss.Color("#ff0057")
	colorOrange = lipgloss.Color("#ff7a00")
	colorYellow = lipgloss.Color("#ffd000")
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorGray   = lipgloss.Color("#9ca3af")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow).
			Background(colorPink).
			Padding(0, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorOrange)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPink)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorRed)

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(colorGreen).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorOrange).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			MarginTop(1)
)
