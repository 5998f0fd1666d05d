package common

import "github.com/charmbracelet/lipgloss"

var (
	// AppTitleStyle styles the application name in the status bar.
	AppTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6600"))

	// StatusBarStyle styles the bottom status bar.
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D"))

	// AccentStyle highlights live values such as the focus position.
	AccentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6DA95")).
			Bold(true)

	// WarnStyle marks suspended input.
	WarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EED49F")).
			Bold(true)

	// ErrorStyle styles error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ED8796")).
			Bold(true)

	// SpinnerStyle colours the loading spinner.
	SpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6600"))
)
