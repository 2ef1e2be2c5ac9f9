package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#3C6E71")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Width(7).
			Foreground(lipgloss.Color("245"))

	focusedLabelStyle = labelStyle.
				Foreground(lipgloss.Color("#7FB7BE")).
				Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E06C75"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98C379"))

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3C6E71")).
			Padding(1, 2)
)
