package tui

import "github.com/charmbracelet/lipgloss"

// Global styles used across views
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	originStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246")) // Lighter gray that works better in dark terminals

	// Slider
	knobStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	includedTickStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("120"))

	excludedTickStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	cutoffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("cyan")).
			Bold(true)

	fallbackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("yellow"))

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246"))

	dotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("120"))

	// Commit list
	itemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(lipgloss.Color("170")).
				Bold(true)

	// Story
	currentStepStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(lipgloss.Color("205")).
				PaddingLeft(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246")).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("green"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)
