package main

import "github.com/charmbracelet/lipgloss"

// Styles for catalog listings, draw-call output and the placement browser.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F5F5F5")).
			Background(lipgloss.Color("#2E7D6B")).
			Padding(0, 1)

	moduleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F4C95D"))

	externStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7FB7E6"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1B1B1B")).
			Background(lipgloss.Color("#F4C95D"))

	drawStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8D8A0"))

	okStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5FD068"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5534B"))

	hintStyle = lipgloss.NewStyle().
			Faint(true)
)
