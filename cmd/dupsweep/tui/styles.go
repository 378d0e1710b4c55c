// Package tui draws the one-line scanning indicator shown on stderr while
// resolve walks and hashes the tree.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	violet = lipgloss.Color("#7D56F4")
	cyan   = lipgloss.Color("#00D9FF")
	red    = lipgloss.Color("#DC3545")
	grey   = lipgloss.Color("#666666")

	spinnerStyle   = lipgloss.NewStyle().Foreground(violet)
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(violet)
	valueStyle     = lipgloss.NewStyle().Foreground(cyan)
	mutedTextStyle = lipgloss.NewStyle().Foreground(grey)
	errorTextStyle = lipgloss.NewStyle().Foreground(red)
)

// truncatePath keeps the tail of path, marking the cut with "...".
func truncatePath(path string, width int) string {
	switch {
	case len(path) <= width:
		return path
	case width <= 3:
		return path[:width]
	default:
		return "..." + path[len(path)-width+3:]
	}
}
