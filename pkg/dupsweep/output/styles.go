package output

import "github.com/charmbracelet/lipgloss"

// Palette for the pretty formatter, in the ANSI 256-color range.
var (
	accent = lipgloss.Color("39")  // digests, titles and the summary frame
	warm   = lipgloss.Color("214") // reclaimable space and warnings
	dim    = lipgloss.Color("245") // labels and secondary text
	bright = lipgloss.Color("255") // values and paths
)

var (
	summaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1).
			MarginBottom(1)

	totalsBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dim).
			Padding(0, 1).
			MarginTop(1)

	indexStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	digestStyle = lipgloss.NewStyle().Foreground(accent)
	labelStyle  = lipgloss.NewStyle().Foreground(dim)
	valueStyle  = lipgloss.NewStyle().Foreground(bright)
	wastedStyle = lipgloss.NewStyle().Bold(true).Foreground(warm)
	warnStyle   = lipgloss.NewStyle().Foreground(warm)
)
