package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

// minPathWidth keeps the root readable on narrow terminals.
const minPathWidth = 16

// ScanModel renders a one-line scanning indicator.
type ScanModel struct {
	progress  types.ScanProgress
	spinner   spinner.Model
	root      string
	startTime time.Time
	width     int
	done      bool
	err       error
}

// ProgressMsg is sent when scan progress is updated.
type ProgressMsg types.ScanProgress

// ScanDoneMsg is sent when the walk has finished. Err is nil on success.
type ScanDoneMsg struct {
	Err error
}

// NewScanModel creates a new scanning model for root.
func NewScanModel(root string) ScanModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = spinnerStyle

	return ScanModel{
		spinner:   s,
		root:      root,
		startTime: time.Now(),
		width:     80,
	}
}

// Init starts the spinner.
func (m ScanModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages for the scanning model.
func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case ProgressMsg:
		m.progress = types.ScanProgress(msg)
		return m, nil

	case ScanDoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the scanning line. It is empty once the scan succeeded so
// the indicator leaves nothing behind.
func (m ScanModel) View() string {
	if m.done {
		if m.err != nil {
			return errorTextStyle.Render(fmt.Sprintf("  Scan failed: %v", m.err)) + "\n"
		}
		return ""
	}

	sep := mutedTextStyle.Render(" · ")
	stats := strings.Join([]string{
		valueStyle.Render(humanize.Comma(m.progress.DirsScanned)) + " dirs",
		valueStyle.Render(humanize.Comma(m.progress.FilesHashed)) + " files",
		valueStyle.Render(humanize.IBytes(uint64(max(m.progress.BytesHashed, 0)))) + " hashed",
		formatDuration(time.Since(m.startTime)),
	}, sep)

	pathWidth := max(m.width/3, minPathWidth)
	return fmt.Sprintf("  %s %s %s  %s\n",
		m.spinner.View(),
		titleStyle.Render("Scanning"),
		truncatePath(m.root, pathWidth),
		stats)
}

// formatDuration formats a duration as M:SS.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}

// IsDone returns true if the scan is complete.
func (m ScanModel) IsDone() bool {
	return m.done
}

// Error returns any error from the scan.
func (m ScanModel) Error() error {
	return m.err
}
