package tui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

// Indicator runs a ScanModel program on its own goroutine.
// It never reads input, so stdin stays free for the resolver.
type Indicator struct {
	program *tea.Program
	done    chan struct{}
}

// StartIndicator begins drawing the scanning line for root on out.
func StartIndicator(out io.Writer, root string) *Indicator {
	ind := &Indicator{
		program: tea.NewProgram(NewScanModel(root),
			tea.WithOutput(out),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
		done: make(chan struct{}),
	}

	go func() {
		defer close(ind.done)
		_, _ = ind.program.Run()
	}()

	return ind
}

// Update forwards scan progress. It is safe to call from any goroutine.
func (i *Indicator) Update(p types.ScanProgress) {
	i.program.Send(ProgressMsg(p))
}

// Stop finishes the indicator and waits until the terminal is restored.
func (i *Indicator) Stop(err error) {
	i.program.Send(ScanDoneMsg{Err: err})
	<-i.done
}
