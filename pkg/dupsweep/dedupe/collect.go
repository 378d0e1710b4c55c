package dedupe

import (
	"context"
	"errors"
	"time"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/logging"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

var logger = logging.Get("dedupe")

// Options controls how failed entries are treated.
type Options struct {
	// Strict makes the first failed entry abort the collection.
	Strict bool

	// OnWarning is called for each failed entry tolerated in lenient mode.
	OnWarning func(types.ScanError)
}

// Source produces a stream of walker entries. *scanner.Scanner satisfies it.
type Source interface {
	Stream(ctx context.Context) (<-chan types.Entry, error)
}

// progressSource is implemented by sources that keep traversal counters.
type progressSource interface {
	Progress() types.ScanProgress
}

// Report is the outcome of a complete run.
type Report struct {
	// Groups holds the duplicate groups in first-seen order.
	Groups []types.Group

	// Warnings lists entries that could not be listed or read.
	Warnings []types.ScanError

	Stats types.ScanStats
}

// Listing returns the hex digest to paths mapping of the report's groups.
func (r *Report) Listing() map[string][]string {
	return Listing(r.Groups)
}

// Collect ranges over entries until the channel is closed, adding each
// successful entry to a new index. Failed entries become warnings unless
// opts.Strict is set, in which case the first one is returned as an error.
//
// When Collect returns an error the channel may still hold entries; the
// caller is responsible for stopping the producer and draining it.
func Collect(ctx context.Context, entries <-chan types.Entry, opts Options) (*Index, []types.ScanError, error) {
	ix := NewIndex()
	var warnings []types.ScanError

	for {
		select {
		case <-ctx.Done():
			return ix, warnings, ctx.Err()
		case e, ok := <-entries:
			if !ok {
				return ix, warnings, nil
			}

			if e.Err == nil {
				ix.Add(e)
				continue
			}

			if opts.Strict {
				return ix, warnings, e.Err
			}

			w := types.ScanError{Path: e.Path, Error: e.Err.Error()}
			var te *types.TraversalError
			if errors.As(e.Err, &te) {
				w.Path = te.Path
			}
			warnings = append(warnings, w)
			if opts.OnWarning != nil {
				opts.OnWarning(w)
			}
		}
	}
}

// Run streams src into an index and returns the duplicate groups.
// A root that cannot be listed, a strict-mode failure or a cancelled ctx
// is returned as an error; in the last two cases the walk is stopped and
// its stream drained before Run returns.
func Run(ctx context.Context, src Source, opts Options) (*Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()

	entries, err := src.Stream(ctx)
	if err != nil {
		return nil, err
	}

	ix, warnings, err := Collect(ctx, entries, opts)
	if err != nil {
		cancel()
		for range entries {
		}
		logger.Warn("collection aborted", "err", err, "files", ix.Files())
		return nil, err
	}

	groups := ix.Duplicates()
	report := &Report{
		Groups:   groups,
		Warnings: warnings,
		Stats: types.ScanStats{
			FilesHashed: int64(ix.Files()),
			BytesHashed: ix.Bytes(),
			Groups:      len(groups),
			Elapsed:     time.Since(start),
		},
	}

	for _, g := range groups {
		report.Stats.Duplicates += len(g.Paths) - 1
		report.Stats.Wasted += g.Wasted()
	}

	if ps, ok := src.(progressSource); ok {
		report.Stats.DirsScanned = ps.Progress().DirsScanned
	}

	logger.Info("collection finished",
		"files", report.Stats.FilesHashed,
		"groups", report.Stats.Groups,
		"wasted", types.FormatSize(report.Stats.Wasted),
		"warnings", len(warnings),
		"elapsed", report.Stats.Elapsed)

	return report, nil
}
