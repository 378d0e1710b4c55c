package scanner

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/filter"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/hasher"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/logging"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

var logger = logging.Get("scanner")

// Scanner streams (digest, path) pairs for every regular file under a root.
// A Scanner is good for a single Stream call.
type Scanner struct {
	opts Options

	// Atomic counters for thread-safe progress reporting.
	dirsScanned atomic.Int64
	filesQueued atomic.Int64
	filesHashed atomic.Int64
	bytesHashed atomic.Int64
	errCount    atomic.Int64

	// currentPath is the directory most recently listed.
	currentPath atomic.Value

	// lastProgress tracks when we last reported progress to avoid excessive callbacks.
	lastProgress atomic.Int64

	// walkComplete is set once the output channel is about to close.
	walkComplete atomic.Bool

	// root is the cleaned (and optionally absolute) root being scanned.
	root string

	filter *filter.Filter
}

// New creates a new Scanner with the given options.
// Options are validated and defaults are applied.
func New(opts Options) (*Scanner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s := &Scanner{
		opts:   opts,
		filter: filter.New(filter.WithExclude(opts.Exclude...), filter.WithInclude(opts.Include...)),
	}
	s.currentPath.Store("")
	if invalid := s.filter.Invalid(); len(invalid) > 0 {
		logger.Warn("patterns are not valid globs, matching literally", "patterns", invalid)
	}
	return s, nil
}

// Root returns the resolved scan root. It is empty until Stream succeeds.
func (s *Scanner) Root() string {
	return s.root
}

// Stream validates the root and starts the walk. Every regular file found
// yields exactly one Entry on the returned channel, in completion order.
// Failures below the root are delivered as entries carrying a
// *types.TraversalError; a root that cannot be listed is returned directly.
//
// The channel is closed after the walk has returned and every hash worker
// has exited. Cancelling ctx stops the walk early; callers must keep
// draining the channel until it closes.
func (s *Scanner) Stream(ctx context.Context) (<-chan types.Entry, error) {
	root, err := s.validateRoot()
	if err != nil {
		return nil, err
	}
	s.root = root
	s.currentPath.Store(root)
	s.reportProgressForce()

	logger.Debug("scan started", "root", root, "hash", s.opts.Hasher.Name(),
		"dir_workers", s.opts.DirWorkers, "hash_workers", s.opts.HashWorkers)

	out := make(chan types.Entry, s.opts.QueueSize)
	files := make(chan string, s.opts.QueueSize)

	var workers sync.WaitGroup
	for range s.opts.HashWorkers {
		workers.Go(func() {
			s.hashWorker(ctx, files, out)
		})
	}

	go func() {
		start := time.Now()
		s.walk(ctx, files, out)
		close(files)
		workers.Wait()

		s.walkComplete.Store(true)
		s.reportProgressForce()
		logger.Debug("scan finished", "root", root, "files", s.filesHashed.Load(),
			"errors", s.errCount.Load(), "elapsed", time.Since(start))
		close(out)
	}()

	return out, nil
}

// Progress returns a snapshot of the scan counters.
func (s *Scanner) Progress() types.ScanProgress {
	currentPath, _ := s.currentPath.Load().(string)
	return types.ScanProgress{
		DirsScanned:  s.dirsScanned.Load(),
		FilesQueued:  s.filesQueued.Load(),
		FilesHashed:  s.filesHashed.Load(),
		BytesHashed:  s.bytesHashed.Load(),
		Errors:       s.errCount.Load(),
		CurrentPath:  currentPath,
		WalkComplete: s.walkComplete.Load(),
	}
}

// validateRoot resolves the root path and verifies it is a listable directory.
func (s *Scanner) validateRoot() (string, error) {
	root := filepath.Clean(s.opts.Root)
	if s.opts.Absolute {
		abs, err := filepath.Abs(root)
		if err != nil {
			return "", &types.TraversalError{Op: types.OpStat, Path: root, Err: err}
		}
		root = abs
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", &types.TraversalError{Op: types.OpStat, Path: root, Err: err}
	}
	if !info.IsDir() {
		return "", &types.TraversalError{Op: types.OpStat, Path: root, Err: types.ErrNotDirectory}
	}

	dir, err := os.Open(root)
	if err != nil {
		return "", &types.TraversalError{Op: types.OpList, Path: root, Err: err}
	}
	defer dir.Close()

	if _, err := dir.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return "", &types.TraversalError{Op: types.OpList, Path: root, Err: err}
	}

	return root, nil
}

// walk runs fastwalk over the root, queueing regular files for hashing.
func (s *Scanner) walk(ctx context.Context, files chan<- string, out chan<- types.Entry) {
	conf := fastwalk.Config{
		Follow:     false, // Symlinks are never followed.
		NumWorkers: s.opts.DirWorkers,
	}

	err := fastwalk.Walk(&conf, s.root, s.walkCallback(ctx, files, out))
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		s.emitError(ctx, out, &types.TraversalError{Op: types.OpList, Path: s.root, Err: err})
	}
}

// walkCallback returns the callback function for fastwalk.Walk.
// fastwalk invokes it concurrently from its worker goroutines.
func (s *Scanner) walkCallback(ctx context.Context, files chan<- string, out chan<- types.Entry) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			s.emitError(ctx, out, &types.TraversalError{Op: types.OpList, Path: path, Err: err})
			return nil
		}

		if path != s.root && s.filter.Excluded(path) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			s.handleDirectory(path)
			return nil
		}

		// Symlinks, sockets, devices and pipes are skipped.
		if !d.Type().IsRegular() || !s.filter.Included(path) {
			return nil
		}

		if s.opts.MinSize > 0 {
			info, err := d.Info()
			if err != nil {
				s.emitError(ctx, out, &types.TraversalError{Op: types.OpStat, Path: path, Err: err})
				return nil
			}
			if info.Size() < s.opts.MinSize {
				return nil
			}
		}

		select {
		case files <- path:
			s.filesQueued.Add(1)
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}
}

// handleDirectory records a directory entry during walk.
func (s *Scanner) handleDirectory(path string) {
	s.dirsScanned.Add(1)
	s.currentPath.Store(path)
	s.reportProgress()
}

// hashWorker hashes queued files until the queue is closed.
// After cancellation it keeps draining the queue without hashing so the
// walker never blocks on a full queue.
func (s *Scanner) hashWorker(ctx context.Context, files <-chan string, out chan<- types.Entry) {
	for path := range files {
		if ctx.Err() != nil {
			continue
		}

		digest, size, err := hasher.File(s.opts.Hasher, path)
		if err != nil {
			s.emitError(ctx, out, &types.TraversalError{Op: types.OpRead, Path: path, Err: err})
			continue
		}

		s.filesHashed.Add(1)
		s.bytesHashed.Add(size)
		s.reportProgress()

		select {
		case out <- types.Entry{Digest: digest, Path: path, Size: size}:
		case <-ctx.Done():
		}
	}
}

// emitError delivers a per-entry failure on the result stream.
func (s *Scanner) emitError(ctx context.Context, out chan<- types.Entry, err *types.TraversalError) {
	s.errCount.Add(1)
	logger.Warn("entry failed", "op", err.Op, "path", err.Path, "err", err.Err)

	select {
	case out <- types.Entry{Path: err.Path, Err: err}:
	case <-ctx.Done():
	}
}

// reportProgress calls the progress callback if configured.
// Throttles calls to avoid excessive overhead.
func (s *Scanner) reportProgress() {
	if s.opts.OnProgress == nil {
		return
	}

	// Throttle progress updates to every 10ms.
	now := time.Now().UnixMilli()
	last := s.lastProgress.Load()
	if now-last < 10 {
		return
	}
	if !s.lastProgress.CompareAndSwap(last, now) {
		return // Another goroutine updated it.
	}

	s.opts.OnProgress(s.Progress())
}

// reportProgressForce calls the progress callback immediately, bypassing throttle.
func (s *Scanner) reportProgressForce() {
	if s.opts.OnProgress == nil {
		return
	}
	s.lastProgress.Store(time.Now().UnixMilli())
	s.opts.OnProgress(s.Progress())
}
