// Package scanner walks a directory tree and streams a content digest for
// every regular file it finds. Directory listing runs on fastwalk workers and
// hashing on a bounded pool; results are delivered on a channel that closes
// once every dispatched unit of work has finished.
package scanner

import (
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/config"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/hasher"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

// Options configures the scanner behavior.
type Options struct {
	// Root is the starting directory for the scan.
	Root string

	// Absolute resolves Root to an absolute path so every emitted path is absolute.
	// When false, paths are reported relative to Root as given.
	Absolute bool

	// MinSize skips files smaller than this many bytes. Zero keeps empty files.
	MinSize int64

	// Exclude contains glob patterns for paths to skip during scanning.
	// Patterns match the full path, a path prefix, or the base name.
	Exclude []string

	// Include restricts hashing to files whose base name or full path
	// matches one of these glob patterns. Empty includes every file.
	Include []string

	// DirWorkers is the number of concurrent fastwalk workers listing directories.
	DirWorkers int

	// HashWorkers is the number of goroutines reading and hashing files.
	HashWorkers int

	// QueueSize is the buffer size of the file queue and the result channel.
	QueueSize int

	// Hasher computes file digests. Nil selects hasher.Default.
	Hasher hasher.Hasher

	// OnProgress is called periodically with scan progress updates.
	// It must be safe to call from multiple goroutines.
	OnProgress func(types.ScanProgress)
}

// DefaultOptions returns options with sensible defaults for most systems.
func DefaultOptions() Options {
	return Options{
		Root:        config.DefaultPath,
		Exclude:     nil,
		DirWorkers:  config.DefaultDirWorkers,
		HashWorkers: config.DefaultHashWorkers,
		QueueSize:   config.DefaultQueueSize,
	}
}

// Validate fills in defaults for unset or invalid values.
func (o *Options) Validate() error {
	if o.Root == "" {
		o.Root = config.DefaultPath
	}
	if o.DirWorkers < 1 {
		o.DirWorkers = config.DefaultDirWorkers
	}
	if o.HashWorkers < 1 {
		o.HashWorkers = config.DefaultHashWorkers
	}
	if o.QueueSize < 1 {
		o.QueueSize = config.DefaultQueueSize
	}
	if o.MinSize < 0 {
		o.MinSize = 0
	}
	if o.Hasher == nil {
		h, err := hasher.New(hasher.Default)
		if err != nil {
			return err
		}
		o.Hasher = h
	}
	return nil
}
