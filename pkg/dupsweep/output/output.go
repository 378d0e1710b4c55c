// Package output renders duplicate groups for the list command in various
// formats (json, yaml, plain, paths, null, pretty and more).
//
// Formatters are kept in a registry so they can be selected by name at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("json")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, output.FromReport(root, "md5", report)); err != nil {
//	    return err
//	}
//	os.Stdout.Write(buf.Bytes())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/dedupe"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

// Group is one duplicate group prepared for display.
type Group struct {
	// Digest is the lowercase hex content digest.
	Digest string `json:"digest" yaml:"digest"`

	// Size is the size of each member in bytes.
	Size int64 `json:"size" yaml:"size"`

	// SizeHuman is the human-readable member size (e.g., "1.5 GiB").
	SizeHuman string `json:"size_human" yaml:"size_human"`

	// Wasted is the space held by the redundant copies.
	Wasted int64 `json:"wasted" yaml:"wasted"`

	// Paths lists the members in discovery order.
	Paths []string `json:"paths" yaml:"paths"`
}

// Stats contains statistics about the run.
type Stats struct {
	DirsScanned int64         `json:"dirs_scanned" yaml:"dirs_scanned"`
	FilesHashed int64         `json:"files_hashed" yaml:"files_hashed"`
	BytesHashed int64         `json:"bytes_hashed" yaml:"bytes_hashed"`
	Groups      int           `json:"groups" yaml:"groups"`
	Duplicates  int           `json:"duplicates" yaml:"duplicates"`
	Wasted      int64         `json:"wasted" yaml:"wasted"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
}

// Result contains the complete output data for formatting.
type Result struct {
	// Source is the root path that was scanned.
	Source string `json:"source" yaml:"source"`

	// Algorithm names the digest used, e.g. "md5".
	Algorithm string `json:"algorithm" yaml:"algorithm"`

	// Groups holds the duplicate groups in first-seen order.
	Groups []Group `json:"groups" yaml:"groups"`

	Stats Stats `json:"stats" yaml:"stats"`

	// Warnings contains entries that could not be listed or read.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// FromReport builds a Result from a completed run.
func FromReport(source, algorithm string, r *dedupe.Report) *Result {
	res := &Result{
		Source:    source,
		Algorithm: algorithm,
		Groups:    make([]Group, 0, len(r.Groups)),
		Stats: Stats{
			DirsScanned: r.Stats.DirsScanned,
			FilesHashed: r.Stats.FilesHashed,
			BytesHashed: r.Stats.BytesHashed,
			Groups:      r.Stats.Groups,
			Duplicates:  r.Stats.Duplicates,
			Wasted:      r.Stats.Wasted,
			Duration:    r.Stats.Elapsed,
		},
	}

	for _, g := range r.Groups {
		res.Groups = append(res.Groups, Group{
			Digest:    g.Digest.String(),
			Size:      g.Size,
			SizeHuman: types.FormatSize(g.Size),
			Wasted:    g.Wasted(),
			Paths:     g.Paths,
		})
	}

	for _, w := range r.Warnings {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %s", w.Path, w.Error))
	}

	return res
}

// Listing returns the digest to paths mapping of the result's groups.
func (r *Result) Listing() map[string][]string {
	out := make(map[string][]string, len(r.Groups))
	for _, g := range r.Groups {
		out[g.Digest] = g.Paths
	}
	return out
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry, replacing any
// formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
