// Package filter decides which paths a scan visits. Patterns are compiled
// once with gobwas/glob, where '*' stays within one path element and '**'
// crosses them.
package filter

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// separator is the path separator patterns are compiled against.
// Paths are converted with filepath.ToSlash before matching.
const separator = '/'

// pattern is one compiled glob. g is nil when raw is not a valid glob, in
// which case only the literal path rules apply.
type pattern struct {
	raw string
	g   glob.Glob
}

// Filter holds compiled exclusion and inclusion patterns.
// A zero Filter excludes nothing and includes everything.
type Filter struct {
	exclude []pattern
	include []pattern
}

// Option configures a Filter.
type Option func(*Filter)

// WithExclude adds exclusion patterns. A pattern excludes a path when it
// names the path itself or a parent directory, or when it globs the base
// name or the full path.
func WithExclude(patterns ...string) Option {
	return func(f *Filter) {
		f.exclude = append(f.exclude, compile(patterns)...)
	}
}

// WithInclude adds inclusion patterns. When any are set, only files whose
// base name or full path matches one of them are scanned.
func WithInclude(patterns ...string) Option {
	return func(f *Filter) {
		f.include = append(f.include, compile(patterns)...)
	}
}

// New creates a Filter with the given options applied.
func New(opts ...Option) *Filter {
	f := &Filter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Excluded reports whether path, a file or a directory, matches any
// exclusion pattern.
func (f *Filter) Excluded(path string) bool {
	for _, p := range f.exclude {
		if p.excludes(path) {
			return true
		}
	}
	return false
}

// Included reports whether a file path passes the inclusion patterns.
func (f *Filter) Included(path string) bool {
	if len(f.include) == 0 {
		return true
	}
	for _, p := range f.include {
		if p.globs(path) {
			return true
		}
	}
	return false
}

// Invalid returns the patterns that are not valid globs. They still match
// literally.
func (f *Filter) Invalid() []string {
	var out []string
	for _, p := range append(append([]pattern{}, f.exclude...), f.include...) {
		if p.g == nil {
			out = append(out, p.raw)
		}
	}
	return out
}

func compile(patterns []string) []pattern {
	out := make([]pattern, 0, len(patterns))
	for _, raw := range patterns {
		if raw == "" {
			continue
		}
		p := pattern{raw: raw}
		if g, err := glob.Compile(filepath.ToSlash(raw), separator); err == nil {
			p.g = g
		}
		out = append(out, p)
	}
	return out
}

// excludes applies the literal path rules, then the glob.
func (p pattern) excludes(path string) bool {
	if path == p.raw {
		return true
	}
	if strings.HasPrefix(path, p.raw) && len(path) > len(p.raw) &&
		path[len(p.raw)] == filepath.Separator {
		return true
	}
	return p.globs(path)
}

// globs matches the base name or the full path.
func (p pattern) globs(path string) bool {
	if p.g == nil {
		return false
	}
	return p.g.Match(filepath.Base(path)) || p.g.Match(filepath.ToSlash(path))
}
