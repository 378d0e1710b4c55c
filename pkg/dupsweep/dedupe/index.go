// Package dedupe aggregates the walker's stream into duplicate groups.
//
// Accumulation happens on a single goroutine: producers only send on the
// stream and never touch the index. Grouping is order-independent; the
// reported order of groups is the order in which each digest was first seen,
// and members keep their arrival order.
package dedupe

import (
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

// Index maps each digest to the paths that share it.
// It is not safe for concurrent use.
type Index struct {
	groups map[types.Digest]*types.Group
	order  []types.Digest
	files  int
	bytes  int64
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{groups: make(map[types.Digest]*types.Group)}
}

// Add records a successfully hashed entry. Entries carrying an error are ignored.
func (ix *Index) Add(e types.Entry) {
	if e.Err != nil {
		return
	}

	ix.files++
	ix.bytes += e.Size

	g, ok := ix.groups[e.Digest]
	if !ok {
		g = &types.Group{Digest: e.Digest, Size: e.Size}
		ix.groups[e.Digest] = g
		ix.order = append(ix.order, e.Digest)
	}
	g.Paths = append(g.Paths, e.Path)
}

// Len returns the number of distinct digests.
func (ix *Index) Len() int {
	return len(ix.order)
}

// Files returns the number of entries added.
func (ix *Index) Files() int {
	return ix.files
}

// Bytes returns the total size of the entries added.
func (ix *Index) Bytes() int64 {
	return ix.bytes
}

// Duplicates returns every group with two or more members, in first-seen order.
// The returned groups are copies.
func (ix *Index) Duplicates() []types.Group {
	var out []types.Group
	for _, d := range ix.order {
		g := ix.groups[d]
		if len(g.Paths) < 2 {
			continue
		}
		out = append(out, types.Group{
			Digest: g.Digest,
			Size:   g.Size,
			Paths:  append([]string(nil), g.Paths...),
		})
	}
	return out
}

// Listing returns the reportable groups as hex digest to member paths.
func (ix *Index) Listing() map[string][]string {
	return Listing(ix.Duplicates())
}

// Listing converts groups into the hex digest to paths mapping used by the
// listing output. Groups with fewer than two members are left out.
func Listing(groups []types.Group) map[string][]string {
	out := make(map[string][]string, len(groups))
	for _, g := range groups {
		if len(g.Paths) < 2 {
			continue
		}
		out[g.Digest.String()] = append([]string(nil), g.Paths...)
	}
	return out
}
