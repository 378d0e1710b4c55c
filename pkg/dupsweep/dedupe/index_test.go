package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

func entry(digest, path string, size int64) types.Entry {
	return types.Entry{Digest: types.Digest(digest), Path: path, Size: size}
}

func TestIndexAdd(t *testing.T) {
	ix := NewIndex()
	ix.Add(entry("x", "a.txt", 5))
	ix.Add(entry("y", "c.txt", 3))
	ix.Add(entry("x", "b.txt", 5))
	ix.Add(types.Entry{Path: "broken", Err: assert.AnError})

	assert.Equal(t, 2, ix.Len())
	assert.Equal(t, 3, ix.Files())
	assert.Equal(t, int64(13), ix.Bytes())

	dups := ix.Duplicates()
	require.Len(t, dups, 1)
	assert.Equal(t, types.Digest("x"), dups[0].Digest)
	assert.Equal(t, int64(5), dups[0].Size)
	assert.Equal(t, []string{"a.txt", "b.txt"}, dups[0].Paths)
}

func TestIndexDuplicatesOrder(t *testing.T) {
	ix := NewIndex()
	for _, e := range []types.Entry{
		entry("b", "1", 1),
		entry("a", "2", 1),
		entry("c", "3", 1),
		entry("a", "4", 1),
		entry("b", "5", 1),
		entry("b", "6", 1),
	} {
		ix.Add(e)
	}

	dups := ix.Duplicates()
	require.Len(t, dups, 2)
	assert.Equal(t, types.Digest("b"), dups[0].Digest)
	assert.Equal(t, []string{"1", "5", "6"}, dups[0].Paths)
	assert.Equal(t, types.Digest("a"), dups[1].Digest)
	assert.Equal(t, []string{"2", "4"}, dups[1].Paths)
}

func TestIndexDuplicatesAreCopies(t *testing.T) {
	ix := NewIndex()
	ix.Add(entry("x", "a", 1))
	ix.Add(entry("x", "b", 1))

	dups := ix.Duplicates()
	dups[0].Paths[0] = "mutated"

	assert.Equal(t, []string{"a", "b"}, ix.Duplicates()[0].Paths)
}

func TestIndexSingletonsNeverReported(t *testing.T) {
	ix := NewIndex()
	ix.Add(entry("x", "a", 1))
	ix.Add(entry("y", "b", 1))
	ix.Add(entry("z", "c", 1))

	assert.Empty(t, ix.Duplicates())
	assert.Empty(t, ix.Listing())
	assert.NotNil(t, ix.Listing())
}

func TestListing(t *testing.T) {
	groups := []types.Group{
		{Digest: types.Digest([]byte{0xab, 0xcd}), Paths: []string{"a", "b"}},
		{Digest: types.Digest([]byte{0x01}), Paths: []string{"solo"}},
	}

	assert.Equal(t, map[string][]string{"abcd": {"a", "b"}}, Listing(groups))
}

func TestIndexOrderIndependentMembership(t *testing.T) {
	entries := []types.Entry{
		entry("x", "a", 1),
		entry("y", "b", 1),
		entry("x", "c", 1),
		entry("y", "d", 1),
		entry("z", "e", 1),
	}

	forward := NewIndex()
	for _, e := range entries {
		forward.Add(e)
	}
	backward := NewIndex()
	for i := len(entries) - 1; i >= 0; i-- {
		backward.Add(entries[i])
	}

	f, b := forward.Listing(), backward.Listing()
	require.Len(t, f, 2)
	require.Len(t, b, 2)
	for digest, paths := range f {
		assert.ElementsMatch(t, paths, b[digest])
	}
}
