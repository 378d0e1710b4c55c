package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/config"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/hasher"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, ".", opts.Root)
	assert.Zero(t, opts.MinSize)
	assert.Equal(t, config.DefaultDirWorkers, opts.DirWorkers)
	assert.Equal(t, config.DefaultHashWorkers, opts.HashWorkers)
	assert.Equal(t, config.DefaultQueueSize, opts.QueueSize)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantRoot string
		wantDir  int
		wantHash int
	}{
		{name: "empty options", opts: Options{}, wantRoot: ".", wantDir: 4, wantHash: 8},
		{
			name:     "negative workers",
			opts:     Options{DirWorkers: -1, HashWorkers: 0, MinSize: -5},
			wantRoot: ".", wantDir: 4, wantHash: 8,
		},
		{
			name:     "valid options unchanged",
			opts:     Options{Root: "/data", DirWorkers: 2, HashWorkers: 3},
			wantRoot: "/data", wantDir: 2, wantHash: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			require.NoError(t, opts.Validate())

			assert.Equal(t, tt.wantRoot, opts.Root)
			assert.Equal(t, tt.wantDir, opts.DirWorkers)
			assert.Equal(t, tt.wantHash, opts.HashWorkers)
			assert.GreaterOrEqual(t, opts.MinSize, int64(0))
			require.NotNil(t, opts.Hasher)
			assert.Equal(t, hasher.Default, opts.Hasher.Name())
		})
	}
}

// writeTree creates files under root from a map of relative path to content.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// drain collects every entry from a stream, splitting hashed files from failures.
func drain(t *testing.T, ch <-chan types.Entry) ([]types.Entry, []*types.TraversalError) {
	t.Helper()

	var entries []types.Entry
	var failures []*types.TraversalError
	for e := range ch {
		if e.Err != nil {
			var te *types.TraversalError
			require.True(t, errors.As(e.Err, &te), "unexpected error type %T", e.Err)
			failures = append(failures, te)
			continue
		}
		entries = append(entries, e)
	}
	return entries, failures
}

func stream(t *testing.T, opts Options) ([]types.Entry, []*types.TraversalError) {
	t.Helper()

	s, err := New(opts)
	require.NoError(t, err)

	ch, err := s.Stream(context.Background())
	require.NoError(t, err)
	return drain(t, ch)
}

func paths(entries []types.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path)
	}
	sort.Strings(out)
	return out
}

func TestStreamBasic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":            "hello",
		"b.txt":            "hello",
		"c.txt":            "world",
		"nested/d.txt":     "hello",
		"nested/deep/e.go": "package main",
	})

	entries, failures := stream(t, Options{Root: root})
	require.Empty(t, failures)

	assert.Equal(t, []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "b.txt"),
		filepath.Join(root, "c.txt"),
		filepath.Join(root, "nested", "d.txt"),
		filepath.Join(root, "nested", "deep", "e.go"),
	}, paths(entries))

	byPath := make(map[string]types.Entry, len(entries))
	for _, e := range entries {
		byPath[filepath.Base(e.Path)] = e
	}

	assert.Equal(t, byPath["a.txt"].Digest, byPath["b.txt"].Digest)
	assert.Equal(t, byPath["a.txt"].Digest, byPath["d.txt"].Digest)
	assert.NotEqual(t, byPath["a.txt"].Digest, byPath["c.txt"].Digest)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", byPath["a.txt"].Digest.String())
	assert.Equal(t, int64(5), byPath["a.txt"].Size)
}

func TestStreamEmptyFilesIncluded(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"empty1": "", "empty2": ""})

	entries, failures := stream(t, Options{Root: root})
	require.Empty(t, failures)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].Digest, entries[1].Digest)
	assert.Zero(t, entries[0].Size)
}

func TestStreamEmptyDirectory(t *testing.T) {
	entries, failures := stream(t, Options{Root: t.TempDir()})
	assert.Empty(t, entries)
	assert.Empty(t, failures)
}

func TestStreamMinSize(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"small.txt": "tiny",
		"large.txt": string(make([]byte, 2048)),
	})

	entries, _ := stream(t, Options{Root: root, MinSize: 1024})
	assert.Equal(t, []string{filepath.Join(root, "large.txt")}, paths(entries))
}

func TestStreamWithExclusions(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"keep/a.txt":         "a",
		"node_modules/b.txt": "b",
		"cache/c.txt":        "c",
		"keep/d.tmp":         "d",
	})

	entries, _ := stream(t, Options{
		Root:    root,
		Exclude: []string{"node_modules", filepath.Join(root, "cache"), "*.tmp"},
	})

	assert.Equal(t, []string{filepath.Join(root, "keep", "a.txt")}, paths(entries))
}

func TestStreamWithInclusions(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"photos/a.jpg":     "a",
		"photos/b.png":     "b",
		"photos/raw/c.jpg": "c",
		"notes.txt":        "d",
	})

	entries, _ := stream(t, Options{
		Root:    root,
		Include: []string{"*.jpg"},
	})

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "photos", "a.jpg"),
		filepath.Join(root, "photos", "raw", "c.jpg"),
	}, paths(entries))
}

func TestStreamSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real.txt": "content", "dir/x.txt": "x"})

	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")))
	require.NoError(t, os.Symlink(filepath.Join(root, "dir"), filepath.Join(root, "linkdir")))

	entries, failures := stream(t, Options{Root: root})
	require.Empty(t, failures)
	assert.Equal(t, []string{
		filepath.Join(root, "dir", "x.txt"),
		filepath.Join(root, "real.txt"),
	}, paths(entries))
}

func TestStreamRelativeAndAbsolute(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})
	t.Chdir(root)

	entries, _ := stream(t, Options{Root: "."})
	require.Len(t, entries, 1)
	assert.False(t, filepath.IsAbs(entries[0].Path))
	assert.Equal(t, "a.txt", filepath.Base(entries[0].Path))

	entries, _ = stream(t, Options{Root: ".", Absolute: true})
	require.Len(t, entries, 1)
	assert.True(t, filepath.IsAbs(entries[0].Path))
}

func TestStreamNonExistentRoot(t *testing.T) {
	s, err := New(Options{Root: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)

	ch, err := s.Stream(context.Background())
	assert.Nil(t, ch)

	var te *types.TraversalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, types.OpStat, te.Op)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestStreamFileRoot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	writeTree(t, root, map[string]string{"file.txt": "x"})

	s, err := New(Options{Root: file})
	require.NoError(t, err)

	_, err = s.Stream(context.Background())
	assert.ErrorIs(t, err, types.ErrNotDirectory)
}

func TestStreamUnlistableRoot(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	root := filepath.Join(t.TempDir(), "locked")
	require.NoError(t, os.Mkdir(root, 0o000))
	t.Cleanup(func() { _ = os.Chmod(root, 0o755) })

	s, err := New(Options{Root: root})
	require.NoError(t, err)

	_, err = s.Stream(context.Background())
	var te *types.TraversalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, types.OpList, te.Op)
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestStreamPermissionErrors(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"ok.txt":         "fine",
		"locked/x.txt":   "hidden",
		"unreadable.txt": "secret",
		"sibling/y.txt":  "visible",
	})

	locked := filepath.Join(root, "locked")
	unreadable := filepath.Join(root, "unreadable.txt")
	require.NoError(t, os.Chmod(locked, 0o000))
	require.NoError(t, os.Chmod(unreadable, 0o000))
	t.Cleanup(func() {
		_ = os.Chmod(locked, 0o755)
		_ = os.Chmod(unreadable, 0o644)
	})

	entries, failures := stream(t, Options{Root: root})

	assert.Equal(t, []string{
		filepath.Join(root, "ok.txt"),
		filepath.Join(root, "sibling", "y.txt"),
	}, paths(entries))

	ops := make(map[string]string)
	for _, f := range failures {
		ops[f.Path] = f.Op
		assert.ErrorIs(t, f, fs.ErrPermission)
	}
	assert.Equal(t, types.OpList, ops[locked])
	assert.Equal(t, types.OpRead, ops[unreadable])
}

func TestStreamEachFileOnce(t *testing.T) {
	root := t.TempDir()
	files := make(map[string]string)
	for d := 0; d < 10; d++ {
		for f := 0; f < 20; f++ {
			files[fmt.Sprintf("dir%d/file%d.txt", d, f)] = fmt.Sprintf("content %d", f)
		}
	}
	writeTree(t, root, files)

	entries, failures := stream(t, Options{Root: root, DirWorkers: 3, HashWorkers: 5, QueueSize: 1})
	require.Empty(t, failures)
	require.Len(t, entries, len(files))

	seen := make(map[string]bool)
	for _, e := range entries {
		assert.False(t, seen[e.Path], "duplicate emission for %s", e.Path)
		seen[e.Path] = true
	}
}

func TestStreamContextCancellation(t *testing.T) {
	root := t.TempDir()
	files := make(map[string]string)
	for i := 0; i < 200; i++ {
		files[fmt.Sprintf("d%d/f%d", i%10, i)] = "x"
	}
	writeTree(t, root, files)

	s, err := New(Options{Root: root, QueueSize: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := s.Stream(ctx)
	require.NoError(t, err)

	<-ch
	cancel()

	// The channel must close even though the walk was interrupted.
	n := 0
	for range ch {
		n++
	}
	assert.Less(t, n, len(files))
}

func TestStreamProgress(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a": "1", "b/c": "22", "b/d/e": "333"})

	var mu sync.Mutex
	var updates []types.ScanProgress

	entries, _ := stream(t, Options{
		Root: root,
		OnProgress: func(p types.ScanProgress) {
			mu.Lock()
			updates = append(updates, p)
			mu.Unlock()
		},
	})
	require.Len(t, entries, 3)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, updates)

	last := updates[len(updates)-1]
	assert.True(t, last.WalkComplete)
	assert.Equal(t, int64(3), last.FilesHashed)
	assert.Equal(t, int64(6), last.BytesHashed)
	assert.Equal(t, int64(3), last.DirsScanned)
	assert.Zero(t, last.Errors)
}

func TestStreamWithOtherHasher(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a": "same", "b": "same"})

	h, err := hasher.New(hasher.SHA256)
	require.NoError(t, err)

	entries, _ := stream(t, Options{Root: root, Hasher: h})
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].Digest, entries[1].Digest)
	assert.Len(t, string(entries[0].Digest), 32)
}

func BenchmarkStream(b *testing.B) {
	root := b.TempDir()
	for d := 0; d < 20; d++ {
		dir := filepath.Join(root, fmt.Sprintf("dir%d", d))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			b.Fatal(err)
		}
		for f := 0; f < 50; f++ {
			if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%d", f)), []byte(fmt.Sprintf("%d", f%7)), 0o644); err != nil {
				b.Fatal(err)
			}
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s, err := New(Options{Root: root})
		if err != nil {
			b.Fatal(err)
		}
		ch, err := s.Stream(context.Background())
		if err != nil {
			b.Fatal(err)
		}
		for range ch {
		}
	}
}
