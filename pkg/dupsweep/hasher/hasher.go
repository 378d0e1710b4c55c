// Package hasher computes content digests for the dupsweep walker.
//
// Every algorithm streams file contents through a pooled buffer, so memory
// use per worker is bounded regardless of file size.
package hasher

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
	"lukechampine.com/blake3"
)

// Supported algorithm names.
const (
	MD5    = "md5"
	SHA256 = "sha256"
	XXHash = "xxhash"
	BLAKE3 = "blake3"
)

// Default is the algorithm used when none is configured.
const Default = MD5

// bufferSize is the read buffer handed to io.CopyBuffer.
const bufferSize = 128 * 1024

// ErrUnknownAlgorithm is returned by New for unsupported names.
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// Hasher produces a digest from a stream of bytes.
// Implementations must be safe for concurrent use.
type Hasher interface {
	// Name returns the algorithm name.
	Name() string

	// Sum consumes r and returns its digest and the number of bytes read.
	Sum(r io.Reader) (types.Digest, int64, error)
}

var algorithms = map[string]func() hash.Hash{
	MD5:    md5.New,
	SHA256: sha256.New,
	XXHash: func() hash.Hash { return xxhash.New() },
	BLAKE3: func() hash.Hash { return blake3.New(32, nil) },
}

var buffers = sync.Pool{
	New: func() any {
		b := make([]byte, bufferSize)
		return &b
	},
}

type streamHasher struct {
	name    string
	newHash func() hash.Hash
}

// New returns the Hasher for the named algorithm. Names are case-insensitive;
// an empty name selects Default.
func New(name string) (Hasher, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = Default
	}

	newHash, ok := algorithms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownAlgorithm, name, strings.Join(Available(), ", "))
	}
	return &streamHasher{name: name, newHash: newHash}, nil
}

// Available returns the supported algorithm names, sorted.
func Available() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *streamHasher) Name() string {
	return h.name
}

func (h *streamHasher) Sum(r io.Reader) (types.Digest, int64, error) {
	buf := buffers.Get().(*[]byte)
	defer buffers.Put(buf)

	sum := h.newHash()
	n, err := io.CopyBuffer(sum, r, *buf)
	if err != nil {
		return "", n, err
	}
	return types.Digest(sum.Sum(nil)), n, nil
}

// File opens path and returns its digest and size.
func File(h Hasher, path string) (types.Digest, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	return h.Sum(f)
}
