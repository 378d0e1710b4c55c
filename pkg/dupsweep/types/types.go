// Package types provides the core data types shared by the dupsweep pipeline:
// content digests, walker emissions, duplicate groups, and the traversal
// error taxonomy, along with helpers for parsing and formatting sizes.
package types

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// Digest is a content fingerprint. It holds the raw hash bytes in a string
// so it can be used as a Go map key; String renders it as lowercase hex.
//
// As a struct field a Digest encodes as hex through MarshalText. As a map
// key it does not: encoding/json writes string-kind keys verbatim, so maps
// meant for output must be keyed by Digest.String().
type Digest string

// String returns the lowercase hexadecimal form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString([]byte(d))
}

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ParseDigest decodes a hex string produced by Digest.String.
func ParseDigest(s string) (Digest, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("invalid digest %q: %w", s, err)
	}
	return Digest(b), nil
}

// Entry is one emission of the walker. Either Digest is set, or Err
// describes why the entry at Path could not be hashed.
type Entry struct {
	// Digest is the content fingerprint of the file.
	Digest Digest

	// Path is the file path as discovered under the scan root.
	Path string

	// Size is the file size in bytes at hashing time.
	Size int64

	// Err is non-nil when the entry could not be listed or read.
	Err error
}

// Group is the set of paths sharing one digest, in discovery order.
type Group struct {
	Digest Digest   `json:"digest" yaml:"digest"`
	Size   int64    `json:"size" yaml:"size"`
	Paths  []string `json:"paths" yaml:"paths"`
}

// Wasted returns the bytes that would be reclaimed by keeping a single copy.
func (g Group) Wasted() int64 {
	if len(g.Paths) < 2 {
		return 0
	}
	return g.Size * int64(len(g.Paths)-1)
}

// ScanError represents a non-fatal error encountered during scanning.
type ScanError struct {
	// Path is the file or directory path where the error occurred.
	Path string `json:"path"`

	// Error is the error message describing what went wrong.
	Error string `json:"error"`
}

// ScanStats summarizes a completed pipeline run.
type ScanStats struct {
	DirsScanned int64         `json:"dirs_scanned"`
	FilesHashed int64         `json:"files_hashed"`
	BytesHashed int64         `json:"bytes_hashed"`
	Groups      int           `json:"groups"`
	Duplicates  int           `json:"duplicates"`
	Wasted      int64         `json:"wasted"`
	Elapsed     time.Duration `json:"elapsed"`
}

// ScanProgress reports real-time scan progress.
type ScanProgress struct {
	// DirsScanned is the number of directories listed so far.
	DirsScanned int64 `json:"dirs_scanned"`

	// FilesQueued is the number of regular files handed to the hash workers.
	FilesQueued int64 `json:"files_queued"`

	// FilesHashed is the number of files whose digest has been emitted.
	FilesHashed int64 `json:"files_hashed"`

	// BytesHashed is the total bytes read by the hash workers so far.
	BytesHashed int64 `json:"bytes_hashed"`

	// Errors is the number of entries that failed.
	Errors int64 `json:"errors"`

	// CurrentPath is the directory most recently listed.
	CurrentPath string `json:"current_path"`

	// WalkComplete indicates that every dispatched unit of work has finished.
	WalkComplete bool `json:"walk_complete,omitempty"`
}

// Traversal operations reported by TraversalError.
const (
	OpStat = "stat"
	OpList = "list"
	OpRead = "read"
)

// ErrNotDirectory is wrapped by TraversalError when the scan root is a file.
var ErrNotDirectory = errors.New("not a directory")

// TraversalError reports a directory that could not be listed or a file
// that could not be read.
type TraversalError struct {
	Op   string
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

// sizePattern splits a size string like "1.5G" or "100 MiB" into value and unit.
var sizePattern = regexp.MustCompile(`(?i)^([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?)(?:i?B)?$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in bytes.
// Unit letters are always binary: "100K", "100KB" and "100KiB" all mean
// 100 KiB. Decimal values are truncated to the nearest byte.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	normalized := m[1] + "B"
	if unit := strings.ToUpper(m[2]); unit != "" {
		normalized = m[1] + unit + "iB"
	}

	n, err := humanize.ParseBytes(normalized)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	return int64(n), nil
}

// FormatSize converts a size in bytes to a human-readable IEC string.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}
