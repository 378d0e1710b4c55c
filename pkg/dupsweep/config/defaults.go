// Package config provides configuration management for dupsweep.
package config

// Default configuration values for dupsweep.
const (
	// DefaultMinSize keeps every regular file, including empty ones.
	DefaultMinSize = "0"

	// DefaultPath is the directory scanned when none is given on the command line.
	DefaultPath = "."

	// DefaultHash is the content digest algorithm.
	DefaultHash = "md5"

	// DefaultDirWorkers is the number of directory walker workers used when
	// resource tuning is bypassed.
	DefaultDirWorkers = 4

	// DefaultHashWorkers is the number of hashing workers used when resource
	// tuning is bypassed.
	DefaultHashWorkers = 8

	// DefaultQueueSize is the buffer size of the file and result channels.
	DefaultQueueSize = 256

	// DefaultLogLevel is the file log level.
	DefaultLogLevel = "info"
)

// DefaultExclusions contains paths that should be excluded from scanning by default.
var DefaultExclusions = []string{
	"/proc",
	"/sys",
	"/dev",
}
