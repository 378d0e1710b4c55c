package tuner

// Worker limits.
const (
	maxWorkers = 64

	// Listing is metadata-bound and benefits from some parallelism even on
	// small machines.
	minDirWorkers = 4

	minHashWorkers = 2

	minQueueSize = 64
	maxQueueSize = 16384
)

// Queue sizing. Each queued entry is roughly a path plus a digest.
const (
	bytesPerQueueEntry  = 512
	queueMemoryFraction = 0.01
	queueCount          = 2
)

// OptimalConfig contains pool sizes tuned to the detected resources.
type OptimalConfig struct {
	// DirWorkers is the number of fastwalk directory workers.
	DirWorkers int

	// HashWorkers is the number of goroutines reading and hashing files.
	HashWorkers int

	// QueueSize buffers both the file queue and the result stream.
	QueueSize int
}

// Overrides replaces calculated pool sizes. Zero keeps the calculated value.
type Overrides struct {
	DirWorkers  int
	HashWorkers int
}

// Calculate returns pool sizes for the given resources.
//
//   - DirWorkers: max(NumCPU, 4)
//   - HashWorkers: NumCPU * 2; hashing alternates between disk waits and CPU
//   - both capped at 64
//   - QueueSize: a small fraction of available RAM, bounded
func Calculate(resources SystemResources) OptimalConfig {
	dirWorkers := max(resources.CPUCores, minDirWorkers)
	dirWorkers = min(dirWorkers, maxWorkers)

	hashWorkers := max(resources.CPUCores*2, minHashWorkers)
	hashWorkers = min(hashWorkers, maxWorkers)

	return OptimalConfig{
		DirWorkers:  dirWorkers,
		HashWorkers: hashWorkers,
		QueueSize:   calculateQueueSize(resources.AvailableRAM),
	}
}

// CalculateWithOverrides applies non-zero overrides on top of Calculate,
// still respecting the worker cap.
func CalculateWithOverrides(resources SystemResources, o Overrides) OptimalConfig {
	cfg := Calculate(resources)

	if o.DirWorkers > 0 {
		cfg.DirWorkers = min(o.DirWorkers, maxWorkers)
	}
	if o.HashWorkers > 0 {
		cfg.HashWorkers = min(o.HashWorkers, maxWorkers)
	}

	return cfg
}

func calculateQueueSize(availableRAM int64) int {
	entries := int(float64(availableRAM) * queueMemoryFraction / bytesPerQueueEntry)
	perQueue := entries / queueCount

	perQueue = max(perQueue, minQueueSize)
	return min(perQueue, maxQueueSize)
}
