// Package tuner detects CPU and memory and sizes dupsweep's walker and hash
// worker pools from them.
package tuner

// SystemResources contains detected system resources.
type SystemResources struct {
	// CPUCores is the number of logical CPU cores available.
	CPUCores int

	// TotalRAM is the total physical RAM in bytes.
	TotalRAM int64

	// AvailableRAM is the available (free) RAM in bytes. It may be an estimate.
	AvailableRAM int64
}

// fallbackResources is used when detection fails.
func fallbackResources(cpus int) SystemResources {
	const totalRAM = 8 * 1024 * 1024 * 1024
	return SystemResources{
		CPUCores:     cpus,
		TotalRAM:     totalRAM,
		AvailableRAM: totalRAM / 2,
	}
}
