//go:build !darwin && !linux

package tuner

import "runtime"

// Detect reports the CPU count and assumes 8 GiB of memory.
func Detect() (SystemResources, error) {
	return fallbackResources(runtime.NumCPU()), nil
}
