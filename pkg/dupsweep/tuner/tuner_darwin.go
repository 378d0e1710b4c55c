//go:build darwin

package tuner

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect reports CPU count and physical memory via sysctl hw.memsize.
// Available memory is estimated as half of total; precise figures would
// need host_statistics.
func Detect() (SystemResources, error) {
	memsize, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return fallbackResources(runtime.NumCPU()), fmt.Errorf("sysctl hw.memsize: %w", err)
	}

	total := int64(memsize)
	return SystemResources{
		CPUCores:     runtime.NumCPU(),
		TotalRAM:     total,
		AvailableRAM: total / 2,
	}, nil
}
