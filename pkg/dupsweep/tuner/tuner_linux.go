//go:build linux

package tuner

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect reports CPU count and memory via sysinfo(2). Buffer cache counts
// as available since the kernel reclaims it on demand.
func Detect() (SystemResources, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return fallbackResources(runtime.NumCPU()), fmt.Errorf("sysinfo: %w", err)
	}

	unit := int64(info.Unit)
	if unit == 0 {
		unit = 1
	}

	total := int64(info.Totalram) * unit
	available := (int64(info.Freeram) + int64(info.Bufferram)) * unit
	if available <= 0 || available > total {
		available = total / 2
	}

	return SystemResources{
		CPUCores:     runtime.NumCPU(),
		TotalRAM:     total,
		AvailableRAM: available,
	}, nil
}
