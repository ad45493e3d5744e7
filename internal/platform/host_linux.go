//go:build linux

package platform

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// hostUnits counts CPUs in the scheduler affinity mask, which respects
// taskset and cgroup cpusets.
func hostUnits() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return runtime.NumCPU()
	}
	if n := set.Count(); n > 0 {
		return n
	}
	return runtime.NumCPU()
}
