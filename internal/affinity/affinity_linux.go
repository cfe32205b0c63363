//go:build linux

package affinity

import (
	"golang.org/x/sys/unix"
)

// available reads the scheduler affinity mask of the calling thread.
func available() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 0
	}
	return set.Count()
}
