// Package affinity reports how many hardware threads the process may run on.
package affinity

import "runtime"

// Available returns the number of hardware threads usable by this process.
// It honours the CPU affinity mask where the platform exposes one and never
// returns less than 1.
func Available() int {
	if n := available(); n > 0 {
		return n
	}
	return max(runtime.NumCPU(), 1)
}
