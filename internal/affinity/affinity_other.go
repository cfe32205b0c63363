//go:build !linux

package affinity

import "runtime"

func available() int {
	return runtime.NumCPU()
}
