package affinity

import (
	"runtime"
	"testing"
)

func TestAvailable(t *testing.T) {
	n := Available()
	if n < 1 {
		t.Fatalf("Available() = %d, want >= 1", n)
	}
	if n > runtime.NumCPU() {
		t.Errorf("Available() = %d exceeds NumCPU %d", n, runtime.NumCPU())
	}
}
