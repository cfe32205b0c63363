package estimator

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	e := New("site")

	assert.Equal(t, "site", e.Name())
	assert.Equal(t, int64(DefaultBudget), e.Budget())
	assert.Equal(t, int64(0), e.Samples())
	assert.False(t, e.Calibrated())
	assert.InDelta(t, DefaultSeed, e.CostPerUnit(), 1e-9)
}

func TestReport_UpdatesModel(t *testing.T) {
	e := New("site")
	e.Initialize(5, 2)

	// Seed drives predictions until work is observed.
	assert.Equal(t, 50*time.Nanosecond, e.Predict(10))

	e.Report(100, 400*time.Nanosecond)
	assert.False(t, e.Calibrated())
	e.Report(300, 1200*time.Nanosecond)
	assert.True(t, e.Calibrated())

	assert.InDelta(t, 4.0, e.CostPerUnit(), 1e-9)
	assert.Equal(t, 4*time.Microsecond, e.Predict(1000))
}

func TestReport_IgnoresEmptyWork(t *testing.T) {
	e := New("site")
	e.Report(0, time.Second)
	e.Report(-3, time.Second)
	assert.Equal(t, int64(0), e.Samples())
}

func TestInitialize_Resets(t *testing.T) {
	e := New("site")
	e.Report(10, time.Microsecond)
	e.Initialize(2, 0)

	snap := e.Snapshot()
	assert.Equal(t, int64(0), snap.Samples)
	assert.Equal(t, int64(0), snap.Work)
	assert.True(t, e.Calibrated(), "zero budget is calibrated immediately")
	assert.InDelta(t, 2.0, snap.CostPerUnit, 1e-9)
}

func TestInitialize_RejectsBadSeed(t *testing.T) {
	e := New("site")
	e.Initialize(-1, -4)
	assert.InDelta(t, DefaultSeed, e.CostPerUnit(), 1e-9)
	assert.Equal(t, int64(0), e.Budget())
}

func TestReport_Concurrent(t *testing.T) {
	e := New("site")
	const goroutines, perG = 8, 1000

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				e.Report(2, 6*time.Nanosecond)
			}
		}()
	}
	wg.Wait()

	snap := e.Snapshot()
	require.Equal(t, int64(goroutines*perG), snap.Samples)
	assert.Equal(t, int64(2*goroutines*perG), snap.Work)
	assert.InDelta(t, 3.0, snap.CostPerUnit, 1e-9)
}
