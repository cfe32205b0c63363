package controller

import "time"

// Record describes one granularity decision.
type Record struct {
	Time     time.Time     // When the decision was taken
	Site     string        // Controller name
	SiteID   uint64        // Hash of Site
	Work     int64         // Offered work size
	Parallel bool          // Whether the work was forked
	Elapsed  time.Duration // Wall time of the sequential run or of the whole fork-join
	Samples  int64         // Estimator samples at decision time
}

// Recorder receives decision records. Implementations must be safe for concurrent use.
type Recorder interface {
	Record(Record)
}
