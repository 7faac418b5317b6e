package scoring

import "runtime"

// defaultWorkers bounds the scenario fan-out pool. It defaults to
// GOMAXPROCS and can be overridden at process start by SetWorkerCount
// (wired from config).
var defaultWorkers = runtime.GOMAXPROCS(0)

// SetWorkerCount overrides the batch worker pool size. A non-positive
// value is ignored.
func SetWorkerCount(n int) {
	if n > 0 {
		defaultWorkers = n
	}
}
