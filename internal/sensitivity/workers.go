package sensitivity

import "runtime"

// defaultWorkers bounds the get_all_team_deltas fan-out pool. It
// defaults to GOMAXPROCS and can be overridden at process start by
// SetWorkerCount (wired from config).
var defaultWorkers = runtime.GOMAXPROCS(0)

// SetWorkerCount overrides the worker pool size. A non-positive value
// is ignored.
func SetWorkerCount(n int) {
	if n > 0 {
		defaultWorkers = n
	}
}

func workerCount() int {
	if defaultWorkers < 1 {
		return 1
	}
	return defaultWorkers
}
