package vars

import (
	"sync/atomic"
	"ticket-rush/service/batch"
)

// reportsPtr holds a pointer to the current map of last batch reports by
// job name. This approach allows for lock-free reads with atomic updates.
var reportsPtr atomic.Pointer[map[string]batch.Report]

// GetReports returns the last report per batch job.
// This operation is lock-free and safe for concurrent access.
func GetReports() map[string]batch.Report {
	ptr := reportsPtr.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// SetReport records the latest report for its job, replacing the snapshot
// map copy-on-write so readers never observe a partial update.
func SetReport(r batch.Report) {
	for {
		old := reportsPtr.Load()

		next := make(map[string]batch.Report)
		if old != nil {
			for job, report := range *old {
				next[job] = report
			}
		}
		next[r.Job] = r

		if reportsPtr.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Reset clears all recorded reports. Intended for tests.
func Reset() {
	reportsPtr.Store(nil)
}
