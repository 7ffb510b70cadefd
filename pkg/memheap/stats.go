// pkg/memheap/stats.go
package memheap

import "sync"

// Stats is a read-only snapshot of a heap's page and memory usage. It is
// a diagnostic addition beyond spec.md's scope (the spec treats
// statistics counters as an external collaborator); tracking it costs
// nothing the Collector doesn't already compute and gives tests a single
// place to assert totals from, the same role pkg/cache.MemoryBudgetStats
// plays for the teacher's page cache.
type Stats struct {
	PageCount      int
	PagesPerBin    [NumBins]int
	ReservedBytes  int64
	CommittedBytes int64
	UsedBlocks     int
	ThreadFreeDepth int
}

// statTracker accumulates the running totals a *ThreadLocalData shares
// across every heap created on the same thread, mirroring
// MemoryBudget.componentUsage's mutex-guarded per-component counters.
type statTracker struct {
	mu             sync.Mutex
	reservedBytes  int64
	committedBytes int64
}

// trackReserve records a new segment's reservation ceiling and the bytes
// actually committed for it so far (a segment commits lazily, one page
// at a time, so committed starts well below reserved).
func (t *statTracker) trackReserve(reserved, committed int64) {
	t.mu.Lock()
	t.reservedBytes += reserved
	t.committedBytes += committed
	t.mu.Unlock()
}

// trackRelease retires a closed segment's reservation and whatever of it
// had actually been committed.
func (t *statTracker) trackRelease(reserved, committed int64) {
	t.mu.Lock()
	t.reservedBytes -= reserved
	t.committedBytes -= committed
	if t.reservedBytes < 0 {
		t.reservedBytes = 0
	}
	if t.committedBytes < 0 {
		t.committedBytes = 0
	}
	t.mu.Unlock()
}

func (t *statTracker) snapshot() (reserved, committed int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reservedBytes, t.committedBytes
}
