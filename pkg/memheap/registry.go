// pkg/memheap/registry.go
package memheap

import "sync/atomic"

// abandonedHead is the single process-wide atomic cell §9 calls out as
// the only truly global datum in this core: the head of a singly-linked
// chain of heaps orphaned by terminated threads.
var abandonedHead atomic.Pointer[Heap]

// prependAbandoned implements §4.4's lock-free prepend. first must head
// a non-empty chain linked by abandonedNext and terminated by nil.
func prependAbandoned(first *Heap) {
	if abandonedHead.CompareAndSwap(nil, first) {
		return
	}

	last := first
	for next := last.abandonedNext.Load(); next != nil; next = last.abandonedNext.Load() {
		last = next
	}

	for {
		next := abandonedHead.Load()
		last.abandonedNext.Store(next)
		if abandonedHead.CompareAndSwap(next, first) {
			return
		}
	}
}

// collectAbandon implements §4.4's abandonment. Precondition: h is a
// backing heap whose thread is terminating.
func collectAbandon(h *Heap, hooks CollectorHooks) {
	Collect(h, Abandon, hooks)

	// the thread is gone: its registry entry and default-heap slot must
	// not outlive it, or a reused thread id would hand a later ThreadInit
	// call back this now-abandoned backing heap instead of a fresh one.
	teardownThread(h.threadID)

	// finalize stats: Stats() derives everything on demand, nothing to
	// snapshot ahead of time.
	if h.PageCount() == 0 {
		unregisterHeap(h)
		return // backing-heap teardown (freeing h itself) is external
	}
	h.abandonedNext.Store(nil)
	prependAbandoned(h)
}

// tryReclaimAbandoned implements §4.4's try_reclaim_abandoned: if all is
// false, at most one heap from the abandoned list is absorbed into heap;
// if true, the entire list is drained into it. Returns whether anything
// was reclaimed.
func tryReclaimAbandoned(heap *Heap, all bool) bool {
	if heap.NoReclaim() {
		return false
	}
	if abandonedHead.Load() == nil {
		return false // relaxed pre-check, cheap common case
	}

	reclaim := abandonedHead.Swap(nil)
	if reclaim == nil {
		return false
	}

	if !all {
		rest := reclaim.abandonedNext.Load()
		reclaim.abandonedNext.Store(nil)
		if rest != nil {
			prependAbandoned(rest)
		}
		absorbOne(heap, reclaim)
		return true
	}

	for r := reclaim; r != nil; {
		next := r.abandonedNext.Load()
		r.abandonedNext.Store(nil)
		absorbOne(heap, r)
		r = next
	}
	return true
}

// absorbOne merges one reclaimed heap's pages, deferred-free work and
// segment-layer state into heap, then retires the reclaimed heap object.
func absorbOne(heap, r *Heap) {
	Absorb(heap, r)
	heap.tld.absorbSegments(r.tld)
	unregisterHeap(r)
}

// Snapshot returns the thread ids of every heap currently on the
// abandoned list without removing them. Diagnostic only: real
// reclamation must still go through tryReclaimAbandoned's exchange, and
// a concurrent reclaim can make this stale the instant it returns.
func Snapshot() []uint64 {
	var ids []uint64
	for h := abandonedHead.Load(); h != nil; h = h.abandonedNext.Load() {
		ids = append(ids, h.threadID)
	}
	return ids
}
