// pkg/memheap/collector.go
package memheap

// Mode selects how aggressively Collect runs.
type Mode int

const (
	// Normal drains deferred work and frees empty pages.
	Normal Mode = iota
	// Force also releases per-thread and OS-level caches.
	Force
	// Abandon runs as part of thread teardown, ahead of abandonment.
	Abandon
)

// DeferredFreeFunc is the external deferred-free callback: step 2 of
// §4.3, invoked with force when mode is above Normal. Deferred frees may
// themselves free pages, which is why this runs before foreign-free
// integration and retired-page collection.
type DeferredFreeFunc func(h *Heap, force bool)

// RetirePagesFunc is the external contract that returns pages empty for
// a grace period to the segment layer (§4.3 step 5).
type RetirePagesFunc func(h *Heap)

// ReleaseSegmentCacheFunc releases a thread's per-thread segment cache
// (§4.3 step 6, Force and above).
type ReleaseSegmentCacheFunc func(tld *ThreadLocalData)

// ReleaseOSCacheFunc releases OS-level region caches (§4.3 step 7, Force
// and above, main thread only).
type ReleaseOSCacheFunc func()

// CollectorHooks wires the Collector to its external collaborators. A
// nil hook is simply skipped, letting callers exercise only the steps
// they care about (tests commonly only need DeferredFree or none at all).
type CollectorHooks struct {
	DeferredFree        DeferredFreeFunc
	RetirePages         RetirePagesFunc
	ReleaseSegmentCache ReleaseSegmentCacheFunc
	ReleaseOSCache      ReleaseOSCacheFunc
}

// isMainThreadHeap reports whether h belongs to the process's first
// initialized thread, the closest stand-in available for "the main
// thread" without a real OS-level notion of one.
func isMainThreadHeap(h *Heap) bool {
	return h.threadID == mainThreadID()
}

// Collect implements §4.3's seven ordered steps. Foreign-free
// integration runs after the deferred callback (which may itself free)
// and before retired-page collection (which decides a page is dead from
// the post-integration used count).
func Collect(h *Heap, mode Mode, hooks CollectorHooks) {
	if h == nil || h.tld == nil {
		return // step 1: uninitialized heap
	}

	if hooks.DeferredFree != nil {
		hooks.DeferredFree(h, mode > Normal)
	}

	tryReclaimAbandoned(h, mode == Force)

	h.drainThreadDelayedFree()

	if hooks.RetirePages != nil {
		hooks.RetirePages(h)
	}

	debugValidateHeap(h)

	if mode >= Force && hooks.ReleaseSegmentCache != nil {
		hooks.ReleaseSegmentCache(h.tld)
	}

	if mode >= Force && isMainThreadHeap(h) && hooks.ReleaseOSCache != nil {
		hooks.ReleaseOSCache()
	}
}
