// pkg/memheap/api.go
package memheap

// ReleasePageFunc forcibly releases a page back to the segment layer
// regardless of its used count, the external collaborator §4.6's
// Destroy path relies on.
type ReleasePageFunc func(h *Heap, p *Page)

// GetBacking returns the calling thread's backing heap, creating the
// thread's state on first call.
func GetBacking(classifier SizeClassifier, osProvider OSProvider) (*Heap, error) {
	return ThreadInit(classifier, osProvider)
}

// GetDefault returns the calling thread's current default heap, after
// ensuring thread init (§6 get_default).
func GetDefault(classifier SizeClassifier, osProvider OSProvider) (*Heap, error) {
	backing, err := ThreadInit(classifier, osProvider)
	if err != nil {
		return nil, err
	}
	id := CurrentThreadID()
	if d := getDefaultFor(id); d != nil {
		return d, nil
	}
	setDefaultFor(id, backing)
	return backing, nil
}

// New creates a user heap on the calling thread's backing heap (§6
// new). It returns whatever error ThreadInit returns; ThreadInit reserves
// no segment and always returns a nil error, so New never reports
// out-of-memory.
func New(classifier SizeClassifier, osProvider OSProvider) (*Heap, error) {
	backing, err := ThreadInit(classifier, osProvider)
	if err != nil {
		return nil, err
	}
	return NewUserHeap(backing), nil
}

// SetDefault installs h as the calling thread's current default,
// returning the previous default (§6 set_default).
func SetDefault(h *Heap) *Heap {
	return setDefaultFor(CurrentThreadID(), h)
}

// CollectHeap runs the Collector on h (§6 collect).
func CollectHeap(h *Heap, force bool, hooks CollectorHooks) {
	mode := Normal
	if force {
		mode = Force
	}
	Collect(h, mode, hooks)
}

// CollectAll collects the calling thread's default heap (§6
// collect_all).
func CollectAll(force bool, hooks CollectorHooks) {
	if h := getDefaultFor(CurrentThreadID()); h != nil {
		CollectHeap(h, force, hooks)
	}
}

// Destroy implements §4.6's destroy path: unsafe if any reclaimed page
// is present. Precondition: h.NoReclaim() == true; per §7's
// contract-violation handling, a violation asserts in debug builds and
// falls through to Delete instead of aborting.
func Destroy(h *Heap, release ReleasePageFunc) {
	if !h.NoReclaim() {
		debugAssert(false, "destroy called on a heap with reclaim enabled")
		Delete(h, CollectorHooks{})
		return
	}

	h.mu.Lock()
	for i := range h.pages {
		for p := h.pages[i].first; p != nil; p = p.next {
			// debit this page's byte footprint from the thread's shared
			// stats before handing it back, so destroyed pages stop
			// counting as committed memory instead of lingering until
			// someone notices (heap.c's _mi_heap_page_destroy does the
			// same stats subtraction ahead of _mi_segment_page_free).
			if h.tld != nil {
				h.tld.stats.trackRelease(p.Reserved(), p.Committed())
			}
			if release != nil {
				release(h, p)
			}
		}
		h.pages[i] = pageQueue{}
	}
	h.pageCount = 0
	h.threadDelayedFree.Store(nil)
	h.mu.Unlock()

	unregisterHeap(h)
	h.Release()
}

// Delete implements §4.6's delete path: safe, survives live allocations
// by reassigning them to the backing heap, or abandons h if h is itself
// the backing heap.
func Delete(h *Heap, hooks CollectorHooks) {
	if !h.IsBackingHeap() {
		Absorb(h.tld.backing, h)
		unregisterHeap(h)
		h.Release()
		return
	}
	collectAbandon(h, hooks)
}
