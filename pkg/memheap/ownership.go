// pkg/memheap/ownership.go
package memheap

import "unsafe"

// findOwningPage scans every currently live heap's pages for one
// containing p. This stands in for §4.8's "resolve the segment
// containing p" external step: this core has no address-keyed segment
// index of its own (that indexing is itself an external collaborator),
// so ownership queries fall back to a scan over known heaps.
func findOwningPage(p unsafe.Pointer) (*Page, bool) {
	for _, h := range snapshotLiveHeaps() {
		h.mu.Lock()
		var found *Page
		for i := range h.pages {
			for pg := h.pages[i].first; pg != nil; pg = pg.next {
				if pg.Contains(p) {
					found = pg
					break
				}
			}
			if found != nil {
				break
			}
		}
		h.mu.Unlock()
		if found != nil {
			return found, true
		}
	}
	return nil, false
}

// HeapOfBlock implements §4.8's heap_of_block: resolve the segment
// containing p, verify its integrity cookie, and return the page's
// owning heap. ok is false on any mismatch (corruption, or p was never
// allocated by this module).
func HeapOfBlock(p unsafe.Pointer) (h *Heap, ok bool) {
	page, found := findOwningPage(p)
	if !found {
		return nil, false
	}
	if !page.verifyOwnership() {
		return nil, false
	}
	owner := page.Heap()
	if owner == nil {
		return nil, false
	}
	return owner, true
}

// ContainsBlock implements §4.8's heap_contains_block: true iff
// HeapOfBlock(p) == h. Thread-safe only for the duration of the call and
// only while p remains live, which is the caller's responsibility.
func ContainsBlock(h *Heap, p unsafe.Pointer) bool {
	owner, ok := HeapOfBlock(p)
	return ok && owner == h
}

// CheckOwned implements §4.8's heap_check_owned: stricter than
// ContainsBlock, it rejects unaligned p up front and then asks each of
// h's own pages directly whether p falls in its block range.
func CheckOwned(h *Heap, p unsafe.Pointer) bool {
	if uintptr(p)%unsafe.Sizeof(p) != 0 {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.pages {
		for pg := h.pages[i].first; pg != nil; pg = pg.next {
			if pg.Contains(p) {
				return true
			}
		}
	}
	return false
}
