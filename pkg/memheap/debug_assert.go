//go:build heapcore_debug

// pkg/memheap/debug_assert.go
package memheap

// debugAssert panics when cond is false. Only compiled in with -tags
// heapcore_debug; see debug.go for the default no-op.
func debugAssert(cond bool, msg string) {
	if !cond {
		panic("memheap: assertion failed: " + msg)
	}
}

// debugValidateHeap walks every page queued on h and asserts that the
// page still points back at h and that its segment cookie still
// verifies, mirroring mi_heap_is_valid/mi_heap_page_is_valid. Only
// compiled in with -tags heapcore_debug; see debug.go for the default
// no-op.
func debugValidateHeap(h *Heap) {
	if h == nil {
		return
	}
	count := 0
	for i := range h.pages {
		for p := h.pages[i].first; p != nil; p = p.next {
			count++
			debugAssert(p.Heap() == h, "page owner heap mismatch during validity walk")
			debugAssert(p.verifyOwnership(), "page segment cookie mismatch during validity walk")
		}
	}
	debugAssert(count == h.pageCount, "heap page_count mismatch during validity walk")
}
