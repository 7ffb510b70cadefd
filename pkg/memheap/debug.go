//go:build !heapcore_debug

// pkg/memheap/debug.go
package memheap

// debugAssert is a no-op in ordinary builds. Build with -tags
// heapcore_debug to turn every assertion into a panic; the teacher
// carries no assertion library of its own, so this is the stand-in for
// spec.md's "debug-mode assertion" rather than a dependency pulled in
// just for this.
func debugAssert(cond bool, msg string) {}

// debugValidateHeap is a no-op in ordinary builds; see debug_assert.go
// for the real walk. Kept as a separate no-arg-cost stub rather than an
// always-running loop guarded only by debugAssert, the way heap.c itself
// skips mi_heap_visit_pages entirely outside MI_DEBUG>=2 rather than
// running the walk and discarding its assertions.
func debugValidateHeap(h *Heap) {}
