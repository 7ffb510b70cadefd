// pkg/memheap/testutil_test.go
package memheap

import (
	"testing"
	"unsafe"

	"heapcore/pkg/segment"
)

// addPointerOffset returns addr shifted forward by n bytes, for tests
// that need to probe misaligned or out-of-range addresses.
func addPointerOffset(addr unsafe.Pointer, n uintptr) unsafe.Pointer {
	return unsafe.Pointer(uintptr(addr) + n)
}

func newTestBacking(t *testing.T, size int64) segment.Backing {
	t.Helper()
	b, err := segment.NewMemoryBacking(size)
	if err != nil {
		t.Fatalf("NewMemoryBacking: %v", err)
	}
	return b
}

// newTestSegment builds a segment over in-process memory, avoiding the
// real OS mmap path so tests run without touching the OS.
func newTestSegment(t *testing.T, id uint64, pages, pageSize int) *segment.Segment {
	t.Helper()
	size := int64(pages * pageSize)
	backing := newTestBacking(t, size)
	return segment.New(id, 4242, size, pageSize, backing)
}

// newTestPage carves one page out of a fresh segment sized to hold
// exactly one page of capacity*blockSize bytes.
func newTestPage(t *testing.T, bin int, blockSize uintptr, capacity int) *Page {
	t.Helper()
	pageSize := int(blockSize) * capacity
	seg := newTestSegment(t, 1, 1, pageSize)
	data := seg.CarvePage()
	if data == nil {
		t.Fatal("carve page: segment exhausted")
	}
	return newPage(seg, data, bin, blockSize, capacity)
}

// attachPage inserts p into h's queue for its bin and stamps its owning
// heap, the way construction of a fresh page would wire it into a heap.
func attachPage(h *Heap, p *Page) {
	h.mu.Lock()
	h.pages[p.bin].pushBack(p)
	h.pageCount++
	h.mu.Unlock()
	p.setHeap(h)
}

// newTestTLD builds a standalone ThreadLocalData without going through
// ThreadInit/the global thread registry, for tests that want direct
// control over heap construction.
func newTestTLD(threadID uint64) *ThreadLocalData {
	return &ThreadLocalData{
		threadID:   threadID,
		classifier: NewDefaultSizeClassifier(),
		osProvider: DefaultOSProvider,
		stats:      &statTracker{},
	}
}

// newTestBackingHeap builds an isolated backing heap with its own tld,
// independent of any other test's thread state.
func newTestBackingHeap(threadID uint64) *Heap {
	tld := newTestTLD(threadID)
	h := newBackingHeap(threadID, tld)
	tld.backing = h
	return h
}

// teardownCurrentThread cleans up the real calling thread's registry and
// default-heap entries after a test exercises the ThreadInit-based API
// surface, so later tests in the same package don't inherit stale state
// keyed off the same OS/goroutine thread id.
func teardownCurrentThread(t *testing.T) {
	t.Helper()
	id := CurrentThreadID()
	t.Cleanup(func() {
		if tld, ok := globalThreads.get(id); ok {
			unregisterHeap(tld.backing)
		}
		teardownThread(id)
	})
}
