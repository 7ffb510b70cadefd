// pkg/memheap/page.go
package memheap

import (
	"sync/atomic"
	"unsafe"

	"heapcore/pkg/segment"
)

// Page is the external slab entity the heap-management core consumes as
// a contract. Its block-allocation fast path (pushing/popping the local
// free list on malloc/free) lives outside this package; what matters
// here is the part every heap operation touches: which heap owns the
// page, where it sits in that heap's queue, how many of its blocks are
// used, and the inbox foreign threads use to free into it.
type Page struct {
	heap atomic.Pointer[Heap] // owning heap; release-stored by absorb, acquire-loaded by foreign frees

	next, prev *Page // queue links; owner thread and absorber only

	bin       int
	blockSize uintptr
	capacity  int // blocks laid out in the page
	used      int // blocks currently allocated

	localFree  map[int]struct{} // block indices on the page's own free list
	threadFree threadFreeStack  // lock-free inbox for frees from foreign threads

	seg       *segment.Segment
	segCookie segment.Cookie // snapshot of seg's cookie at carve time, for ownership verification
	data      []byte         // the page's carved byte range

	reservedBytes  int64
	committedBytes int64
}

// newPage constructs a page backed by a freshly carved segment region.
// All capacity blocks start out on the local free list.
func newPage(seg *segment.Segment, data []byte, bin int, blockSize uintptr, capacity int) *Page {
	p := &Page{
		bin:            bin,
		blockSize:      blockSize,
		capacity:       capacity,
		localFree:      make(map[int]struct{}, capacity),
		seg:            seg,
		segCookie:      seg.Cookie(),
		data:           data,
		reservedBytes:  int64(len(data)),
		committedBytes: int64(len(data)),
	}
	for i := 0; i < capacity; i++ {
		p.localFree[i] = struct{}{}
	}
	return p
}

// Heap returns the page's current owning heap. Foreign readers must
// tolerate a stale value between the moment a page is absorbed and the
// moment its old owner's state has fully quiesced (see absorb.go).
func (p *Page) Heap() *Heap {
	return p.heap.Load()
}

// setHeap installs h as the page's owner with release semantics so that
// a foreign thread which observes the new owner via an acquire load also
// observes every write absorb() made before the store.
func (p *Page) setHeap(h *Heap) {
	p.heap.Store(h)
}

// Used returns the number of blocks currently allocated.
func (p *Page) Used() int {
	return p.used
}

// Capacity returns the number of blocks the page can hold.
func (p *Page) Capacity() int {
	return p.capacity
}

// BlockSize returns the page's block size.
func (p *Page) BlockSize() uintptr {
	return p.blockSize
}

// AllFree reports whether every block on the page is free.
func (p *Page) AllFree() bool {
	return p.used == 0
}

// Start returns the address of the page's first block.
func (p *Page) Start() unsafe.Pointer {
	if len(p.data) == 0 {
		return nil
	}
	return unsafe.Pointer(&p.data[0])
}

// Reserved and Committed report the page's backing byte counts, used by
// the visitor to populate area records.
func (p *Page) Reserved() int64  { return p.reservedBytes }
func (p *Page) Committed() int64 { return p.committedBytes }

// BlockAt returns the address of block i.
func (p *Page) BlockAt(i int) unsafe.Pointer {
	if i < 0 || i >= p.capacity {
		return nil
	}
	return unsafe.Pointer(&p.data[uintptr(i)*p.blockSize])
}

// IndexOf resolves an address back to a block index within this page. ok
// is false when addr does not lie on a block boundary inside the page.
func (p *Page) IndexOf(addr unsafe.Pointer) (idx int, ok bool) {
	if len(p.data) == 0 {
		return 0, false
	}
	base := uintptr(unsafe.Pointer(&p.data[0]))
	target := uintptr(addr)
	if target < base {
		return 0, false
	}
	off := target - base
	if off%p.blockSize != 0 {
		return 0, false
	}
	i := int(off / p.blockSize)
	if i >= p.capacity {
		return 0, false
	}
	return i, true
}

// Contains reports whether addr lies within [start, start+capacity*blockSize).
func (p *Page) Contains(addr unsafe.Pointer) bool {
	_, ok := p.IndexOf(addr)
	return ok
}

// isLocalFree reports whether block i is on the local free list.
func (p *Page) isLocalFree(i int) bool {
	_, free := p.localFree[i]
	return free
}

// freeLocal marks block i free on the local free list and decrements
// used, the page-level half of integrating a foreign free (collector
// drain of a heap's thread_delayed_free inbox; see heap.go).
func (p *Page) freeLocal(i int) {
	if !p.isLocalFree(i) {
		p.localFree[i] = struct{}{}
		p.used--
	}
}

// verifyOwnership reports whether this page's segment still carries the
// cookie recorded when the page was carved; a mismatch means the
// segment has been corrupted or foreign-resolved (§4.8 heap_of_block).
func (p *Page) verifyOwnership() bool {
	return p.seg.VerifyCookie(p.segCookie) == nil
}

// pushThreadFree is how a foreign thread (one that is not this page's
// owner) frees a block: the block is queued on the page's own lock-free
// inbox rather than touching the local free list directly.
func (p *Page) pushThreadFree(block int) {
	p.threadFree.push(&threadFreeNode{block: block})
}

// drainThreadFree pops every pending foreign free and folds it into the
// local free list, decrementing used accordingly. VisitBlocks calls it
// ahead of each area record; Collect does not drain page inboxes (its
// step 4 drains the heap-level inbox, drainThreadDelayedFree in heap.go).
func (p *Page) drainThreadFree() {
	for n := p.threadFree.popAll(); n != nil; n = n.next {
		if !p.isLocalFree(n.block) {
			p.localFree[n.block] = struct{}{}
			p.used--
		}
	}
}

// threadFreeNode is one pending foreign free.
type threadFreeNode struct {
	next  *threadFreeNode
	block int
}

// threadFreeStack is a lock-free LIFO, grounded directly on the Go
// runtime's lfstackpush/lfstackpop (Load-then-CAS retry loop), generalized
// with atomic.Pointer instead of the packed-uint64 encoding the runtime
// uses to dodge the ABA problem on 32-bit platforms -- not a concern here
// since each node is a distinct heap-allocated object.
type threadFreeStack struct {
	head atomic.Pointer[threadFreeNode]
}

func (s *threadFreeStack) push(n *threadFreeNode) {
	for {
		old := s.head.Load()
		n.next = old
		if s.head.CompareAndSwap(old, n) {
			return
		}
	}
}

// popAll atomically detaches the entire chain, leaving the stack empty.
func (s *threadFreeStack) popAll() *threadFreeNode {
	return s.head.Swap(nil)
}
