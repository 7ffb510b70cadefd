// pkg/memheap/heap.go
package memheap

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// delayedFreeLink is one pending foreign free sitting in a heap's
// thread_delayed_free inbox (used when a page cannot accept the block
// directly, e.g. mid page-state-transition). next is a real pointer so
// traversal stays memory-safe under the garbage collector; encodedNext
// XOR-masks next's address with the owning heap's (key0, key1), exactly
// mirroring the corruption canary spec.md describes for a non-GC'd
// implementation.
type delayedFreeLink struct {
	next        *delayedFreeLink
	encodedNext uint64
	page        *Page
	block       int
}

func encodeNext(next *delayedFreeLink, key0, key1 uint64) uint64 {
	return uint64(uintptr(unsafe.Pointer(next))) ^ key0 ^ key1
}

// verifyEncoding reports whether l's canary still matches its real next
// pointer under (key0, key1); a mismatch means the link was corrupted or
// decoded with the wrong heap's keys.
func (l *delayedFreeLink) verifyEncoding(key0, key1 uint64) bool {
	return l.encodedNext == encodeNext(l.next, key0, key1)
}

var rootSeedSeq uint64

// nextRootSeed stands in for the spec's external deterministic-random
// seeding collaborator: a backing heap is the root of its thread's random
// stream and needs a seed from outside this package's scope. A process-
// wide counter is a deterministic, reproducible stand-in; production
// callers needing real entropy would substitute their own seed source
// here without touching anything downstream.
func nextRootSeed() uint64 {
	return atomic.AddUint64(&rootSeedSeq, 1)
}

// Heap is a thread-affine collection of pages across all size classes,
// plus the cross-thread deferred-free inbox foreign threads use when a
// page's own thread-free inbox can't accept a block (§3).
type Heap struct {
	mu sync.Mutex

	threadID uint64

	pages           [NumBins]pageQueue
	pagesFreeDirect [numSmallBins]*Page // external fast-path cache; zeroed on reset
	pageCount       int

	threadDelayedFree atomic.Pointer[delayedFreeLink]

	key0, key1 uint64
	cookie     uint64
	random     *randomStream

	noReclaim bool
	tld       *ThreadLocalData

	abandonedNext atomic.Pointer[Heap] // non-nil only while on (or being transferred onto) the abandoned list; nil on the list's last heap
}

// newBackingHeap constructs the one heap per thread that owns tld. Its
// random stream is rooted directly (it has no parent heap to split from).
func newBackingHeap(threadID uint64, tld *ThreadLocalData) *Heap {
	h := &Heap{
		threadID: threadID,
		tld:      tld,
		random:   newRandomStream(nextRootSeed()),
	}
	h.cookie = h.random.deriveCookie()
	h.key0, h.key1 = h.random.deriveKeys()
	h.resetPages()
	registerHeap(h)
	return h
}

// NewUserHeap implements §4.2's new_user_heap construction: an additional
// heap on backing's thread, sharing its tld, with its own integrity state
// split off of backing's random stream.
func NewUserHeap(backing *Heap) *Heap {
	backing.mu.Lock()
	childSeed := backing.random.split()
	backing.mu.Unlock()

	h := &Heap{
		threadID:  backing.threadID,
		tld:       backing.tld,
		noReclaim: true,
		random:    childSeed,
	}
	h.cookie = h.random.deriveCookie()
	h.key0, h.key1 = h.random.deriveKeys()
	h.resetPages()
	registerHeap(h)
	return h
}

// resetPages implements §4.2's reset_pages: the page queues, direct
// table, delayed-free inbox and page count return to their canonical
// empty state. tld, random, keys, cookie and no_reclaim are untouched.
func (h *Heap) resetPages() {
	for i := range h.pages {
		h.pages[i] = pageQueue{}
	}
	for i := range h.pagesFreeDirect {
		h.pagesFreeDirect[i] = nil
	}
	h.threadDelayedFree.Store(nil)
	h.pageCount = 0
}

// Release implements §4.2's release of the heap object: redirect the
// thread's default to the backing heap first if needed, do nothing for
// the backing heap itself (freed only by thread teardown), and otherwise
// drop the heap's storage. Go's garbage collector plays the role of the
// external "free heap storage" step once nothing still references h.
func (h *Heap) Release() {
	if getDefaultFor(h.threadID) == h {
		setDefaultFor(h.threadID, h.tld.backing)
	}
	if h.IsBackingHeap() {
		return
	}
}

// IsBackingHeap reports whether h owns its thread's tld.
func (h *Heap) IsBackingHeap() bool {
	return h.tld.backing == h
}

// ThreadID returns the id of the thread that created h.
func (h *Heap) ThreadID() uint64 {
	return h.threadID
}

// NoReclaim reports whether h refuses to absorb abandoned heaps.
func (h *Heap) NoReclaim() bool {
	return h.noReclaim
}

// TLD returns h's thread-local state.
func (h *Heap) TLD() *ThreadLocalData {
	return h.tld
}

// PageCount returns the sum of lengths of every page queue, the
// invariant §3 calls out explicitly.
func (h *Heap) PageCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pageCount
}

// Keys returns h's thread-delayed-free encoding keys.
func (h *Heap) Keys() (uint64, uint64) {
	return h.key0, h.key1
}

// Cookie returns h's integrity cookie.
func (h *Heap) Cookie() uint64 {
	return h.cookie
}

// Stats builds a read-only snapshot of h's page and memory usage; a
// supplemented diagnostic, not part of spec.md's core operations.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	var s Stats
	s.PageCount = h.pageCount
	for i := range h.pages {
		s.PagesPerBin[i] = h.pages[i].len()
		h.pages[i].each(func(p *Page) {
			s.UsedBlocks += p.Used()
		})
	}
	s.ReservedBytes, s.CommittedBytes = h.tld.stats.snapshot()

	depth := 0
	for n := h.threadDelayedFree.Load(); n != nil; n = n.next {
		depth++
	}
	s.ThreadFreeDepth = depth
	return s
}

// pushDelayedFree enqueues a foreign free of block on page into h's
// thread_delayed_free inbox, used when the page itself cannot accept the
// block directly.
func (h *Heap) pushDelayedFree(page *Page, block int) {
	h.prependDelayedFree(&delayedFreeLink{page: page, block: block})
}

// prependDelayedFree CAS-prepends link onto h's thread_delayed_free
// inbox, stamping it with h's current keys so later decoding (collector
// drain, absorb) can detect corruption.
func (h *Heap) prependDelayedFree(link *delayedFreeLink) {
	for {
		old := h.threadDelayedFree.Load()
		link.next = old
		link.encodedNext = encodeNext(old, h.key0, h.key1)
		if h.threadDelayedFree.CompareAndSwap(old, link) {
			return
		}
	}
}

// drainThreadDelayedFree implements collector step 4: decode every
// pending foreign free with h's keys and push it onto its page's local
// free list, decrementing the page's used count. Links that fail the
// canary check are dropped rather than applied to a page.
func (h *Heap) drainThreadDelayedFree() {
	first := h.threadDelayedFree.Swap(nil)
	for n := first; n != nil; n = n.next {
		if !n.verifyEncoding(h.key0, h.key1) {
			continue
		}
		n.page.freeLocal(n.block)
	}
}

// liveHeaps is the process-wide table of every heap (backing or user)
// that currently exists, used by ownership queries to find the page
// containing an arbitrary pointer (§4.8's "resolve the segment
// containing p" external step, approximated here as a scan over known
// heaps' pages since this core has no separate segment-address index).
var liveHeaps = struct {
	mu sync.Mutex
	m  map[*Heap]struct{}
}{m: make(map[*Heap]struct{})}

func registerHeap(h *Heap) {
	liveHeaps.mu.Lock()
	liveHeaps.m[h] = struct{}{}
	liveHeaps.mu.Unlock()
}

func unregisterHeap(h *Heap) {
	liveHeaps.mu.Lock()
	delete(liveHeaps.m, h)
	liveHeaps.mu.Unlock()
}

func snapshotLiveHeaps() []*Heap {
	liveHeaps.mu.Lock()
	defer liveHeaps.mu.Unlock()
	out := make([]*Heap, 0, len(liveHeaps.m))
	for h := range liveHeaps.m {
		out = append(out, h)
	}
	return out
}
