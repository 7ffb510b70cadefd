// pkg/memheap/tld.go
package memheap

import (
	"sync"
	"sync/atomic"

	"heapcore/pkg/segment"
)

const defaultSegmentSize = 4 << 20 // 4 MiB, a conservative default arena size

// OSProvider is the external OS memory provider: given a size, it
// reserves a fresh backing store for a new segment. Production callers
// wire DefaultOSProvider (real anonymous mmap/VirtualAlloc); tests wire
// a provider backed by segment.NewMemoryBacking.
type OSProvider func(size int64) (segment.Backing, error)

// DefaultOSProvider reserves anonymous OS memory via segment.ReserveOSRegion.
func DefaultOSProvider(size int64) (segment.Backing, error) {
	return segment.ReserveOSRegion(size)
}

// ThreadLocalData is the per-thread state a backing heap owns and every
// user heap created on that thread borrows: the size-class table,
// segment bookkeeping, the OS provider, and shared stats (§3 tld).
type ThreadLocalData struct {
	threadID      uint64
	backing       *Heap
	classifier    SizeClassifier
	osProvider    OSProvider
	nextSegmentID uint64
	segments      []*segment.Segment
	stats         *statTracker
}

// threadRegistry is the process-wide table of live threads, grounded on
// pkg/turdb/pool.go's mutex-guarded connection table -- here keyed by
// thread id, with exactly one live entry per thread rather than an
// interchangeable pool of connections.
type threadRegistry struct {
	mu   sync.Mutex
	byID map[uint64]*ThreadLocalData
}

var globalThreads = &threadRegistry{byID: make(map[uint64]*ThreadLocalData)}

func (r *threadRegistry) get(id uint64) (*ThreadLocalData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tld, ok := r.byID[id]
	return tld, ok
}

func (r *threadRegistry) put(tld *ThreadLocalData) {
	r.mu.Lock()
	r.byID[tld.threadID] = tld
	r.mu.Unlock()
}

func (r *threadRegistry) remove(id uint64) {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
}

// teardownThread removes id's entries from the thread registry and the
// default-heap table. Called once a thread's backing heap has gone
// through collect_abandon, so a later call to ThreadInit under a reused
// thread id builds a fresh backing heap instead of ThreadInit's
// short-circuit handing back the now-abandoned one.
func teardownThread(id uint64) {
	globalThreads.remove(id)
	defaultHeaps.mu.Lock()
	delete(defaultHeaps.m, id)
	defaultHeaps.mu.Unlock()
}

// defaultHeaps stands in for the external "thread-local storage for the
// default-heap pointer" (§1 out of scope): Go has no TLS primitive, so
// each caller identifies its thread explicitly via CurrentThreadID
// (backed by the OS thread id on Linux, the goroutine id elsewhere)
// and this table plays the role a real TLS slot would.
var defaultHeaps = struct {
	mu sync.Mutex
	m  map[uint64]*Heap
}{m: make(map[uint64]*Heap)}

func getDefaultFor(threadID uint64) *Heap {
	defaultHeaps.mu.Lock()
	defer defaultHeaps.mu.Unlock()
	return defaultHeaps.m[threadID]
}

func setDefaultFor(threadID uint64, h *Heap) *Heap {
	defaultHeaps.mu.Lock()
	defer defaultHeaps.mu.Unlock()
	prev := defaultHeaps.m[threadID]
	defaultHeaps.m[threadID] = h
	return prev
}

// firstThreadID records the id of the first thread to call ThreadInit,
// the closest available stand-in for "the main thread" (§4.3 step 7)
// without a real OS-level notion of one in this core.
var firstThreadID atomic.Uint64

// mainThreadID returns the id recorded by firstThreadID, or 0 if no
// thread has initialized yet.
func mainThreadID() uint64 {
	return firstThreadID.Load()
}

// ThreadInit returns the calling thread's backing heap, creating it (and
// its ThreadLocalData) on first call. Subsequent calls on the same
// thread return the existing backing heap. classifier and osProvider may
// be nil to accept the package defaults.
func ThreadInit(classifier SizeClassifier, osProvider OSProvider) (*Heap, error) {
	id := CurrentThreadID()
	if tld, ok := globalThreads.get(id); ok {
		return tld.backing, nil
	}
	firstThreadID.CompareAndSwap(0, id)

	if classifier == nil {
		classifier = NewDefaultSizeClassifier()
	}
	if osProvider == nil {
		osProvider = DefaultOSProvider
	}

	tld := &ThreadLocalData{
		threadID:   id,
		classifier: classifier,
		osProvider: osProvider,
		stats:      &statTracker{},
	}

	backing := newBackingHeap(id, tld)
	tld.backing = backing
	globalThreads.put(tld)
	setDefaultFor(id, backing)

	return backing, nil
}

// reserveSegment asks the thread's OS provider for a fresh segment whose
// address-space reservation can hold at least minBytes, tracking it in
// the thread's segment list and its shared stats. Only the first page is
// committed up front; Segment.CarvePage grows the backing store as later
// pages are carved, so a segment that never fills out its full
// reservation never pays to commit the rest of it.
func (tld *ThreadLocalData) reserveSegment(pageSize int, minBytes int64) (*segment.Segment, error) {
	reserved := int64(defaultSegmentSize)
	if minBytes > reserved {
		reserved = minBytes
	}

	backing, err := tld.osProvider(int64(pageSize))
	if err != nil {
		return nil, err
	}

	tld.nextSegmentID++
	rnd := newRandomStream(tld.backing.random.next())
	seg := segment.New(tld.nextSegmentID, rnd.next(), reserved, pageSize, backing)

	tld.segments = append(tld.segments, seg)
	tld.stats.trackReserve(reserved, int64(pageSize))
	return seg, nil
}

// releaseSegment closes seg and removes it from the thread's segment list.
func (tld *ThreadLocalData) releaseSegment(seg *segment.Segment) {
	for i, s := range tld.segments {
		if s == seg {
			tld.segments = append(tld.segments[:i], tld.segments[i+1:]...)
			break
		}
	}
	tld.stats.trackRelease(seg.Reserved(), seg.Committed())
	seg.Close()
}

// absorbSegments transfers from's segment list into tld's, for §4.4's
// "absorb r's segment-layer state into heap's" step.
func (tld *ThreadLocalData) absorbSegments(from *ThreadLocalData) {
	if from == nil {
		return
	}
	tld.segments = append(tld.segments, from.segments...)
	from.segments = nil
}
