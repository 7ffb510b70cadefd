// pkg/memheap/tld_test.go
package memheap

import (
	"testing"

	"heapcore/pkg/segment"
)

func memoryProvider(t *testing.T) OSProvider {
	t.Helper()
	return func(size int64) (segment.Backing, error) {
		return newTestBacking(t, size)
	}
}

func TestThreadLocalDataReserveAndReleaseSegment(t *testing.T) {
	tld := newTestTLD(301)
	tld.osProvider = memoryProvider(t)
	backing := newBackingHeap(301, tld)
	tld.backing = backing

	seg, err := tld.reserveSegment(4096, 0)
	if err != nil {
		t.Fatalf("reserveSegment: %v", err)
	}
	if len(tld.segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(tld.segments))
	}
	reserved, committed := tld.stats.snapshot()
	if reserved == 0 || committed == 0 {
		t.Fatal("reserving a segment should register reserved/committed bytes")
	}

	tld.releaseSegment(seg)
	if len(tld.segments) != 0 {
		t.Fatalf("segments = %d after release, want 0", len(tld.segments))
	}
	reserved, committed = tld.stats.snapshot()
	if reserved != 0 || committed != 0 {
		t.Fatalf("reserved=%d committed=%d after release, want 0/0", reserved, committed)
	}
}

func TestThreadLocalDataAbsorbSegments(t *testing.T) {
	tldA := newTestTLD(401)
	tldA.osProvider = memoryProvider(t)
	tldB := newTestTLD(402)
	a := newBackingHeap(401, tldA)
	tldA.backing = a
	b := newBackingHeap(402, tldB)
	tldB.backing = b

	seg, err := tldA.reserveSegment(4096, 0)
	if err != nil {
		t.Fatalf("reserveSegment: %v", err)
	}

	tldB.absorbSegments(tldA)
	if len(tldA.segments) != 0 {
		t.Fatal("absorbed-from tld should be left with no segments")
	}
	if len(tldB.segments) != 1 || tldB.segments[0] != seg {
		t.Fatal("absorbing tld should gain the source's segments")
	}
}

func TestThreadRegistryRoundTrip(t *testing.T) {
	id := uint64(99999901)
	t.Cleanup(func() { globalThreads.remove(id) })

	tld := newTestTLD(id)
	backing := newBackingHeap(id, tld)
	tld.backing = backing
	globalThreads.put(tld)

	got, ok := globalThreads.get(id)
	if !ok || got.backing != backing {
		t.Fatal("threadRegistry should return the same backing heap for a known thread id")
	}

	globalThreads.remove(id)
	if _, ok := globalThreads.get(id); ok {
		t.Fatal("threadRegistry should forget a removed thread")
	}
}
