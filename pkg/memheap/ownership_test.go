// pkg/memheap/ownership_test.go
package memheap

import (
	"testing"
	"unsafe"
)

func TestHeapOfBlockResolvesOwner(t *testing.T) {
	h := newTestBackingHeap(1101)
	p := newTestPage(t, 0, 16, 4)
	attachPage(h, p)

	owner, ok := HeapOfBlock(p.BlockAt(0))
	if !ok || owner != h {
		t.Fatal("HeapOfBlock should resolve a live block back to its owning heap")
	}
}

func TestHeapOfBlockRejectsForeignPointer(t *testing.T) {
	h := newTestBackingHeap(1102)
	p := newTestPage(t, 0, 16, 4)
	attachPage(h, p)

	var stray int
	if _, ok := HeapOfBlock(unsafe.Pointer(&stray)); ok {
		t.Fatal("a pointer never carved from a known page must not resolve to a heap")
	}
}

func TestContainsBlockTracksAbsorption(t *testing.T) {
	a := newTestBackingHeap(1103)
	b := newTestBackingHeap(1104)
	p := newTestPage(t, 0, 16, 4)
	attachPage(a, p)

	addr := p.BlockAt(0)
	if !ContainsBlock(a, addr) {
		t.Fatal("block should be contained in its original heap before absorption")
	}

	Absorb(b, a)

	if ContainsBlock(a, addr) {
		t.Fatal("block must no longer be contained in the old heap after absorption")
	}
	if !ContainsBlock(b, addr) {
		t.Fatal("block must be contained in the new heap after absorption")
	}
}

func TestCheckOwnedRejectsUnalignedPointer(t *testing.T) {
	h := newTestBackingHeap(1105)
	p := newTestPage(t, 0, 16, 4)
	attachPage(h, p)

	misaligned := addPointerOffset(p.BlockAt(0), 1)
	if CheckOwned(h, misaligned) {
		t.Fatal("an unaligned pointer must be rejected up front")
	}
}

func TestCheckOwnedAcceptsInRangeAlignedPointer(t *testing.T) {
	h := newTestBackingHeap(1106)
	p := newTestPage(t, 0, 16, 4)
	attachPage(h, p)

	if !CheckOwned(h, p.BlockAt(2)) {
		t.Fatal("an aligned pointer inside a page owned by h should be accepted")
	}
}

func TestCheckOwnedRejectsOutOfRangePointer(t *testing.T) {
	h := newTestBackingHeap(1107)
	other := newTestBackingHeap(1108)
	p := newTestPage(t, 0, 16, 4)
	attachPage(other, p)

	if CheckOwned(h, p.BlockAt(0)) {
		t.Fatal("a block owned by a different heap must not be reported owned")
	}
}
