// pkg/memheap/page_test.go
package memheap

import "testing"

func TestNewPageAllBlocksFree(t *testing.T) {
	p := newTestPage(t, 3, 32, 16)
	if !p.AllFree() {
		t.Fatal("freshly carved page should be all free")
	}
	if p.Used() != 0 || p.Capacity() != 16 {
		t.Fatalf("used=%d capacity=%d, want 0/16", p.Used(), p.Capacity())
	}
}

func TestPageBlockAtAndIndexOf(t *testing.T) {
	p := newTestPage(t, 0, 16, 8)
	for i := 0; i < p.Capacity(); i++ {
		addr := p.BlockAt(i)
		idx, ok := p.IndexOf(addr)
		if !ok || idx != i {
			t.Fatalf("block %d round-tripped to (%d, %v)", i, idx, ok)
		}
	}
}

func TestPageIndexOfRejectsMisaligned(t *testing.T) {
	p := newTestPage(t, 0, 16, 8)
	base := p.BlockAt(0)
	misaligned := addPointerOffset(base, 1)
	if _, ok := p.IndexOf(misaligned); ok {
		t.Fatal("misaligned address should not resolve to a block index")
	}
}

func TestPageContains(t *testing.T) {
	p := newTestPage(t, 0, 16, 4)
	if !p.Contains(p.BlockAt(0)) || !p.Contains(p.BlockAt(3)) {
		t.Fatal("page should contain its own blocks")
	}

	other := newTestPage(t, 0, 16, 4)
	if p.Contains(other.Start()) {
		t.Fatal("page should not contain another page's blocks")
	}
}

func TestPageThreadFreePushAndDrain(t *testing.T) {
	p := newTestPage(t, 0, 16, 4)
	p.used = 4
	for i := range p.localFree {
		delete(p.localFree, i)
	}

	p.pushThreadFree(1)
	p.pushThreadFree(2)
	p.drainThreadFree()

	if p.Used() != 2 {
		t.Fatalf("used = %d, want 2 after draining two foreign frees", p.Used())
	}
	if !p.isLocalFree(1) || !p.isLocalFree(2) {
		t.Fatal("drained blocks should be on the local free list")
	}
}

func TestPageFreeLocalIdempotent(t *testing.T) {
	p := newTestPage(t, 0, 16, 4)
	p.used = 1
	delete(p.localFree, 0)

	p.freeLocal(0)
	if p.Used() != 0 {
		t.Fatalf("used = %d, want 0", p.Used())
	}
	p.freeLocal(0) // freeing an already-free block must not double-decrement
	if p.Used() != 0 {
		t.Fatalf("used = %d after redundant free, want 0", p.Used())
	}
}

func TestPageVerifyOwnership(t *testing.T) {
	p := newTestPage(t, 0, 16, 4)
	if !p.verifyOwnership() {
		t.Fatal("freshly carved page should verify against its own segment")
	}
}
