// pkg/memheap/visitor.go
package memheap

import "unsafe"

// AreaInfo is a page projection exposed to visitor callbacks: reserved
// and committed byte counts, the used block count, the block size, and
// the page's first block address (§4.7).
type AreaInfo struct {
	ReservedBytes  int64
	CommittedBytes int64
	UsedBlocks     int
	BlockSize      uintptr
	FirstBlock     unsafe.Pointer
}

// VisitFunc is the capability the core invokes while walking areas and
// blocks. A nil block signals an area-only event (§9). Returning false
// short-circuits the remaining walk.
type VisitFunc func(h *Heap, area AreaInfo, block unsafe.Pointer) bool

func areaInfoOf(p *Page) AreaInfo {
	return AreaInfo{
		ReservedBytes:  p.Reserved(),
		CommittedBytes: p.Committed(),
		UsedBlocks:     p.Used(),
		BlockSize:      p.BlockSize(),
		FirstBlock:     p.Start(),
	}
}

// VisitBlocks implements §4.7: walk heap -> area -> block. If
// visitBlocks is false, only area records are produced (block is always
// nil). Returns false iff cb short-circuited the walk.
func VisitBlocks(h *Heap, visitBlocks bool, cb VisitFunc) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.pages {
		for p := h.pages[i].first; p != nil; p = p.next {
			p.drainThreadFree() // external free_collect, ahead of the area record

			if !cb(h, areaInfoOf(p), nil) {
				return false
			}

			if visitBlocks {
				if !visitPageBlocks(h, p, cb) {
					return false
				}
			}
		}
	}
	return true
}

// visitPageBlocks implements the per-area block walk (§4.7 steps 1-5).
func visitPageBlocks(h *Heap, p *Page, cb VisitFunc) bool {
	if p.used == 0 {
		return true // step 1: nothing used, skip
	}

	if p.capacity == 1 {
		return cb(h, areaInfoOf(p), p.BlockAt(0)) // step 2: single-block special case
	}

	// step 3: bitmap over capacity, bit i = 1 iff block i is free
	words := (p.capacity + 63) / 64
	bitmap := make([]uint64, words)
	for idx := range p.localFree {
		bitmap[idx/64] |= 1 << uint(idx%64)
	}

	observed := 0
	area := areaInfoOf(p)
	for i := 0; i < p.capacity; {
		w := i / 64
		if bitmap[w] == ^uint64(0) {
			i += 64 - i%64 // step 4: whole word free, skip it
			continue
		}
		if bitmap[w]&(1<<uint(i%64)) == 0 {
			observed++
			if !cb(h, area, p.BlockAt(i)) {
				return false
			}
		}
		i++
	}

	debugAssert(observed == p.used, "block walk observed count mismatch") // step 5
	return true
}
