// pkg/segment/segment.go
package segment

import "sync"

// Segment is the external collaborator that backs a contiguous run of
// pages with real address space. The heap management core never reserves
// memory itself; it asks a Segment to carve page-sized regions out of an
// already-reserved range and relies on the Segment's cookie to detect
// corrupted or foreign pointers when walking back from a block to its
// owning heap (see heapcore's ownership queries).
type Segment struct {
	mu sync.Mutex

	id       uint64
	randSeed uint64
	cookie   Cookie
	backing  Backing
	reserved int64 // address-space ceiling; may exceed backing.Size()
	pageSize int
	nextPage int // next free offset, in pages, not yet carved out
}

// New stamps a fresh integrity cookie derived from id and randSeed (the
// heap's random stream supplies randSeed so cookies cannot be guessed from
// segment id alone) and records reserved as the ceiling this segment may
// grow its backing store to. backing need not already hold reserved bytes:
// CarvePage commits more of it on demand, one page at a time, the way a
// segment's reserved address range and its actually-committed memory are
// kept separate.
func New(id uint64, randSeed uint64, reserved int64, pageSize int, backing Backing) *Segment {
	return &Segment{
		id:       id,
		randSeed: randSeed,
		cookie:   DeriveCookie(id, randSeed),
		backing:  backing,
		reserved: reserved,
		pageSize: pageSize,
	}
}

// ID returns the segment's identity.
func (s *Segment) ID() uint64 {
	return s.id
}

// Cookie returns the segment's integrity cookie.
func (s *Segment) Cookie() Cookie {
	return s.cookie
}

// VerifyCookie checks probe against this segment's cookie, returning a
// *CorruptionError on mismatch.
func (s *Segment) VerifyCookie(probe Cookie) *CorruptionError {
	return Verify(s.id, s.randSeed, probe)
}

// Reserved returns the total bytes this segment may grow its backing
// store to, which can exceed the backing's current, actually-committed
// size.
func (s *Segment) Reserved() int64 {
	return s.reserved
}

// Committed returns the number of bytes the backing store actually holds
// right now, which only grows as CarvePage demands more.
func (s *Segment) Committed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backing.Size()
}

// PageSize returns the fixed page size this segment carves its regions
// into.
func (s *Segment) PageSize() int {
	return s.pageSize
}

// CarvePage returns the next unused page-sized byte range, or nil if the
// segment's reserved address space is exhausted. The returned slice is
// zero-filled the first time it is carved (the OS region it comes from is
// zero-filled on reservation) and is the caller's to format as page data.
//
// If the backing store hasn't been committed out that far yet, CarvePage
// grows it by exactly one page before carving, so a segment only pays for
// the pages it actually hands out rather than its full reservation.
func (s *Segment) CarvePage() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	offset := s.nextPage * s.pageSize
	need := int64(offset + s.pageSize)
	if need > s.reserved {
		return nil
	}
	if need > s.backing.Size() {
		if err := s.backing.Grow(need); err != nil {
			return nil
		}
	}
	region := s.backing.Slice(offset, s.pageSize)
	s.nextPage++
	return region
}

// Close releases the segment's backing memory.
func (s *Segment) Close() error {
	return s.backing.Close()
}
