// pkg/segment/integrity.go
package segment

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// CorruptionError reports that a segment's integrity cookie did not match
// what a reader expected, meaning either the pointer being resolved did
// not come from this allocator or the segment's header was overwritten.
type CorruptionError struct {
	SegmentID   uint64
	ExpectedCRC uint32
	ActualCRC   uint32
	Message     string
}

// Error implements the error interface.
func (e *CorruptionError) Error() string {
	return fmt.Sprintf("segment %d corruption: expected cookie %08x, got %08x (%s)",
		e.SegmentID, e.ExpectedCRC, e.ActualCRC, e.Message)
}

// Cookie is a segment's integrity cookie: a CRC32 derived from the
// segment's identity, stamped into the header at reservation time and
// checked on every pointer resolution that walks through the segment.
// A mismatch means corruption or a foreign (non-heap) pointer.
type Cookie uint32

// DeriveCookie computes the cookie for a segment from its id and the
// random stream value supplied at reservation time. It is deterministic
// given those two inputs so a segment can always re-verify itself without
// persisting anything beyond the cookie itself.
func DeriveCookie(segmentID uint64, randSeed uint64) Cookie {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], segmentID)
	binary.LittleEndian.PutUint64(buf[8:16], randSeed)
	sum := crc32.ChecksumIEEE(buf[:])
	if sum == 0 {
		sum = 1 // a zero cookie is indistinguishable from "never written"
	}
	return Cookie(sum)
}

// Verify reports whether probe matches the cookie stamped for segmentID
// given the same randSeed used at reservation time. Returns a
// *CorruptionError describing the mismatch when it does not.
func Verify(segmentID uint64, randSeed uint64, probe Cookie) *CorruptionError {
	expected := DeriveCookie(segmentID, randSeed)
	if expected == probe {
		return nil
	}
	return &CorruptionError{
		SegmentID:   segmentID,
		ExpectedCRC: uint32(expected),
		ActualCRC:   uint32(probe),
		Message:     "cookie mismatch",
	}
}
