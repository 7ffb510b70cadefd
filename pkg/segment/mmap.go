// pkg/segment/mmap.go
package segment

// OSRegion is a contiguous range of address space reserved directly from
// the operating system (anonymous mmap on Unix, VirtualAlloc on Windows).
// It is the default Backing used by segments that are not wrapped in an
// in-memory test harness. Platform-specific reservation lives in
// mmap_unix.go and mmap_windows.go.
type OSRegion struct {
	handle interface{} // unused on Unix, *windows.Handle bookkeeping on Windows
	data   []byte
	size   int64
}

// Size returns the reserved region's size in bytes.
func (r *OSRegion) Size() int64 {
	return r.size
}

// Slice returns a slice of the reserved bytes at the given offset and
// length, or nil if the requested range is out of bounds.
func (r *OSRegion) Slice(offset, length int) []byte {
	if offset < 0 || length < 0 || offset+length > len(r.data) {
		return nil
	}
	return r.data[offset : offset+length]
}
