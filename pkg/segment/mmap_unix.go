//go:build unix || darwin || linux || freebsd || openbsd || netbsd

// pkg/segment/mmap_unix.go
package segment

import (
	"errors"
	"syscall"
)

// ReserveOSRegion reserves size bytes of anonymous, zero-filled memory
// directly from the OS via mmap(MAP_ANON|MAP_PRIVATE). This is the real
// "OS memory provider" a segment calls into to back a fresh run of pages;
// nothing here is file-backed or persisted.
func ReserveOSRegion(size int64) (*OSRegion, error) {
	if size <= 0 {
		return nil, errors.New("segment: region size must be positive")
	}

	data, err := syscall.Mmap(-1, 0, int(size),
		syscall.PROT_READ|syscall.PROT_WRITE,
		syscall.MAP_ANON|syscall.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}

	return &OSRegion{data: data, size: size}, nil
}

// Sync is a no-op: an anonymous region has nothing backing it on disk.
func (r *OSRegion) Sync() error {
	return nil
}

// Grow reserves a new, larger anonymous region, copies the live bytes
// across, and releases the old one. Segment.CarvePage calls it whenever
// it carves a page past the region's current size.
func (r *OSRegion) Grow(newSize int64) error {
	if newSize <= r.size {
		return nil
	}

	next, err := syscall.Mmap(-1, 0, int(newSize),
		syscall.PROT_READ|syscall.PROT_WRITE,
		syscall.MAP_ANON|syscall.MAP_PRIVATE)
	if err != nil {
		return err
	}
	copy(next, r.data)

	if err := syscall.Munmap(r.data); err != nil {
		syscall.Munmap(next)
		return err
	}

	r.data = next
	r.size = newSize
	return nil
}

// Close releases the reserved region back to the OS.
func (r *OSRegion) Close() error {
	if r.data == nil {
		return nil
	}
	err := syscall.Munmap(r.data)
	r.data = nil
	return err
}
