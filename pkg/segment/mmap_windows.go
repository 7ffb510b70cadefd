//go:build windows

// pkg/segment/mmap_windows.go
package segment

import (
	"errors"
	"reflect"
	"unsafe"

	"golang.org/x/sys/windows"
)

// windowsHandle tracks the VirtualAlloc base address so Close/Grow can
// release or replace it.
type windowsHandle struct {
	base uintptr
}

// ReserveOSRegion reserves size bytes of anonymous, zero-filled memory
// directly from the OS via VirtualAlloc(MEM_COMMIT|MEM_RESERVE). This is
// the real "OS memory provider" a segment calls into to back a fresh run
// of pages; nothing here is file-backed or persisted.
func ReserveOSRegion(size int64) (*OSRegion, error) {
	if size <= 0 {
		return nil, errors.New("segment: region size must be positive")
	}

	addr, err := windows.VirtualAlloc(0, uintptr(size),
		windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}

	var data []byte
	header := (*reflect.SliceHeader)(unsafe.Pointer(&data))
	header.Data = addr
	header.Len = int(size)
	header.Cap = int(size)

	return &OSRegion{
		handle: &windowsHandle{base: addr},
		data:   data,
		size:   size,
	}, nil
}

// Sync is a no-op: an anonymous region has nothing backing it on disk.
func (r *OSRegion) Sync() error {
	return nil
}

// Grow reserves a new, larger region, copies the live bytes across, and
// releases the old one.
func (r *OSRegion) Grow(newSize int64) error {
	if newSize <= r.size {
		return nil
	}

	next, err := ReserveOSRegion(newSize)
	if err != nil {
		return err
	}
	copy(next.data, r.data)

	old := r.handle.(*windowsHandle)
	windows.VirtualFree(old.base, 0, windows.MEM_RELEASE)

	r.handle = next.handle
	r.data = next.data
	r.size = next.size
	return nil
}

// Close releases the reserved region back to the OS.
func (r *OSRegion) Close() error {
	h, ok := r.handle.(*windowsHandle)
	if !ok || h == nil {
		return nil
	}
	err := windows.VirtualFree(h.base, 0, windows.MEM_RELEASE)
	r.data = nil
	r.handle = nil
	return err
}
