//go:build linux

// pkg/memheap/threadid_linux.go
package memheap

import "golang.org/x/sys/unix"

// CurrentThreadID returns the calling OS thread's id, matching §3's
// "identity of the thread that created it." Accurate identity requires
// the caller to have pinned the calling goroutine to its OS thread via
// runtime.LockOSThread; without that, successive calls within the same
// goroutine can observe different ids as the Go scheduler migrates it
// across threads.
func CurrentThreadID() uint64 {
	return uint64(unix.Gettid())
}
