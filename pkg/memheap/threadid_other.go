//go:build !linux

// pkg/memheap/threadid_other.go
package memheap

import (
	"bytes"
	"runtime"
	"strconv"
)

// CurrentThreadID returns a stable identity for the calling goroutine.
// golang.org/x/sys exposes no portable Gettid outside Linux, so this
// falls back to parsing the goroutine id out of runtime.Stack's header
// ("goroutine 123 [running]:"), a well-known technique for recovering a
// per-goroutine identity without a dedicated runtime hook. Goroutines do
// not migrate between OS threads the way this module's "thread" concept
// assumes they might on Linux, so the fallback is stable in practice even
// though it is not a real OS thread id.
func CurrentThreadID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	if i := bytes.Index(b, []byte(prefix)); i >= 0 {
		b = b[i+len(prefix):]
	}
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}

	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 1
	}
	return id
}
