// pkg/memheap/absorb.go
package memheap

// Absorb implements §4.5: merge every page and all deferred-free work
// from into to, leaving from reset to empty. A nil from, or one with no
// pages, is a no-op (the absorb-identity law).
func Absorb(to, from *Heap) {
	if from == nil {
		return
	}

	from.mu.Lock()
	empty := from.pageCount == 0
	from.mu.Unlock()
	if empty {
		return
	}

	// Step 2: append each bin's page queue, updating page back-references
	// to to before releasing either lock so appendQueue's comment about
	// foreign thread-frees racing the move continues to hold.
	to.mu.Lock()
	from.mu.Lock()
	for i := range to.pages {
		moved := appendQueue(&to.pages[i], &from.pages[i], to)
		to.pageCount += moved
		from.pageCount -= moved
	}
	from.mu.Unlock()
	to.mu.Unlock()

	// Step 3a: swap from's thread_delayed_free to nil, capturing the
	// chain. This is the final synchronization point for from: foreign
	// frees racing this swap either land in the captured chain (and are
	// re-encoded below) or observe the page back-reference update from
	// step 2 and route to to's page-level thread-free inbox instead.
	first := from.threadDelayedFree.Swap(nil)

	// Step 3b/3c: decode each link with from's keys, re-encode with to's,
	// and prepend it to to's thread_delayed_free via CAS loop.
	for n := first; n != nil; {
		next := n.next
		if n.verifyEncoding(from.key0, from.key1) {
			n.next = nil
			to.prependDelayedFree(n)
		}
		// a link that fails its canary check is corrupted; dropping it
		// here is the only option that does not risk corrupting to.
		n = next
	}

	// Step 4: reset from to empty.
	from.mu.Lock()
	from.resetPages()
	from.mu.Unlock()
}
