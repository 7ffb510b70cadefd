// pkg/memheap/queue.go
package memheap

// pageQueue is a doubly-linked queue of pages belonging to one size class
// of one heap. Membership in a queue is a cache derived from each page's
// own heap back-reference, which remains the ground truth (§3).
type pageQueue struct {
	first, last *Page
	count       int
}

// len returns the number of pages currently queued.
func (q *pageQueue) len() int {
	return q.count
}

// pushBack appends a single page to the tail of the queue without
// touching its heap back-reference; callers that move pages across heaps
// are responsible for updating that separately (see appendQueue below).
func (q *pageQueue) pushBack(p *Page) {
	p.prev = q.last
	p.next = nil
	if q.last != nil {
		q.last.next = p
	} else {
		q.first = p
	}
	q.last = p
	q.count++
}

// remove unlinks p from the queue. p must currently be a member.
func (q *pageQueue) remove(p *Page) {
	if p.prev != nil {
		p.prev.next = p.next
	} else {
		q.first = p.next
	}
	if p.next != nil {
		p.next.prev = p.prev
	} else {
		q.last = p.prev
	}
	p.next, p.prev = nil, nil
	q.count--
}

// each calls fn for every page currently in the queue, in order. fn must
// not mutate the queue.
func (q *pageQueue) each(fn func(*Page)) {
	for p := q.first; p != nil; p = p.next {
		fn(p)
	}
}

// appendQueue moves every page from src to the tail of dst, stamping each
// moved page's owning-heap back-reference to owner. It returns the count
// of pages moved and leaves src empty.
//
// This is safe to run while foreign threads are pushing onto the moved
// pages' thread-free inboxes: the inbox is a field of the Page, not of
// the queue, and pushThreadFree never touches next/prev or the queue
// pointers this function rewires.
func appendQueue(dst, src *pageQueue, owner *Heap) int {
	if src.count == 0 {
		return 0
	}

	moved := src.count
	for p := src.first; p != nil; p = p.next {
		p.setHeap(owner)
	}

	if dst.last != nil {
		dst.last.next = src.first
		src.first.prev = dst.last
	} else {
		dst.first = src.first
	}
	dst.last = src.last
	dst.count += src.count

	src.first, src.last, src.count = nil, nil, 0
	return moved
}
