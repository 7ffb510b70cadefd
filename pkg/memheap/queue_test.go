// pkg/memheap/queue_test.go
package memheap

import "testing"

func TestPageQueuePushBackAndRemove(t *testing.T) {
	var q pageQueue
	p1 := newTestPage(t, 0, 16, 2)
	p2 := newTestPage(t, 0, 16, 2)
	p3 := newTestPage(t, 0, 16, 2)

	q.pushBack(p1)
	q.pushBack(p2)
	q.pushBack(p3)
	if q.len() != 3 {
		t.Fatalf("len = %d, want 3", q.len())
	}

	var order []*Page
	q.each(func(p *Page) { order = append(order, p) })
	if len(order) != 3 || order[0] != p1 || order[1] != p2 || order[2] != p3 {
		t.Fatal("queue order should match push order")
	}

	q.remove(p2)
	if q.len() != 2 {
		t.Fatalf("len = %d after remove, want 2", q.len())
	}
	if p1.next != p3 || p3.prev != p1 {
		t.Fatal("removing the middle page should relink neighbors")
	}
}

func TestPageQueueRemoveHeadAndTail(t *testing.T) {
	var q pageQueue
	p1 := newTestPage(t, 0, 16, 2)
	p2 := newTestPage(t, 0, 16, 2)
	q.pushBack(p1)
	q.pushBack(p2)

	q.remove(p1)
	if q.first != p2 || q.last != p2 {
		t.Fatal("removing head should leave the remaining page as both first and last")
	}

	q.remove(p2)
	if q.first != nil || q.last != nil || q.len() != 0 {
		t.Fatal("removing the last page should leave the queue empty")
	}
}

func TestAppendQueueMovesAllPagesAndRestampsOwner(t *testing.T) {
	src := &pageQueue{}
	dst := &pageQueue{}

	a := newTestBackingHeap(201)
	b := newTestBackingHeap(202)

	p1 := newTestPage(t, 0, 16, 2)
	p2 := newTestPage(t, 0, 16, 2)
	src.pushBack(p1)
	src.pushBack(p2)
	p1.setHeap(a)
	p2.setHeap(a)

	moved := appendQueue(dst, src, b)
	if moved != 2 {
		t.Fatalf("moved = %d, want 2", moved)
	}
	if src.len() != 0 {
		t.Fatal("src should be empty after appendQueue")
	}
	if dst.len() != 2 {
		t.Fatalf("dst len = %d, want 2", dst.len())
	}
	if p1.Heap() != b || p2.Heap() != b {
		t.Fatal("every moved page should be restamped to the destination heap")
	}
}

func TestAppendQueueEmptySourceIsNoop(t *testing.T) {
	src := &pageQueue{}
	dst := &pageQueue{}
	b := newTestBackingHeap(203)

	p := newTestPage(t, 0, 16, 2)
	dst.pushBack(p)

	moved := appendQueue(dst, src, b)
	if moved != 0 {
		t.Fatalf("moved = %d, want 0 for an empty source", moved)
	}
	if dst.len() != 1 {
		t.Fatal("appending an empty source should not disturb dst")
	}
}
