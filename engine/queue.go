package engine

import (
	"sync/atomic"

	"github.com/softtrail/serpentines/platform"
)

// cursorQueue is a bounded single-producer/single-consumer ring bridging
// the platform input hook (which may run on an OS-owned thread) and the
// render loop. Neither side ever blocks: if the consumer stalls a full
// ring behind, the producer overwrites the oldest sample and counts the
// loss, so the drained window always ends at the cursor's latest position.
type cursorQueue struct {
	buf     []platform.CursorSample
	mask    uint64
	head    atomic.Uint64 // next slot to read; CAS-advanced by either side
	tail    atomic.Uint64 // next slot to write, advanced only by the producer
	dropped atomic.Uint64
}

func newCursorQueue(size int) *cursorQueue {
	cap := uint64(16)
	for cap < uint64(size) {
		cap <<= 1
	}
	return &cursorQueue{
		buf:  make([]platform.CursorSample, cap),
		mask: cap - 1,
	}
}

// push appends a sample, evicting the oldest pending one when the ring is
// full. Producer side only.
func (q *cursorQueue) push(s platform.CursorSample) {
	tail := q.tail.Load()
	for tail-q.head.Load() >= uint64(len(q.buf)) {
		head := q.head.Load()
		if q.head.CompareAndSwap(head, head+1) {
			q.dropped.Add(1)
		}
	}
	q.buf[tail&q.mask] = s
	q.tail.Store(tail + 1)
}

// drain appends all pending samples to dst and returns it. Consumer side
// only. Each slot is claimed by CAS before use; a slot the producer evicted
// mid-read is simply skipped.
func (q *cursorQueue) drain(dst []platform.CursorSample) []platform.CursorSample {
	for {
		head := q.head.Load()
		if head == q.tail.Load() {
			return dst
		}
		s := q.buf[head&q.mask]
		if q.head.CompareAndSwap(head, head+1) {
			dst = append(dst, s)
		}
	}
}

// droppedCount returns the total samples dropped since start.
func (q *cursorQueue) droppedCount() uint64 {
	return q.dropped.Load()
}
