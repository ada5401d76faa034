package engine

import (
	"testing"

	"github.com/softtrail/serpentines/platform"
)

func TestQueuePushDrain(t *testing.T) {
	q := newCursorQueue(16)

	for i := 0; i < 10; i++ {
		q.push(platform.CursorSample{X: float64(i)})
	}

	got := q.drain(nil)
	if len(got) != 10 {
		t.Fatalf("drained %d samples, want 10", len(got))
	}
	for i, s := range got {
		if s.X != float64(i) {
			t.Errorf("sample %d has X = %v, want %v (order lost)", i, s.X, i)
		}
	}

	if again := q.drain(nil); len(again) != 0 {
		t.Errorf("second drain returned %d samples, want 0", len(again))
	}
}

func TestQueueOverwritesOldestWhenFull(t *testing.T) {
	q := newCursorQueue(16)

	for i := 0; i < 20; i++ {
		q.push(platform.CursorSample{X: float64(i)})
	}

	if q.droppedCount() != 4 {
		t.Errorf("droppedCount = %d, want 4", q.droppedCount())
	}
	got := q.drain(nil)
	if len(got) != 16 {
		t.Fatalf("drained %d, want 16 (ring capacity)", len(got))
	}
	// Overflow evicts the oldest samples; the drained window must end at
	// the latest cursor position.
	if got[0].X != 4 {
		t.Errorf("first surviving sample X = %v, want 4", got[0].X)
	}
	if got[len(got)-1].X != 19 {
		t.Errorf("last sample X = %v, want the latest 19", got[len(got)-1].X)
	}
	for i := 1; i < len(got); i++ {
		if got[i].X != got[i-1].X+1 {
			t.Errorf("samples out of order at %d: %v after %v", i, got[i].X, got[i-1].X)
		}
	}
}

func TestQueueWrapAround(t *testing.T) {
	q := newCursorQueue(16)

	// Cycle the ring several times past its capacity.
	x := 0.0
	for cycle := 0; cycle < 5; cycle++ {
		for i := 0; i < 12; i++ {
			q.push(platform.CursorSample{X: x})
			x++
		}
		got := q.drain(nil)
		if len(got) != 12 {
			t.Fatalf("cycle %d: drained %d, want 12", cycle, len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].X != got[i-1].X+1 {
				t.Fatalf("cycle %d: samples out of order at %d", cycle, i)
			}
		}
	}
	if q.droppedCount() != 0 {
		t.Errorf("droppedCount = %d, want 0", q.droppedCount())
	}
}

func TestQueueRoundsCapacityUp(t *testing.T) {
	q := newCursorQueue(100)
	if len(q.buf) != 128 {
		t.Errorf("capacity = %d, want next power of two 128", len(q.buf))
	}

	q = newCursorQueue(0)
	if len(q.buf) != 16 {
		t.Errorf("capacity = %d, want minimum 16", len(q.buf))
	}
}
