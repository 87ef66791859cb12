package midievent

import "testing"

func TestPendingQueueDropsOldestPastCapacity(t *testing.T) {
	target := &fakeTarget{}
	r := NewRouter(target, NewClockSync(0.3))

	for i := 0; i < pendingQueueCapacity+10; i++ {
		r.Dispatch(Message{Status: 0xB0, Data1: 1, Data2: 0, TimestampUs: int64(i+1) * 100000}, 0)
	}

	if got := r.DroppedCount(); got != 10 {
		t.Errorf("expected 10 dropped messages, got %d", got)
	}
	if len(r.pending) != pendingQueueCapacity {
		t.Errorf("expected queue capped at %d, got %d", pendingQueueCapacity, len(r.pending))
	}
}
