package scheduler

import "testing"

type fakePadTrigger struct {
	fired []StepTrigger
}

func (f *fakePadTrigger) TriggerDrumPad(pad int, velocity float64) error {
	f.fired = append(f.fired, StepTrigger{Pad: pad, Velocity: velocity})
	return nil
}

func TestRejectsOutOfRangePadOrVelocity(t *testing.T) {
	s := New()
	if err := s.ScheduleStepTrigger(16, 1, 0); err == nil {
		t.Error("expected error for pad index 16")
	}
	if err := s.ScheduleStepTrigger(0, 1.5, 0); err == nil {
		t.Error("expected error for velocity 1.5")
	}
}

func TestFireDueFiresInTimestampOrder(t *testing.T) {
	s := New()
	s.ScheduleStepTrigger(2, 0.5, 300)
	s.ScheduleStepTrigger(0, 0.5, 100)
	s.ScheduleStepTrigger(1, 0.5, 200)

	target := &fakePadTrigger{}
	s.FireDue(target, 1000)

	if len(target.fired) != 3 {
		t.Fatalf("expected 3 fired triggers, got %d", len(target.fired))
	}
	for i, want := range []int{0, 1, 2} {
		if target.fired[i].Pad != want {
			t.Errorf("fired[%d].Pad = %d, want %d (non-decreasing timestamp order)", i, target.fired[i].Pad, want)
		}
	}
	c := s.Counters()
	if c.TotalTriggers != 3 {
		t.Errorf("expected TotalTriggers 3, got %d", c.TotalTriggers)
	}
}

func TestStaleTriggersAreCountedMissedNotFired(t *testing.T) {
	s := New()
	s.ScheduleStepTrigger(0, 1, 0)

	target := &fakePadTrigger{}
	s.FireDue(target, 200_000) // 200ms later, past the 100ms staleness cutoff

	if len(target.fired) != 0 {
		t.Fatalf("expected stale trigger not to fire, got %d fires", len(target.fired))
	}
	if s.Counters().MissedTriggers != 1 {
		t.Errorf("expected 1 missed trigger, got %d", s.Counters().MissedTriggers)
	}
}

func TestFutureTriggersAreNotFiredEarly(t *testing.T) {
	s := New()
	s.ScheduleStepTrigger(0, 1, 5000)
	target := &fakePadTrigger{}
	s.FireDue(target, 1000)
	if len(target.fired) != 0 {
		t.Fatal("expected future trigger not to fire before its timestamp")
	}
	s.FireDue(target, 5000)
	if len(target.fired) != 1 {
		t.Fatal("expected trigger to fire once its timestamp is reached")
	}
}

func TestClearScheduledEventsDrainsQueue(t *testing.T) {
	s := New()
	s.ScheduleStepTrigger(0, 1, 0)
	s.ScheduleStepTrigger(1, 1, 100)
	s.ClearScheduledEvents()

	target := &fakePadTrigger{}
	s.FireDue(target, 1_000_000)
	if len(target.fired) != 0 {
		t.Fatal("expected cleared queue to fire nothing")
	}
}

func TestJitterIsMaxMinusMinLatency(t *testing.T) {
	s := New()
	s.ScheduleStepTrigger(0, 1, 0)
	s.ScheduleStepTrigger(1, 1, 0)
	target := &fakePadTrigger{}
	s.FireDue(target, 50_000) // both at 50ms latency: jitter 0
	if s.Counters().JitterUs != 0 {
		t.Errorf("expected 0 jitter for equal-latency fires, got %d", s.Counters().JitterUs)
	}
}
