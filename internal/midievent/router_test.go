package midievent

import "testing"

type fakeTarget struct {
	triggeredPad      int
	triggeredVelocity float64
	triggerCount      int
	stoppedAll        bool
}

func (f *fakeTarget) TriggerDrumPad(pad int, velocity float64) error {
	f.triggeredPad = pad
	f.triggeredVelocity = velocity
	f.triggerCount++
	return nil
}

func (f *fakeTarget) StopAllSamples() { f.stoppedAll = true }

func TestNoteOnTriggersMappedPadWithCurvedVelocity(t *testing.T) {
	target := &fakeTarget{}
	r := NewRouter(target, NewClockSync(0.3))
	r.SetNoteMapping(36, 9, 2)
	r.SetVelocityCurve(Linear, 1)

	r.Dispatch(Message{Status: 0x99, Channel: 9, Data1: 36, Data2: 127, TimestampUs: 0}, 0)

	if target.triggerCount != 1 {
		t.Fatalf("expected 1 trigger, got %d", target.triggerCount)
	}
	if target.triggeredPad != 2 {
		t.Errorf("expected pad 2, got %d", target.triggeredPad)
	}
	if target.triggeredVelocity != 1 {
		t.Errorf("expected velocity 1 for v=127, got %f", target.triggeredVelocity)
	}
}

func TestNoteOnWithZeroVelocityIsNoOp(t *testing.T) {
	target := &fakeTarget{}
	r := NewRouter(target, NewClockSync(0.3))
	r.SetNoteMapping(36, 9, 2)

	r.Dispatch(Message{Status: 0x99, Channel: 9, Data1: 36, Data2: 0, TimestampUs: 0}, 0)

	if target.triggerCount != 0 {
		t.Fatalf("expected note-on velocity 0 to be a no-op, got %d triggers", target.triggerCount)
	}
}

func TestUnmappedNoteIsIgnored(t *testing.T) {
	target := &fakeTarget{}
	r := NewRouter(target, NewClockSync(0.3))

	r.Dispatch(Message{Status: 0x90, Channel: 0, Data1: 60, Data2: 100, TimestampUs: 0}, 0)

	if target.triggerCount != 0 {
		t.Fatalf("expected unmapped note to be ignored, got %d triggers", target.triggerCount)
	}
}

func TestControlChange7SetsMasterVolume(t *testing.T) {
	target := &fakeTarget{}
	r := NewRouter(target, NewClockSync(0.3))

	r.Dispatch(Message{Status: 0xB0, Data1: 7, Data2: 64, TimestampUs: 0}, 0)

	want := 64.0 / 127
	if diff := r.MasterVolume() - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected master volume %f, got %f", want, r.MasterVolume())
	}
}

func TestTransportStopResetsClockAndStopsSamples(t *testing.T) {
	target := &fakeTarget{}
	clock := NewClockSync(0.3)
	r := NewRouter(target, clock)
	ts := int64(0)
	for i := 0; i < 10; i++ {
		clock.Pulse(ts)
		ts += 20833
	}

	r.Dispatch(Message{Status: statusTransportStop, TimestampUs: 0}, 0)

	if !target.stoppedAll {
		t.Error("expected transport stop to stop all samples")
	}
	if clock.IsStable() {
		t.Error("expected transport stop to reset clock-sync stability")
	}
}

func TestFutureMessageIsQueuedThenDrained(t *testing.T) {
	target := &fakeTarget{}
	r := NewRouter(target, NewClockSync(0.3))
	r.SetNoteMapping(36, 9, 0)

	processed := r.Dispatch(Message{Status: 0x99, Channel: 9, Data1: 36, Data2: 100, TimestampUs: 5000}, 0)
	if processed {
		t.Fatal("expected message 5ms in the future to be queued, not processed immediately")
	}
	if target.triggerCount != 0 {
		t.Fatal("expected no trigger before the message is due")
	}

	r.DrainDue(5000)
	if target.triggerCount != 1 {
		t.Fatalf("expected 1 trigger after draining a due message, got %d", target.triggerCount)
	}
}

func TestClockPulseOnlyFedWhenSyncEnabled(t *testing.T) {
	target := &fakeTarget{}
	clock := NewClockSync(0.3)
	r := NewRouter(target, clock)

	r.Dispatch(Message{Status: statusClockPulse, TimestampUs: 0}, 0)
	r.Dispatch(Message{Status: statusClockPulse, TimestampUs: 20833}, 20833)
	if len(clock.intervals) != 0 {
		t.Fatal("expected clock pulses to be ignored while sync disabled")
	}

	r.SetClockSyncEnabled(true)
	r.Dispatch(Message{Status: statusClockPulse, TimestampUs: 41666}, 41666)
	r.Dispatch(Message{Status: statusClockPulse, TimestampUs: 62499}, 62499)
	if len(clock.intervals) != 1 {
		t.Errorf("expected 1 interval recorded once sync enabled, got %d", len(clock.intervals))
	}
}
