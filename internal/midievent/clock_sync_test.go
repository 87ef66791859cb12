package midievent

import "testing"

func TestPerfectlyPeriodicPulsesConvergeAndGoStable(t *testing.T) {
	c := NewClockSync(0.3)
	const intervalUs = 20833 // 120 BPM at 24 ppq
	ts := int64(0)
	for i := 0; i < 40; i++ {
		c.Pulse(ts)
		ts += intervalUs
	}
	if !c.IsStable() {
		t.Fatal("expected stable after 40 perfectly periodic pulses")
	}
	if diff := c.SmoothedBPM() - 120.0; diff > 0.1 || diff < -0.1 {
		t.Errorf("expected smoothed BPM within 0.1 of 120, got %f", c.SmoothedBPM())
	}
}

func TestUnrealisticIntervalsAreRejected(t *testing.T) {
	c := NewClockSync(0.3)
	c.Pulse(0)
	c.Pulse(500) // 500us, below the 1ms floor
	if len(c.intervals) != 0 {
		t.Errorf("expected sub-1ms interval to be rejected, ring has %d entries", len(c.intervals))
	}
}

func TestResetClearsRingAndStability(t *testing.T) {
	c := NewClockSync(0.3)
	ts := int64(0)
	for i := 0; i < 10; i++ {
		c.Pulse(ts)
		ts += 20833
	}
	if !c.IsStable() {
		t.Fatal("expected stable before reset")
	}
	c.Reset()
	if c.IsStable() {
		t.Fatal("expected not stable after reset")
	}
	if len(c.intervals) != 0 {
		t.Errorf("expected empty ring after reset, got %d entries", len(c.intervals))
	}
}

func TestNotStableBelowEightSamples(t *testing.T) {
	c := NewClockSync(0.3)
	ts := int64(0)
	for i := 0; i < 5; i++ {
		c.Pulse(ts)
		ts += 20833
	}
	if c.IsStable() {
		t.Fatal("expected not stable with fewer than 8 intervals")
	}
}
