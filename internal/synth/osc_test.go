package synth

import "testing"

func TestSineIsPeriodicAtFrequency(t *testing.T) {
	o := NewOscillator(48000)
	o.SetWaveform(WaveSine)
	o.SetFrequency(480) // 100 samples per cycle
	for i := 0; i < 100; i++ {
		o.Process()
	}
	if diff := o.phase; diff > 1e-6 {
		t.Errorf("expected phase to wrap to ~0 after exactly one period, got %f", diff)
	}
}

func TestSawStaysBoundedNearDiscontinuity(t *testing.T) {
	o := NewOscillator(48000)
	o.SetWaveform(WaveSaw)
	o.SetFrequency(2000)
	for i := 0; i < 1000; i++ {
		v := o.Process()
		if v < -1.5 || v > 1.5 {
			t.Fatalf("saw output %f exceeds bounded range at sample %d", v, i)
		}
	}
}

func TestSquareStaysBoundedNearDiscontinuity(t *testing.T) {
	o := NewOscillator(48000)
	o.SetWaveform(WaveSquare)
	o.SetFrequency(2000)
	for i := 0; i < 1000; i++ {
		v := o.Process()
		if v < -1.5 || v > 1.5 {
			t.Fatalf("square output %f exceeds bounded range at sample %d", v, i)
		}
	}
}

func TestTriangleRangeIsUnit(t *testing.T) {
	o := NewOscillator(48000)
	o.SetWaveform(WaveTriangle)
	o.SetFrequency(100)
	for i := 0; i < 4800; i++ {
		v := o.Process()
		if v < -1.0001 || v > 1.0001 {
			t.Fatalf("triangle output %f out of unit range at sample %d", v, i)
		}
	}
}

func TestNoiseStaysWithinUnitRange(t *testing.T) {
	o := NewOscillator(48000)
	o.SetWaveform(WaveNoise)
	for i := 0; i < 1000; i++ {
		v := o.Process()
		if v < -1 || v > 1 {
			t.Fatalf("noise output %f out of unit range at sample %d", v, i)
		}
	}
}

func TestResetZeroesPhase(t *testing.T) {
	o := NewOscillator(48000)
	o.SetWaveform(WaveSaw)
	o.SetFrequency(440)
	for i := 0; i < 100; i++ {
		o.Process()
	}
	o.Reset()
	if o.phase != 0 {
		t.Errorf("expected phase 0 after Reset, got %f", o.phase)
	}
}
