package filter

import (
	"math"
	"testing"
)

func TestBoundedInputYieldsBoundedOutput(t *testing.T) {
	modes := []Mode{LowPass, BandPass, HighPass}
	cutoffs := []float64{20, 200, 2000, 18000}
	qs := []float64{0.5, 1, 5, 25}
	for _, mode := range modes {
		for _, cutoff := range cutoffs {
			for _, q := range qs {
				f := New()
				f.SetSampleRate(48000)
				f.Configure(mode, cutoff, q)
				for i := 0; i < 2000; i++ {
					x := 1.0
					if i%2 == 0 {
						x = -1.0
					}
					y := f.Process(x)
					if math.IsNaN(y) || math.Abs(y) >= 50 {
						t.Fatalf("mode=%d cutoff=%f q=%f: unbounded output %f at sample %d", mode, cutoff, q, y, i)
					}
				}
			}
		}
	}
}

func TestResetZeroesResponseToZeroInput(t *testing.T) {
	f := New()
	f.Configure(LowPass, 1000, 5)
	for i := 0; i < 100; i++ {
		f.Process(1)
	}
	f.Reset()
	if y := f.Process(0); y != 0 {
		t.Errorf("expected zero response after reset, got %f", y)
	}
}

func TestCutoffAndResonanceClamped(t *testing.T) {
	f := New()
	f.SetSampleRate(48000)
	f.Configure(LowPass, -100, 0)
	// Should not panic or produce NaN with out-of-range inputs clamped internally.
	if y := f.Process(1); math.IsNaN(y) {
		t.Errorf("expected finite output with clamped coefficients, got NaN")
	}
	f.Configure(LowPass, 1e9, 1000)
	if y := f.Process(1); math.IsNaN(y) {
		t.Errorf("expected finite output with clamped coefficients, got NaN")
	}
}
