package param

import "testing"

func TestGetClampsRawPlusModulation(t *testing.T) {
	p := New("cutoff", 0, TypeFloat, CategoryAudioIO, 20, 20000, 1000)
	p.AddModulation(25000)
	if got := p.Get(); got != 20000 {
		t.Errorf("expected clamp to max 20000, got %f", got)
	}
	p.ClearModulation()
	if got := p.Get(); got != 1000 {
		t.Errorf("expected raw value 1000 after clearing modulation, got %f", got)
	}
}

func TestSetNormalizedRoundTripLinear(t *testing.T) {
	p := New("volume", 0, TypeFloat, CategoryControl, 0, 1, 0.5)
	for _, n := range []float64{0, 0.25, 0.5, 0.75, 1} {
		p.SetNormalized(n)
		if got := p.GetNormalized(); abs(got-n) > 1e-9 {
			t.Errorf("normalized round-trip: set %f got %f", n, got)
		}
	}
}

func TestSetNormalizedLogarithmicMonotonic(t *testing.T) {
	p := New("freq", 0, TypeFloat, CategoryAudioIO, 20, 20000, 1000).WithHints(HintLogarithmicBit)
	prev := p.Min()
	for _, n := range []float64{0, 0.25, 0.5, 0.75, 1} {
		p.SetNormalized(n)
		v := p.Get()
		if v < prev {
			t.Errorf("expected monotonic increase, got %f after %f", v, prev)
		}
		prev = v
	}
	p.SetNormalized(1)
	v1 := p.Get()
	p.SetNormalized(1)
	if v2 := p.Get(); v2 != v1 {
		t.Errorf("expected idempotent round trip, got %f then %f", v1, v2)
	}
}

func TestDisplayFormatsByType(t *testing.T) {
	b := New("active", 0, TypeBool, CategoryState, 0, 1, 1)
	if got := b.Display(); got != "On" {
		t.Errorf("expected On, got %s", got)
	}
	b.Set(0)
	if got := b.Display(); got != "Off" {
		t.Errorf("expected Off, got %s", got)
	}
	c := New("wave", 0, TypeChoice, CategoryControl, 0, 2, 1).WithChoices([]string{"sine", "saw", "square"})
	if got := c.Display(); got != "saw" {
		t.Errorf("expected saw, got %s", got)
	}
}

func TestSetClampsToRange(t *testing.T) {
	p := New("q", 0, TypeFloat, CategoryAudioIO, 0.5, 25, 1)
	p.Set(100)
	if got := p.Get(); got != 25 {
		t.Errorf("expected clamp to 25, got %f", got)
	}
	p.Set(-5)
	if got := p.Get(); got != 0.5 {
		t.Errorf("expected clamp to 0.5, got %f", got)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
