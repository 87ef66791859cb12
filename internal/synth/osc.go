package synth

import (
	"math"
	"math/rand"
)

// Waveform selects an oscillator's shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSaw
	WaveSquare
	WaveTriangle
	WaveNoise
)

// polyBLEP returns the PolyBLEP correction term for a phase-discontinuous
// waveform sampled at phase t with per-sample phase increment dt.
func polyBLEP(t, dt float64) float64 {
	switch {
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	default:
		return 0
	}
}

// Oscillator is a single band-limited (where applicable) oscillator.
// Not safe for concurrent use.
type Oscillator struct {
	sampleRate float64
	waveform   Waveform
	freq       float64
	phase      float64
}

// NewOscillator returns an oscillator at the given sample rate.
func NewOscillator(sampleRate float64) *Oscillator {
	return &Oscillator{sampleRate: sampleRate, waveform: WaveSine}
}

// SetWaveform selects the oscillator's waveform.
func (o *Oscillator) SetWaveform(w Waveform) { o.waveform = w }

// SetFrequency sets the oscillator's fundamental frequency in Hz.
func (o *Oscillator) SetFrequency(hz float64) { o.freq = hz }

// Reset zeroes the oscillator's phase, used on fresh voice allocation.
func (o *Oscillator) Reset() { o.phase = 0 }

// Process advances the oscillator by one sample and returns its output
// in roughly [-1,1].
func (o *Oscillator) Process() float64 {
	dt := o.freq / o.sampleRate
	var out float64

	switch o.waveform {
	case WaveSine:
		out = math.Sin(o.phase * 2 * math.Pi)
	case WaveSaw:
		out = 2*o.phase - 1
		out -= polyBLEP(o.phase, dt)
	case WaveSquare:
		if o.phase < 0.5 {
			out = 1
		} else {
			out = -1
		}
		out += polyBLEP(o.phase, dt)
		shifted := math.Mod(o.phase+0.5, 1)
		out -= polyBLEP(shifted, dt)
	case WaveTriangle:
		if o.phase < 0.5 {
			out = 4*o.phase - 1
		} else {
			out = 3 - 4*o.phase
		}
	case WaveNoise:
		out = rand.Float64()*2 - 1
	}

	o.phase += dt
	for o.phase >= 1 {
		o.phase -= 1
	}
	for o.phase < 0 {
		o.phase += 1
	}
	return out
}
