// Package filter implements the two-integrator, bilinear-prewarped
// state-variable filter producing simultaneous low-pass, band-pass,
// and high-pass outputs.
package filter

import "math"

// Mode selects which simultaneous output Process returns.
type Mode int

const (
	LowPass Mode = iota
	BandPass
	HighPass
)

const (
	minCutoffHz  = 20.0
	nyquistGuard = 100.0
	minQ         = 0.5
	maxQ         = 25.0
)

// SVF is a two-integrator state-variable filter. Not safe for
// concurrent use; each voice/channel owns one.
type SVF struct {
	sampleRate float64
	mode       Mode

	s1, s2 float64
	g, r2, h float64
}

// New returns a filter defaulting to low-pass at 18kHz, Q 0.707,
// 48kHz sample rate.
func New() *SVF {
	f := &SVF{sampleRate: 48000}
	f.calculateCoefficients(18000, 0.707)
	return f
}

// SetSampleRate updates the sample rate used by subsequent Configure
// calls. A non-positive value is ignored.
func (f *SVF) SetSampleRate(sr float64) {
	if sr > 0 {
		f.sampleRate = sr
	}
}

// Configure sets the output mode, cutoff, and resonance, clamping
// cutoff to [20Hz, nyquist-100Hz] and Q to [0.5, 25].
func (f *SVF) Configure(mode Mode, cutoffHz, resonanceQ float64) {
	f.mode = mode

	if cutoffHz < minCutoffHz {
		cutoffHz = minCutoffHz
	}
	if max := f.sampleRate/2 - nyquistGuard; cutoffHz > max {
		cutoffHz = max
	}
	if cutoffHz < minCutoffHz {
		cutoffHz = minCutoffHz
	}

	if resonanceQ < minQ {
		resonanceQ = minQ
	}
	if resonanceQ > maxQ {
		resonanceQ = maxQ
	}

	f.calculateCoefficients(cutoffHz, resonanceQ)
}

func (f *SVF) calculateCoefficients(cutoffHz, resonanceQ float64) {
	if f.sampleRate <= 0 {
		return
	}
	wd := 2 * math.Pi * cutoffHz
	period := 1 / f.sampleRate
	wa := (2 / period) * math.Tan(wd*period/2)
	f.g = wa * period / 2

	if resonanceQ < 0.01 {
		resonanceQ = 0.01
	}
	f.r2 = 1 / (2 * resonanceQ)
	f.h = 1 / (1 + 2*f.r2*f.g + f.g*f.g)
}

// Process advances the filter by one sample and returns the output
// selected by the configured mode. Order of operations is load-bearing.
func (f *SVF) Process(x float64) float64 {
	yHP := f.h * (x - (2*f.r2+f.g)*f.s1 - f.s2)
	yBP := f.g*yHP + f.s1
	f.s1 = yBP + f.g*yHP
	yLP := f.g*yBP + f.s2
	f.s2 = yLP + f.g*yBP

	switch f.mode {
	case BandPass:
		return yBP
	case HighPass:
		return yHP
	default:
		return yLP
	}
}

// Reset zeroes the integrator states.
func (f *SVF) Reset() {
	f.s1 = 0
	f.s2 = 0
}
