// Package lfo implements the low-frequency oscillator shared by synth
// voices and drum pads: free-running or tempo-synced, with a
// destination tag the caller uses to route its output.
package lfo

import (
	"math"
	"math/rand"
)

// Waveform selects the LFO's shape.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Square
	SawUp
	SawDown
	RandomStep
	RandomSmooth
)

// Destination names what a caller should apply the LFO's output to.
// The LFO itself only produces a value; routing is external.
type Destination int

const (
	DestNone Destination = iota
	DestPitch
	DestPan
	DestVolume
	DestFilterCutoff
	DestFilterResonance
)

// TempoDivision names a musical note duration for tempo-synced rate.
type TempoDivision int

const (
	DivNone TempoDivision = iota
	DivWhole
	DivHalf
	DivQuarter
	DivEighth
	DivSixteenth
	DivThirtySecond
	DivSixtyFourth
	DivDottedHalf
	DivDottedQuarter
	DivDottedEighth
	DivDottedSixteenth
	DivTripletWhole
	DivTripletHalf
	DivTripletQuarter
	DivTripletEighth
	DivTripletSixteenth
)

// beatsForDivision returns the division's duration in quarter-note
// beats (a whole note spans 4 beats in 4/4).
func beatsForDivision(d TempoDivision) float64 {
	switch d {
	case DivWhole:
		return 4.0
	case DivHalf:
		return 2.0
	case DivQuarter:
		return 1.0
	case DivEighth:
		return 0.5
	case DivSixteenth:
		return 0.25
	case DivThirtySecond:
		return 0.125
	case DivSixtyFourth:
		return 0.0625
	case DivDottedHalf:
		return 2.0 * 1.5
	case DivDottedQuarter:
		return 1.0 * 1.5
	case DivDottedEighth:
		return 0.5 * 1.5
	case DivDottedSixteenth:
		return 0.25 * 1.5
	case DivTripletWhole:
		return 4.0 * 2.0 / 3.0
	case DivTripletHalf:
		return 2.0 * 2.0 / 3.0
	case DivTripletQuarter:
		return 1.0 * 2.0 / 3.0
	case DivTripletEighth:
		return 0.5 * 2.0 / 3.0
	case DivTripletSixteenth:
		return 0.25 * 2.0 / 3.0
	default:
		return 1.0
	}
}

// Settings are the caller-facing LFO parameters.
type Settings struct {
	Waveform      Waveform
	RateHz        float64
	SyncToTempo   bool
	TempoDivision TempoDivision
	Depth         float64 // [0,1]
	Destination   Destination
}

// LFO is a single low-frequency oscillator instance. Not safe for
// concurrent use.
type LFO struct {
	settings   Settings
	sampleRate float64
	tempoBPM   float64

	phase          float64
	phaseIncrement float64

	lastRandom float64
	nextRandom float64
}

// New returns an unconfigured LFO (Sine, zero rate and depth) at
// 48kHz/120BPM; Configure sets its rate and depth.
func New() *LFO {
	return &LFO{sampleRate: 48000, tempoBPM: 120}
}

// Configure installs settings and recomputes the phase increment. The
// phase resets to 0. A non-positive sample rate defaults to 48000; a
// non-positive tempo defaults to 120.
func (l *LFO) Configure(s Settings, sampleRate, tempoBPM float64) {
	l.settings = s
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	if tempoBPM <= 0 {
		tempoBPM = 120
	}
	l.sampleRate = sampleRate
	l.tempoBPM = tempoBPM
	l.phase = 0
	l.calculatePhaseIncrement()

	if s.Waveform == RandomStep || s.Waveform == RandomSmooth {
		l.lastRandom = rand.Float64()*2 - 1
		l.nextRandom = rand.Float64()*2 - 1
	}
}

func (l *LFO) calculatePhaseIncrement() {
	if l.settings.SyncToTempo {
		if l.tempoBPM <= 0 || l.sampleRate <= 0 || l.settings.TempoDivision == DivNone {
			l.phaseIncrement = 0
			return
		}
		beatsPerSecond := l.tempoBPM / 60
		cycleSeconds := beatsForDivision(l.settings.TempoDivision) / beatsPerSecond
		if cycleSeconds > 1e-5 {
			l.phaseIncrement = 1 / (cycleSeconds * l.sampleRate)
		} else {
			l.phaseIncrement = 0
		}
		return
	}
	if l.sampleRate > 0 {
		l.phaseIncrement = l.settings.RateHz / l.sampleRate
	} else {
		l.phaseIncrement = 0
	}
}

// ResetPhase resets the LFO's phase to 0, re-randomizing the held
// random value for the random waveforms.
func (l *LFO) ResetPhase() {
	l.phase = 0
	if l.settings.Waveform == RandomStep || l.settings.Waveform == RandomSmooth {
		l.lastRandom = rand.Float64()*2 - 1
		l.nextRandom = rand.Float64()*2 - 1
	}
}

// Retrigger re-triggers the LFO. The default behavior resets phase.
func (l *LFO) Retrigger() {
	l.ResetPhase()
}

// Active reports whether the LFO has non-zero depth and a non-zero
// phase increment (either free-running rate or a valid tempo sync).
func (l *LFO) Active() bool {
	return l.settings.Depth != 0 && l.phaseIncrement != 0
}

// Destination returns the configured routing destination.
func (l *LFO) Destination() Destination { return l.settings.Destination }

// Process advances the LFO by one sample and returns its output in
// [-depth, +depth].
func (l *LFO) Process() float64 {
	var value float64
	switch l.settings.Waveform {
	case Sine:
		value = math.Sin(l.phase * 2 * math.Pi)
	case Triangle:
		switch {
		case l.phase < 0.25:
			value = l.phase * 4
		case l.phase < 0.75:
			value = 1 - (l.phase-0.25)*4
		default:
			value = -1 + (l.phase-0.75)*4
		}
	case Square:
		if l.phase < 0.5 {
			value = 1
		} else {
			value = -1
		}
	case SawUp:
		value = l.phase*2 - 1
	case SawDown:
		value = 1 - l.phase*2
	case RandomStep:
		value = l.lastRandom
	case RandomSmooth:
		value = l.lastRandom + (l.nextRandom-l.lastRandom)*l.phase
	}

	l.phase += l.phaseIncrement
	if l.phase >= 1 {
		l.phase -= 1
		if l.settings.Waveform == RandomStep || l.settings.Waveform == RandomSmooth {
			l.lastRandom = l.nextRandom
			l.nextRandom = rand.Float64()*2 - 1
		}
	}

	return value * l.settings.Depth
}
