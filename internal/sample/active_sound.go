package sample

import (
	"math"

	"github.com/cbegin/groovebox/internal/envelope"
	"github.com/cbegin/groovebox/internal/filter"
	"github.com/cbegin/groovebox/internal/lfo"
)

// ActiveSound is a single playing sample voice: created on pad trigger
// or a free sample trigger, destroyed when it finishes or its amp
// envelope goes Idle.
type ActiveSound struct {
	sample *Sample

	CurrentFrame  float64
	PlaybackSpeed float64
	Volume        float64
	Pan           float64
	BasePan       float64
	MuteGroup     int
	Mode          PlaybackMode

	AmpEnv         *envelope.Generator
	Filter         *filter.SVF
	FilterSettings FilterSettings
	FilterEnv      *envelope.Generator
	PitchEnv       *envelope.Generator
	PitchEnvAmount float64
	LFOs           []*lfo.LFO

	HasFilter   bool
	HasPitchEnv bool
}

// newActiveSound constructs a voice referencing sample, retaining it.
func newActiveSound(s *Sample, volume, pan float64, mode PlaybackMode) *ActiveSound {
	return &ActiveSound{
		sample:        s,
		PlaybackSpeed: 1,
		Volume:        volume,
		Pan:           pan,
		BasePan:       pan,
		Mode:          mode,
		AmpEnv:        envelope.New(),
	}
}

// Sample returns the referenced sample.
func (a *ActiveSound) Sample() *Sample { return a.sample }

// Finished reports whether the voice should be removed: past the
// sample's frame count in one-shot mode, or its amp envelope is Idle.
func (a *ActiveSound) Finished() bool {
	if a.Mode == OneShot && int(a.CurrentFrame) >= a.sample.FrameCount {
		return true
	}
	return !a.AmpEnv.Active()
}

// Next renders one frame of mono output and advances playback state.
// Applies the optional filter (fed by its cutoff/resonance LFOs and
// envelope), pitch modulation (envelope and LFO, applied to playback
// speed), volume and pan LFOs, and the amp envelope. Pan is left on
// a.Pan for the caller's pan law.
func (a *ActiveSound) Next(sampleRate float64) float64 {
	frame := int(a.CurrentFrame)
	if a.Mode == Loop && a.sample.FrameCount > 0 {
		frame = frame % a.sample.FrameCount
	}
	value := float64(a.sample.FrameMono(frame))

	pitchMod := 1.0
	volMod := 1.0
	filterCutoffMod := 0.0
	filterResonanceMod := 0.0
	pan := a.BasePan
	for _, l := range a.LFOs {
		out := l.Process()
		switch l.Destination() {
		case lfo.DestPitch:
			pitchMod += out * 0.05
		case lfo.DestVolume:
			volMod *= 1 + out*0.5
		case lfo.DestPan:
			pan += out * 0.3
		case lfo.DestFilterCutoff:
			filterCutoffMod += out
		case lfo.DestFilterResonance:
			filterResonanceMod += out
		}
	}
	a.Pan = clamp(pan, -1, 1)

	if a.HasPitchEnv && a.PitchEnv != nil {
		envVal := a.PitchEnv.Process()
		pitchMod *= math.Pow(2, envVal*a.PitchEnvAmount/12)
	}

	if a.HasFilter && a.Filter != nil {
		cutoff := a.FilterSettings.CutoffHz
		if a.FilterEnv != nil {
			envVal := a.FilterEnv.Process()
			cutoff *= math.Pow(2, a.FilterSettings.EnvAmount*envVal*4)
		}
		cutoff *= math.Pow(2, filterCutoffMod*2)
		resonance := a.FilterSettings.ResonanceQ + filterResonanceMod*2
		a.Filter.SetSampleRate(sampleRate)
		a.Filter.Configure(a.FilterSettings.Mode, cutoff, resonance)
		value = a.Filter.Process(value)
	}

	env := a.AmpEnv.Process()
	value *= env * a.Volume * volMod

	a.CurrentFrame += a.PlaybackSpeed * pitchMod
	if a.Mode == Loop && a.sample.FrameCount > 0 {
		for a.CurrentFrame >= float64(a.sample.FrameCount) {
			a.CurrentFrame -= float64(a.sample.FrameCount)
		}
	}
	return value
}

// EqualPowerPan returns the (left,right) gains for a pan in [-1,1].
func EqualPowerPan(pan float64) (left, right float64) {
	pan = clamp(pan, -1, 1)
	return math.Sqrt(0.5 * (1 - pan)), math.Sqrt(0.5 * (1 + pan))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
