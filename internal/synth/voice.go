package synth

import (
	"math"

	"github.com/cbegin/groovebox/internal/envelope"
	"github.com/cbegin/groovebox/internal/filter"
	"github.com/cbegin/groovebox/internal/lfo"
)

// OscSettings configures one of a voice's two main oscillators.
type OscSettings struct {
	Waveform Waveform
	Octave   int
	Semi     int
	Fine     int // cents
	Level    float64
}

// FilterRouting configures the voice filter and its modulation sources.
type FilterRouting struct {
	Mode         filter.Mode
	BaseCutoffHz float64
	ResonanceQ   float64
	Keytrack     float64 // [0,1]
	VelSens      float64
	EnvAmount    float64
}

// VoiceParams are the patch-wide settings shared by every voice of a
// single-patch, multi-timbral synth engine.
type VoiceParams struct {
	Osc1       OscSettings
	Osc2       OscSettings
	SubLevel   float64
	NoiseLevel float64

	Filter FilterRouting

	AmpEnv    envelope.Settings
	FilterEnv envelope.Settings

	LFO1 lfo.Settings
	LFO2 lfo.Settings

	PortamentoMs            float64
	PitchBendRangeSemitones float64
}

// Voice is one polyphonic synth voice: two oscillators, a sub
// oscillator, a noise source, a shared filter, amp/filter envelopes,
// and two LFOs.
type Voice struct {
	Active      bool
	Releasing   bool
	SustainHeld bool

	MIDINote int
	Velocity float64

	BaseFrequency    float64
	CurrentFrequency float64
	PortamentoRate   float64

	Osc1 *Oscillator
	Osc2 *Oscillator
	Sub  *Oscillator

	AmpEnv    *envelope.Generator
	FilterEnv *envelope.Generator
	Filter    *filter.SVF
	LFO1      *lfo.LFO
	LFO2      *lfo.LFO

	NoteOnAge int64

	noiseSample noiseSource
	pan         float64
}

type noiseSource struct{ state uint32 }

func (n *noiseSource) next() float64 {
	// xorshift32; deterministic and allocation-free.
	n.state ^= n.state << 13
	n.state ^= n.state >> 17
	n.state ^= n.state << 5
	if n.state == 0 {
		n.state = 1
	}
	return float64(n.state)/float64(1<<32)*2 - 1
}

// NewVoice constructs an inactive voice.
func NewVoice(sampleRate float64) *Voice {
	return &Voice{
		Osc1:      NewOscillator(sampleRate),
		Osc2:      NewOscillator(sampleRate),
		Sub:       NewOscillator(sampleRate),
		AmpEnv:    envelope.New(),
		FilterEnv: envelope.New(),
		Filter:    filter.New(),
		LFO1:      lfo.New(),
		LFO2:      lfo.New(),
	}
}

func midiToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

// NoteOn allocates or re-triggers the voice for note/velocity. If
// legato is true, oscillator phases are not reset (legato retrigger);
// envelopes and LFOs are always reconfigured. noteOnAge is the
// caller's monotonic counter value for this note-on.
func (v *Voice) NoteOn(note int, velocity float64, sampleRate float64, params *VoiceParams, legato bool, noteOnAge int64) {
	target := midiToFreq(note)

	if !legato {
		v.Osc1.Reset()
		v.Osc2.Reset()
		v.Sub.Reset()
	}

	if params.PortamentoMs > 0 && v.CurrentFrequency > 0 {
		portSamples := params.PortamentoMs / 1000 * sampleRate
		if portSamples > 0 {
			v.PortamentoRate = math.Pow(target/v.CurrentFrequency, 1/portSamples)
		} else {
			v.PortamentoRate = 1
		}
	} else {
		v.CurrentFrequency = target
		v.PortamentoRate = 1
	}

	v.Active = true
	v.Releasing = false
	v.SustainHeld = false
	v.MIDINote = note
	v.Velocity = velocity
	v.BaseFrequency = target
	v.NoteOnAge = noteOnAge
	v.pan = 0

	v.Osc1.SetWaveform(params.Osc1.Waveform)
	v.Osc2.SetWaveform(params.Osc2.Waveform)
	v.Sub.SetWaveform(WaveSine)

	v.AmpEnv.Configure(params.AmpEnv, sampleRate, velocity)
	v.AmpEnv.TriggerOn(velocity)
	v.FilterEnv.Configure(params.FilterEnv, sampleRate, velocity)
	v.FilterEnv.TriggerOn(velocity)

	v.LFO1.Configure(withUnitDepth(params.LFO1), sampleRate, 120)
	v.LFO2.Configure(withUnitDepth(params.LFO2), sampleRate, 120)
}

func withUnitDepth(s lfo.Settings) lfo.Settings {
	s.Depth = 1
	return s
}

// NoteOff releases the voice, or marks it sustain-held if the pedal
// is down.
func (v *Voice) NoteOff(sustainPedal bool) {
	if sustainPedal {
		v.SustainHeld = true
		return
	}
	v.Releasing = true
	v.AmpEnv.TriggerOff()
	v.FilterEnv.TriggerOff()
}

// ReleaseFromSustain is called when the sustain pedal is lifted for a
// voice that was held by it.
func (v *Voice) ReleaseFromSustain() {
	if !v.SustainHeld {
		return
	}
	v.SustainHeld = false
	v.Releasing = true
	v.AmpEnv.TriggerOff()
	v.FilterEnv.TriggerOff()
}

// semitoneRatio converts a semitone+cent offset to a frequency ratio.
func semitoneRatio(octave, semi, fine int) float64 {
	semis := float64(octave*12+semi) + float64(fine)/100
	return math.Pow(2, semis/12)
}

// Process runs the voice's per-sample DSP chain (the 11-step order)
// and returns its stereo output, unmixed with any other voice.
func (v *Voice) Process(params *VoiceParams, sampleRate, modWheel, pitchBend float64) (left, right float64) {
	// 1. Advance portamento.
	if v.PortamentoRate != 1 {
		v.CurrentFrequency *= v.PortamentoRate
		if (v.PortamentoRate > 1 && v.CurrentFrequency >= v.BaseFrequency) ||
			(v.PortamentoRate < 1 && v.CurrentFrequency <= v.BaseFrequency) {
			v.CurrentFrequency = v.BaseFrequency
			v.PortamentoRate = 1
		}
	}

	// 2. LFO outputs.
	lfo1Out := v.LFO1.Process() * params.LFO1.Depth * (1 + 2*modWheel)
	lfo2Out := v.LFO2.Process() * params.LFO2.Depth

	// 3. Pitch modulation.
	pitchMod := 1.0
	if params.LFO1.Destination == lfo.DestPitch {
		pitchMod += lfo1Out * 0.05
	}
	if params.LFO2.Destination == lfo.DestPitch {
		pitchMod += lfo2Out * 0.05
	}
	bendMul := math.Pow(2, pitchBend*params.PitchBendRangeSemitones/12)
	freqMul := pitchMod * bendMul

	// 4. Oscillator frequencies.
	base := v.CurrentFrequency * freqMul
	v.Osc1.SetFrequency(base * semitoneRatio(params.Osc1.Octave, params.Osc1.Semi, params.Osc1.Fine))
	v.Osc2.SetFrequency(base * semitoneRatio(params.Osc2.Octave, params.Osc2.Semi, params.Osc2.Fine))
	v.Sub.SetFrequency(base * 0.5)

	// 5. Mix oscillators, soft-clip.
	o1 := v.Osc1.Process() * params.Osc1.Level
	o2 := v.Osc2.Process() * params.Osc2.Level
	sub := v.Sub.Process() * params.SubLevel
	noise := v.noiseSample.next() * params.NoiseLevel
	mix := math.Tanh((o1 + o2 + sub + noise) * 0.8)

	// 6. Advance envelopes.
	ampEnv := v.AmpEnv.Process()
	filterEnv := v.FilterEnv.Process()

	// 7. Filter cutoff.
	lfoFilterMod := 0.0
	if params.LFO1.Destination == lfo.DestFilterCutoff {
		lfoFilterMod += lfo1Out
	}
	if params.LFO2.Destination == lfo.DestFilterCutoff {
		lfoFilterMod += lfo2Out
	}
	cutoff := params.Filter.BaseCutoffHz *
		math.Pow(2, params.Filter.Keytrack*float64(v.MIDINote-60)/12) *
		(1 + (v.Velocity-0.5)*params.Filter.VelSens*2) *
		math.Pow(2, params.Filter.EnvAmount*filterEnv*4) *
		math.Pow(2, lfoFilterMod*2)
	cutoff = clamp(cutoff, 20, 20000)
	v.Filter.SetSampleRate(sampleRate)
	v.Filter.Configure(params.Filter.Mode, cutoff, params.Filter.ResonanceQ)
	filtered := v.Filter.Process(mix)

	// 8. Volume LFO.
	volMod := 1.0
	if params.LFO1.Destination == lfo.DestVolume {
		volMod *= 1 + lfo1Out*0.5
	}
	if params.LFO2.Destination == lfo.DestVolume {
		volMod *= 1 + lfo2Out*0.5
	}

	// 9. Pan LFO.
	pan := v.pan
	if params.LFO1.Destination == lfo.DestPan {
		pan += lfo1Out * 0.3
	}
	if params.LFO2.Destination == lfo.DestPan {
		pan += lfo2Out * 0.3
	}
	pan = clamp(pan, -1, 1)

	// 10. Voice output.
	out := filtered * ampEnv * v.Velocity * volMod

	// 11. Equal-power pan.
	left = out * math.Sqrt(0.5*(1-pan))
	right = out * math.Sqrt(0.5*(1+pan))

	if !v.AmpEnv.Active() {
		v.Active = false
	}
	return left, right
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
