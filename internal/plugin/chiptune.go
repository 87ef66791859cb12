package plugin

import (
	"github.com/cbegin/groovebox/internal/chiptune"
	"github.com/cbegin/groovebox/internal/param"
)

// Stable parameter indices for ChiptunePlugin's parameter set.
const (
	cMasterGain = iota
	cAttackSec
	cDecaySec
	cSustainLvl
	cReleaseSec
	cStepLevels
	cPulseDutyA
	cPulseDutyB
	cVelocityAmp
	cLPFCutoffHz
	cFilterType
	cPitchLFOWaveform
	cPitchLFORateHz
	cPitchLFODepth
	cAmpLFOWaveform
	cAmpLFORateHz
	cAmpLFODepth
	cFilterLFOWaveform
	cFilterLFORateHz
	cFilterLFODepth
)

// ChiptunePlugin hosts the 8-bit-style pulse/triangle/noise voice
// engine as a plugin, a second, tonally distinct option alongside the
// subtractive synth behind the same Plugin interface.
type ChiptunePlugin struct {
	id      string
	engine  *chiptune.Engine
	params  *param.Set
	noteIDs map[byte]int
}

// NewChiptunePlugin constructs a 12-voice chiptune plugin with a full
// parameter set at default values.
func NewChiptunePlugin(id string, sampleRate float64) *ChiptunePlugin {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	p := &ChiptunePlugin{
		id:      id,
		engine:  chiptune.New(int(sampleRate), chiptune.DefaultParams()),
		params:  param.NewSet(),
		noteIDs: make(map[byte]int),
	}
	p.registerParameters()
	return p
}

func (p *ChiptunePlugin) registerParameters() {
	def := chiptune.DefaultParams()
	add := func(id string, index int, typ param.Type, min, max, d float64) *param.Parameter {
		pm := param.New(id, index, typ, param.CategoryControl, min, max, d)
		p.params.Add(pm)
		return pm
	}

	add("masterGain", cMasterGain, param.TypeFloat, 0, 1, def.MasterGain)
	add("ampEnv.attackSec", cAttackSec, param.TypeFloat, 0, 5, def.AttackSec)
	add("ampEnv.decaySec", cDecaySec, param.TypeFloat, 0, 5, def.DecaySec)
	add("ampEnv.sustain", cSustainLvl, param.TypeFloat, 0, 1, def.SustainLvl)
	add("ampEnv.releaseSec", cReleaseSec, param.TypeFloat, 0, 5, def.ReleaseSec)
	add("stepLevels", cStepLevels, param.TypeInt, 2, 64, float64(def.StepLevels))
	add("pulseDutyA", cPulseDutyA, param.TypeFloat, 0.05, 0.95, def.PulseDutyA)
	add("pulseDutyB", cPulseDutyB, param.TypeFloat, 0.05, 0.95, def.PulseDutyB)
	add("velocityAmp", cVelocityAmp, param.TypeFloat, 0, 1, def.VelocityAmp)
	add("filter.cutoffHz", cLPFCutoffHz, param.TypeFloat, 20, 20000, def.LPFCutoff).WithHints(param.HintLogarithmicBit)
	add("filter.type", cFilterType, param.TypeChoice, 0, 2, 0).WithChoices([]string{"lowpass", "bandpass", "highpass"})

	lfoWaveforms := []string{"sine", "triangle", "square", "sawUp", "sawDown", "randomStep", "randomSmooth"}
	add("pitchLFO.waveform", cPitchLFOWaveform, param.TypeChoice, 0, 6, 0).WithChoices(lfoWaveforms)
	add("pitchLFO.rateHz", cPitchLFORateHz, param.TypeFloat, 0.01, 20, 5)
	add("pitchLFO.depth", cPitchLFODepth, param.TypeFloat, 0, 1, 0)

	add("ampLFO.waveform", cAmpLFOWaveform, param.TypeChoice, 0, 6, 0).WithChoices(lfoWaveforms)
	add("ampLFO.rateHz", cAmpLFORateHz, param.TypeFloat, 0.01, 20, 5)
	add("ampLFO.depth", cAmpLFODepth, param.TypeFloat, 0, 1, 0)

	add("filterLFO.waveform", cFilterLFOWaveform, param.TypeChoice, 0, 6, 0).WithChoices(lfoWaveforms)
	add("filterLFO.rateHz", cFilterLFORateHz, param.TypeFloat, 0.01, 20, 0.5)
	add("filterLFO.depth", cFilterLFODepth, param.TypeFloat, 0, 1, 0)
}

func (p *ChiptunePlugin) ID() string { return p.id }

func (p *ChiptunePlugin) Parameters() *param.Set { return p.params }

func (p *ChiptunePlugin) applyParams() {
	v := func(idx int) float64 {
		pm, ok := p.params.ByIndex(idx)
		if !ok {
			return 0
		}
		return pm.Get()
	}
	p.engine.SetMasterGain(v(cMasterGain))
	p.engine.SetFilterType(int(v(cFilterType)))
	p.engine.SetPitchLFO(v(cPitchLFODepth), v(cPitchLFORateHz), int(v(cPitchLFOWaveform)))
	p.engine.SetAmpLFO(v(cAmpLFODepth), v(cAmpLFORateHz), int(v(cAmpLFOWaveform)))
	p.engine.SetFilterLFO(v(cFilterLFODepth), v(cFilterLFORateHz), int(v(cFilterLFOWaveform)))
}

// Process applies any queued parameter changes at block start, pushes
// the master gain, filter type and three LFO parameters to the engine,
// and renders into the first FrameCount frames of out. The envelope,
// step-level, pulse-duty, velocity-amp and filter-cutoff parameters
// are not passed to the engine, which keeps the values it was
// constructed with.
func (p *ChiptunePlugin) Process(ctx ProcessContext, out [][]float32) error {
	for _, c := range ctx.Changes {
		p.params.ApplyChange(c)
	}
	p.applyParams()

	frames := ctx.FrameCount
	if frames > len(out[0]) {
		frames = len(out[0])
	}
	for i := 0; i < frames; i++ {
		left, right := p.engine.RenderFrame()
		out[0][i] = left
		if len(out) > 1 {
			out[1][i] = right
		}
	}
	return nil
}

// HandleMIDI routes note on/off to the chiptune engine, tracking the
// voice id NoteOn returns so NoteOff can target the right voice.
func (p *ChiptunePlugin) HandleMIDI(status, data1, data2 byte) {
	const (
		noteOffMask = 0x80
		noteOnMask  = 0x90
	)
	kind := status & 0xF0
	switch kind {
	case noteOnMask:
		if data2 == 0 {
			p.noteOff(data1)
			return
		}
		id := p.engine.NoteOn(int(data1), int(data2), 0, 0)
		p.noteIDs[data1] = id
	case noteOffMask:
		p.noteOff(data1)
	}
}

func (p *ChiptunePlugin) noteOff(note byte) {
	if id, ok := p.noteIDs[note]; ok {
		p.engine.NoteOff(id)
		delete(p.noteIDs, note)
	}
}

// SavePreset encodes the plugin's current parameter values as the
// portable state blob format.
func (p *ChiptunePlugin) SavePreset() []byte {
	return EncodeStateBlob(p.params)
}

// LoadPreset decodes a state blob produced by SavePreset and applies
// it to this plugin's parameters.
func (p *ChiptunePlugin) LoadPreset(data []byte) error {
	return DecodeStateBlob(data, p.params)
}
