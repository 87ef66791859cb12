package plugin

import (
	"github.com/cbegin/groovebox/internal/envelope"
	"github.com/cbegin/groovebox/internal/filter"
	"github.com/cbegin/groovebox/internal/lfo"
	"github.com/cbegin/groovebox/internal/param"
	"github.com/cbegin/groovebox/internal/synth"
)

// Stable parameter indices for SubtractiveSynthPlugin's parameter set.
const (
	pOsc1Waveform = iota
	pOsc1Octave
	pOsc1Semi
	pOsc1Fine
	pOsc1Level
	pOsc2Waveform
	pOsc2Octave
	pOsc2Semi
	pOsc2Fine
	pOsc2Level
	pSubLevel
	pNoiseLevel
	pFilterMode
	pFilterCutoffHz
	pFilterResonanceQ
	pFilterKeytrack
	pFilterVelSens
	pFilterEnvAmount
	pAmpAttackMs
	pAmpDecayMs
	pAmpSustain
	pAmpReleaseMs
	pFilterEnvAttackMs
	pFilterEnvDecayMs
	pFilterEnvSustain
	pFilterEnvReleaseMs
	pLFO1Waveform
	pLFO1RateHz
	pLFO1Depth
	pLFO1Destination
	pLFO2Waveform
	pLFO2RateHz
	pLFO2Depth
	pLFO2Destination
	pPortamentoMs
	pPitchBendRange
)

// SubtractiveSynthPlugin hosts the polyphonic subtractive synth engine
// as a plugin driven by short musical messages, behind the same
// Plugin interface as any other hosted processor.
type SubtractiveSynthPlugin struct {
	id     string
	engine *synth.Engine
	params *param.Set
}

// NewSubtractiveSynthPlugin constructs a 16-voice subtractive synth
// plugin with a full parameter set at default values.
func NewSubtractiveSynthPlugin(id string, sampleRate float64) *SubtractiveSynthPlugin {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	p := &SubtractiveSynthPlugin{
		id:     id,
		engine: synth.NewEngine(16, sampleRate),
		params: param.NewSet(),
	}
	p.registerParameters()
	p.engine.SetParams(p.voiceParams())
	return p
}

func (p *SubtractiveSynthPlugin) registerParameters() {
	waveforms := []string{"sine", "saw", "square", "triangle", "noise"}
	add := func(id string, index int, typ param.Type, min, max, def float64) *param.Parameter {
		pm := param.New(id, index, typ, param.CategoryControl, min, max, def)
		p.params.Add(pm)
		return pm
	}

	add("osc1.waveform", pOsc1Waveform, param.TypeChoice, 0, 4, 1).WithChoices(waveforms)
	add("osc1.octave", pOsc1Octave, param.TypeInt, -4, 4, 0)
	add("osc1.semi", pOsc1Semi, param.TypeInt, -12, 12, 0)
	add("osc1.fine", pOsc1Fine, param.TypeInt, -100, 100, 0)
	add("osc1.level", pOsc1Level, param.TypeFloat, 0, 1, 1)

	add("osc2.waveform", pOsc2Waveform, param.TypeChoice, 0, 4, 0).WithChoices(waveforms)
	add("osc2.octave", pOsc2Octave, param.TypeInt, -4, 4, 0)
	add("osc2.semi", pOsc2Semi, param.TypeInt, -12, 12, 0)
	add("osc2.fine", pOsc2Fine, param.TypeInt, -100, 100, 0)
	add("osc2.level", pOsc2Level, param.TypeFloat, 0, 1, 0)

	add("sub.level", pSubLevel, param.TypeFloat, 0, 1, 0)
	add("noise.level", pNoiseLevel, param.TypeFloat, 0, 1, 0)

	add("filter.mode", pFilterMode, param.TypeChoice, 0, 2, 0).WithChoices([]string{"lowpass", "bandpass", "highpass"})
	add("filter.cutoffHz", pFilterCutoffHz, param.TypeFloat, 20, 20000, 12000).WithHints(param.HintLogarithmicBit)
	add("filter.resonanceQ", pFilterResonanceQ, param.TypeFloat, 0.5, 25, 0.707)
	add("filter.keytrack", pFilterKeytrack, param.TypeFloat, 0, 1, 0)
	add("filter.velSens", pFilterVelSens, param.TypeFloat, 0, 1, 0)
	add("filter.envAmount", pFilterEnvAmount, param.TypeFloat, -1, 1, 0).WithHints(param.HintBipolarBit)

	add("ampEnv.attackMs", pAmpAttackMs, param.TypeFloat, 0, 5000, 2)
	add("ampEnv.decayMs", pAmpDecayMs, param.TypeFloat, 0, 5000, 50)
	add("ampEnv.sustain", pAmpSustain, param.TypeFloat, 0, 1, 0.8)
	add("ampEnv.releaseMs", pAmpReleaseMs, param.TypeFloat, 0, 5000, 100)

	add("filterEnv.attackMs", pFilterEnvAttackMs, param.TypeFloat, 0, 5000, 2)
	add("filterEnv.decayMs", pFilterEnvDecayMs, param.TypeFloat, 0, 5000, 200)
	add("filterEnv.sustain", pFilterEnvSustain, param.TypeFloat, 0, 1, 0)
	add("filterEnv.releaseMs", pFilterEnvReleaseMs, param.TypeFloat, 0, 5000, 100)

	lfoWaveforms := []string{"sine", "triangle", "square", "sawUp", "sawDown", "randomStep", "randomSmooth"}
	add("lfo1.waveform", pLFO1Waveform, param.TypeChoice, 0, 6, 0).WithChoices(lfoWaveforms)
	add("lfo1.rateHz", pLFO1RateHz, param.TypeFloat, 0.01, 20, 5)
	add("lfo1.depth", pLFO1Depth, param.TypeFloat, 0, 1, 0)
	add("lfo1.destination", pLFO1Destination, param.TypeChoice, 0, 4, 0).WithChoices([]string{"none", "pitch", "pan", "volume", "filterCutoff"})

	add("lfo2.waveform", pLFO2Waveform, param.TypeChoice, 0, 6, 0).WithChoices(lfoWaveforms)
	add("lfo2.rateHz", pLFO2RateHz, param.TypeFloat, 0.01, 20, 0.5)
	add("lfo2.depth", pLFO2Depth, param.TypeFloat, 0, 1, 0)
	add("lfo2.destination", pLFO2Destination, param.TypeChoice, 0, 4, 0).WithChoices([]string{"none", "pitch", "pan", "volume", "filterCutoff"})

	add("portamentoMs", pPortamentoMs, param.TypeFloat, 0, 2000, 0)
	add("pitchBendRangeSemitones", pPitchBendRange, param.TypeFloat, 0, 24, 2)
}

func (p *SubtractiveSynthPlugin) ID() string { return p.id }

func (p *SubtractiveSynthPlugin) Parameters() *param.Set { return p.params }

func (p *SubtractiveSynthPlugin) voiceParams() synth.VoiceParams {
	v := func(idx int) float64 {
		pm, ok := p.params.ByIndex(idx)
		if !ok {
			return 0
		}
		return pm.Get()
	}
	return synth.VoiceParams{
		Osc1: synth.OscSettings{
			Waveform: synth.Waveform(v(pOsc1Waveform)),
			Octave:   int(v(pOsc1Octave)),
			Semi:     int(v(pOsc1Semi)),
			Fine:     int(v(pOsc1Fine)),
			Level:    v(pOsc1Level),
		},
		Osc2: synth.OscSettings{
			Waveform: synth.Waveform(v(pOsc2Waveform)),
			Octave:   int(v(pOsc2Octave)),
			Semi:     int(v(pOsc2Semi)),
			Fine:     int(v(pOsc2Fine)),
			Level:    v(pOsc2Level),
		},
		SubLevel:   v(pSubLevel),
		NoiseLevel: v(pNoiseLevel),
		Filter: synth.FilterRouting{
			Mode:         filter.Mode(v(pFilterMode)),
			BaseCutoffHz: v(pFilterCutoffHz),
			ResonanceQ:   v(pFilterResonanceQ),
			Keytrack:     v(pFilterKeytrack),
			VelSens:      v(pFilterVelSens),
			EnvAmount:    v(pFilterEnvAmount),
		},
		AmpEnv: envelope.Settings{
			Type:         envelope.ADSR,
			AttackMs:     v(pAmpAttackMs),
			DecayMs:      v(pAmpDecayMs),
			SustainLevel: v(pAmpSustain),
			ReleaseMs:    v(pAmpReleaseMs),
		},
		FilterEnv: envelope.Settings{
			Type:         envelope.ADSR,
			AttackMs:     v(pFilterEnvAttackMs),
			DecayMs:      v(pFilterEnvDecayMs),
			SustainLevel: v(pFilterEnvSustain),
			ReleaseMs:    v(pFilterEnvReleaseMs),
		},
		LFO1: lfo.Settings{
			Waveform:    lfo.Waveform(v(pLFO1Waveform)),
			RateHz:      v(pLFO1RateHz),
			Depth:       v(pLFO1Depth),
			Destination: lfo.Destination(v(pLFO1Destination)),
		},
		LFO2: lfo.Settings{
			Waveform:    lfo.Waveform(v(pLFO2Waveform)),
			RateHz:      v(pLFO2RateHz),
			Depth:       v(pLFO2Depth),
			Destination: lfo.Destination(v(pLFO2Destination)),
		},
		PortamentoMs:            v(pPortamentoMs),
		PitchBendRangeSemitones: v(pPitchBendRange),
	}
}

// Process applies any queued parameter changes at block start (sample
// offsets within a block are not currently honored by this plugin;
// every change takes effect at the block boundary) and renders the
// current patch into the first FrameCount frames of out.
func (p *SubtractiveSynthPlugin) Process(ctx ProcessContext, out [][]float32) error {
	for _, c := range ctx.Changes {
		p.params.ApplyChange(c)
	}
	p.engine.SetParams(p.voiceParams())

	frames := ctx.FrameCount
	if frames > len(out[0]) {
		frames = len(out[0])
	}
	for i := 0; i < frames; i++ {
		left, right := p.engine.Process()
		out[0][i] = float32(left)
		if len(out) > 1 {
			out[1][i] = float32(right)
		}
	}
	return nil
}

// HandleMIDI routes a short MIDI message directly to the synth
// engine: note on/off, pitch bend, and the mod wheel CC.
func (p *SubtractiveSynthPlugin) HandleMIDI(status, data1, data2 byte) {
	const (
		noteOffMask  = 0x80
		noteOnMask   = 0x90
		ccMask       = 0xB0
		pitchBendMsk = 0xE0
		ccModWheel   = 1
	)
	kind := status & 0xF0
	switch kind {
	case noteOnMask:
		velocity := float64(data2) / 127
		if velocity <= 0 {
			p.engine.NoteOff(int(data1))
			return
		}
		_ = p.engine.NoteOn(int(data1), velocity)
	case noteOffMask:
		p.engine.NoteOff(int(data1))
	case ccMask:
		if data1 == ccModWheel {
			p.engine.SetModWheel(float64(data2) / 127)
		} else if data1 == 64 {
			p.engine.SetSustainPedal(data2 >= 64)
		}
	case pitchBendMsk:
		raw := (int(data2) << 7) | int(data1)
		p.engine.SetPitchBend((float64(raw)-8192)/8192)
	}
}

// SavePreset encodes the plugin's current parameter values as the
// portable state blob format: a sequence of (id length, id, value)
// tuples.
func (p *SubtractiveSynthPlugin) SavePreset() []byte {
	return EncodeStateBlob(p.params)
}

// LoadPreset decodes a state blob produced by SavePreset and applies
// it to this plugin's parameters. Unknown ids are skipped; values are
// clamped to each parameter's range.
func (p *SubtractiveSynthPlugin) LoadPreset(data []byte) error {
	return DecodeStateBlob(data, p.params)
}
