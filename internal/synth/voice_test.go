package synth

import (
	"testing"

	"github.com/cbegin/groovebox/internal/envelope"
	"github.com/cbegin/groovebox/internal/filter"
	"github.com/cbegin/groovebox/internal/lfo"
)

func basicParams() VoiceParams {
	return VoiceParams{
		Osc1:      OscSettings{Waveform: WaveSaw, Level: 0.8},
		Osc2:      OscSettings{Waveform: WaveSaw, Semi: 7, Level: 0.5},
		SubLevel:  0.3,
		Filter:    FilterRouting{Mode: filter.LowPass, BaseCutoffHz: 8000, ResonanceQ: 1, Keytrack: 0, VelSens: 0.3, EnvAmount: 0.5},
		AmpEnv:    envelope.Settings{Type: envelope.ADSR, AttackMs: 5, DecayMs: 50, SustainLevel: 0.7, ReleaseMs: 100},
		FilterEnv: envelope.Settings{Type: envelope.ADSR, AttackMs: 5, DecayMs: 50, SustainLevel: 0.5, ReleaseMs: 100},
		LFO1:      lfo.Settings{Waveform: lfo.Sine, RateHz: 5, Destination: lfo.DestNone},
		LFO2:      lfo.Settings{Waveform: lfo.Sine, RateHz: 3, Destination: lfo.DestNone},
	}
}

func newTestVoice() *Voice {
	return NewVoice(48000)
}

func TestNoteOnActivatesVoice(t *testing.T) {
	v := newTestVoice()
	params := basicParams()
	v.NoteOn(60, 1.0, 48000, &params, false, 1)
	if !v.Active {
		t.Fatal("expected voice active after NoteOn")
	}
	if v.CurrentFrequency != v.BaseFrequency {
		t.Errorf("expected no portamento glide on fresh allocation")
	}
}

func TestProcessStaysBounded(t *testing.T) {
	v := newTestVoice()
	params := basicParams()
	v.NoteOn(60, 1.0, 48000, &params, false, 1)
	for i := 0; i < 4800; i++ {
		l, r := v.Process(&params, 48000, 0, 0)
		if l < -10 || l > 10 || r < -10 || r > 10 {
			t.Fatalf("voice output out of bounded range at sample %d: l=%f r=%f", i, l, r)
		}
	}
}

func TestVoiceGoesInactiveAfterRelease(t *testing.T) {
	v := newTestVoice()
	params := basicParams()
	params.AmpEnv = envelope.Settings{Type: envelope.ADSR, AttackMs: 0, DecayMs: 0, SustainLevel: 1, ReleaseMs: 5}
	v.NoteOn(60, 1.0, 48000, &params, false, 1)
	v.NoteOff(false)
	if !v.Releasing {
		t.Fatal("expected voice in Releasing state")
	}
	for i := 0; i < 48000; i++ {
		v.Process(&params, 48000, 0, 0)
		if !v.Active {
			break
		}
	}
	if v.Active {
		t.Fatal("expected voice to go inactive well within one second of a 5ms release")
	}
}

func TestLegatoNoteOnDoesNotResetOscillatorPhase(t *testing.T) {
	v := newTestVoice()
	params := basicParams()
	v.NoteOn(60, 1.0, 48000, &params, false, 1)
	for i := 0; i < 10; i++ {
		v.Process(&params, 48000, 0, 0)
	}
	phaseBefore := v.Osc1.phase
	v.NoteOn(64, 1.0, 48000, &params, true, 2)
	if v.Osc1.phase != phaseBefore {
		t.Errorf("expected legato NoteOn to preserve osc1 phase, got %f want %f", v.Osc1.phase, phaseBefore)
	}
}

func TestPortamentoConvergesToTarget(t *testing.T) {
	v := newTestVoice()
	params := basicParams()
	params.PortamentoMs = 10
	v.NoteOn(48, 1.0, 48000, &params, false, 1)
	for i := 0; i < 10; i++ {
		v.Process(&params, 48000, 0, 0)
	}
	v.NoteOn(60, 1.0, 48000, &params, true, 2)
	target := v.BaseFrequency
	for i := 0; i < 48000; i++ {
		v.Process(&params, 48000, 0, 0)
	}
	if v.CurrentFrequency != target {
		t.Errorf("expected portamento to converge to %f, got %f", target, v.CurrentFrequency)
	}
}

func TestSustainHeldVoiceStaysActiveUntilPedalLift(t *testing.T) {
	v := newTestVoice()
	params := basicParams()
	params.AmpEnv = envelope.Settings{Type: envelope.ADSR, AttackMs: 0, DecayMs: 0, SustainLevel: 1, ReleaseMs: 5}
	v.NoteOn(60, 1.0, 48000, &params, false, 1)
	v.NoteOff(true)
	if !v.SustainHeld {
		t.Fatal("expected SustainHeld true when pedal is down on NoteOff")
	}
	if v.Releasing {
		t.Fatal("expected voice not releasing while sustain pedal holds it")
	}
	v.ReleaseFromSustain()
	if !v.Releasing {
		t.Fatal("expected voice releasing after pedal lift")
	}
}
