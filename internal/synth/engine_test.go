package synth

import (
	"testing"

	"github.com/cbegin/groovebox/internal/envelope"
	"github.com/cbegin/groovebox/internal/filter"
)

func engineParams() VoiceParams {
	return VoiceParams{
		Osc1:      OscSettings{Waveform: WaveSaw, Level: 1},
		Filter:    FilterRouting{Mode: filter.LowPass, BaseCutoffHz: 10000, ResonanceQ: 0.7},
		AmpEnv:    envelope.Settings{Type: envelope.ADSR, AttackMs: 0, DecayMs: 0, SustainLevel: 1, ReleaseMs: 20},
		FilterEnv: envelope.Settings{Type: envelope.ADSR, AttackMs: 0, DecayMs: 0, SustainLevel: 1, ReleaseMs: 20},
	}
}

func TestNoteOnAllocatesDistinctVoicesForDistinctNotes(t *testing.T) {
	e := NewEngine(4, 48000)
	e.SetParams(engineParams())
	e.NoteOn(60, 1)
	e.NoteOn(64, 1)
	e.NoteOn(67, 1)
	if got := e.ActiveVoiceCount(); got != 3 {
		t.Fatalf("expected 3 active voices, got %d", got)
	}
}

func TestVoiceStealingPrefersInactiveThenOldestReleasing(t *testing.T) {
	e := NewEngine(2, 48000)
	e.SetParams(engineParams())
	e.NoteOn(60, 1)
	e.NoteOn(64, 1)
	// Both voices are now in use; stealing a third note should prefer an
	// already-releasing voice over an active one.
	e.NoteOff(60)
	e.NoteOn(67, 1)
	if got := e.ActiveVoiceCount(); got > 2 {
		t.Fatalf("expected at most 2 active voices with a 2-voice pool, got %d", got)
	}
	foundNote67 := false
	for note := range e.noteToVoice {
		if note == 67 {
			foundNote67 = true
		}
	}
	if !foundNote67 {
		t.Fatal("expected note 67 to have been allocated a voice")
	}
}

func TestSustainPedalHoldsNoteAfterNoteOff(t *testing.T) {
	e := NewEngine(4, 48000)
	e.SetParams(engineParams())
	e.SetSustainPedal(true)
	e.NoteOn(60, 1)
	e.NoteOff(60)

	v := e.noteToVoice[60]
	if v == nil || !v.SustainHeld {
		t.Fatal("expected voice to be sustain-held after NoteOff with pedal down")
	}

	e.SetSustainPedal(false)
	if v.SustainHeld {
		t.Fatal("expected sustain hold cleared after pedal lift")
	}
	if !v.Releasing {
		t.Fatal("expected voice releasing after pedal lift")
	}
}

func TestAllNotesOffReleasesEveryVoice(t *testing.T) {
	e := NewEngine(3, 48000)
	e.SetParams(engineParams())
	e.NoteOn(60, 1)
	e.NoteOn(64, 1)
	e.AllNotesOff()
	for _, v := range e.voices {
		if v.Active && !v.Releasing {
			t.Fatalf("expected every active voice to be releasing after AllNotesOff")
		}
	}
}

func TestAllSoundOffSilencesImmediately(t *testing.T) {
	e := NewEngine(3, 48000)
	e.SetParams(engineParams())
	e.NoteOn(60, 1)
	e.AllSoundOff()
	if e.ActiveVoiceCount() != 0 {
		t.Fatalf("expected 0 active voices after AllSoundOff, got %d", e.ActiveVoiceCount())
	}
}

func TestProcessSumsActiveVoices(t *testing.T) {
	e := NewEngine(2, 48000)
	e.SetParams(engineParams())
	e.NoteOn(60, 1)
	e.NoteOn(64, 1)
	anyNonZero := false
	for i := 0; i < 100; i++ {
		l, r := e.Process()
		if l != 0 || r != 0 {
			anyNonZero = true
		}
	}
	if !anyNonZero {
		t.Fatal("expected non-zero output with two active voices")
	}
}

func TestLegatoReuseOnRepeatedNoteDoesNotAllocateNewVoice(t *testing.T) {
	e := NewEngine(4, 48000)
	e.SetParams(engineParams())
	e.NoteOn(60, 1)
	first := e.noteToVoice[60]
	e.NoteOn(60, 0.5)
	if e.noteToVoice[60] != first {
		t.Fatal("expected repeated NoteOn for a still-active note to reuse the same voice")
	}
}
