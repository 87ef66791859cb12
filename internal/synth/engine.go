package synth

import "fmt"

// Engine is a polyphonic subtractive synth: a fixed pool of voices
// sharing one VoiceParams patch, a sustain pedal, mod wheel, and
// pitch bend.
type Engine struct {
	sampleRate float64
	params     VoiceParams
	voices     []*Voice

	sustainPedal bool
	modWheel     float64
	pitchBend    float64

	noteOnCounter int64
	noteToVoice   map[int]*Voice
}

// NewEngine returns an engine with the given polyphony and sample rate.
func NewEngine(polyphony int, sampleRate float64) *Engine {
	voices := make([]*Voice, polyphony)
	for i := range voices {
		voices[i] = NewVoice(sampleRate)
	}
	return &Engine{
		sampleRate:  sampleRate,
		voices:      voices,
		noteToVoice: make(map[int]*Voice),
	}
}

// SetParams replaces the shared voice patch.
func (e *Engine) SetParams(p VoiceParams) { e.params = p }

// Params returns the current shared voice patch.
func (e *Engine) Params() VoiceParams { return e.params }

// SetSustainPedal updates the sustain pedal state (CC64). Releasing
// the pedal releases every voice that was held by it.
func (e *Engine) SetSustainPedal(down bool) {
	e.sustainPedal = down
	if down {
		return
	}
	for _, v := range e.voices {
		if v.Active && v.SustainHeld {
			v.ReleaseFromSustain()
		}
	}
}

// SetModWheel sets the mod wheel position, [0,1] (CC1).
func (e *Engine) SetModWheel(v float64) { e.modWheel = clamp(v, 0, 1) }

// SetPitchBend sets the pitch bend position, [-1,1].
func (e *Engine) SetPitchBend(v float64) { e.pitchBend = clamp(v, -1, 1) }

// NoteOn allocates a voice for note/velocity (velocity in [0,1]).
// A currently-sounding voice for the same note is reused legato
// (phase continues, no retrigger of oscillator phase); otherwise a
// free or stolen voice is used.
func (e *Engine) NoteOn(note int, velocity float64) error {
	if note < 0 || note > 127 {
		return fmt.Errorf("synth: note %d out of range [0,127]", note)
	}
	e.noteOnCounter++

	if v, ok := e.noteToVoice[note]; ok && v.Active {
		v.NoteOn(note, velocity, e.sampleRate, &e.params, true, e.noteOnCounter)
		return nil
	}

	v := e.allocateVoice()
	v.NoteOn(note, velocity, e.sampleRate, &e.params, false, e.noteOnCounter)
	e.noteToVoice[note] = v
	return nil
}

// NoteOff releases the voice playing note, honoring the sustain pedal.
func (e *Engine) NoteOff(note int) {
	v, ok := e.noteToVoice[note]
	if !ok {
		return
	}
	v.NoteOff(e.sustainPedal)
	if !e.sustainPedal {
		delete(e.noteToVoice, note)
	}
}

// allocateVoice picks a voice per the stealing policy: first an
// inactive voice, then the oldest releasing voice, then the oldest
// active voice (all by note_on_age).
func (e *Engine) allocateVoice() *Voice {
	for _, v := range e.voices {
		if !v.Active {
			return v
		}
	}

	var oldestReleasing *Voice
	for _, v := range e.voices {
		if v.Releasing && (oldestReleasing == nil || v.NoteOnAge < oldestReleasing.NoteOnAge) {
			oldestReleasing = v
		}
	}
	if oldestReleasing != nil {
		e.forgetVoice(oldestReleasing)
		return oldestReleasing
	}

	oldest := e.voices[0]
	for _, v := range e.voices {
		if v.NoteOnAge < oldest.NoteOnAge {
			oldest = v
		}
	}
	e.forgetVoice(oldest)
	return oldest
}

func (e *Engine) forgetVoice(v *Voice) {
	for note, ov := range e.noteToVoice {
		if ov == v {
			delete(e.noteToVoice, note)
		}
	}
}

// AllNotesOff releases every active voice without sustain (CC123).
func (e *Engine) AllNotesOff() {
	for _, v := range e.voices {
		if v.Active {
			v.NoteOff(false)
		}
	}
	e.noteToVoice = make(map[int]*Voice)
}

// AllSoundOff immediately silences every voice (CC120), bypassing the
// release stage.
func (e *Engine) AllSoundOff() {
	for _, v := range e.voices {
		v.Active = false
		v.Releasing = false
		v.SustainHeld = false
		v.AmpEnv.Reset()
		v.FilterEnv.Reset()
	}
	e.noteToVoice = make(map[int]*Voice)
}

// ActiveVoiceCount returns the number of currently sounding voices.
func (e *Engine) ActiveVoiceCount() int {
	n := 0
	for _, v := range e.voices {
		if v.Active {
			n++
		}
	}
	return n
}

// Process renders one stereo sample, summing every active voice.
func (e *Engine) Process() (left, right float64) {
	for _, v := range e.voices {
		if !v.Active {
			continue
		}
		l, r := v.Process(&e.params, e.sampleRate, e.modWheel, e.pitchBend)
		left += l
		right += r
	}
	return left, right
}
