package sample

import (
	"fmt"
	"sync"

	"github.com/cbegin/groovebox/internal/envelope"
	"github.com/cbegin/groovebox/internal/filter"
	"github.com/cbegin/groovebox/internal/lfo"
)

// Player owns the drum-pad table, the sample store, and the render-side
// active-sounds vector. Control-thread methods enqueue; Mix (called
// from the render thread) drains and mixes.
type Player struct {
	store *Store

	padMu sync.RWMutex
	pads  map[int]*Pad

	soundsMu sync.Mutex
	sounds   []*ActiveSound

	sampleRate float64
}

// NewPlayer returns a player backed by the given sample store.
func NewPlayer(store *Store, sampleRate float64) *Player {
	return &Player{
		store:      store,
		pads:       make(map[int]*Pad),
		sampleRate: sampleRate,
	}
}

// SetPad installs or replaces a pad's settings, resetting its cycle
// index.
func (p *Player) SetPad(index int, settings Pad) {
	p.padMu.Lock()
	defer p.padMu.Unlock()
	settings.ID = index
	settings.CycleIndex = 0
	p.pads[index] = &settings
}

// Pad returns the pad at index, or false if unset.
func (p *Player) Pad(index int) (*Pad, bool) {
	p.padMu.RLock()
	defer p.padMu.RUnlock()
	pad, ok := p.pads[index]
	return pad, ok
}

// TriggerDrumPad resolves the pad at index, selects a layer per its
// trigger rule, and creates an ActiveSound. velocity is [0,1].
func (p *Player) TriggerDrumPad(index int, velocity float64) error {
	if index < 0 || index > 15 {
		return fmt.Errorf("sample: pad index %d out of range [0,15]", index)
	}
	if velocity < 0 || velocity > 1 {
		return fmt.Errorf("sample: velocity %f out of range [0,1]", velocity)
	}

	p.padMu.Lock()
	pad, ok := p.pads[index]
	if !ok {
		p.padMu.Unlock()
		return fmt.Errorf("sample: pad %d not configured", index)
	}
	layer, ok := pad.SelectLayer(int(velocity * 127))
	muteGroup := pad.MuteGroup
	mode := pad.PlaybackMode
	ampEnv := pad.AmpEnvelope
	padVolume := pad.Volume
	padPan := pad.Pan
	hasFilter := pad.HasFilter
	filterSettings := pad.FilterSettings
	hasFilterEnv := pad.HasFilterEnv
	filterEnvelope := pad.FilterEnvelope
	hasPitchEnv := pad.HasPitchEnv
	pitchEnvelope := pad.PitchEnvelope
	pitchEnvAmount := pad.PitchEnvAmount
	lfoSettings := append([]lfo.Settings(nil), pad.LFOs...)
	p.padMu.Unlock()
	if !ok {
		return fmt.Errorf("sample: pad %d has no enabled layer", index)
	}

	smp, found := p.store.Get(layer.SampleID)
	if !found {
		return fmt.Errorf("sample: pad %d references unknown sample %q", index, layer.SampleID)
	}

	effectiveVolume := velocity * padVolume * layer.VolumeOffsetLinear()
	sound := newActiveSound(smp, effectiveVolume, padPan+layer.PanOffset, mode)
	sound.MuteGroup = muteGroup
	sound.AmpEnv.Configure(ampEnv, p.sampleRate, velocity)
	sound.AmpEnv.TriggerOn(velocity)

	sound.HasFilter = hasFilter
	if hasFilter {
		sound.FilterSettings = filterSettings
		sound.Filter = filter.New()
		sound.Filter.SetSampleRate(p.sampleRate)
		sound.Filter.Configure(filterSettings.Mode, filterSettings.CutoffHz, filterSettings.ResonanceQ)
		if hasFilterEnv {
			sound.FilterEnv = envelope.New()
			sound.FilterEnv.Configure(filterEnvelope, p.sampleRate, velocity)
			sound.FilterEnv.TriggerOn(velocity)
		}
	}

	sound.HasPitchEnv = hasPitchEnv
	if hasPitchEnv {
		sound.PitchEnv = envelope.New()
		sound.PitchEnv.Configure(pitchEnvelope, p.sampleRate, velocity)
		sound.PitchEnv.TriggerOn(velocity)
		sound.PitchEnvAmount = pitchEnvAmount
	}

	if len(lfoSettings) > 0 {
		sound.LFOs = make([]*lfo.LFO, len(lfoSettings))
		for i, s := range lfoSettings {
			l := lfo.New()
			l.Configure(s, p.sampleRate, 0)
			sound.LFOs[i] = l
		}
	}

	p.soundsMu.Lock()
	if muteGroup != 0 {
		for _, other := range p.sounds {
			if other.MuteGroup == muteGroup {
				other.AmpEnv.TriggerOff()
			}
		}
	}
	p.sounds = append(p.sounds, sound)
	p.soundsMu.Unlock()
	return nil
}

// TriggerSample is a free-running one-shot trigger bypassing pad/layer
// resolution: a fixed instant-attack, zero-decay, full-sustain,
// instant-release amp envelope.
func (p *Player) TriggerSample(sampleID string, volume, pan float64) error {
	smp, found := p.store.Get(sampleID)
	if !found {
		return fmt.Errorf("sample: unknown sample %q", sampleID)
	}
	sound := newActiveSound(smp, volume, pan, OneShot)
	sound.AmpEnv.Configure(envelope.Settings{Type: envelope.ADSR, AttackMs: 0, DecayMs: 0, SustainLevel: 1, ReleaseMs: 0}, p.sampleRate, 1)
	sound.AmpEnv.TriggerOn(1)

	p.soundsMu.Lock()
	p.sounds = append(p.sounds, sound)
	p.soundsMu.Unlock()
	return nil
}

// StopAllSamples triggers release on every active sound's amp envelope.
func (p *Player) StopAllSamples() {
	p.soundsMu.Lock()
	defer p.soundsMu.Unlock()
	for _, s := range p.sounds {
		s.AmpEnv.TriggerOff()
	}
}

// ActiveCount returns the number of currently active sounds.
func (p *Player) ActiveCount() int {
	p.soundsMu.Lock()
	defer p.soundsMu.Unlock()
	return len(p.sounds)
}

// Mix renders one block of active sounds into out (interleaved,
// channels-wide), additively, applying equal-power pan. Finished
// sounds are dropped and their sample references released.
func (p *Player) Mix(out []float32, channels int) {
	p.soundsMu.Lock()
	defer p.soundsMu.Unlock()

	frames := len(out) / channels
	kept := p.sounds[:0]
	for _, s := range p.sounds {
		for f := 0; f < frames; f++ {
			if s.Finished() {
				break
			}
			v := s.Next(p.sampleRate)
			if channels == 2 {
				l, r := EqualPowerPan(s.Pan)
				out[f*2] += float32(v * l)
				out[f*2+1] += float32(v * r)
			} else {
				out[f] += float32(v)
			}
		}
		if s.Finished() {
			p.store.Release(s.Sample())
			continue
		}
		kept = append(kept, s)
	}
	p.sounds = kept
}
