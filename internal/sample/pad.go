package sample

import (
	"math"
	"math/rand"

	"github.com/cbegin/groovebox/internal/envelope"
	"github.com/cbegin/groovebox/internal/filter"
	"github.com/cbegin/groovebox/internal/lfo"
)

// LayerTriggerRule selects how a pad picks among its enabled layers.
type LayerTriggerRule int

const (
	RuleVelocity LayerTriggerRule = iota
	RuleCycle
	RuleRandom
)

// PlaybackMode controls how long a triggered sound plays.
type PlaybackMode int

const (
	OneShot PlaybackMode = iota
	Loop
	Gate
)

// Layer is one sample assignment within a pad.
type Layer struct {
	SampleID         string
	Enabled          bool
	VelocityRangeLo  int // [0,127]
	VelocityRangeHi  int
	TuningCoarse     int
	TuningFine       int
	VolumeOffsetDB   float64
	PanOffset        float64
}

// VolumeOffsetLinear converts VolumeOffsetDB to a linear gain factor.
func (l Layer) VolumeOffsetLinear() float64 {
	return dbToLinear(l.VolumeOffsetDB)
}

func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// Pad is the per-pad configuration: its sample layers, envelopes,
// optional filter/pitch modulation, and playback rules.
type Pad struct {
	ID               int
	Layers           []Layer
	LayerTriggerRule LayerTriggerRule
	CycleIndex       int
	PlaybackMode     PlaybackMode
	TuningCoarse     int
	TuningFine       int
	Volume           float64
	Pan              float64
	MuteGroup        int
	Polyphony        int

	AmpEnvelope    envelope.Settings
	HasFilterEnv   bool
	FilterEnvelope envelope.Settings
	HasFilter      bool
	FilterSettings FilterSettings
	HasPitchEnv    bool
	PitchEnvelope  envelope.Settings
	PitchEnvAmount float64 // semitones, applied to playback speed
	LFOs           []lfo.Settings
}

// FilterSettings names a filter mode/cutoff/resonance triple for a pad.
type FilterSettings struct {
	Mode       filter.Mode
	CutoffHz   float64
	ResonanceQ float64
	EnvAmount  float64
}

// UpdateSettings replaces the pad's configuration and resets its
// cycle index.
func (p *Pad) UpdateSettings(updated Pad) {
	updated.ID = p.ID
	updated.CycleIndex = 0
	*p = updated
}

// enabledLayerIndices returns the indices of enabled layers in order.
func (p *Pad) enabledLayerIndices() []int {
	var out []int
	for i, l := range p.Layers {
		if l.Enabled {
			out = append(out, i)
		}
	}
	return out
}

// SelectLayer resolves which layer fires for a given velocity
// (0..127), per the pad's LayerTriggerRule. Returns false if no layer
// is enabled.
func (p *Pad) SelectLayer(velocity int) (Layer, bool) {
	enabled := p.enabledLayerIndices()
	if len(enabled) == 0 {
		return Layer{}, false
	}
	switch p.LayerTriggerRule {
	case RuleCycle:
		idx := enabled[p.CycleIndex%len(enabled)]
		p.CycleIndex++
		return p.Layers[idx], true
	case RuleRandom:
		idx := enabled[rand.Intn(len(enabled))]
		return p.Layers[idx], true
	default: // RuleVelocity
		for _, idx := range enabled {
			l := p.Layers[idx]
			if velocity >= l.VelocityRangeLo && velocity <= l.VelocityRangeHi {
				return l, true
			}
		}
		return p.Layers[enabled[0]], true
	}
}
