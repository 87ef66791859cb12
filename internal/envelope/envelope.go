// Package envelope implements the multi-stage amplitude/modulation
// envelope generator: idle, attack, hold, decay, sustain, release.
package envelope

import "math"

// Type selects which stages the envelope cycles through.
type Type int

const (
	AD Type = iota
	AHDS
	ADSR
)

// Stage is the current position in the envelope's state machine.
type Stage int

const (
	Idle Stage = iota
	Attack
	Hold
	Decay
	Sustain
	Release
)

// Settings are the caller-facing envelope parameters, copied into the
// generator at trigger time.
type Settings struct {
	Type              Type
	AttackMs          float64
	HoldMs            float64
	DecayMs           float64
	SustainLevel      float64 // [0,1]
	ReleaseMs         float64
	VelocityToAttack  float64 // [0,1]
	VelocityToLevel   float64 // [0,1]
}

// Generator advances a single envelope by one sample per process() call.
// Not safe for concurrent use; each voice owns one.
type Generator struct {
	settings   Settings
	sampleRate float64

	stage       Stage
	value       float64
	velocity    float64
	attackRate  float64
	decayRate   float64
	releaseRate float64
	holdSamples int
	holdLeft    int
}

// New returns an idle generator.
func New() *Generator {
	return &Generator{sampleRate: 44100}
}

// Configure installs settings, recomputes rates, and resets to Idle.
// A non-positive sample rate defaults to 44100.
func (g *Generator) Configure(s Settings, sampleRate, triggerVelocity float64) {
	g.settings = s
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	g.sampleRate = sampleRate
	g.stage = Idle
	g.value = 0
	g.holdLeft = 0
	g.calculateRates(triggerVelocity)
}

func (g *Generator) calculateRates(triggerVelocity float64) {
	s := g.settings
	attackMs := s.AttackMs
	if s.VelocityToAttack > 0 {
		attackMs = s.AttackMs * (1 - triggerVelocity*s.VelocityToAttack)
		if attackMs < 0 {
			attackMs = 0
		}
	}
	if attackMs > 0 {
		g.attackRate = 1 / (attackMs / 1000 * g.sampleRate)
	} else {
		g.attackRate = 1
	}

	if s.DecayMs > 0 {
		g.decayRate = (1 - s.SustainLevel) / (s.DecayMs / 1000 * g.sampleRate)
	} else {
		g.decayRate = 1
	}

	if s.HoldMs > 0 {
		g.holdSamples = int(math.Ceil(s.HoldMs / 1000 * g.sampleRate))
	} else {
		g.holdSamples = 0
	}

	g.releaseRate = g.releaseRateFrom(g.releaseFromLevel())
}

func (g *Generator) releaseFromLevel() float64 {
	if g.settings.Type == AD {
		return g.value
	}
	return g.settings.SustainLevel
}

func (g *Generator) releaseRateFrom(fromLevel float64) float64 {
	if g.settings.ReleaseMs <= 0 || fromLevel <= 0 {
		return 1
	}
	return fromLevel / (g.settings.ReleaseMs / 1000 * g.sampleRate)
}

// TriggerOn resets value to 0 and enters Attack (or further, per the
// zero-attack rules for AD/AHDS/ADSR).
func (g *Generator) TriggerOn(velocity float64) {
	g.velocity = velocity
	g.calculateRates(velocity)
	g.value = 0
	g.stage = Attack
	g.holdLeft = g.holdSamples

	if g.settings.AttackMs <= 0 {
		g.value = 1
		switch g.settings.Type {
		case AD:
			g.stage = Decay
		default:
			if g.holdSamples > 0 {
				g.stage = Hold
			} else {
				g.stage = Decay
			}
		}
	}
}

// TriggerOff moves to Release, recomputing the release rate from the
// current value.
func (g *Generator) TriggerOff() {
	if g.stage == Idle {
		return
	}
	g.stage = Release
	g.releaseRate = g.releaseRateFrom(g.value)
}

// CurrentStage returns the current stage.
func (g *Generator) CurrentStage() Stage { return g.stage }

// Active reports whether the envelope is anywhere but Idle.
func (g *Generator) Active() bool { return g.stage != Idle }

// Reset forces the generator back to Idle with value 0.
func (g *Generator) Reset() {
	g.stage = Idle
	g.value = 0
	g.holdLeft = 0
}

// Process advances the envelope by one sample and returns the new
// value, in [0,1].
func (g *Generator) Process() float64 {
	switch g.stage {
	case Idle:
		g.value = 0
	case Attack:
		g.value += g.attackRate
		if g.value >= 1 {
			g.value = 1
			if (g.settings.Type == AHDS || g.settings.Type == ADSR) && g.holdSamples > 0 {
				g.stage = Hold
				g.holdLeft = g.holdSamples
			} else {
				g.stage = Decay
			}
		}
	case Hold:
		g.value = 1
		g.holdLeft--
		if g.holdLeft <= 0 {
			g.stage = Decay
		}
	case Decay:
		if g.settings.Type == AD {
			rate := g.decayRate
			g.value -= rate
			if g.value <= 0 {
				g.value = 0
				g.stage = Idle
			}
		} else {
			g.value -= g.decayRate
			if g.value <= g.settings.SustainLevel {
				g.value = g.settings.SustainLevel
				g.stage = Sustain
			}
		}
	case Sustain:
		g.value = g.settings.SustainLevel
		if g.settings.SustainLevel <= 0 {
			g.stage = Idle
		}
	case Release:
		g.value -= g.releaseRate
		if g.value <= 0 {
			g.value = 0
			g.stage = Idle
		}
	}
	return g.value
}
