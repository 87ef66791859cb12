package metronome

import "math"

const (
	burstMs     = 10.0
	primaryHz   = 1500.0
	secondaryHz = 1000.0
	minBPM      = 30.0
	maxBPM      = 300.0
)

// Metronome is a sample-scheduled, BPM-driven click generator: it
// tracks samples until the next beat and emits a short windowed tone
// burst at each beat boundary, accenting the downbeat of each bar.
type Metronome struct {
	enabled     bool
	bpm         float64
	timeSigNum  int
	timeSigDen  int
	volume      float64

	sampleRate          float64
	framesPerBeat       float64
	samplesUntilNext    float64
	currentBeatInBar    int

	burstFramesTotal int
	burstFrameIndex  int
	burstFreqHz      float64
}

// New returns a metronome at the given sample rate, 120 BPM, 4/4,
// disabled.
func New(sampleRate float64) *Metronome {
	m := &Metronome{
		sampleRate: sampleRate,
		bpm:        120,
		timeSigNum: 4,
		timeSigDen: 4,
		volume:     0.5,
	}
	m.recomputeFramesPerBeat()
	m.burstFramesTotal = int(burstMs / 1000 * sampleRate)
	m.burstFrameIndex = m.burstFramesTotal
	return m
}

// SetState configures enabled, tempo, and time signature, clamping BPM
// to [30,300], the numerator to [1,16], and the denominator to the
// nearest of {1,2,4,8,16}, then resets the beat phase.
func (m *Metronome) SetState(enabled bool, bpm float64, num, den int) {
	m.enabled = enabled
	m.bpm = clamp(bpm, minBPM, maxBPM)
	m.timeSigNum = clampInt(num, 1, 16)
	m.timeSigDen = nearestDenominator(den)
	m.recomputeFramesPerBeat()
	m.samplesUntilNext = m.framesPerBeat
	m.currentBeatInBar = 0
	m.burstFrameIndex = m.burstFramesTotal
}

// SetVolume sets click volume, clamped to [0,1].
func (m *Metronome) SetVolume(v float64) { m.volume = clamp(v, 0, 1) }

// SetTempo updates BPM without resetting beat phase, used when tempo
// tracks an external or internal clock source.
func (m *Metronome) SetTempo(bpm float64) {
	m.bpm = clamp(bpm, minBPM, maxBPM)
	m.recomputeFramesPerBeat()
}

func (m *Metronome) recomputeFramesPerBeat() {
	m.framesPerBeat = m.sampleRate * 60 / m.bpm
}

// Process advances the metronome by one sample and returns its
// contribution to the output (0 outside a burst window).
func (m *Metronome) Process() float64 {
	if !m.enabled {
		return 0
	}

	var out float64
	if m.burstFrameIndex < m.burstFramesTotal {
		out = m.renderBurstSample(m.burstFrameIndex)
		m.burstFrameIndex++
	}

	m.samplesUntilNext--
	if m.samplesUntilNext <= 0 {
		m.currentBeatInBar = (m.currentBeatInBar + 1) % m.timeSigNum
		m.startBurst()
		m.samplesUntilNext += m.framesPerBeat
	}
	return out
}

func (m *Metronome) startBurst() {
	m.burstFrameIndex = 0
	if m.currentBeatInBar == 0 {
		m.burstFreqHz = primaryHz
	} else {
		m.burstFreqHz = secondaryHz
	}
}

// renderBurstSample synthesizes one sample of a Hann-windowed tone
// burst at the accent frequency for the current beat.
func (m *Metronome) renderBurstSample(index int) float64 {
	t := float64(index) / float64(m.burstFramesTotal)
	window := 0.5 * (1 - math.Cos(2*math.Pi*t))
	phase := 2 * math.Pi * m.burstFreqHz * float64(index) / m.sampleRate
	return math.Sin(phase) * window * m.volume
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// nearestDenominator snaps den to the closest valid time-signature
// denominator in {1,2,4,8,16}.
func nearestDenominator(den int) int {
	valid := [...]int{1, 2, 4, 8, 16}
	best := valid[0]
	bestDist := den - best
	if bestDist < 0 {
		bestDist = -bestDist
	}
	for _, v := range valid[1:] {
		dist := den - v
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best = v
			bestDist = dist
		}
	}
	return best
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
