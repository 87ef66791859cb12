package audioio

import "math/rand"

// SyntheticInput is a synthetic stand-in for a real duplex input
// device, a low-level-noise generator capture and its tests are
// driven against rather than a real microphone. It satisfies
// capture.InputStream structurally (ReadBlock/SampleRate/Channels/
// Close) without importing that package, keeping audioio a leaf
// dependency.
type SyntheticInput struct {
	sampleRate int
	channels   int
	noiseFloor float64
}

// NewSyntheticInput returns a synthetic input generating low-level
// noise within [-noiseFloor, noiseFloor].
func NewSyntheticInput(sampleRate, channels int, noiseFloor float64) *SyntheticInput {
	return &SyntheticInput{sampleRate: sampleRate, channels: channels, noiseFloor: noiseFloor}
}

// ReadBlock fills dst with noise, one sample at a time, and always
// succeeds.
func (s *SyntheticInput) ReadBlock(dst []float32) (int, error) {
	for i := range dst {
		dst[i] = float32((rand.Float64()*2 - 1) * s.noiseFloor)
	}
	return len(dst) / s.channels, nil
}

func (s *SyntheticInput) SampleRate() int { return s.sampleRate }
func (s *SyntheticInput) Channels() int   { return s.channels }
func (s *SyntheticInput) Close() error    { return nil }
