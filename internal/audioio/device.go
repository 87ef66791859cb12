package audioio

import (
	"github.com/cbegin/groovebox/internal/audio"
)

// RenderFunc renders one block of interleaved output audio. It is the
// engine's hot-path entry point; the device holds only this function
// value, never a reference back to the engine itself, so the output
// device and the engine do not form an ownership cycle.
type RenderFunc func(out []float32, channels int)

// renderSource adapts a RenderFunc to the underlying player's
// SampleSource contract. The player always pulls interleaved stereo
// blocks; a mono render is spread to both channels.
type renderSource struct {
	render   RenderFunc
	channels int
}

func (s renderSource) Process(dst []float32) {
	if s.channels != 1 {
		s.render(dst, s.channels)
		return
	}
	frames := len(dst) / 2
	s.render(dst[:frames], 1)
	for i := frames - 1; i >= 0; i-- {
		v := dst[i]
		dst[2*i] = v
		dst[2*i+1] = v
	}
}

// Device is the engine's output half of the audio device contract: a
// duplex-capable low-latency stream, interleaved 32-bit float, stereo
// preferred. It wraps the ebiten/oto backed player.
type Device struct {
	player     *audio.Player
	sampleRate int
	channels   int
}

// Open negotiates a player at sampleRate driven by render, and starts
// it playing.
func Open(sampleRate int, channels int, render RenderFunc) (*Device, error) {
	player, err := audio.NewPlayer(sampleRate, renderSource{render: render, channels: channels})
	if err != nil {
		return nil, err
	}
	d := &Device{player: player, sampleRate: sampleRate, channels: channels}
	d.player.Play()
	return d, nil
}

// SampleRate returns the negotiated output sample rate.
func (d *Device) SampleRate() int { return d.sampleRate }

// Channels returns the negotiated output channel count.
func (d *Device) Channels() int { return d.channels }

// Close stops playback and releases the underlying stream.
func (d *Device) Close() error {
	return d.player.Stop()
}
