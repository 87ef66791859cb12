package groovebox

import "github.com/cbegin/groovebox/internal/plugin"

// render is the engine's entire audio callback: zero, step triggers,
// sample playback, metronome, plugins, then master scale and
// soft-limit. It is installed as the device's RenderFunc and must
// never block, allocate on the steady-state path, or panic past its
// own recover boundaries.
func (e *Engine) render(out []float32, channels int) {
	for i := range out {
		out[i] = 0
	}

	masterVolume := e.router.MasterVolume()

	nowUs := e.nowUs()
	e.sched.FireDue(e.player, nowUs)
	e.router.DrainDue(nowUs)

	e.player.Mix(out, channels)

	frames := len(out) / channels
	for f := 0; f < frames; f++ {
		v := float32(e.metro.Process())
		for ch := 0; ch < channels; ch++ {
			out[f*channels+ch] += v
		}
	}

	e.ensurePluginBuffers(channels, frames)
	for ch := 0; ch < channels; ch++ {
		for i := range e.pluginOut[ch] {
			e.pluginOut[ch][i] = 0
		}
	}
	ctx := plugin.ProcessContext{
		SampleRate: float64(e.sampleRate),
		FrameCount: frames,
		IsPlaying:  true,
	}
	e.plugins.ProcessAll(ctx, e.pluginOut, e.pluginScratch)
	for ch := 0; ch < channels; ch++ {
		for f := 0; f < frames; f++ {
			out[f*channels+ch] += e.pluginOut[ch][f]
		}
	}

	if channels == 2 {
		for f := 0; f < frames; f++ {
			l, r := e.master.Process(out[f*2], out[f*2+1])
			out[f*2] = l
			out[f*2+1] = r
		}
	} else {
		for i := range out {
			l, _ := e.master.Process(out[i], out[i])
			out[i] = l
		}
	}

	for i := range out {
		v := out[i] * float32(masterVolume)
		if v > 0.95 {
			v = 0.95
		} else if v < -0.95 {
			v = -0.95
		}
		out[i] = v
	}
}

func (e *Engine) ensurePluginBuffers(channels, frames int) {
	if len(e.pluginOut) == channels && len(e.pluginOut) > 0 && len(e.pluginOut[0]) == frames {
		return
	}
	e.pluginOut = make([][]float32, channels)
	e.pluginScratch = make([][]float32, channels)
	for ch := range e.pluginOut {
		e.pluginOut[ch] = make([]float32, frames)
		e.pluginScratch[ch] = make([]float32, frames)
	}
}
