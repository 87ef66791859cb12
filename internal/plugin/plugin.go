// Package plugin hosts the engine's polymorphic audio plugins behind
// a single interface, replacing the inheritance-based plugin
// hierarchies common in native audio engines with a Go interface
// stored in a factory-populated registry.
package plugin

import (
	"github.com/cbegin/groovebox/internal/param"
)

// ParamChange is a pending parameter change scoped to one plugin's
// block, normalized-value addressed by stable parameter index.
type ParamChange = param.Change

// ProcessContext carries the information a plugin needs to render one
// block: transport state, timing, and any parameter changes queued for
// this block.
type ProcessContext struct {
	SampleRate          float64
	FrameCount          int
	TempoBPM            float64
	TimePositionSamples int64
	IsPlaying           bool
	Changes             []ParamChange
}

// Plugin is any hosted audio processor. Implementations must not
// block or allocate in Process; Process is called once per audio
// block from the render thread.
type Plugin interface {
	ID() string
	Parameters() *param.Set
	Process(ctx ProcessContext, out [][]float32) error
	HandleMIDI(status, data1, data2 byte)
	SavePreset() []byte
	LoadPreset(data []byte) error
}
