// Package groovebox is a real-time, low-latency sampler/synthesizer
// engine for a touch-controlled drum machine: pitched sample playback
// triggered by drum pads or a step sequencer, a tempo-synced
// metronome, a hosted polyphonic subtractive synth plugin driven by
// short musical messages, and simultaneous capture of the input
// stream to a 32-bit float WAV file.
package groovebox

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cbegin/groovebox/internal/audioio"
	"github.com/cbegin/groovebox/internal/capture"
	"github.com/cbegin/groovebox/internal/effects"
	"github.com/cbegin/groovebox/internal/metronome"
	"github.com/cbegin/groovebox/internal/midievent"
	"github.com/cbegin/groovebox/internal/plugin"
	"github.com/cbegin/groovebox/internal/sample"
	"github.com/cbegin/groovebox/internal/scheduler"
	"github.com/cbegin/groovebox/internal/telemetry"
)

// Engine owns every subsystem named in the system overview and wires
// them together into the one audio callback in render. Structural
// control-side fields (device lifecycle) are guarded by mu; each
// owned subsystem guards its own render-shared state internally.
type Engine struct {
	mu sync.Mutex

	sampleRate int
	channels   int

	device *audioio.Device

	store   *sample.Store
	player  *sample.Player
	sched   *scheduler.Scheduler
	clock   *midievent.ClockSync
	router  *midievent.Router
	metro   *metronome.Metronome
	plugins *plugin.Registry
	capture *capture.Recorder
	master  *effects.Chain
	midiIn  *midievent.DeviceInput

	logger     *telemetry.Logger
	renderSink *telemetry.RenderSink

	pluginOut     [][]float32
	pluginScratch [][]float32

	deviceErrors atomicCounter

	nowUs func() int64
}

// Config configures a new Engine. Logger is optional; a discarding
// logger is installed if nil.
type Config struct {
	SampleRate int
	Channels   int
	Logger     *telemetry.Logger
}

// NewEngine constructs every owned subsystem at default settings but
// does not open an audio device; call Start to do that.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.SampleRate <= 0 {
		return nil, newErr(KindInvalidArgument, "NewEngine", fmt.Errorf("sample rate %d must be positive", cfg.SampleRate))
	}
	if cfg.Channels != 1 && cfg.Channels != 2 {
		return nil, newErr(KindInvalidArgument, "NewEngine", fmt.Errorf("channels %d must be 1 or 2", cfg.Channels))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.NewLogger(io.Discard, slog.LevelError)
	}

	store := sample.NewStore()
	player := sample.NewPlayer(store, float64(cfg.SampleRate))
	clock := midievent.NewClockSync(0.2)
	router := midievent.NewRouter(player, clock)
	sched := scheduler.New()
	metro := metronome.New(float64(cfg.SampleRate))
	plugins := plugin.NewRegistry()
	rec := capture.New(capture.DiskFreeSpacer)
	sink := telemetry.NewRenderSink(logger, 1024, 20)
	sink.Start()
	master := effects.NewChain(effects.NewCompressor(cfg.SampleRate, -12, 2, 10, 100, 3))

	e := &Engine{
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
		store:      store,
		player:     player,
		sched:      sched,
		clock:      clock,
		router:     router,
		metro:      metro,
		plugins:    plugins,
		capture:    rec,
		master:     master,
		logger:     logger,
		renderSink: sink,
		nowUs:      func() int64 { return time.Now().UnixMicro() },
	}
	return e, nil
}

// Start opens the output device and begins rendering.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.device != nil {
		return newErr(KindInvalidState, "Start", fmt.Errorf("already started"))
	}
	dev, err := audioio.Open(e.sampleRate, e.channels, e.render)
	if err != nil {
		e.deviceErrors.add(1)
		return newErr(KindDeviceError, "Start", err)
	}
	e.device = dev
	return nil
}

// Shutdown closes the device and stops render callbacks, waiting for
// any in-flight callback to finish before releasing owned resources.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	dev := e.device
	e.device = nil
	midiIn := e.midiIn
	e.midiIn = nil
	e.mu.Unlock()
	if midiIn != nil {
		midiIn.Close()
	}
	if dev == nil {
		return nil
	}
	e.renderSink.Stop()
	if err := dev.Close(); err != nil {
		return newErr(KindDeviceError, "Shutdown", err)
	}
	return nil
}

func (e *Engine) deviceErrorCount() int64 { return e.deviceErrors.get() }

// The audio callback lives in callback.go; every other control-surface
// operation lives in controlsurface.go.
