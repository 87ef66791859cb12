package groovebox

import "github.com/cbegin/groovebox/internal/scheduler"

// EngineStats is the read-only status snapshot exposed to the control
// side: step-scheduler performance counters plus render-side failure
// counts that must never surface synchronously from the audio thread.
type EngineStats struct {
	scheduler.Counters
	PluginErrorCounts map[string]int64
	IsRecording       bool
	RecordingPeak     float64
	RecordingRMS      float64
	RecordingGain     float64
	DeviceErrorCount  int64
}

// Stats returns a snapshot of the engine's current status counters.
func (e *Engine) Stats() EngineStats {
	pluginErrors := make(map[string]int64)
	for _, id := range e.plugins.LoadedIDs() {
		pluginErrors[id] = e.plugins.ErrorCount(id)
	}
	return EngineStats{
		Counters:          e.sched.Counters(),
		PluginErrorCounts: pluginErrors,
		IsRecording:       e.capture.IsRecording(),
		RecordingPeak:     e.capture.PeakLevel(),
		RecordingRMS:      e.capture.RMSLevel(),
		RecordingGain:     e.capture.CurrentGain(),
		DeviceErrorCount:  e.deviceErrorCount(),
	}
}
