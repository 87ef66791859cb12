package groovebox

import (
	"fmt"
	"io"

	"github.com/cbegin/groovebox/internal/capture"
	"github.com/cbegin/groovebox/internal/midievent"
	"github.com/cbegin/groovebox/internal/sample"
)

// --- Master volume ---

// SetMasterVolume sets the output master volume, clamped to [0,1].
func (e *Engine) SetMasterVolume(v float64) {
	e.router.SetMasterVolume(v)
}

// MasterVolume returns the current master volume.
func (e *Engine) MasterVolume() float64 {
	return e.router.MasterVolume()
}

// ResetMasterBus clears the master insert chain's internal state (the
// bus compressor's envelope followers), for use after a long silence
// or a transport reset.
func (e *Engine) ResetMasterBus() {
	e.master.Reset()
}

// --- Sample library ---

// LoadSampleToMemory decodes a WAV file's bytes and adds it to the
// sample library under id, replacing any sample already at that id.
func (e *Engine) LoadSampleToMemory(id string, wavData []byte) error {
	s, err := sample.LoadWAVBytes(id, wavData, 0, 0)
	if err != nil {
		return newErr(KindCorrupt, "LoadSampleToMemory", err)
	}
	e.store.Load(s)
	return nil
}

// UnloadSample removes a sample from the library.
func (e *Engine) UnloadSample(id string) {
	if s, ok := e.store.Get(id); ok {
		e.store.Unload(id)
		e.store.Release(s)
	}
}

// --- Pads ---

// UpdatePadSettings replaces pad index's full settings.
func (e *Engine) UpdatePadSettings(index int, settings sample.Pad) error {
	if index < 0 || index > 15 {
		return newErr(KindInvalidArgument, "UpdatePadSettings", fmt.Errorf("pad index %d out of range [0,15]", index))
	}
	e.player.SetPad(index, settings)
	return nil
}

// SetPadVolume updates only the volume of an existing pad, clamped to
// [0,2].
func (e *Engine) SetPadVolume(index int, volume float64) error {
	p, ok := e.player.Pad(index)
	if !ok {
		return newErr(KindNotFound, "SetPadVolume", fmt.Errorf("pad %d not configured", index))
	}
	updated := *p
	updated.Volume = clampRange(volume, 0, 2)
	e.player.SetPad(index, updated)
	return nil
}

// SetPadPan updates only the pan of an existing pad, clamped to
// [-1,1].
func (e *Engine) SetPadPan(index int, pan float64) error {
	p, ok := e.player.Pad(index)
	if !ok {
		return newErr(KindNotFound, "SetPadPan", fmt.Errorf("pad %d not configured", index))
	}
	updated := *p
	updated.Pan = clampRange(pan, -1, 1)
	e.player.SetPad(index, updated)
	return nil
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TriggerDrumPad fires pad index immediately at the given velocity.
func (e *Engine) TriggerDrumPad(index int, velocity float64) error {
	if err := e.player.TriggerDrumPad(index, velocity); err != nil {
		return newErr(KindInvalidArgument, "TriggerDrumPad", err)
	}
	return nil
}

// TriggerSample fires a one-off, unpadded sample by id.
func (e *Engine) TriggerSample(id string, volume, pan float64) error {
	if err := e.player.TriggerSample(id, volume, pan); err != nil {
		return newErr(KindNotFound, "TriggerSample", err)
	}
	return nil
}

// StopAllSamples triggers release on every currently playing sound.
func (e *Engine) StopAllSamples() {
	e.player.StopAllSamples()
}

// --- Step scheduler ---

// ScheduleStepTrigger enqueues a future pad hit at timestampUs.
func (e *Engine) ScheduleStepTrigger(pad int, velocity float64, timestampUs int64) error {
	if err := e.sched.ScheduleStepTrigger(pad, velocity, timestampUs); err != nil {
		return newErr(KindInvalidArgument, "ScheduleStepTrigger", err)
	}
	return nil
}

// ClearScheduledEvents drops every pending scheduled trigger.
func (e *Engine) ClearScheduledEvents() {
	e.sched.ClearScheduledEvents()
}

// SetSequencerTempo updates the tempo driving the metronome, clamped
// to [60,200] BPM; the step scheduler itself is timestamp-driven and
// has no tempo of its own.
func (e *Engine) SetSequencerTempo(bpm, numerator, denominator float64) {
	e.metro.SetTempo(clampRange(bpm, 60, 200))
}

// --- MIDI ---

// ProcessMIDIMessage routes an incoming short MIDI message, dispatching
// immediately if it is due or queuing it for DrainDue otherwise.
func (e *Engine) ProcessMIDIMessage(status, data1, data2 byte, channel uint8, timestampUs int64) {
	msg := midievent.Message{
		Status:      status,
		Channel:     channel,
		Data1:       data1,
		Data2:       data2,
		TimestampUs: timestampUs,
	}
	e.router.Dispatch(msg, e.nowUs())
}

// SetMIDINoteMapping maps a (note, channel) pair to a pad index.
func (e *Engine) SetMIDINoteMapping(note, channel uint8, pad int) {
	e.router.SetNoteMapping(note, channel, pad)
}

// RemoveMIDINoteMapping removes a (note, channel) mapping.
func (e *Engine) RemoveMIDINoteMapping(note, channel uint8) {
	e.router.RemoveNoteMapping(note, channel)
}

// SetMIDIVelocityCurve configures the curve applied to note-on velocity.
func (e *Engine) SetMIDIVelocityCurve(curveType midievent.CurveType, sensitivity float64) {
	e.router.SetVelocityCurve(curveType, sensitivity)
}

// SetMIDIClockSyncEnabled toggles whether incoming MIDI clock pulses
// feed the tempo-smoothing clock sync unit.
func (e *Engine) SetMIDIClockSyncEnabled(enabled bool) {
	e.router.SetClockSyncEnabled(enabled)
}

// SetExternalClockEnabled is an alias over the same toggle; external
// clock sources and MIDI clock pulses share one sync unit.
func (e *Engine) SetExternalClockEnabled(enabled bool) {
	e.router.SetClockSyncEnabled(enabled)
}

// ConnectMIDIInput opens the first available hardware MIDI input port
// and routes every message it produces through the router, same as
// ProcessMIDIMessage. Returns an error if no port is present or it is
// already connected.
func (e *Engine) ConnectMIDIInput() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.midiIn != nil {
		return newErr(KindInvalidState, "ConnectMIDIInput", fmt.Errorf("already connected"))
	}
	in, err := midievent.OpenFirstInput(e.router, e.nowUs)
	if err != nil {
		return newErr(KindDeviceError, "ConnectMIDIInput", err)
	}
	e.midiIn = in
	return nil
}

// DisconnectMIDIInput closes the hardware MIDI input port opened by
// ConnectMIDIInput, if any. A no-op if not connected.
func (e *Engine) DisconnectMIDIInput() error {
	e.mu.Lock()
	in := e.midiIn
	e.midiIn = nil
	e.mu.Unlock()
	if in == nil {
		return nil
	}
	if err := in.Close(); err != nil {
		return newErr(KindDeviceError, "DisconnectMIDIInput", err)
	}
	return nil
}

// --- Metronome ---

// SetMetronomeState enables or disables the metronome at the given
// tempo and time signature.
func (e *Engine) SetMetronomeState(enabled bool, bpm float64, numerator, denominator int) {
	e.metro.SetState(enabled, bpm, numerator, denominator)
}

// SetMetronomeVolume sets the metronome click's volume.
func (e *Engine) SetMetronomeVolume(v float64) {
	e.metro.SetVolume(v)
}

// --- Capture ---

// StartAudioRecording begins writing a 32-bit float WAV file to path,
// reading from in (normally the device's input stream).
func (e *Engine) StartAudioRecording(path string, in capture.InputStream, sampleRate, channels int) error {
	if err := e.capture.StartRecording(path, in, sampleRate, channels); err != nil {
		return newErr(KindIO, "StartAudioRecording", err)
	}
	return nil
}

// StopAudioRecording finalizes the WAV file and returns its result.
func (e *Engine) StopAudioRecording() (capture.Result, error) {
	res, err := e.capture.StopRecording()
	if err != nil {
		return capture.Result{}, newErr(KindIO, "StopAudioRecording", err)
	}
	return res, nil
}

// IsRecording reports whether capture is currently active.
func (e *Engine) IsRecording() bool { return e.capture.IsRecording() }

// --- Plugins ---

// LoadPlugin instantiates a plugin implementation under id.
func (e *Engine) LoadPlugin(implementation, id string) error {
	if err := e.plugins.Load(implementation, id, float64(e.sampleRate)); err != nil {
		return newErr(KindNotFound, "LoadPlugin", err)
	}
	return nil
}

// UnloadPlugin removes a loaded plugin.
func (e *Engine) UnloadPlugin(id string) error {
	if err := e.plugins.Unload(id); err != nil {
		return newErr(KindNotFound, "UnloadPlugin", err)
	}
	return nil
}

// GetLoadedPlugins lists the ids of every loaded plugin.
func (e *Engine) GetLoadedPlugins() []string {
	return e.plugins.LoadedIDs()
}

// SetPluginParameter sets a named parameter's value, normalized to
// [0,1], on a loaded plugin.
func (e *Engine) SetPluginParameter(id, paramID string, normalizedValue float64) error {
	p, ok := e.plugins.Get(id)
	if !ok {
		return newErr(KindNotFound, "SetPluginParameter", fmt.Errorf("plugin %q not loaded", id))
	}
	param, ok := p.Parameters().ByID(paramID)
	if !ok {
		return newErr(KindNotFound, "SetPluginParameter", fmt.Errorf("plugin %q has no parameter %q", id, paramID))
	}
	param.SetNormalized(normalizedValue)
	return nil
}

// GetPluginParameter reads a named parameter's normalized value.
func (e *Engine) GetPluginParameter(id, paramID string) (float64, error) {
	p, ok := e.plugins.Get(id)
	if !ok {
		return 0, newErr(KindNotFound, "GetPluginParameter", fmt.Errorf("plugin %q not loaded", id))
	}
	param, ok := p.Parameters().ByID(paramID)
	if !ok {
		return 0, newErr(KindNotFound, "GetPluginParameter", fmt.Errorf("plugin %q has no parameter %q", id, paramID))
	}
	return param.GetNormalized(), nil
}

// SendMIDIToPlugin delivers a short MIDI message directly to a loaded
// plugin, bypassing the pad router entirely.
func (e *Engine) SendMIDIToPlugin(id string, status, data1, data2 byte) error {
	p, ok := e.plugins.Get(id)
	if !ok {
		return newErr(KindNotFound, "SendMIDIToPlugin", fmt.Errorf("plugin %q not loaded", id))
	}
	p.HandleMIDI(status, data1, data2)
	return nil
}

// SavePluginPreset serializes a loaded plugin's full state.
func (e *Engine) SavePluginPreset(id string) ([]byte, error) {
	p, ok := e.plugins.Get(id)
	if !ok {
		return nil, newErr(KindNotFound, "SavePluginPreset", fmt.Errorf("plugin %q not loaded", id))
	}
	return p.SavePreset(), nil
}

// LoadPluginPreset restores a loaded plugin's state from a blob
// produced by SavePluginPreset.
func (e *Engine) LoadPluginPreset(id string, data []byte) error {
	p, ok := e.plugins.Get(id)
	if !ok {
		return newErr(KindNotFound, "LoadPluginPreset", fmt.Errorf("plugin %q not loaded", id))
	}
	if err := p.LoadPreset(data); err != nil {
		return newErr(KindCorrupt, "LoadPluginPreset", err)
	}
	return nil
}

var _ io.Closer = (*Engine)(nil)

// Close is an alias for Shutdown so Engine satisfies io.Closer.
func (e *Engine) Close() error { return e.Shutdown() }
