package groovebox

import "testing"

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	if _, err := NewEngine(Config{SampleRate: 0, Channels: 2}); err == nil {
		t.Error("expected an error for a zero sample rate")
	}
	if _, err := NewEngine(Config{SampleRate: 48000, Channels: 3}); err == nil {
		t.Error("expected an error for an unsupported channel count")
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(Config{SampleRate: 48000, Channels: 2})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestRenderProducesSoundAfterPluginNoteOn(t *testing.T) {
	e := newTestEngine(t)
	if err := e.LoadPlugin("subtractive_synth", "lead"); err != nil {
		t.Fatalf("LoadPlugin: %v", err)
	}
	if err := e.SendMIDIToPlugin("lead", 0x90, 60, 100); err != nil {
		t.Fatalf("SendMIDIToPlugin: %v", err)
	}

	out := make([]float32, 512)
	e.render(out, 2)

	nonZero := false
	for _, v := range out {
		if v != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Error("expected non-silent output after a plugin note-on")
	}
}

func TestRenderStaysWithinSoftLimit(t *testing.T) {
	e := newTestEngine(t)
	e.SetMasterVolume(1)
	if err := e.LoadPlugin("subtractive_synth", "lead"); err != nil {
		t.Fatalf("LoadPlugin: %v", err)
	}
	_ = e.SendMIDIToPlugin("lead", 0x90, 60, 127)

	out := make([]float32, 512)
	for i := 0; i < 20; i++ {
		e.render(out, 2)
	}
	for _, v := range out {
		if v > 0.95 || v < -0.95 {
			t.Fatalf("sample %f exceeds the soft limit [-0.95,0.95]", v)
		}
	}
}

func TestTriggerDrumPadWithoutConfiguredPadFails(t *testing.T) {
	e := newTestEngine(t)
	if err := e.TriggerDrumPad(0, 1.0); err == nil {
		t.Error("expected an error triggering an unconfigured pad")
	}
}

func TestStatsReflectsLoadedPlugins(t *testing.T) {
	e := newTestEngine(t)
	if err := e.LoadPlugin("subtractive_synth", "lead"); err != nil {
		t.Fatalf("LoadPlugin: %v", err)
	}
	stats := e.Stats()
	if _, ok := stats.PluginErrorCounts["lead"]; !ok {
		t.Error("expected Stats to report an entry for the loaded plugin")
	}
}

func TestShutdownWithoutStartIsANoOp(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Shutdown(); err != nil {
		t.Errorf("Shutdown on a never-started engine: %v", err)
	}
}
