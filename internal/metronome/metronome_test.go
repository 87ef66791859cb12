package metronome

import "testing"

func TestDisabledMetronomeProducesSilence(t *testing.T) {
	m := New(48000)
	m.SetState(false, 120, 4, 4)
	for i := 0; i < 48000; i++ {
		if v := m.Process(); v != 0 {
			t.Fatalf("expected silence while disabled, got %f at sample %d", v, i)
		}
	}
}

func TestEnabledMetronomeClicksOnBeat(t *testing.T) {
	m := New(48000)
	m.SetState(true, 120, 4, 4)

	framesPerBeat := 48000.0 * 60 / 120
	anyNonZeroNearFirstBeat := false
	for i := 0; i < int(framesPerBeat)+100; i++ {
		v := m.Process()
		if v != 0 {
			anyNonZeroNearFirstBeat = true
		}
	}
	if !anyNonZeroNearFirstBeat {
		t.Fatal("expected a non-zero click burst at the first beat boundary")
	}
}

func TestDownbeatUsesPrimaryFrequency(t *testing.T) {
	m := New(48000)
	m.SetState(true, 120, 4, 4)
	m.startBurst() // beat 0 is the downbeat by construction
	if m.burstFreqHz != primaryHz {
		t.Errorf("expected primary frequency on downbeat, got %f", m.burstFreqHz)
	}
}

func TestNonDownbeatUsesSecondaryFrequency(t *testing.T) {
	m := New(48000)
	m.SetState(true, 120, 4, 4)
	m.currentBeatInBar = 1
	m.startBurst()
	if m.burstFreqHz != secondaryHz {
		t.Errorf("expected secondary frequency off the downbeat, got %f", m.burstFreqHz)
	}
}

func TestVolumeClampsToUnitRange(t *testing.T) {
	m := New(48000)
	m.SetVolume(5)
	if m.volume != 1 {
		t.Errorf("expected volume clamped to 1, got %f", m.volume)
	}
	m.SetVolume(-1)
	if m.volume != 0 {
		t.Errorf("expected volume clamped to 0, got %f", m.volume)
	}
}

func TestBPMClampsToConfiguredRange(t *testing.T) {
	m := New(48000)
	m.SetState(true, 1000, 4, 4)
	if m.bpm != maxBPM {
		t.Errorf("expected bpm clamped to %f, got %f", maxBPM, m.bpm)
	}
	m.SetState(true, 1, 4, 4)
	if m.bpm != minBPM {
		t.Errorf("expected bpm clamped to %f, got %f", minBPM, m.bpm)
	}
}
