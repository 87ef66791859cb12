package audioio

import "testing"

func TestSyntheticInputStaysWithinNoiseFloor(t *testing.T) {
	in := NewSyntheticInput(48000, 2, 0.05)
	buf := make([]float32, 512)
	frames, err := in.ReadBlock(buf)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if frames != 256 {
		t.Errorf("expected 256 frames for a 512-sample stereo buffer, got %d", frames)
	}
	for i, v := range buf {
		if v < -0.05 || v > 0.05 {
			t.Fatalf("sample %d = %f out of noise floor [-0.05,0.05]", i, v)
		}
	}
}

func TestSyntheticInputReportsConfiguredFormat(t *testing.T) {
	in := NewSyntheticInput(44100, 1, 0.01)
	if in.SampleRate() != 44100 {
		t.Errorf("expected sample rate 44100, got %d", in.SampleRate())
	}
	if in.Channels() != 1 {
		t.Errorf("expected 1 channel, got %d", in.Channels())
	}
}
