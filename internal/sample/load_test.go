package sample

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func encodeTestWAV(t *testing.T, sampleRate, channels int, frames []float32) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	enc := wav.NewEncoder(f, sampleRate, 32, channels, 3)
	for _, v := range frames {
		if err := enc.WriteFrame(v); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestLoadWAVRoundTripsMonoFloatSamples(t *testing.T) {
	frames := []float32{0, 0.5, -0.5, 1, -1}
	path := encodeTestWAV(t, 44100, 1, frames)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	s, err := LoadWAV("kick", f)
	if err != nil {
		t.Fatalf("LoadWAV: %v", err)
	}
	if s.Channels != 1 || s.SampleRate != 44100 {
		t.Fatalf("unexpected format: channels=%d sampleRate=%d", s.Channels, s.SampleRate)
	}
	if s.FrameCount != len(frames) {
		t.Fatalf("expected %d frames, got %d", len(frames), s.FrameCount)
	}
	for i, want := range frames {
		if got := s.Data[i]; math.Abs(float64(got-want)) > 1e-4 {
			t.Errorf("frame %d: want %f got %f", i, want, got)
		}
	}
}

func TestLoadWAVRangeTrimsToOffsetAndLength(t *testing.T) {
	frames := make([]float32, 100)
	for i := range frames {
		frames[i] = float32(i) / 100
	}
	path := encodeTestWAV(t, 48000, 1, frames)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	s, err := LoadWAVRange("loop", f, 10, 20)
	if err != nil {
		t.Fatalf("LoadWAVRange: %v", err)
	}
	if s.FrameCount != 20 {
		t.Fatalf("expected 20 frames, got %d", s.FrameCount)
	}
	if math.Abs(float64(s.Data[0]-frames[10])) > 1e-4 {
		t.Errorf("expected trimmed sample to start at frame 10, got %f want %f", s.Data[0], frames[10])
	}
}
