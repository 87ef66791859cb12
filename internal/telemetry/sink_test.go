package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestRenderSinkDrainsLoggedEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)
	sink := NewRenderSink(logger, 16, 20)
	sink.drainInterval = 10 * time.Millisecond
	sink.Start()
	defer sink.Stop()

	sink.Log(LevelWarn, "buffer underrun", "count", 1, "", 0)

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), "buffer underrun") {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !strings.Contains(buf.String(), "buffer underrun") {
		t.Fatalf("expected drained log to contain the message, got %q", buf.String())
	}
}

func TestRenderSinkThrottlesPastMaxPerDrain(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)
	sink := NewRenderSink(logger, 64, 2)

	for i := 0; i < 10; i++ {
		sink.Log(LevelInfo, "tick", "i", float64(i), "", 0)
	}
	sink.drain()

	lines := strings.Count(buf.String(), "msg=tick")
	if lines > 2 {
		t.Errorf("expected at most 2 logged ticks per drain, got %d", lines)
	}
	if !strings.Contains(buf.String(), "throttled") {
		t.Error("expected a throttled-suppression summary after exceeding maxPerDrain")
	}
}

func TestRenderSinkLogDoesNotBlockUnderContention(t *testing.T) {
	logger := NewLogger(&bytes.Buffer{}, slog.LevelInfo)
	sink := NewRenderSink(logger, 8, 100)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			sink.Log(LevelInfo, "spin", "i", float64(i), "", 0)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Log appears to block under sustained writes")
	}
}
