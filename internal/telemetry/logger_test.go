package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerWritesLeveledRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)
	logger.Info("engine started", "sampleRate", 48000)
	logger.Warn("low disk space", "freeBytes", 1024)

	out := buf.String()
	if !strings.Contains(out, "engine started") || !strings.Contains(out, "low disk space") {
		t.Fatalf("expected both records in output, got %q", out)
	}
}

func TestLoggerBelowLevelIsSuppressed(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)
	logger.Info("should not appear")
	if strings.Contains(buf.String(), "should not appear") {
		t.Error("expected info-level record to be suppressed below warn threshold")
	}
}

func TestLoggerWithAttachesAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo).With("component", "capture")
	logger.Info("started")
	if !strings.Contains(buf.String(), "component=capture") {
		t.Errorf("expected attached attribute in output, got %q", buf.String())
	}
}
