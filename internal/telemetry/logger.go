// Package telemetry provides the engine's structured logging, split
// into a normal control-side Logger and a RenderSink the audio
// callback uses instead, so a log call from the render thread never
// blocks on the same output writer the control thread logs to.
package telemetry

import (
	"io"
	"log/slog"
)

// Logger wraps a structured slog.Logger for control-thread use: load
// sample, start/stop capture, plugin load/unload, and other control
// surface operations log through here directly.
type Logger struct {
	base *slog.Logger
}

// NewLogger returns a Logger writing leveled text records to w.
func NewLogger(w io.Writer, level slog.Level) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{base: slog.New(h)}
}

func (l *Logger) Info(msg string, args ...any)  { l.base.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.base.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.base.Error(msg, args...) }

// With returns a Logger that always includes the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{base: l.base.With(args...)}
}
