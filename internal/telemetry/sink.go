package telemetry

import (
	"sync/atomic"
	"time"
)

// Level mirrors slog's severity levels without pulling slog into the
// render thread's hot path.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// entry is a fixed-size, allocation-free log record. Msg must always
// be a string literal supplied by the caller at the call site, never
// built with fmt.Sprintf on the render thread.
type entry struct {
	level    Level
	msg      string
	field1K  string
	field1V  float64
	field2K  string
	field2V  float64
	occupied uint32 // atomic; set after the fields above are written
}

const defaultDrainInterval = 200 * time.Millisecond

// RenderSink is a fixed-capacity single-producer/single-consumer ring
// buffer: the audio callback is the only producer (Log never blocks or
// allocates), and a background goroutine is the only consumer,
// periodically draining entries into a Logger. This is the "throttled,
// lock-free-safe sink" the render thread is allowed to write to.
type RenderSink struct {
	buf      []entry
	capacity uint64
	writeIdx uint64 // atomic
	readIdx  uint64 // owned by the drain goroutine

	logger        *Logger
	maxPerDrain   int
	drainInterval time.Duration
	suppressed    int64 // atomic, reset each drain

	done  chan struct{}
	ended chan struct{}
}

// NewRenderSink returns a sink with room for capacity entries, logging
// through logger at most maxPerDrain records every drain interval.
func NewRenderSink(logger *Logger, capacity int, maxPerDrain int) *RenderSink {
	if capacity <= 0 {
		capacity = 1024
	}
	if maxPerDrain <= 0 {
		maxPerDrain = 20
	}
	return &RenderSink{
		buf:           make([]entry, capacity),
		capacity:      uint64(capacity),
		logger:        logger,
		maxPerDrain:   maxPerDrain,
		drainInterval: defaultDrainInterval,
	}
}

// Log records one entry. Safe to call from the render thread: it never
// blocks, allocates, or takes a lock. If the producer has lapped the
// consumer, the oldest unread entry is silently overwritten — the
// counters exposed elsewhere (missed triggers, buffer underruns,
// plugin errors) are the authoritative record of render-side failures,
// not this log.
func (s *RenderSink) Log(level Level, msg string, f1k string, f1v float64, f2k string, f2v float64) {
	idx := atomic.AddUint64(&s.writeIdx, 1) - 1
	slot := &s.buf[idx%s.capacity]
	atomic.StoreUint32(&slot.occupied, 0)
	slot.level = level
	slot.msg = msg
	slot.field1K, slot.field1V = f1k, f1v
	slot.field2K, slot.field2V = f2k, f2v
	atomic.StoreUint32(&slot.occupied, 1)
}

// Start launches the background drain goroutine.
func (s *RenderSink) Start() {
	s.done = make(chan struct{})
	s.ended = make(chan struct{})
	go s.run()
}

// Stop signals the drain goroutine to exit and waits for it to finish,
// draining any remaining entries first.
func (s *RenderSink) Stop() {
	if s.done == nil {
		return
	}
	close(s.done)
	<-s.ended
}

func (s *RenderSink) run() {
	defer close(s.ended)
	ticker := time.NewTicker(s.drainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.drain()
		case <-s.done:
			s.drain()
			return
		}
	}
}

func (s *RenderSink) drain() {
	write := atomic.LoadUint64(&s.writeIdx)
	logged := 0
	for s.readIdx < write {
		slot := &s.buf[s.readIdx%s.capacity]
		if atomic.LoadUint32(&slot.occupied) == 0 {
			s.readIdx++
			continue
		}
		if logged >= s.maxPerDrain {
			atomic.AddInt64(&s.suppressed, 1)
			s.readIdx++
			continue
		}
		s.logEntry(slot)
		logged++
		s.readIdx++
	}
	if n := atomic.SwapInt64(&s.suppressed, 0); n > 0 {
		s.logger.Warn("render log sink throttled", "suppressed", n)
	}
}

func (s *RenderSink) logEntry(e *entry) {
	args := make([]any, 0, 4)
	if e.field1K != "" {
		args = append(args, e.field1K, e.field1V)
	}
	if e.field2K != "" {
		args = append(args, e.field2K, e.field2V)
	}
	switch e.level {
	case LevelError:
		s.logger.Error(e.msg, args...)
	case LevelWarn:
		s.logger.Warn(e.msg, args...)
	default:
		s.logger.Info(e.msg, args...)
	}
}
