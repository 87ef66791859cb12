package scheduler

import (
	"fmt"
	"sync"
)

const (
	staleTriggerUs   int64 = 100_000
	musicalQueueCap        = 1000
)

// StepTrigger is a scheduled pad hit awaiting its timestamp.
type StepTrigger struct {
	Pad         int
	Velocity    float64
	TimestampUs int64
}

// Counters are the render-side performance counters exposed read-only
// to the control side.
type Counters struct {
	TotalTriggers   int64
	MissedTriggers  int64
	ScheduledCount  int64
	AvgLatencyUs    float64
	MaxLatencyUs    int64
	MinLatencyUs    int64
	JitterUs        int64
	BufferUnderruns int64
}

// PadTrigger is the subset of sample.Player the scheduler drives.
type PadTrigger interface {
	TriggerDrumPad(pad int, velocity float64) error
}

// Scheduler holds the scheduled step-trigger queue (insertion-sorted
// by timestamp, since entries are appended in roughly increasing
// order) and the render-side performance counters.
type Scheduler struct {
	mu       sync.Mutex
	triggers []StepTrigger

	countersMu sync.Mutex
	counters   Counters
	latencySum float64
	latencyN   int64
}

// New returns an empty scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// ScheduleStepTrigger enqueues a pad trigger for timestampUs. Rejects
// an out-of-range pad or velocity.
func (s *Scheduler) ScheduleStepTrigger(pad int, velocity float64, timestampUs int64) error {
	if pad < 0 || pad > 15 {
		return fmt.Errorf("scheduler: pad index %d out of range [0,15]", pad)
	}
	if velocity < 0 || velocity > 1 {
		return fmt.Errorf("scheduler: velocity %f out of range [0,1]", velocity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggers = append(s.triggers, StepTrigger{Pad: pad, Velocity: velocity, TimestampUs: timestampUs})
	insertionSortTriggers(s.triggers)

	s.countersMu.Lock()
	s.counters.ScheduledCount++
	s.countersMu.Unlock()
	return nil
}

// ClearScheduledEvents drains the queue without firing anything.
func (s *Scheduler) ClearScheduledEvents() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggers = s.triggers[:0]
}

// insertionSortTriggers sorts by timestamp in place; the slice is
// nearly sorted already since new entries are appended roughly in
// timestamp order, so this is cheaper than sort.Slice on the audio
// thread.
func insertionSortTriggers(t []StepTrigger) {
	for i := 1; i < len(t); i++ {
		key := t[i]
		k := i - 1
		for k >= 0 && t[k].TimestampUs > key.TimestampUs {
			t[k+1] = t[k]
			k--
		}
		t[k+1] = key
	}
}

// FireDue fires every unprocessed trigger whose timestamp is <= nowUs,
// in timestamp order, dropping any older than the staleness cutoff as
// missed. Called once at the start of each audio block.
func (s *Scheduler) FireDue(target PadTrigger, nowUs int64) {
	s.mu.Lock()
	due := s.triggers[:0:0]
	kept := s.triggers[:0]
	for _, tr := range s.triggers {
		switch {
		case tr.TimestampUs > nowUs:
			kept = append(kept, tr)
		case nowUs-tr.TimestampUs > staleTriggerUs:
			s.recordMissed()
		default:
			due = append(due, tr)
		}
	}
	s.triggers = kept
	s.mu.Unlock()

	for _, tr := range due {
		target.TriggerDrumPad(tr.Pad, tr.Velocity)
		s.recordFired(nowUs - tr.TimestampUs)
	}
}

func (s *Scheduler) recordMissed() {
	s.countersMu.Lock()
	s.counters.MissedTriggers++
	s.countersMu.Unlock()
}

func (s *Scheduler) recordFired(latencyUs int64) {
	s.countersMu.Lock()
	defer s.countersMu.Unlock()
	s.counters.TotalTriggers++
	s.latencyN++
	s.latencySum += float64(latencyUs)
	s.counters.AvgLatencyUs = s.latencySum / float64(s.latencyN)
	if s.latencyN == 1 || latencyUs > s.counters.MaxLatencyUs {
		s.counters.MaxLatencyUs = latencyUs
	}
	if s.latencyN == 1 || latencyUs < s.counters.MinLatencyUs {
		s.counters.MinLatencyUs = latencyUs
	}
	s.counters.JitterUs = s.counters.MaxLatencyUs - s.counters.MinLatencyUs
}

// RecordBufferUnderrun increments the underrun counter.
func (s *Scheduler) RecordBufferUnderrun() {
	s.countersMu.Lock()
	s.counters.BufferUnderruns++
	s.countersMu.Unlock()
}

// Counters returns a snapshot of the performance counters.
func (s *Scheduler) Counters() Counters {
	s.countersMu.Lock()
	defer s.countersMu.Unlock()
	return s.counters
}
