package midievent

import (
	"math"
	"sync"
	"sync/atomic"
)

// Message is a short MIDI-style message with a µs timestamp in the
// same monotonic origin as ClockSync.Pulse.
type Message struct {
	Status      byte
	Channel     uint8
	Data1       uint8
	Data2       uint8
	TimestampUs int64
}

const (
	statusNoteOffMask  = 0x80
	statusNoteOnMask   = 0x90
	statusCCMask       = 0xB0
	statusClockPulse   = 0xF8
	statusTransportStart    = 0xFA
	statusTransportContinue = 0xFB
	statusTransportStop     = 0xFC

	ccVolume = 7

	pendingQueueCapacity = 1000
)

func (m Message) statusType() byte { return m.Status & 0xF0 }

// PadTrigger is the subset of sample.Player the router drives.
type PadTrigger interface {
	TriggerDrumPad(pad int, velocity float64) error
	StopAllSamples()
}

// noteKey identifies a (note, channel) pair in the note-to-pad map.
type noteKey struct {
	note    uint8
	channel uint8
}

// Router maps incoming short messages to pad triggers, clock-sync
// feeds, and transport/CC side effects, per the immediate-vs-enqueue
// dispatch rule: messages timestamped at or before now+1ms run
// immediately, later ones queue for the caller to redeliver.
type Router struct {
	padMu       sync.RWMutex
	noteToPad   map[noteKey]int
	curveType   CurveType
	sensitivity float64

	target PadTrigger
	clock  *ClockSync

	clockSyncEnabled int32 // atomic bool
	masterVolumeBits uint64

	pending      []Message
	pendingMu    sync.Mutex
	droppedCount int64
}

// NewRouter returns a router driving target, feeding pulses to clock.
func NewRouter(target PadTrigger, clock *ClockSync) *Router {
	r := &Router{
		noteToPad:   make(map[noteKey]int),
		curveType:   Linear,
		sensitivity: 1,
		target:      target,
		clock:       clock,
	}
	r.SetMasterVolume(1)
	return r
}

// SetNoteMapping maps (note, channel) to a pad index.
func (r *Router) SetNoteMapping(note, channel uint8, pad int) {
	r.padMu.Lock()
	defer r.padMu.Unlock()
	r.noteToPad[noteKey{note, channel}] = pad
}

// RemoveNoteMapping removes a (note, channel) mapping.
func (r *Router) RemoveNoteMapping(note, channel uint8) {
	r.padMu.Lock()
	defer r.padMu.Unlock()
	delete(r.noteToPad, noteKey{note, channel})
}

// SetVelocityCurve configures the curve applied to incoming note-on velocity.
func (r *Router) SetVelocityCurve(curveType CurveType, sensitivity float64) {
	r.padMu.Lock()
	defer r.padMu.Unlock()
	r.curveType = curveType
	r.sensitivity = sensitivity
}

// SetClockSyncEnabled toggles whether clock pulses feed the clock-sync unit.
func (r *Router) SetClockSyncEnabled(enabled bool) {
	v := int32(0)
	if enabled {
		v = 1
	}
	atomic.StoreInt32(&r.clockSyncEnabled, v)
}

// MasterVolume returns the current master volume in [0,1].
func (r *Router) MasterVolume() float64 {
	bits := atomic.LoadUint64(&r.masterVolumeBits)
	return math.Float64frombits(bits)
}

// SetMasterVolume sets the master volume directly, clamped to [0,1].
func (r *Router) SetMasterVolume(v float64) {
	atomic.StoreUint64(&r.masterVolumeBits, math.Float64bits(clamp01(v)))
}

// Dispatch processes one message if it is due (timestamp <= now+1ms);
// otherwise it is queued and Dispatch returns false so the caller can
// redeliver it later via DrainDue.
func (r *Router) Dispatch(msg Message, nowUs int64) bool {
	if msg.TimestampUs > nowUs+1000 {
		r.pendingMu.Lock()
		if len(r.pending) >= pendingQueueCapacity {
			r.pending = r.pending[1:]
			r.droppedCount++
		}
		r.pending = append(r.pending, msg)
		r.pendingMu.Unlock()
		return false
	}
	r.handle(msg)
	return true
}

// DrainDue processes every queued message now due as of nowUs.
func (r *Router) DrainDue(nowUs int64) {
	r.pendingMu.Lock()
	kept := r.pending[:0]
	due := make([]Message, 0, len(r.pending))
	for _, m := range r.pending {
		if m.TimestampUs <= nowUs+1000 {
			due = append(due, m)
		} else {
			kept = append(kept, m)
		}
	}
	r.pending = kept
	r.pendingMu.Unlock()

	for _, m := range due {
		r.handle(m)
	}
}

// DroppedCount returns how many pending messages were discarded
// because the queue reached its capacity before they became due.
func (r *Router) DroppedCount() int64 {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	return r.droppedCount
}

func (r *Router) handle(msg Message) {
	switch {
	case msg.statusType() == statusNoteOnMask:
		if msg.Data2 == 0 {
			// note-on with velocity 0 is note-off; no-op for drum pads.
			return
		}
		r.padMu.RLock()
		pad, ok := r.noteToPad[noteKey{msg.Data1, msg.Channel}]
		curveType, sensitivity := r.curveType, r.sensitivity
		r.padMu.RUnlock()
		if !ok {
			return
		}
		gain := Curve(curveType, int(msg.Data2), sensitivity)
		r.target.TriggerDrumPad(pad, gain)

	case msg.statusType() == statusNoteOffMask:
		// no-op: drum hits are one-shot.

	case msg.statusType() == statusCCMask:
		if msg.Data1 == ccVolume {
			r.SetMasterVolume(float64(msg.Data2) / 127)
		}

	case msg.Status == statusClockPulse:
		if atomic.LoadInt32(&r.clockSyncEnabled) != 0 {
			r.clock.Pulse(msg.TimestampUs)
		}

	case msg.Status == statusTransportStart:
		r.clock.Reset()

	case msg.Status == statusTransportStop:
		r.clock.Reset()
		r.target.StopAllSamples()

	case msg.Status == statusTransportContinue:
		// preserves clock-sync ring and smoothed tempo.
	}
}
