package midievent

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Dispatcher is the subset of Router a DeviceInput drives.
type Dispatcher interface {
	Dispatch(msg Message, nowUs int64) bool
}

// DeviceInput listens on a real MIDI input port and forwards every
// short message (note on/off, CC, clock/transport) to a Dispatcher,
// timestamped against the caller's clock.
type DeviceInput struct {
	port   drivers.In
	stop   func()
	nowUs  func() int64
	target Dispatcher
}

// OpenFirstInput opens the first available MIDI input port and begins
// listening, routing every decoded message to target. nowUs supplies
// the timestamp recorded on each incoming Message. Returns an error if
// no input port is present or the port cannot be opened.
func OpenFirstInput(target Dispatcher, nowUs func() int64) (*DeviceInput, error) {
	ports := midi.GetInPorts()
	if len(ports) == 0 {
		return nil, fmt.Errorf("midievent: no MIDI input ports available")
	}
	return OpenInput(ports[0], target, nowUs)
}

// OpenInput opens the given MIDI input port and begins listening.
func OpenInput(port drivers.In, target Dispatcher, nowUs func() int64) (*DeviceInput, error) {
	if err := port.Open(); err != nil {
		return nil, fmt.Errorf("midievent: open input port %q: %w", port, err)
	}
	d := &DeviceInput{port: port, nowUs: nowUs, target: target}
	stop, err := midi.ListenTo(port, d.handle, midi.UseSysEx())
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("midievent: listen on port %q: %w", port, err)
	}
	d.stop = stop
	return d, nil
}

func (d *DeviceInput) handle(msg midi.Message, timestampms int32) {
	var ch, key, vel uint8
	var cc, val uint8
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		d.target.Dispatch(Message{Status: statusNoteOnMask, Channel: ch, Data1: key, Data2: vel, TimestampUs: d.nowUs()}, d.nowUs())
	case msg.GetNoteOff(&ch, &key, &vel):
		d.target.Dispatch(Message{Status: statusNoteOffMask, Channel: ch, Data1: key, Data2: vel, TimestampUs: d.nowUs()}, d.nowUs())
	case msg.GetControlChange(&ch, &cc, &val):
		d.target.Dispatch(Message{Status: statusCCMask, Channel: ch, Data1: cc, Data2: val, TimestampUs: d.nowUs()}, d.nowUs())
	default:
		raw := msg.Bytes()
		if len(raw) > 0 && (raw[0] == statusClockPulse || raw[0] == statusTransportStart || raw[0] == statusTransportContinue || raw[0] == statusTransportStop) {
			d.target.Dispatch(Message{Status: raw[0], TimestampUs: d.nowUs()}, d.nowUs())
		}
	}
}

// Close stops listening and closes the underlying port.
func (d *DeviceInput) Close() error {
	if d.stop != nil {
		d.stop()
	}
	return d.port.Close()
}
