// Package midi mirrors control values to a MIDI CC output, so a panel
// can drive MIDI-only software alongside its OSC destination.
package midi

import (
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"

	"oscpanel/debug"
)

// Bridge maps controls to CC numbers on one output port and channel.
// CC numbers are assigned in order of first use, up to 128 controls;
// later controls are ignored. The port is opened lazily on first send,
// and a port that cannot be opened turns the bridge into a no-op.
type Bridge struct {
	mu       sync.Mutex
	portName string
	channel  uint8
	sender   func(gomidi.Message) error
	tried    bool

	ccByControl map[string]uint8
	nextCC      int
}

// NewBridge creates a bridge targeting the named output port and channel
// (0-15).
func NewBridge(portName string, channel uint8) *Bridge {
	if channel > 15 {
		channel = 0
	}
	return &Bridge{
		portName:    portName,
		channel:     channel,
		ccByControl: make(map[string]uint8),
	}
}

// MirrorValue sends a control's normalized value (0-1) as a CC (0-127).
func (b *Bridge) MirrorValue(controlID string, norm float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sender := b.getSender()
	if sender == nil {
		return
	}
	cc, ok := b.ccByControl[controlID]
	if !ok {
		if b.nextCC > 127 {
			return
		}
		cc = uint8(b.nextCC)
		b.ccByControl[controlID] = cc
		b.nextCC++
	}
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}
	if err := sender(gomidi.ControlChange(b.channel, cc, uint8(norm*127+0.5))); err != nil {
		debug.Log("midi", "cc %d: %v", cc, err)
	}
}

// getSender opens the output port on first use. Callers hold b.mu.
func (b *Bridge) getSender() func(gomidi.Message) error {
	if b.sender != nil || b.tried {
		return b.sender
	}
	b.tried = true
	for _, port := range gomidi.GetOutPorts() {
		if port.String() == b.portName {
			sender, err := gomidi.SendTo(port)
			if err != nil {
				debug.Log("midi", "open %s: %v", b.portName, err)
				return nil
			}
			b.sender = sender
			return sender
		}
	}
	debug.Log("midi", "output port %q not found", b.portName)
	return nil
}
