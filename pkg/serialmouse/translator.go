package serialmouse

import (
	"time"

	"github.com/robotalks/ps2serial/pkg/hal"
	"github.com/robotalks/ps2serial/pkg/ps2"
)

// Translator sums PS/2 reports and emits one packet per packet period.
type Translator struct {
	mode  Mode
	tx    *Transmitter
	clock hal.Clock

	dx, dy, wheel int
	buttons       ps2.Buttons
	sentButtons   ps2.Buttons
	lastSend      time.Duration
	sent          uint32
}

// NewTranslator creates a Translator feeding tx.
func NewTranslator(mode Mode, tx *Transmitter, clock hal.Clock) *Translator {
	t := &Translator{mode: mode, tx: tx, clock: clock}
	t.Reset()
	return t
}

// Mode returns the packet mode.
func (t *Translator) Mode() Mode {
	return t.mode
}

// Period returns the time needed to transmit one packet.
func (t *Translator) Period() time.Duration {
	return BitPeriod * time.Duration(t.tx.FrameBits()*t.mode.PacketLen())
}

// Add accumulates a report. Device dy points up, it is inverted here.
func (t *Translator) Add(r ps2.Report) {
	t.dx += int(r.DX)
	t.dy -= int(r.DY)
	t.wheel += int(r.Wheel)
	t.buttons = r.Buttons
}

// Due reports whether a packet period has elapsed since the last send.
func (t *Translator) Due() bool {
	return t.clock.Now()-t.lastSend > t.Period()
}

// Send encodes and queues the accumulated motion. Nothing is queued when
// there is no motion and the buttons did not change.
func (t *Translator) Send() (Packet, bool) {
	t.lastSend = t.clock.Now()
	if t.dx == 0 && t.dy == 0 && t.wheel == 0 && t.buttons == t.sentButtons {
		return Packet{}, false
	}
	p := Encode(t.mode, t.buttons, t.dx, t.dy, t.wheel)
	t.tx.EnqueuePacket(p)
	t.dx, t.dy, t.wheel = 0, 0, 0
	t.sentButtons = t.buttons
	t.sent++
	return p, true
}

// Sent returns the number of packets queued.
func (t *Translator) Sent() uint32 {
	return t.sent
}

// Reset clears the accumulated state and restarts the packet period.
func (t *Translator) Reset() {
	t.dx, t.dy, t.wheel = 0, 0, 0
	t.buttons, t.sentButtons = 0, 0
	t.lastSend = t.clock.Now()
}
