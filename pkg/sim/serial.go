package sim

import (
	"sync"
	"sync/atomic"

	"github.com/robotalks/ps2serial/pkg/ps2"
	"github.com/robotalks/ps2serial/pkg/serialmouse"
)

// SerialLine is the adapter's transmit line.
type SerialLine struct {
	level atomic.Bool
}

// NewSerialLine creates a line at the idle (mark) level.
func NewSerialLine() *SerialLine {
	l := &SerialLine{}
	l.level.Store(true)
	return l
}

// Set implements hal.Output.
func (l *SerialLine) Set(level bool) {
	l.level.Store(level)
}

// Level returns the line level.
func (l *SerialLine) Level() bool {
	return l.level.Load()
}

type rxState uint8

const (
	rxIdle rxState = iota
	rxData
	rxStop
)

// SerialDecoder receives 7-bit frames from a SerialLine sampled once per
// bit time.
type SerialDecoder struct {
	// OnByte, if set, is called with every received byte from the sampling
	// context.
	OnByte func(byte)

	line  *SerialLine
	state rxState
	bits  uint8
	shift byte

	lock   sync.Mutex
	data   []byte
	errors uint32
}

// NewSerialDecoder creates a decoder on line.
func NewSerialDecoder(line *SerialLine) *SerialDecoder {
	return &SerialDecoder{line: line}
}

// Sample reads the line for one bit time.
func (d *SerialDecoder) Sample() {
	level := d.line.Level()
	switch d.state {
	case rxIdle:
		if !level {
			d.state, d.bits, d.shift = rxData, 0, 0
		}
	case rxData:
		if level {
			d.shift |= 1 << d.bits
		}
		if d.bits++; d.bits == serialmouse.DataBits {
			d.state = rxStop
		}
	case rxStop:
		d.state = rxIdle
		d.lock.Lock()
		if !level {
			d.errors++
			d.lock.Unlock()
			return
		}
		d.data = append(d.data, d.shift)
		d.lock.Unlock()
		if d.OnByte != nil {
			d.OnByte(d.shift)
		}
	}
}

// Bytes returns all bytes received so far.
func (d *SerialDecoder) Bytes() []byte {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]byte(nil), d.data...)
}

// Take returns and clears the received bytes.
func (d *SerialDecoder) Take() []byte {
	d.lock.Lock()
	defer d.lock.Unlock()
	data := d.data
	d.data = nil
	return data
}

// Errors returns the number of frames with a bad stop bit.
func (d *SerialDecoder) Errors() uint32 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.errors
}

// HostEvent is what a PC mouse driver makes of the serial stream.
type HostEvent struct {
	// Ident is set for identification bytes, other fields are zero.
	Ident   byte
	Buttons ps2.Buttons
	DX, DY  int
	Wheel   int
}

// HostMouse decodes the serial mouse stream the way a PC driver does.
// Packets synchronize on bit 6 of the first byte.
type HostMouse struct {
	Mode serialmouse.Mode

	identified bool
	buf        [4]byte
	recvLen    int
}

// Reset returns to waiting for identification, as after the host toggles RTS.
func (h *HostMouse) Reset() {
	h.identified, h.recvLen = false, 0
}

// Feed consumes one received byte.
func (h *HostMouse) Feed(b byte) (ev HostEvent, ok bool) {
	if !h.identified {
		switch b {
		case serialmouse.IdentMouse:
			h.Mode = serialmouse.TwoButton
			return HostEvent{Ident: b}, true
		case serialmouse.IdentThreeButton:
			h.Mode = serialmouse.ThreeButton
			h.identified = true
			return HostEvent{Ident: b}, true
		case serialmouse.IdentWheel:
			h.Mode = serialmouse.WheelMouse
			h.identified = true
			return HostEvent{Ident: b}, true
		}
		h.identified = true
	}
	if b&0x40 != 0 {
		h.recvLen = 0
	} else if h.recvLen == 0 {
		return
	}
	h.buf[h.recvLen] = b
	if h.recvLen++; h.recvLen < h.Mode.PacketLen() {
		return
	}
	h.recvLen = 0
	return h.decode(), true
}

func (h *HostMouse) decode() (ev HostEvent) {
	b := h.buf
	if b[0]&0x20 != 0 {
		ev.Buttons |= ps2.ButtonLeft
	}
	if b[0]&0x10 != 0 {
		ev.Buttons |= ps2.ButtonRight
	}
	ev.DX = int(int8(b[0]<<6 | b[1]&0x3f))
	ev.DY = int(int8(b[0]&0x0c<<4 | b[2]&0x3f))
	switch h.Mode {
	case serialmouse.ThreeButton:
		if b[3]&0x20 != 0 {
			ev.Buttons |= ps2.ButtonMiddle
		}
	case serialmouse.WheelMouse:
		if b[3]&0x10 != 0 {
			ev.Buttons |= ps2.ButtonMiddle
		}
		ev.Wheel = int(int8(b[3]<<4) >> 4)
	}
	return
}

// ReadyLine is the host ready (RTS) signal.
type ReadyLine struct {
	lock    sync.Mutex
	handler func()
}

// Arm implements hal.EdgeInterrupt.
func (r *ReadyLine) Arm(handler func()) {
	r.lock.Lock()
	r.handler = handler
	r.lock.Unlock()
}

// Disarm implements hal.EdgeInterrupt.
func (r *ReadyLine) Disarm() {
	r.lock.Lock()
	r.handler = nil
	r.lock.Unlock()
}

// Toggle signals a handshake request, as a driver toggling RTS does.
func (r *ReadyLine) Toggle() {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.handler != nil {
		r.handler()
	}
}
