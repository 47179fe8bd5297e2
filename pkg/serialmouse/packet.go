package serialmouse

import "github.com/robotalks/ps2serial/pkg/ps2"

// Value ranges of the packet fields.
const (
	MaxDelta = 127
	MinWheel = -8
	MaxWheel = 7
)

// Packet is one encoded motion packet.
type Packet struct {
	data [4]byte
	len  uint8
}

// Bytes returns the encoded bytes.
func (p *Packet) Bytes() []byte {
	return p.data[:p.len]
}

// Len returns the packet length.
func (p *Packet) Len() int {
	return int(p.len)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Encode builds a packet for mode. dx and dy are in host orientation
// (positive dy is down); values out of range are clamped.
func Encode(mode Mode, buttons ps2.Buttons, dx, dy, wheel int) (p Packet) {
	dx = clamp(dx, -MaxDelta, MaxDelta)
	dy = clamp(dy, -MaxDelta, MaxDelta)
	wheel = clamp(wheel, MinWheel, MaxWheel)

	hdr := byte(0x40)
	if buttons.Left() {
		hdr |= 0x20
	}
	if buttons.Right() {
		hdr |= 0x10
	}
	hdr |= byte(dy>>4) & 0x0c
	hdr |= byte(dx>>6) & 0x03
	p.data[0] = hdr
	p.data[1] = byte(dx) & 0x3f
	p.data[2] = byte(dy) & 0x3f
	p.len = 3

	switch mode {
	case ThreeButton:
		if buttons.Middle() {
			p.data[3] = 0x20
		}
		p.len = 4
	case WheelMouse:
		p.data[3] = byte(wheel) & 0x0f
		if buttons.Middle() {
			p.data[3] |= 0x10
		}
		p.len = 4
	}
	return
}
