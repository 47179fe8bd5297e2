package ps2

// Buttons is the mouse button bitset, laid out as in the first report byte.
type Buttons uint8

// Mouse buttons.
const (
	ButtonLeft Buttons = 1 << iota
	ButtonRight
	ButtonMiddle

	ButtonsAll = ButtonLeft | ButtonRight | ButtonMiddle
)

// Left reports whether the left button is down.
func (b Buttons) Left() bool { return b&ButtonLeft != 0 }

// Right reports whether the right button is down.
func (b Buttons) Right() bool { return b&ButtonRight != 0 }

// Middle reports whether the middle button is down.
func (b Buttons) Middle() bool { return b&ButtonMiddle != 0 }

// Report is one decoded movement packet.
// DX and DY carry the full 9-bit range the device reports.
type Report struct {
	Buttons   Buttons
	DX, DY    int16
	Wheel     int8
	XOverflow bool
	YOverflow bool
}

const (
	hdrAlwaysOne = 0x08
	hdrXSign     = 0x10
	hdrYSign     = 0x20
	hdrXOverflow = 0x40
	hdrYOverflow = 0x80
)

// Bytes encodes the report as the device sends it: 3 bytes, or 4 with wheel.
func (r Report) Bytes(wheel bool) []byte {
	hdr := byte(r.Buttons&ButtonsAll) | hdrAlwaysOne
	if r.DX < 0 {
		hdr |= hdrXSign
	}
	if r.DY < 0 {
		hdr |= hdrYSign
	}
	if r.XOverflow {
		hdr |= hdrXOverflow
	}
	if r.YOverflow {
		hdr |= hdrYOverflow
	}
	b := []byte{hdr, byte(r.DX), byte(r.DY)}
	if wheel {
		b = append(b, byte(r.Wheel))
	}
	return b
}

// ReportParser assembles received bytes into Reports.
type ReportParser struct {
	// Wheel selects 4-byte packets.
	Wheel bool

	buf     [4]byte
	recvLen int
	skipped uint32
}

// Size returns the packet length in bytes.
func (p *ReportParser) Size() int {
	if p.Wheel {
		return 4
	}
	return 3
}

// Reset drops any partial packet.
func (p *ReportParser) Reset() {
	p.recvLen = 0
}

// Partial reports whether a packet is partially received.
func (p *ReportParser) Partial() bool {
	return p.recvLen > 0
}

// Skipped returns how many bytes were discarded while looking for a header.
func (p *ReportParser) Skipped() uint32 {
	return p.skipped
}

// Parse consumes one byte and returns a Report when a packet completes.
func (p *ReportParser) Parse(b byte) (r Report, ok bool) {
	if p.recvLen == 0 && b&hdrAlwaysOne == 0 {
		// not a header, wait for one to resynchronize
		p.skipped++
		return
	}
	p.buf[p.recvLen] = b
	if p.recvLen++; p.recvLen < p.Size() {
		return
	}
	p.recvLen = 0
	return p.decode(), true
}

func (p *ReportParser) decode() (r Report) {
	hdr := p.buf[0]
	r.Buttons = Buttons(hdr) & ButtonsAll
	r.DX, r.DY = int16(p.buf[1]), int16(p.buf[2])
	if hdr&hdrXSign != 0 {
		r.DX -= 0x100
	}
	if hdr&hdrYSign != 0 {
		r.DY -= 0x100
	}
	r.XOverflow = hdr&hdrXOverflow != 0
	r.YOverflow = hdr&hdrYOverflow != 0
	if p.Wheel {
		r.Wheel = int8(p.buf[3])
	}
	return
}

// Status is the device state returned by a status request.
type Status struct {
	Buttons    Buttons
	Scaling    bool
	Reporting  bool
	Remote     bool
	Resolution byte
	SampleRate byte
}

// ParseStatus decodes the 3-byte status reply.
func ParseStatus(b [3]byte) Status {
	s := Status{
		Scaling:    b[0]&0x10 != 0,
		Reporting:  b[0]&0x20 != 0,
		Remote:     b[0]&0x40 != 0,
		Resolution: b[1],
		SampleRate: b[2],
	}
	if b[0]&0x01 != 0 {
		s.Buttons |= ButtonRight
	}
	if b[0]&0x02 != 0 {
		s.Buttons |= ButtonMiddle
	}
	if b[0]&0x04 != 0 {
		s.Buttons |= ButtonLeft
	}
	return s
}

// Bytes encodes the status reply as the device sends it.
func (s Status) Bytes() [3]byte {
	var hdr byte
	if s.Buttons.Right() {
		hdr |= 0x01
	}
	if s.Buttons.Middle() {
		hdr |= 0x02
	}
	if s.Buttons.Left() {
		hdr |= 0x04
	}
	if s.Scaling {
		hdr |= 0x10
	}
	if s.Reporting {
		hdr |= 0x20
	}
	if s.Remote {
		hdr |= 0x40
	}
	return [3]byte{hdr, s.Resolution, s.SampleRate}
}
