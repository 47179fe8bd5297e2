package ps2

type frameState uint8

const (
	frameAwaitStart frameState = iota
	frameData
	frameParity
	frameStop
)

type frameResult uint8

const (
	frameMore frameResult = iota
	frameByte
	frameBadStart
	frameBadParity
	frameBadStop
)

// frame accumulates one device-to-host frame, one bit per clock edge.
type frame struct {
	state  frameState
	bits   uint8
	shift  byte
	parity uint8
}

func (f *frame) reset() {
	*f = frame{}
}

// feed consumes the data level sampled on one falling clock edge.
func (f *frame) feed(level bool) (byte, frameResult) {
	var bit uint8
	if level {
		bit = 1
	}
	switch f.state {
	case frameAwaitStart:
		if bit != 0 {
			return 0, frameBadStart
		}
		f.state = frameData
	case frameData:
		f.shift |= bit << f.bits
		f.parity ^= bit
		if f.bits++; f.bits == 8 {
			f.state = frameParity
		}
	case frameParity:
		f.parity ^= bit
		f.state = frameStop
	case frameStop:
		b, parity := f.shift, f.parity
		f.reset()
		if bit == 0 {
			return 0, frameBadStop
		}
		// odd parity: data bits plus parity bit carry an odd number of ones
		if parity != 1 {
			return 0, frameBadParity
		}
		return b, frameByte
	}
	return 0, frameMore
}

// FrameBits returns the 11 line levels of a device-to-host frame carrying b.
func FrameBits(b byte) [11]bool {
	var bits [11]bool
	parity := true
	for i := 0; i < 8; i++ {
		bit := b&(1<<uint(i)) != 0
		bits[i+1] = bit
		if bit {
			parity = !parity
		}
	}
	bits[9] = parity
	bits[10] = true
	return bits
}
