package serialmouse

import (
	"sync/atomic"
	"time"

	"github.com/robotalks/ps2serial/pkg/hal"
	"github.com/robotalks/ps2serial/pkg/ring"
)

// Line parameters.
const (
	BaudRate  = 1200
	BitPeriod = time.Second / BaudRate
	DataBits  = 7
)

type txState uint32

const (
	txIdle txState = iota
	txStart
	txData
	txStop
	txExtraStop
)

// Transmitter drives a 7-bit, no parity asynchronous serial line from a
// periodic bit timer. Bytes are queued by Enqueue from the main loop and
// shifted out by Tick from the timer interrupt.
type Transmitter struct {
	// ExtraStopBit sends 2 stop bits instead of 1.
	ExtraStopBit bool

	line   hal.Output
	ticker hal.Ticker
	tick   func()
	buf    ring.Buffer

	state atomic.Uint32
	shift byte
	bits  uint8
}

// NewTransmitter creates a Transmitter on line clocked by ticker.
func NewTransmitter(line hal.Output, ticker hal.Ticker) *Transmitter {
	t := &Transmitter{line: line, ticker: ticker}
	t.tick = t.Tick
	return t
}

// FrameBits returns the number of bit times per byte.
func (t *Transmitter) FrameBits() int {
	if t.ExtraStopBit {
		return DataBits + 3
	}
	return DataBits + 2
}

// Init resets the queue and starts the bit timer with the line idle.
func (t *Transmitter) Init() {
	t.Teardown()
	t.ticker.Start(BitPeriod, t.tick)
}

// Teardown stops the bit timer, drops queued bytes and idles the line.
func (t *Transmitter) Teardown() {
	t.ticker.Stop()
	t.buf.Reset()
	t.state.Store(uint32(txIdle))
	t.shift, t.bits = 0, 0
	t.line.Set(true)
}

// Enqueue queues b for transmission. It never blocks; a byte that does not
// fit is dropped and counted.
func (t *Transmitter) Enqueue(b byte) bool {
	return t.buf.Push(b)
}

// EnqueuePacket queues all bytes of p.
func (t *Transmitter) EnqueuePacket(p Packet) {
	for _, b := range p.Bytes() {
		t.buf.Push(b)
	}
}

// Idle reports whether the line is idle with nothing queued.
func (t *Transmitter) Idle() bool {
	return txState(t.state.Load()) == txIdle && t.buf.Len() == 0
}

// Pending returns the number of queued bytes not yet started.
func (t *Transmitter) Pending() int {
	return t.buf.Len()
}

// Dropped returns the number of bytes lost to a full queue.
func (t *Transmitter) Dropped() uint32 {
	return t.buf.Dropped()
}

// Tick advances the line by one bit time. Timer interrupt context only.
func (t *Transmitter) Tick() {
	switch txState(t.state.Load()) {
	case txStart, txData:
		if t.bits == DataBits {
			t.line.Set(true)
			t.state.Store(uint32(txStop))
			return
		}
		t.line.Set(t.shift&1 != 0)
		t.shift >>= 1
		t.bits++
		t.state.Store(uint32(txData))
	case txStop:
		if t.ExtraStopBit {
			t.line.Set(true)
			t.state.Store(uint32(txExtraStop))
			return
		}
		t.next()
	default:
		t.next()
	}
}

func (t *Transmitter) next() {
	b, ok := t.buf.Pop()
	if !ok {
		t.line.Set(true)
		t.state.Store(uint32(txIdle))
		return
	}
	t.shift, t.bits = b&0x7f, 0
	t.line.Set(false)
	t.state.Store(uint32(txStart))
}
