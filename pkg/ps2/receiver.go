package ps2

import (
	"runtime"
	"sync/atomic"

	"github.com/robotalks/ps2serial/pkg/hal"
	"github.com/robotalks/ps2serial/pkg/ring"
)

// Receiver decodes device-to-host bytes from falling clock edges.
//
// The frame state is touched only by the interrupt handler while armed and
// only by Start/Stop while disarmed. The ring buffer is filled by the handler
// and drained by ReadByte.
type Receiver struct {
	data   hal.Input
	edge   hal.EdgeInterrupt
	isr    func()
	armed  bool
	starts uint32

	frame  frame
	buf    ring.Buffer
	errors atomic.Uint32
}

// NewReceiver creates a Receiver sampling data on each edge of edge.
func NewReceiver(data hal.Input, edge hal.EdgeInterrupt) *Receiver {
	r := &Receiver{data: data, edge: edge}
	r.isr = r.handleEdge
	return r
}

// Start resets the frame state and buffer, then arms the clock interrupt.
func (r *Receiver) Start() {
	r.edge.Disarm()
	r.frame.reset()
	r.buf.Reset()
	r.armed = true
	r.starts++
	r.edge.Arm(r.isr)
}

// Stop disarms the clock interrupt and drops any partial frame.
func (r *Receiver) Stop() {
	r.edge.Disarm()
	r.armed = false
	r.frame.reset()
}

// Armed reports whether the clock interrupt is armed.
func (r *Receiver) Armed() bool {
	return r.armed
}

func (r *Receiver) handleEdge() {
	r.OnClockEdge(r.data.Get())
}

// OnClockEdge advances the frame with the data level sampled on a falling
// clock edge. Interrupt context only.
func (r *Receiver) OnClockEdge(level bool) {
	b, res := r.frame.feed(level)
	switch res {
	case frameByte:
		r.buf.Push(b)
	case frameBadParity, frameBadStop:
		r.errors.Add(1)
	}
}

// ReadByte pops the oldest received byte, spinning up to budget iterations
// for one to arrive.
func (r *Receiver) ReadByte(budget int) (byte, error) {
	for i := 0; ; i++ {
		if b, ok := r.buf.Pop(); ok {
			return b, nil
		}
		if i >= budget {
			return 0, ErrTimeout
		}
		runtime.Gosched()
	}
}

// Starts returns how many times the receiver was started. Each start
// discards buffered bytes.
func (r *Receiver) Starts() uint32 {
	return r.starts
}

// Buffered returns the number of bytes waiting to be read.
func (r *Receiver) Buffered() int {
	return r.buf.Len()
}

// Dropped returns the number of bytes lost to a full buffer since Start.
func (r *Receiver) Dropped() uint32 {
	return r.buf.Dropped()
}

// Errors returns the number of frames dropped for parity or stop bit errors.
func (r *Receiver) Errors() uint32 {
	return r.errors.Load()
}
