// Package ring provides the fixed-size byte queue shared between interrupt
// handlers and the main loop.
package ring

import "sync/atomic"

// Capacity is the number of bytes a Buffer holds. It must be a power of two.
const Capacity = 256

const mask = Capacity - 1

// Buffer is a single-producer single-consumer byte queue.
//
// The producer only writes head and the consumer only writes tail, so either
// side may run in interrupt context while the other runs in the main loop.
// When the producer outruns the consumer the incoming byte is dropped and
// counted; bytes already queued are never overwritten.
type Buffer struct {
	data    [Capacity]byte
	head    atomic.Uint32
	tail    atomic.Uint32
	dropped atomic.Uint32
}

// Push appends b. It returns false and counts a drop when the buffer is full.
// Producer side only.
func (r *Buffer) Push(b byte) bool {
	head := r.head.Load()
	if head-r.tail.Load() >= Capacity {
		r.dropped.Add(1)
		return false
	}
	r.data[head&mask] = b
	r.head.Store(head + 1)
	return true
}

// Pop removes the oldest byte. Consumer side only.
func (r *Buffer) Pop() (byte, bool) {
	tail := r.tail.Load()
	if tail == r.head.Load() {
		return 0, false
	}
	b := r.data[tail&mask]
	r.tail.Store(tail + 1)
	return b, true
}

// Len returns the number of queued bytes.
func (r *Buffer) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// Free returns the number of bytes that can be pushed without dropping.
func (r *Buffer) Free() int {
	return Capacity - r.Len()
}

// Dropped returns how many bytes were discarded because the buffer was full.
func (r *Buffer) Dropped() uint32 {
	return r.dropped.Load()
}

// Reset empties the buffer and clears the drop counter.
// Neither the producer nor the consumer may be active while it runs.
func (r *Buffer) Reset() {
	r.head.Store(0)
	r.tail.Store(0)
	r.dropped.Store(0)
}
