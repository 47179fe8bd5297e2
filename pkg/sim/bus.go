package sim

import (
	"sync"
	"sync/atomic"
)

// Bus is the two-wire PS/2 bus. Each line is low when either side pulls it
// low and floats high otherwise.
//
// The host polls the clock while it owns the bus; every poll lets the
// attached device advance by half a clock cycle. While the host has the
// clock-edge interrupt armed, the device delivers whole frames from Pump.
type Bus struct {
	lock sync.Mutex

	hostClockLow atomic.Bool
	hostDataLow  atomic.Bool
	devClockLow  atomic.Bool
	devDataLow   atomic.Bool

	mouse *Mouse
	isr   func()
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// ClockLevel returns the clock line level.
func (b *Bus) ClockLevel() bool {
	return !b.hostClockLow.Load() && !b.devClockLow.Load()
}

// DataLevel returns the data line level.
func (b *Bus) DataLevel() bool {
	return !b.hostDataLow.Load() && !b.devDataLow.Load()
}

// HostClock returns the host side of the clock line.
func (b *Bus) HostClock() *ClockLine {
	return &ClockLine{bus: b}
}

// HostData returns the host side of the data line.
func (b *Bus) HostData() *DataLine {
	return &DataLine{bus: b}
}

// Edge returns the host clock-edge interrupt.
func (b *Bus) Edge() *EdgeInterrupt {
	return &EdgeInterrupt{bus: b}
}

// Pump lets the attached device deliver queued bytes to the armed clock-edge
// interrupt. It returns the number of bytes delivered.
func (b *Bus) Pump() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.mouse == nil || b.isr == nil || b.hostClockLow.Load() {
		return 0
	}
	return b.mouse.deliver(b.isr)
}

// ClockLine is the host end of the PS/2 clock line.
type ClockLine struct {
	bus *Bus
}

// Get implements hal.Line.
func (l *ClockLine) Get() bool {
	b := l.bus
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.mouse != nil && !b.hostClockLow.Load() {
		b.mouse.poll()
	}
	return b.ClockLevel()
}

// Set implements hal.Line.
func (l *ClockLine) Set(level bool) {
	if level {
		l.Release()
		return
	}
	l.bus.lock.Lock()
	l.bus.hostClockLow.Store(true)
	l.bus.lock.Unlock()
}

// Release implements hal.Line.
func (l *ClockLine) Release() {
	b := l.bus
	b.lock.Lock()
	defer b.lock.Unlock()
	if !b.hostClockLow.Swap(false) {
		return
	}
	if b.hostDataLow.Load() && b.mouse != nil {
		b.mouse.requestToSend()
	}
}

// DataLine is the host end of the PS/2 data line.
type DataLine struct {
	bus *Bus
}

// Get implements hal.Line.
func (l *DataLine) Get() bool {
	return l.bus.DataLevel()
}

// Set implements hal.Line.
func (l *DataLine) Set(level bool) {
	l.bus.hostDataLow.Store(!level)
}

// Release implements hal.Line.
func (l *DataLine) Release() {
	l.bus.hostDataLow.Store(false)
}

// EdgeInterrupt delivers device clock edges to the host.
type EdgeInterrupt struct {
	bus *Bus
}

// Arm implements hal.EdgeInterrupt.
func (e *EdgeInterrupt) Arm(handler func()) {
	e.bus.lock.Lock()
	e.bus.isr = handler
	e.bus.lock.Unlock()
}

// Disarm implements hal.EdgeInterrupt. A frame being delivered completes
// before it returns.
func (e *EdgeInterrupt) Disarm() {
	e.bus.lock.Lock()
	e.bus.isr = nil
	e.bus.lock.Unlock()
}
