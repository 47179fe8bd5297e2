package sim

import (
	"context"
	"time"

	"github.com/robotalks/ps2serial/pkg/adapter"
	"github.com/robotalks/ps2serial/pkg/hal"
	"github.com/robotalks/ps2serial/pkg/serialmouse"
)

// BoardConfig configures a simulated board.
type BoardConfig struct {
	Mouse MouseConfig
	// NoMouse leaves the PS/2 port empty.
	NoMouse bool
	Jumpers serialmouse.Jumpers
}

// Board wires a simulated mouse and serial host to adapter hardware.
type Board struct {
	Clock   hal.Clock
	Bus     *Bus
	Mouse   *Mouse
	TX      *SerialLine
	Serial  *SerialDecoder
	Ready   *ReadyLine
	Jumpers serialmouse.Jumpers

	virtual  *Clock
	bitTimer hal.Ticker
}

func newBoard(conf BoardConfig, clock hal.Clock, ticker hal.Ticker) *Board {
	b := &Board{
		Clock:   clock,
		Bus:     NewBus(),
		TX:      NewSerialLine(),
		Ready:   &ReadyLine{},
		Jumpers: conf.Jumpers,
	}
	if !conf.NoMouse {
		b.Mouse = NewMouse(b.Bus, conf.Mouse)
	}
	b.Serial = NewSerialDecoder(b.TX)
	b.bitTimer = Tap(ticker, b.Serial.Sample)
	return b
}

// NewBoard creates a board on a virtual clock.
func NewBoard(conf BoardConfig) *Board {
	clock := NewClock()
	b := newBoard(conf, clock, clock.NewTicker())
	b.virtual = clock
	return b
}

// NewRealtimeBoard creates a board on the system clock. Run must be
// running for the mouse to deliver reports.
func NewRealtimeBoard(conf BoardConfig) *Board {
	return newBoard(conf, hal.NewSystemClock(), &RealTicker{})
}

// Hardware returns the adapter's view of the board.
func (b *Board) Hardware() adapter.Hardware {
	return adapter.Hardware{
		PS2Clock: b.Bus.HostClock(),
		PS2Data:  b.Bus.HostData(),
		PS2Edge:  b.Bus.Edge(),
		TX:       b.TX,
		BitTimer: b.bitTimer,
		Ready:    b.Ready,
		Jumpers:  b.Jumpers,
		Clock:    b.Clock,
	}
}

// Step delivers pending mouse output, then advances a virtual clock by d.
func (b *Board) Step(d time.Duration) {
	b.Bus.Pump()
	if b.virtual != nil {
		b.virtual.Advance(d)
	}
}

// RunFor alternates Step and ctrl.Poll for d of board time.
func (b *Board) RunFor(ctrl *adapter.Controller, d, step time.Duration) {
	for end := b.Clock.Now() + d; b.Clock.Now() < end; {
		b.Step(step)
		ctrl.Poll()
	}
}

// Run implements Runnable. It delivers mouse output in real time.
func (b *Board) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.Bus.Pump()
		}
	}
}
