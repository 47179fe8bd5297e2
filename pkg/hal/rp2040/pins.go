//go:build tinygo && rp2040

// Package rp2040 implements the adapter hardware on an RP2040 board.
package rp2040

import (
	"machine"

	"github.com/robotalks/ps2serial/pkg/adapter"
	"github.com/robotalks/ps2serial/pkg/hal"
	"github.com/robotalks/ps2serial/pkg/serialmouse"
)

// Pins assigns the adapter signals to GPIOs.
type Pins struct {
	PS2Clock machine.Pin
	PS2Data  machine.Pin
	// TX feeds the RS-232 driver.
	TX machine.Pin
	// Ready is RTS from the host, through the level shifter.
	Ready machine.Pin
	// TwoButton and Wheel are jumpers to ground.
	TwoButton machine.Pin
	Wheel     machine.Pin
	LED       machine.Pin
}

// DefaultPins is the wiring of the reference board.
var DefaultPins = Pins{
	PS2Clock:  machine.GP2,
	PS2Data:   machine.GP3,
	TX:        machine.GP4,
	Ready:     machine.GP5,
	TwoButton: machine.GP6,
	Wheel:     machine.GP7,
	LED:       machine.LED,
}

// Line is an open-collector GPIO. High is never driven: the pin is
// released to the pull-up instead.
type Line struct {
	Pin machine.Pin
}

// NewLine creates a released Line.
func NewLine(pin machine.Pin) *Line {
	l := &Line{Pin: pin}
	l.Release()
	return l
}

// Get implements hal.Line.
func (l *Line) Get() bool {
	return l.Pin.Get()
}

// Set implements hal.Line.
func (l *Line) Set(level bool) {
	if level {
		l.Release()
		return
	}
	l.Pin.Low()
	l.Pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	l.Pin.Low()
}

// Release implements hal.Line.
func (l *Line) Release() {
	l.Pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
}

// Output is a push-pull GPIO.
type Output struct {
	Pin machine.Pin
}

// NewOutput creates an Output at level.
func NewOutput(pin machine.Pin, level bool) *Output {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.Set(level)
	return &Output{Pin: pin}
}

// Set implements hal.Output.
func (o *Output) Set(level bool) {
	o.Pin.Set(level)
}

// EdgeInterrupt is a GPIO interrupt.
type EdgeInterrupt struct {
	Pin    machine.Pin
	Change machine.PinChange
}

// Arm implements hal.EdgeInterrupt.
func (e *EdgeInterrupt) Arm(handler func()) {
	e.Pin.SetInterrupt(e.Change, func(machine.Pin) { handler() })
}

// Disarm implements hal.EdgeInterrupt.
func (e *EdgeInterrupt) Disarm() {
	e.Pin.SetInterrupt(0, nil)
}

// Jumper reads true when the pin is strapped to ground.
func Jumper(pin machine.Pin) bool {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return !pin.Get()
}

// NewHardware configures the pins and returns the adapter hardware.
func NewHardware(pins Pins) adapter.Hardware {
	ready := machine.PinConfig{Mode: machine.PinInputPullup}
	pins.Ready.Configure(ready)
	return adapter.Hardware{
		PS2Clock: NewLine(pins.PS2Clock),
		PS2Data:  NewLine(pins.PS2Data),
		PS2Edge:  &EdgeInterrupt{Pin: pins.PS2Clock, Change: machine.PinFalling},
		TX:       NewOutput(pins.TX, true),
		BitTimer: AlarmTicker(),
		Ready:    &EdgeInterrupt{Pin: pins.Ready, Change: machine.PinToggle},
		Jumpers: serialmouse.Jumpers{
			TwoButton: Jumper(pins.TwoButton),
			Wheel:     Jumper(pins.Wheel),
		},
		Clock: hal.NewSystemClock(),
	}
}
