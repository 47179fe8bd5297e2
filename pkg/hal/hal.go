// Package hal defines the hardware the adapter touches.
//
// The protocol packages only see these interfaces, so the same code runs on
// a microcontroller (pkg/hal/rp2040) and against the simulated board in
// pkg/sim.
package hal

import "time"

// Line is an open-collector signal that both ends may pull low.
type Line interface {
	// Get samples the current level.
	Get() bool
	// Set switches the pin to output and drives level.
	Set(level bool)
	// Release switches the pin to input with pull-up, letting the line float high.
	Release()
}

// Input is a read-only pin.
type Input interface {
	Get() bool
}

// Output is a push-pull output pin.
type Output interface {
	Set(level bool)
}

// EdgeInterrupt calls a handler from interrupt context on each qualifying edge.
type EdgeInterrupt interface {
	// Arm installs handler and enables the interrupt.
	Arm(handler func())
	// Disarm disables the interrupt. After it returns the handler is not running
	// and will not be called until the next Arm.
	Disarm()
}

// Ticker calls a handler from interrupt context at a fixed period.
type Ticker interface {
	Start(period time.Duration, handler func())
	Stop()
}

// Clock provides monotonic time and delays.
type Clock interface {
	// Now returns the time elapsed since an arbitrary fixed origin.
	Now() time.Duration
	Sleep(d time.Duration)
}
