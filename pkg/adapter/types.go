package adapter

import (
	"github.com/robotalks/ps2serial/pkg/hal"
	"github.com/robotalks/ps2serial/pkg/serialmouse"
)

// State is the controller lifecycle state.
type State uint32

// States.
const (
	Uninitialized State = iota
	DeviceReset
	ModeDetect
	AwaitHostHandshake
	Streaming
	Failed
)

var stateNames = [...]string{
	Uninitialized:      "uninitialized",
	DeviceReset:        "device-reset",
	ModeDetect:         "mode-detect",
	AwaitHostHandshake: "await-handshake",
	Streaming:          "streaming",
	Failed:             "failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "invalid"
}

// Hardware is the set of lines and timers the adapter runs on.
type Hardware struct {
	PS2Clock hal.Line
	PS2Data  hal.Line
	// PS2Edge fires on falling edges of the PS/2 clock.
	PS2Edge hal.EdgeInterrupt
	TX      hal.Output
	// BitTimer clocks the serial transmitter.
	BitTimer hal.Ticker
	// Ready fires when the host requests a handshake (RTS toggled).
	Ready   hal.EdgeInterrupt
	Jumpers serialmouse.Jumpers
	Clock   hal.Clock
}

// Logger receives diagnostic messages.
type Logger interface {
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Monitor observes the controller, e.g. to drive a status LED.
type Monitor interface {
	StateChanged(State, serialmouse.Mode)
	PacketSent(serialmouse.Packet)
}

// Stats are the controller counters.
type Stats struct {
	Reports     uint32
	Packets     uint32
	Handshakes  uint32
	Skipped     uint32
	RxDropped   uint32
	RxErrors    uint32
	TxDropped   uint32
	Retransmits uint32
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})    {}
func (nopLogger) Warningf(string, ...interface{}) {}
func (nopLogger) Errorf(string, ...interface{})   {}

type nopMonitor struct{}

func (nopMonitor) StateChanged(State, serialmouse.Mode) {}
func (nopMonitor) PacketSent(serialmouse.Packet)        {}
