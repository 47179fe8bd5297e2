//go:build tinygo && rp2040

// Command ps2serial is the adapter firmware for RP2040 boards.
package main

import (
	"context"
	"fmt"
	"machine"
	"time"

	"github.com/robotalks/ps2serial/pkg/adapter"
	"github.com/robotalks/ps2serial/pkg/hal/rp2040"
	"github.com/robotalks/ps2serial/pkg/serialmouse"
)

const retryDelay = 2 * time.Second

type consoleLogger struct{}

func (consoleLogger) Infof(format string, args ...interface{}) {
	println("I " + fmt.Sprintf(format, args...))
}

func (consoleLogger) Warningf(format string, args ...interface{}) {
	println("W " + fmt.Sprintf(format, args...))
}

func (consoleLogger) Errorf(format string, args ...interface{}) {
	println("E " + fmt.Sprintf(format, args...))
}

// led is on while streaming and flickers with packets.
type led struct {
	pin machine.Pin
}

func (l *led) StateChanged(s adapter.State, _ serialmouse.Mode) {
	l.pin.Set(s == adapter.Streaming)
}

func (l *led) PacketSent(serialmouse.Packet) {
	l.pin.Set(!l.pin.Get())
}

func (l *led) blink(n int) {
	for i := 0; i < n; i++ {
		l.pin.High()
		time.Sleep(100 * time.Millisecond)
		l.pin.Low()
		time.Sleep(200 * time.Millisecond)
	}
}

func main() {
	pins := rp2040.DefaultPins
	pins.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	status := &led{pin: pins.LED}

	ctrl := adapter.NewConfig().NewController(rp2040.NewHardware(pins))
	ctrl.Log = consoleLogger{}
	ctrl.Monitor = status
	for {
		err := ctrl.Run(context.Background())
		ctrl.Log.Errorf("adapter stopped: %v", err)
		status.blink(3)
		time.Sleep(retryDelay)
	}
}
