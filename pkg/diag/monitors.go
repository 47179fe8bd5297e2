package diag

import (
	"github.com/robotalks/ps2serial/pkg/adapter"
	"github.com/robotalks/ps2serial/pkg/serialmouse"
)

// Monitors fans out notifications to several monitors in order.
type Monitors []adapter.Monitor

// StateChanged implements adapter.Monitor.
func (m Monitors) StateChanged(s adapter.State, mode serialmouse.Mode) {
	for _, mon := range m {
		mon.StateChanged(s, mode)
	}
}

// PacketSent implements adapter.Monitor.
func (m Monitors) PacketSent(p serialmouse.Packet) {
	for _, mon := range m {
		mon.PacketSent(p)
	}
}

// Counter counts notifications, e.g. for a status display.
type Counter struct {
	States  map[adapter.State]int
	Packets int
	Last    serialmouse.Packet
}

// StateChanged implements adapter.Monitor.
func (c *Counter) StateChanged(s adapter.State, _ serialmouse.Mode) {
	if c.States == nil {
		c.States = make(map[adapter.State]int)
	}
	c.States[s]++
}

// PacketSent implements adapter.Monitor.
func (c *Counter) PacketSent(p serialmouse.Packet) {
	c.Packets++
	c.Last = p
}
