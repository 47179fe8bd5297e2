// Package diag carries the host-side logging and fan-out monitors of the
// adapter.
package diag

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/ps2serial/pkg/adapter"
	"github.com/robotalks/ps2serial/pkg/serialmouse"
)

// Logger sends controller logs to glog with a prefix.
type Logger struct {
	Prefix string
}

// NewLogger creates a Logger.
func NewLogger(prefix string) *Logger {
	return &Logger{Prefix: prefix}
}

func (l *Logger) format(format string, args []interface{}) string {
	msg := fmt.Sprintf(format, args...)
	if l.Prefix == "" {
		return msg
	}
	return l.Prefix + ": " + msg
}

// Infof implements adapter.Logger.
func (l *Logger) Infof(format string, args ...interface{}) {
	glog.InfoDepth(1, l.format(format, args))
}

// Warningf implements adapter.Logger.
func (l *Logger) Warningf(format string, args ...interface{}) {
	glog.WarningDepth(1, l.format(format, args))
}

// Errorf implements adapter.Logger.
func (l *Logger) Errorf(format string, args ...interface{}) {
	glog.ErrorDepth(1, l.format(format, args))
}

// LogMonitor logs state changes, and packets at verbosity 2.
type LogMonitor struct {
	Log adapter.Logger
}

// StateChanged implements adapter.Monitor.
func (m *LogMonitor) StateChanged(s adapter.State, mode serialmouse.Mode) {
	if s == adapter.Streaming {
		m.Log.Infof("state %s (%s)", s, mode)
		return
	}
	m.Log.Infof("state %s", s)
}

// PacketSent implements adapter.Monitor.
func (m *LogMonitor) PacketSent(p serialmouse.Packet) {
	if glog.V(2) {
		m.Log.Infof("packet % x", p.Bytes())
	}
}
