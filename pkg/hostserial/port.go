// Package hostserial mirrors the simulated serial mouse output onto a real
// RS-232 port, so a real host can be driven by the simulator.
package hostserial

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/tarm/serial"

	"github.com/robotalks/ps2serial/pkg/framework"
	"github.com/robotalks/ps2serial/pkg/serialmouse"
)

// QueueSize is the number of bytes buffered between the decoder and the port.
const QueueSize = 64

// Config returns the port settings of a serial mouse line.
func Config(name string, extraStopBit bool) *serial.Config {
	conf := &serial.Config{
		Name:     name,
		Baud:     serialmouse.BaudRate,
		Size:     serialmouse.DataBits,
		Parity:   serial.ParityNone,
		StopBits: serial.Stop1,
	}
	if extraStopBit {
		conf.StopBits = serial.Stop2
	}
	return conf
}

// Port forwards bytes to a serial port.
type Port struct {
	w       io.WriteCloser
	ch      chan byte
	dropped atomic.Uint32
	written atomic.Uint32
}

// Open opens the named serial port as a serial mouse line.
func Open(name string, extraStopBit bool) (*Port, error) {
	p, err := serial.OpenPort(Config(name, extraStopBit))
	if err != nil {
		return nil, err
	}
	return New(p), nil
}

// New creates a Port writing to w.
func New(w io.WriteCloser) *Port {
	return &Port{w: w, ch: make(chan byte, QueueSize)}
}

// Feed queues b without blocking. Bytes are dropped when the port falls
// behind.
func (p *Port) Feed(b byte) {
	select {
	case p.ch <- b:
	default:
		p.dropped.Add(1)
	}
}

// Dropped returns the number of bytes Feed discarded.
func (p *Port) Dropped() uint32 {
	return p.dropped.Load()
}

// Written returns the number of bytes written to the port.
func (p *Port) Written() uint32 {
	return p.written.Load()
}

// Name implements Named.
func (p *Port) Name() string {
	return "hostserial"
}

// Run implements Runnable. The port is closed when Run returns.
func (p *Port) Run(ctx context.Context) error {
	done := make(chan struct{})
	return framework.RunWithContextCloser(ctx, closeFunc(func() error {
		close(done)
		return p.w.Close()
	}), func() error {
		buf := make([]byte, 0, QueueSize)
		for {
			select {
			case <-done:
				return nil
			case b := <-p.ch:
				buf = append(buf[:0], b)
			}
			for more := true; more; {
				select {
				case b := <-p.ch:
					buf = append(buf, b)
				default:
					more = false
				}
			}
			if _, err := p.w.Write(buf); err != nil {
				glog.Errorf("serial write: %v", err)
				return err
			}
			p.written.Add(uint32(len(buf)))
		}
	})
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }
