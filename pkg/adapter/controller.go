package adapter

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/robotalks/ps2serial/pkg/ps2"
	"github.com/robotalks/ps2serial/pkg/serialmouse"
)

// ErrNotStreaming is returned by Do when the controller is not running.
var ErrNotStreaming = errors.New("adapter: not streaming")

type request struct {
	fn   func(*ps2.CommandChannel) error
	done chan error
}

// Controller bridges the PS/2 device to the serial host.
//
// Init, Poll and Run belong to the main loop. RequestHandshake may be called
// from interrupt context and Do from any goroutine.
type Controller struct {
	Log     Logger
	Monitor Monitor

	conf Config
	hw   Hardware

	rx     *ps2.Receiver
	ch     *ps2.CommandChannel
	tx     *serialmouse.Transmitter
	tr     *serialmouse.Translator
	parser ps2.ReportParser

	info      ps2.DeviceInfo
	mode      serialmouse.Mode
	state     atomic.Uint32
	handshake atomic.Bool
	requests  chan request

	reports    uint32
	handshakes uint32
}

// NewController creates a Controller on hw.
func NewController(hw Hardware, conf Config) *Controller {
	rx := ps2.NewReceiver(hw.PS2Data, hw.PS2Edge)
	ch := ps2.NewCommandChannel(hw.PS2Clock, hw.PS2Data, rx, hw.Clock)
	ch.MaxResends = conf.MaxResends
	ch.BitSpin = conf.BitSpin
	ch.ResponseSpin = conf.ResponseSpin
	tx := serialmouse.NewTransmitter(hw.TX, hw.BitTimer)
	tx.ExtraStopBit = conf.ExtraStopBit
	return &Controller{
		Log:      nopLogger{},
		Monitor:  nopMonitor{},
		conf:     conf,
		hw:       hw,
		rx:       rx,
		ch:       ch,
		tx:       tx,
		requests: make(chan request, 1),
	}
}

// State returns the current state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Mode returns the resolved serial mouse mode, valid after ModeDetect.
func (c *Controller) Mode() serialmouse.Mode {
	return c.mode
}

// Device returns what Init found on the PS/2 port.
func (c *Controller) Device() ps2.DeviceInfo {
	return c.info
}

func (c *Controller) setState(s State) {
	c.state.Store(uint32(s))
	c.Monitor.StateChanged(s, c.mode)
}

// Init resets and configures the device, resolves the mode and performs
// the first host handshake. Any failure leaves the controller Failed.
func (c *Controller) Init() error {
	if err := c.init(); err != nil {
		c.Log.Errorf("init failed: %v", err)
		c.setState(Failed)
		return err
	}
	return nil
}

func (c *Controller) init() error {
	c.setState(DeviceReset)
	info, err := c.ch.Reset()
	if err != nil {
		return fmt.Errorf("reset device: %w", err)
	}
	c.info = info
	c.Log.Infof("device id 0x%02x wheel %v", info.ID, info.Wheel)
	if err := c.configure(); err != nil {
		return fmt.Errorf("configure device: %w", err)
	}

	c.setState(ModeDetect)
	c.mode = serialmouse.ResolveMode(c.hw.Jumpers, info.Wheel)
	c.Log.Infof("mode %s", c.mode)
	c.parser = ps2.ReportParser{Wheel: info.Wheel}
	c.tr = serialmouse.NewTranslator(c.mode, c.tx, c.hw.Clock)

	c.hw.Ready.Arm(c.RequestHandshake)
	c.rx.Start()
	c.Handshake()
	return nil
}

func (c *Controller) configure() error {
	if c.conf.SampleRate > 0 {
		if err := c.ch.SetSampleRate(byte(c.conf.SampleRate)); err != nil {
			return err
		}
	}
	if c.conf.Resolution >= 0 {
		if err := c.ch.SetResolution(byte(c.conf.Resolution)); err != nil {
			return err
		}
	}
	if c.conf.Scaling {
		if err := c.ch.SetScaling(true); err != nil {
			return err
		}
	}
	s, err := c.ch.Settings()
	if err != nil {
		return err
	}
	c.Log.Infof("device settings: rate %d resolution %d scaling %v reporting %v remote %v",
		s.SampleRate, s.Resolution, s.Scaling, s.Reporting, s.Remote)
	return nil
}

// RequestHandshake asks the main loop to repeat the host handshake.
// Safe in interrupt context.
func (c *Controller) RequestHandshake() {
	c.handshake.Store(true)
}

// Handshake restarts the serial line and sends the identification bytes.
func (c *Controller) Handshake() {
	c.setState(AwaitHostHandshake)
	c.tx.Teardown()
	c.tr.Reset()
	c.parser.Reset()
	c.tx.Init()
	c.hw.Clock.Sleep(c.conf.SettleDelay)
	for _, b := range c.mode.Ident() {
		c.tx.Enqueue(b)
	}
	c.hw.Clock.Sleep(c.conf.SettleDelay)
	c.handshakes++
	c.setState(Streaming)
}

// Poll runs one iteration of the main loop.
func (c *Controller) Poll() {
	if c.State() != Streaming {
		return
	}
	if c.handshake.Swap(false) {
		c.Log.Infof("host requested handshake")
		c.Handshake()
	}
	c.serveRequests()
	for {
		budget := 0
		if c.parser.Partial() {
			budget = c.conf.ReadBudget
		}
		b, err := c.rx.ReadByte(budget)
		if err != nil {
			break
		}
		if r, ok := c.parser.Parse(b); ok {
			c.tr.Add(r)
			c.reports++
		}
	}
	if c.tr.Due() {
		if p, ok := c.tr.Send(); ok {
			c.Monitor.PacketSent(p)
		}
	}
}

func (c *Controller) serveRequests() {
	for {
		select {
		case req := <-c.requests:
			starts := c.rx.Starts()
			err := req.fn(c.ch)
			if c.rx.Starts() != starts {
				c.parser.Reset()
			}
			req.done <- err
		default:
			return
		}
	}
}

// Do runs fn on the main loop with exclusive use of the PS/2 bus.
func (c *Controller) Do(ctx context.Context, fn func(*ps2.CommandChannel) error) error {
	if c.State() != Streaming {
		return ErrNotStreaming
	}
	req := request{fn: fn, done: make(chan error, 1)}
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns the counters. Main loop only; other goroutines use Do.
func (c *Controller) Stats() Stats {
	s := Stats{
		Reports:     c.reports,
		Handshakes:  c.handshakes,
		Skipped:     c.parser.Skipped(),
		RxDropped:   c.rx.Dropped(),
		RxErrors:    c.rx.Errors(),
		TxDropped:   c.tx.Dropped(),
		Retransmits: c.ch.Retransmits(),
	}
	if c.tr != nil {
		s.Packets = c.tr.Sent()
	}
	return s
}

// Run implements Runnable.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.Init(); err != nil {
		return err
	}
	defer c.shutdown()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		c.Poll()
		if c.conf.PollInterval > 0 {
			c.hw.Clock.Sleep(c.conf.PollInterval)
		} else {
			runtime.Gosched()
		}
	}
}

func (c *Controller) shutdown() {
	c.hw.Ready.Disarm()
	c.rx.Stop()
	c.tx.Teardown()
	c.setState(Uninitialized)
}
