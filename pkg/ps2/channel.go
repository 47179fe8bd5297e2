package ps2

import (
	"fmt"

	"github.com/robotalks/ps2serial/pkg/hal"
)

// DeviceInfo describes the device found by Reset.
type DeviceInfo struct {
	ID    byte
	Wheel bool
}

// CommandChannel runs host-to-device transactions on the PS/2 bus.
//
// While a transaction is in progress the Receiver is stopped and the lines
// are polled directly. Not safe for concurrent use.
type CommandChannel struct {
	// MaxResends bounds retransmissions of a byte the device asked to resend.
	MaxResends int
	// BitSpin bounds each wait for a clock transition within a frame.
	BitSpin int
	// ResponseSpin bounds the wait for the first clock edge of a reply.
	ResponseSpin int

	clock hal.Line
	data  hal.Line
	rx    *Receiver
	clk   hal.Clock

	held        bool
	reporting   bool
	remote      bool
	retransmits uint32
}

// NewCommandChannel creates a CommandChannel with default budgets.
func NewCommandChannel(clock, data hal.Line, rx *Receiver, clk hal.Clock) *CommandChannel {
	return &CommandChannel{
		MaxResends:   DefaultMaxResends,
		BitSpin:      DefaultBitSpin,
		ResponseSpin: DefaultResponseSpin,
		clock:        clock,
		data:         data,
		rx:           rx,
		clk:          clk,
	}
}

// Receiver returns the receiver sharing the bus.
func (c *CommandChannel) Receiver() *Receiver {
	return c.rx
}

// Reporting reports whether data reporting was last enabled.
func (c *CommandChannel) Reporting() bool {
	return c.reporting
}

// Remote reports whether the device was last put in remote mode.
func (c *CommandChannel) Remote() bool {
	return c.remote
}

// Retransmits returns the number of bytes resent on device request.
func (c *CommandChannel) Retransmits() uint32 {
	return c.retransmits
}

// acquire takes the bus for a transaction. The returned func releases both
// lines and re-arms the receiver if it was armed before. Nested acquisitions
// are no-ops.
func (c *CommandChannel) acquire() func() {
	if c.held {
		return func() {}
	}
	c.held = true
	armed := c.rx.Armed()
	c.rx.Stop()
	return func() {
		// data first, a released clock with data low is a request-to-send
		c.data.Release()
		c.clock.Release()
		c.held = false
		if armed {
			c.rx.Start()
		}
	}
}

func (c *CommandChannel) waitClock(level bool, spin int) error {
	for i := 0; c.clock.Get() != level; i++ {
		if i >= spin {
			return ErrTimeout
		}
	}
	return nil
}

func (c *CommandChannel) sendBit(level bool, spin int) error {
	if err := c.waitClock(false, spin); err != nil {
		return err
	}
	c.data.Set(level)
	return c.waitClock(true, c.BitSpin)
}

func (c *CommandChannel) recvBit(spin int) (bool, error) {
	if err := c.waitClock(false, spin); err != nil {
		return false, err
	}
	level := c.data.Get()
	return level, c.waitClock(true, c.BitSpin)
}

func (c *CommandChannel) sendByte(b byte) error {
	c.clock.Set(false)
	c.clk.Sleep(InhibitTime)
	c.data.Set(false)
	c.clock.Release()

	parity := true
	for i := 0; i < 8; i++ {
		bit := b&(1<<uint(i)) != 0
		if bit {
			parity = !parity
		}
		spin := c.BitSpin
		if i == 0 {
			spin = c.ResponseSpin
		}
		if err := c.sendBit(bit, spin); err != nil {
			return err
		}
	}
	if err := c.sendBit(parity, c.BitSpin); err != nil {
		return err
	}
	if err := c.sendBit(true, c.BitSpin); err != nil {
		return err
	}
	c.data.Release()
	nack, err := c.recvBit(c.BitSpin)
	if err != nil {
		return err
	}
	if nack {
		return ErrNoAck
	}
	return nil
}

func (c *CommandChannel) recvByte(spin int) (byte, error) {
	var f frame
	for i := 0; ; i++ {
		s := c.BitSpin
		if i == 0 {
			s = spin
		}
		level, err := c.recvBit(s)
		if err != nil {
			return 0, err
		}
		b, res := f.feed(level)
		switch res {
		case frameByte:
			return b, nil
		case frameBadStart, frameBadStop:
			return 0, ErrFraming
		case frameBadParity:
			return 0, ErrParity
		}
	}
}

func (c *CommandChannel) sendWithAck(b byte) error {
	for attempt := 0; ; attempt++ {
		if err := c.sendByte(b); err != nil {
			return err
		}
		reply, err := c.recvByte(c.ResponseSpin)
		if err != nil {
			return err
		}
		switch reply {
		case Ack:
			return nil
		case Resend:
			if attempt >= c.MaxResends {
				return ErrResendExhausted
			}
			c.retransmits++
		default:
			return &ResponseError{Sent: b, Reply: reply}
		}
	}
}

// SendCommand sends cmd followed by args, each acknowledged individually.
func (c *CommandChannel) SendCommand(cmd Command, args ...byte) error {
	defer c.acquire()()
	if err := c.sendWithAck(byte(cmd)); err != nil {
		return err
	}
	for _, arg := range args {
		if err := c.sendWithAck(arg); err != nil {
			return err
		}
	}
	switch cmd {
	case CmdReset, CmdSetDefaults:
		c.reporting, c.remote = false, false
	case CmdEnableReporting:
		c.reporting = true
	case CmdDisableReporting:
		c.reporting = false
	case CmdSetRemoteMode:
		c.remote = true
	case CmdSetStreamMode:
		c.remote = false
	}
	return nil
}

// Query sends cmd and reads len(reply) bytes of response.
func (c *CommandChannel) Query(cmd Command, reply []byte) error {
	defer c.acquire()()
	if err := c.SendCommand(cmd); err != nil {
		return err
	}
	for i := range reply {
		b, err := c.recvByte(c.ResponseSpin)
		if err != nil {
			return err
		}
		reply[i] = b
	}
	return nil
}

// Reset resets the device, probes for a wheel and enables data reporting.
func (c *CommandChannel) Reset() (info DeviceInfo, err error) {
	defer c.acquire()()
	var reply [2]byte
	if err = c.Query(CmdReset, reply[:]); err != nil {
		return
	}
	if reply[0] != SelfTestPassed {
		return info, &ResponseError{Sent: byte(CmdReset), Reply: reply[0]}
	}
	if reply[1] != IDMouse && reply[1] != IDWheelMouse {
		return info, fmt.Errorf("%w: id 0x%02x", ErrUnsupportedDevice, reply[1])
	}
	for _, rate := range wheelKnock {
		if err = c.SendCommand(CmdSetSampleRate, rate); err != nil {
			return
		}
	}
	if info.ID, err = c.DeviceID(); err != nil {
		return
	}
	info.Wheel = info.ID == IDWheelMouse
	err = c.SetReporting(true)
	return
}

// DeviceID reads the device id.
func (c *CommandChannel) DeviceID() (byte, error) {
	var id [1]byte
	err := c.Query(CmdGetDeviceID, id[:])
	return id[0], err
}

// Status reads the device status.
func (c *CommandChannel) Status() (Status, error) {
	var reply [3]byte
	if err := c.Query(CmdStatusRequest, reply[:]); err != nil {
		return Status{}, err
	}
	return ParseStatus(reply), nil
}

// Settings reads the device status with reporting paused.
// Reporting in the result reflects the state outside the pause.
func (c *CommandChannel) Settings() (s Status, err error) {
	err = c.quiesced(func() (err error) {
		s, err = c.Status()
		return
	})
	s.Reporting = c.reporting
	return
}

// quiesced runs fn with data reporting disabled, re-enabling it afterwards
// if it was enabled before.
func (c *CommandChannel) quiesced(fn func() error) error {
	defer c.acquire()()
	enabled := c.reporting
	if err := c.SetReporting(false); err != nil {
		return err
	}
	err := fn()
	if enabled {
		if rerr := c.SetReporting(true); err == nil {
			err = rerr
		}
	}
	return err
}

// SetReporting enables or disables data reporting.
func (c *CommandChannel) SetReporting(enable bool) error {
	if enable {
		return c.SendCommand(CmdEnableReporting)
	}
	return c.SendCommand(CmdDisableReporting)
}

// SetStreamMode switches the device to stream mode.
func (c *CommandChannel) SetStreamMode() error {
	return c.SendCommand(CmdSetStreamMode)
}

// SetRemoteMode switches the device to remote mode.
func (c *CommandChannel) SetRemoteMode() error {
	return c.SendCommand(CmdSetRemoteMode)
}

// SetScaling selects 2:1 scaling when enable is true, 1:1 otherwise.
func (c *CommandChannel) SetScaling(enable bool) error {
	cmd := CmdDisableScaling
	if enable {
		cmd = CmdEnableScaling
	}
	return c.quiesced(func() error { return c.SendCommand(cmd) })
}

// SetResolution sets the resolution code (0-3: 1, 2, 4, 8 counts/mm).
func (c *CommandChannel) SetResolution(res byte) error {
	return c.quiesced(func() error { return c.SendCommand(CmdSetResolution, res) })
}

// SetSampleRate sets the sample rate in reports per second.
func (c *CommandChannel) SetSampleRate(rate byte) error {
	return c.quiesced(func() error { return c.SendCommand(CmdSetSampleRate, rate) })
}
