package sim

import (
	"github.com/robotalks/ps2serial/pkg/ps2"
)

// MouseConfig configures a simulated mouse.
type MouseConfig struct {
	// Wheel enables the scroll wheel extension.
	Wheel bool `yaml:"wheel"`
	// ID is the id reported after reset.
	ID byte `yaml:"id"`
	// FailSelfTest reports an error instead of passing the self test.
	FailSelfTest bool `yaml:"failSelfTest"`
}

type mouseState uint8

const (
	mouseIdle mouseState = iota
	mouseReceiving
	mouseAcking
)

const (
	defaultSampleRate = 100
	defaultResolution = 2
	maxMouseDelta     = 255
	minMouseDelta     = -256
	frameLen          = 11
)

// Mouse is a simulated PS/2 mouse. All state is guarded by the bus lock.
type Mouse struct {
	conf MouseConfig
	bus  *Bus

	state   mouseState
	rxBits  uint8
	rxShift uint16

	txq    []byte
	txBit  int
	lastTx byte

	pendingArg  ps2.Command
	rates       [3]byte
	wheelActive bool
	reporting   bool
	remote      bool
	scaling     bool
	sampleRate  byte
	resolution  byte

	buttons       ps2.Buttons
	remoteDX      int
	remoteDY      int
	remoteWheel   int
	resendPending int
	received      []byte
}

// NewMouse attaches a mouse to bus.
func NewMouse(bus *Bus, conf MouseConfig) *Mouse {
	m := &Mouse{conf: conf, bus: bus}
	m.defaults()
	bus.lock.Lock()
	bus.mouse = m
	bus.lock.Unlock()
	return m
}

func (m *Mouse) defaults() {
	m.reporting, m.remote, m.scaling = false, false, false
	m.sampleRate, m.resolution = defaultSampleRate, defaultResolution
}

// Move reports relative motion in device orientation (positive dy is up).
func (m *Mouse) Move(dx, dy, wheel int) {
	m.bus.lock.Lock()
	defer m.bus.lock.Unlock()
	m.motion(dx, dy, wheel)
}

// SetButtons changes the pressed buttons.
func (m *Mouse) SetButtons(b ps2.Buttons) {
	m.bus.lock.Lock()
	defer m.bus.lock.Unlock()
	m.buttons = b & ps2.ButtonsAll
	m.motion(0, 0, 0)
}

// Buttons returns the pressed buttons.
func (m *Mouse) Buttons() ps2.Buttons {
	m.bus.lock.Lock()
	defer m.bus.lock.Unlock()
	return m.buttons
}

// InjectResend makes the mouse answer the next n received bytes with Resend.
func (m *Mouse) InjectResend(n int) {
	m.bus.lock.Lock()
	defer m.bus.lock.Unlock()
	m.resendPending = n
}

// Received returns all bytes received from the host.
func (m *Mouse) Received() []byte {
	m.bus.lock.Lock()
	defer m.bus.lock.Unlock()
	return append([]byte(nil), m.received...)
}

// Status returns the device state as a status request would.
func (m *Mouse) Status() ps2.Status {
	m.bus.lock.Lock()
	defer m.bus.lock.Unlock()
	return m.status()
}

// WheelActive reports whether the wheel extension was unlocked.
func (m *Mouse) WheelActive() bool {
	m.bus.lock.Lock()
	defer m.bus.lock.Unlock()
	return m.wheelActive
}

// Queued returns the number of bytes waiting to be sent.
func (m *Mouse) Queued() int {
	m.bus.lock.Lock()
	defer m.bus.lock.Unlock()
	return len(m.txq)
}

func (m *Mouse) status() ps2.Status {
	return ps2.Status{
		Buttons:    m.buttons,
		Scaling:    m.scaling,
		Reporting:  m.reporting,
		Remote:     m.remote,
		Resolution: m.resolution,
		SampleRate: m.sampleRate,
	}
}

func (m *Mouse) motion(dx, dy, wheel int) {
	if m.remote {
		m.remoteDX += dx
		m.remoteDY += dy
		m.remoteWheel += wheel
		return
	}
	if m.reporting {
		m.send(m.report(dx, dy, wheel).Bytes(m.wheelActive)...)
	}
}

func (m *Mouse) report(dx, dy, wheel int) ps2.Report {
	r := ps2.Report{Buttons: m.buttons}
	r.DX, r.XOverflow = clampDelta(dx)
	r.DY, r.YOverflow = clampDelta(dy)
	switch {
	case wheel > 127:
		r.Wheel = 127
	case wheel < -128:
		r.Wheel = -128
	default:
		r.Wheel = int8(wheel)
	}
	return r
}

func clampDelta(v int) (int16, bool) {
	if v > maxMouseDelta {
		return maxMouseDelta, true
	}
	if v < minMouseDelta {
		return minMouseDelta, true
	}
	return int16(v), false
}

func (m *Mouse) send(b ...byte) {
	m.txq = append(m.txq, b...)
}

// requestToSend starts clocking in a host byte. Pending output is abandoned
// and resumes from the start of its frame.
func (m *Mouse) requestToSend() {
	m.state = mouseReceiving
	m.rxBits, m.rxShift = 0, 0
	m.txBit = 0
	m.bus.devClockLow.Store(false)
	m.bus.devDataLow.Store(false)
}

// poll advances the device by half a clock cycle.
func (m *Mouse) poll() {
	b := m.bus
	switch m.state {
	case mouseReceiving:
		if !b.devClockLow.Load() {
			b.devClockLow.Store(true)
			return
		}
		if b.DataLevel() {
			m.rxShift |= 1 << m.rxBits
		}
		b.devClockLow.Store(false)
		// 8 data bits, parity, stop
		if m.rxBits++; m.rxBits == 10 {
			m.state = mouseAcking
		}
	case mouseAcking:
		if !b.devClockLow.Load() {
			b.devDataLow.Store(true)
			b.devClockLow.Store(true)
			return
		}
		b.devClockLow.Store(false)
		b.devDataLow.Store(false)
		m.state = mouseIdle
		m.receive(m.rxShift)
	default:
		if len(m.txq) == 0 {
			return
		}
		if !b.devClockLow.Load() {
			bits := ps2.FrameBits(m.txq[0])
			b.devDataLow.Store(!bits[m.txBit])
			b.devClockLow.Store(true)
			return
		}
		b.devClockLow.Store(false)
		if m.txBit++; m.txBit == frameLen {
			m.popTx()
		}
	}
}

func (m *Mouse) popTx() {
	m.lastTx = m.txq[0]
	m.txq = m.txq[1:]
	m.txBit = 0
	m.bus.devDataLow.Store(false)
}

// deliver clocks out all queued bytes to isr.
func (m *Mouse) deliver(isr func()) (n int) {
	b := m.bus
	for m.state == mouseIdle && len(m.txq) > 0 {
		bits := ps2.FrameBits(m.txq[0])
		for ; m.txBit < len(bits); m.txBit++ {
			b.devDataLow.Store(!bits[m.txBit])
			b.devClockLow.Store(true)
			isr()
			b.devClockLow.Store(false)
		}
		m.popTx()
		n++
	}
	return
}

func (m *Mouse) receive(frame uint16) {
	v := byte(frame)
	parity := 1
	for i := 0; i < 9; i++ {
		parity ^= int(frame>>uint(i)) & 1
	}
	m.received = append(m.received, v)
	if parity != 0 || m.resendPending > 0 {
		if m.resendPending > 0 {
			m.resendPending--
		}
		m.txq, m.txBit = m.txq[:0], 0
		m.send(ps2.Resend)
		return
	}
	if cmd := m.pendingArg; cmd != 0 {
		m.pendingArg = 0
		m.txq, m.txBit = m.txq[:0], 0
		m.argument(cmd, v)
		return
	}
	m.command(ps2.Command(v))
}

func (m *Mouse) argument(cmd ps2.Command, v byte) {
	switch cmd {
	case ps2.CmdSetSampleRate:
		m.sampleRate = v
		m.rates[0], m.rates[1], m.rates[2] = m.rates[1], m.rates[2], v
		if m.conf.Wheel && m.rates == [3]byte{200, 100, 80} {
			m.wheelActive = true
		}
	case ps2.CmdSetResolution:
		if v > 3 {
			m.send(ps2.Error)
			return
		}
		m.resolution = v
	}
	m.send(ps2.Ack)
}

func (m *Mouse) command(cmd ps2.Command) {
	if cmd == ps2.CmdResend {
		m.txq, m.txBit = append(m.txq[:0], m.lastTx), 0
		return
	}
	m.txq, m.txBit = m.txq[:0], 0
	switch cmd {
	case ps2.CmdReset:
		m.defaults()
		m.wheelActive = false
		m.rates = [3]byte{}
		m.send(ps2.Ack)
		if m.conf.FailSelfTest {
			m.send(ps2.Error, m.conf.ID)
			return
		}
		m.send(ps2.SelfTestPassed, m.conf.ID)
	case ps2.CmdSetDefaults:
		m.defaults()
		m.send(ps2.Ack)
	case ps2.CmdEnableReporting:
		m.reporting = true
		m.send(ps2.Ack)
	case ps2.CmdDisableReporting:
		m.reporting = false
		m.send(ps2.Ack)
	case ps2.CmdSetSampleRate, ps2.CmdSetResolution:
		m.pendingArg = cmd
		m.send(ps2.Ack)
	case ps2.CmdGetDeviceID:
		id := m.conf.ID
		if m.wheelActive {
			id = ps2.IDWheelMouse
		}
		m.send(ps2.Ack, id)
	case ps2.CmdSetRemoteMode:
		m.remote = true
		m.send(ps2.Ack)
	case ps2.CmdSetStreamMode:
		m.remote = false
		m.send(ps2.Ack)
	case ps2.CmdEnableScaling, ps2.CmdDisableScaling:
		m.scaling = cmd == ps2.CmdEnableScaling
		m.send(ps2.Ack)
	case ps2.CmdStatusRequest:
		s := m.status().Bytes()
		m.send(ps2.Ack)
		m.send(s[:]...)
	case ps2.CmdReadData:
		r := m.report(m.remoteDX, m.remoteDY, m.remoteWheel)
		m.remoteDX, m.remoteDY, m.remoteWheel = 0, 0, 0
		m.send(ps2.Ack)
		m.send(r.Bytes(m.wheelActive)...)
	case ps2.CmdSetWrapMode, ps2.CmdResetWrapMode:
		m.send(ps2.Ack)
	default:
		m.send(ps2.Error)
	}
}
