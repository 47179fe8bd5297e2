package ps2_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ps2serial/pkg/ps2"
	"github.com/robotalks/ps2serial/pkg/sim"
)

const testSpin = 100

type channelFixture struct {
	bus   *sim.Bus
	mouse *sim.Mouse
	rx    *ps2.Receiver
	ch    *ps2.CommandChannel
}

func newChannel(conf *sim.MouseConfig) *channelFixture {
	f := &channelFixture{bus: sim.NewBus()}
	if conf != nil {
		f.mouse = sim.NewMouse(f.bus, *conf)
	}
	f.rx = ps2.NewReceiver(f.bus.HostData(), f.bus.Edge())
	f.ch = ps2.NewCommandChannel(f.bus.HostClock(), f.bus.HostData(), f.rx, sim.NewClock())
	f.ch.BitSpin = testSpin
	f.ch.ResponseSpin = testSpin
	return f
}

func TestChannelReset(t *testing.T) {
	testCases := []struct {
		name   string
		conf   sim.MouseConfig
		expect ps2.DeviceInfo
	}{
		{
			name:   "mouse",
			expect: ps2.DeviceInfo{ID: ps2.IDMouse},
		},
		{
			name:   "wheel mouse",
			conf:   sim.MouseConfig{Wheel: true},
			expect: ps2.DeviceInfo{ID: ps2.IDWheelMouse, Wheel: true},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newChannel(&tc.conf)
			info, err := f.ch.Reset()
			require.NoError(t, err)
			require.Equal(t, tc.expect, info)
			require.True(t, f.ch.Reporting())
			require.Equal(t, []byte{
				0xff,
				0xf3, 200, 0xf3, 100, 0xf3, 80,
				0xf2,
				0xf4,
			}, f.mouse.Received())
			require.Equal(t, tc.conf.Wheel, f.mouse.WheelActive())
			require.True(t, f.mouse.Status().Reporting)
			require.False(t, f.rx.Armed())
		})
	}
}

func TestChannelResetFailures(t *testing.T) {
	testCases := []struct {
		name  string
		conf  *sim.MouseConfig
		check func(t *testing.T, err error)
	}{
		{
			name: "no device",
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ps2.ErrTimeout)
			},
		},
		{
			name: "self test failed",
			conf: &sim.MouseConfig{FailSelfTest: true},
			check: func(t *testing.T, err error) {
				var rerr *ps2.ResponseError
				require.ErrorAs(t, err, &rerr)
				require.Equal(t, byte(ps2.CmdReset), rerr.Sent)
				require.Equal(t, ps2.Error, rerr.Reply)
			},
		},
		{
			name: "keyboard",
			conf: &sim.MouseConfig{ID: 0xab},
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ps2.ErrUnsupportedDevice)
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newChannel(tc.conf)
			_, err := f.ch.Reset()
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestChannelResendOnce(t *testing.T) {
	f := newChannel(&sim.MouseConfig{})
	f.mouse.InjectResend(1)
	require.NoError(t, f.ch.SendCommand(ps2.CmdSetStreamMode))
	require.Equal(t, uint32(1), f.ch.Retransmits())
	require.Equal(t, []byte{0xea, 0xea}, f.mouse.Received())
}

func TestChannelResendExhausted(t *testing.T) {
	f := newChannel(&sim.MouseConfig{})
	f.mouse.InjectResend(10)
	err := f.ch.SendCommand(ps2.CmdEnableReporting)
	require.ErrorIs(t, err, ps2.ErrResendExhausted)
	require.Len(t, f.mouse.Received(), ps2.DefaultMaxResends+1)
	require.False(t, f.ch.Reporting())
}

func TestChannelUnknownCommand(t *testing.T) {
	f := newChannel(&sim.MouseConfig{})
	err := f.ch.SendCommand(ps2.Command(0x10))
	var rerr *ps2.ResponseError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, byte(0x10), rerr.Sent)
	require.Equal(t, ps2.Error, rerr.Reply)
}

func TestChannelSettings(t *testing.T) {
	f := newChannel(&sim.MouseConfig{Wheel: true})
	_, err := f.ch.Reset()
	require.NoError(t, err)

	require.NoError(t, f.ch.SetSampleRate(40))
	require.NoError(t, f.ch.SetResolution(3))
	require.NoError(t, f.ch.SetScaling(true))

	s, err := f.ch.Settings()
	require.NoError(t, err)
	require.Equal(t, ps2.Status{
		Scaling:    true,
		Reporting:  true,
		Resolution: 3,
		SampleRate: 40,
	}, s)
	require.True(t, f.mouse.Status().Reporting)

	require.NoError(t, f.ch.SetReporting(false))
	s, err = f.ch.Status()
	require.NoError(t, err)
	require.False(t, s.Reporting)
	require.NoError(t, f.ch.SetScaling(false))
	require.False(t, f.mouse.Status().Reporting)
	require.False(t, f.mouse.Status().Scaling)
}

func TestChannelRemoteMode(t *testing.T) {
	f := newChannel(&sim.MouseConfig{})
	_, err := f.ch.Reset()
	require.NoError(t, err)
	require.NoError(t, f.ch.SetRemoteMode())
	require.True(t, f.ch.Remote())
	f.mouse.Move(4, -2, 0)

	var data [3]byte
	require.NoError(t, f.ch.Query(ps2.CmdReadData, data[:]))
	p := &ps2.ReportParser{}
	var r ps2.Report
	for _, b := range data {
		r, _ = p.Parse(b)
	}
	require.Equal(t, ps2.Report{DX: 4, DY: -2}, r)

	require.NoError(t, f.ch.SetStreamMode())
	require.False(t, f.ch.Remote())
	require.True(t, f.mouse.Status().Reporting)
}

func TestChannelRestoresReceiver(t *testing.T) {
	f := newChannel(&sim.MouseConfig{})
	_, err := f.ch.Reset()
	require.NoError(t, err)
	f.rx.Start()

	require.NoError(t, f.ch.SetSampleRate(60))
	require.True(t, f.rx.Armed())

	f.mouse.Move(1, 1, 0)
	require.Equal(t, 3, f.bus.Pump())
	require.Equal(t, 3, f.rx.Buffered())

	// a failing transaction still re-arms
	f.mouse.InjectResend(10)
	require.ErrorIs(t, f.ch.SendCommand(ps2.CmdGetDeviceID), ps2.ErrResendExhausted)
	require.True(t, f.rx.Armed())
}

func TestChannelNoDeviceKeepsReceiverArmed(t *testing.T) {
	f := newChannel(nil)
	f.rx.Start()
	require.ErrorIs(t, f.ch.SetReporting(true), ps2.ErrTimeout)
	require.True(t, f.rx.Armed())
	require.True(t, f.bus.ClockLevel())
	require.True(t, f.bus.DataLevel())
}
