package ps2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeEdge struct {
	handler func()
}

func (e *fakeEdge) Arm(handler func()) { e.handler = handler }
func (e *fakeEdge) Disarm()            { e.handler = nil }

type fakeInput bool

func (in *fakeInput) Get() bool { return bool(*in) }

type frameBuilder struct {
	bits []bool
}

func frames() *frameBuilder {
	return &frameBuilder{}
}

func (b *frameBuilder) byte(v byte) *frameBuilder {
	bits := FrameBits(v)
	b.bits = append(b.bits, bits[:]...)
	return b
}

func (b *frameBuilder) badParity(v byte) *frameBuilder {
	bits := FrameBits(v)
	bits[9] = !bits[9]
	b.bits = append(b.bits, bits[:]...)
	return b
}

func (b *frameBuilder) badStop(v byte) *frameBuilder {
	bits := FrameBits(v)
	bits[10] = false
	b.bits = append(b.bits, bits[:]...)
	return b
}

func (b *frameBuilder) idle(n int) *frameBuilder {
	for i := 0; i < n; i++ {
		b.bits = append(b.bits, true)
	}
	return b
}

func (b *frameBuilder) feed(r *Receiver) {
	for _, bit := range b.bits {
		r.OnClockEdge(bit)
	}
}

func newTestReceiver() (*Receiver, *fakeEdge) {
	var data fakeInput
	edge := &fakeEdge{}
	r := NewReceiver(&data, edge)
	r.Start()
	return r, edge
}

func readAll(t *testing.T, r *Receiver) []byte {
	var out []byte
	for r.Buffered() > 0 {
		b, err := r.ReadByte(0)
		require.NoError(t, err)
		out = append(out, b)
	}
	return out
}

func TestReceiverDecodesFrames(t *testing.T) {
	for _, v := range []byte{0x00, 0x01, 0x80, 0xff, Ack, SelfTestPassed, IDWheelMouse, 0x55} {
		r, _ := newTestReceiver()
		frames().byte(v).feed(r)
		b, err := r.ReadByte(0)
		require.NoError(t, err)
		require.Equal(t, v, b)
		require.Zero(t, r.Errors())
	}
}

func TestReceiverDropsCorruptFrames(t *testing.T) {
	testCases := []struct {
		name   string
		frames *frameBuilder
		expect []byte
		errors uint32
	}{
		{
			name:   "bad parity",
			frames: frames().badParity(0x12).byte(0x34),
			expect: []byte{0x34},
			errors: 1,
		},
		{
			name:   "bad stop",
			frames: frames().badStop(0x12).byte(0x34),
			expect: []byte{0x34},
			errors: 1,
		},
		{
			name:   "idle high before start",
			frames: frames().idle(3).byte(0xfa).idle(1).byte(0xaa),
			expect: []byte{0xfa, 0xaa},
		},
		{
			name:   "mixed",
			frames: frames().byte(0x08).badParity(0x01).badStop(0x02).byte(0x09).badParity(0xff).byte(0x0a),
			expect: []byte{0x08, 0x09, 0x0a},
			errors: 3,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newTestReceiver()
			tc.frames.feed(r)
			require.Equal(t, tc.expect, readAll(t, r))
			require.Equal(t, tc.errors, r.Errors())
		})
	}
}

func TestReceiverReadTimeout(t *testing.T) {
	r, _ := newTestReceiver()
	_, err := r.ReadByte(10)
	require.Equal(t, ErrTimeout, err)
}

func TestReceiverStartStop(t *testing.T) {
	r, edge := newTestReceiver()
	require.True(t, r.Armed())
	require.NotNil(t, edge.handler)

	frames().byte(0x01).feed(r)
	// half a frame, discarded by Stop
	bits := FrameBits(0x77)
	for _, bit := range bits[:5] {
		r.OnClockEdge(bit)
	}
	r.Stop()
	require.False(t, r.Armed())
	require.Nil(t, edge.handler)

	r.Start()
	require.Zero(t, r.Buffered())
	frames().byte(0x02).feed(r)
	require.Equal(t, []byte{0x02}, readAll(t, r))
	require.Equal(t, uint32(2), r.Starts())
}

func TestReceiverSamplesDataOnEdge(t *testing.T) {
	var data fakeInput
	edge := &fakeEdge{}
	r := NewReceiver(&data, edge)
	r.Start()
	for _, bit := range FrameBits(0xc3) {
		data = fakeInput(bit)
		edge.handler()
	}
	b, err := r.ReadByte(0)
	require.NoError(t, err)
	require.Equal(t, byte(0xc3), b)
}
