package serialmouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ps2serial/pkg/ring"
)

type fakeLine struct {
	level  bool
	levels []bool
}

func (l *fakeLine) Set(level bool) {
	l.level = level
}

type fakeTicker struct {
	period  time.Duration
	handler func()
	running bool
}

func (t *fakeTicker) Start(period time.Duration, handler func()) {
	t.period, t.handler, t.running = period, handler, true
}

func (t *fakeTicker) Stop() {
	t.running = false
}

func (t *fakeTicker) tick(line *fakeLine, n int) {
	for i := 0; i < n; i++ {
		t.handler()
		line.levels = append(line.levels, line.level)
	}
}

func newTestTransmitter(extraStop bool) (*Transmitter, *fakeLine, *fakeTicker) {
	line, ticker := &fakeLine{}, &fakeTicker{}
	tx := NewTransmitter(line, ticker)
	tx.ExtraStopBit = extraStop
	tx.Init()
	return tx, line, ticker
}

// waveform builds line levels from "0"/"1" characters, ignoring spaces.
func waveform(s string) (levels []bool) {
	for _, c := range s {
		switch c {
		case '0':
			levels = append(levels, false)
		case '1':
			levels = append(levels, true)
		}
	}
	return
}

func TestTransmitterWaveform(t *testing.T) {
	testCases := []struct {
		name      string
		extraStop bool
		in        []byte
		ticks     int
		expect    string
	}{
		{
			name:   "idle",
			ticks:  3,
			expect: "111",
		},
		{
			name:   "one stop bit",
			in:     []byte{'M'},
			ticks:  11,
			expect: "0 1011001 1 11",
		},
		{
			name:      "two stop bits",
			extraStop: true,
			in:        []byte{'M'},
			ticks:     11,
			expect:    "0 1011001 11 1",
		},
		{
			name:   "back to back",
			in:     []byte{'M', '3'},
			ticks:  19,
			expect: "0 1011001 1 0 1100110 1 1",
		},
		{
			name:      "back to back two stop bits",
			extraStop: true,
			in:        []byte{'M', 'Z'},
			ticks:     21,
			expect:    "0 1011001 11 0 0101101 11 1",
		},
		{
			name:   "8th bit dropped",
			in:     []byte{0xff},
			ticks:  10,
			expect: "0 1111111 1 1",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tx, line, ticker := newTestTransmitter(tc.extraStop)
			require.True(t, line.level)
			require.Equal(t, BitPeriod, ticker.period)
			for _, b := range tc.in {
				require.True(t, tx.Enqueue(b))
			}
			ticker.tick(line, tc.ticks)
			require.Equal(t, waveform(tc.expect), line.levels)
			require.True(t, tx.Idle())
		})
	}
}

func TestTransmitterFrameBits(t *testing.T) {
	tx, _, _ := newTestTransmitter(false)
	require.Equal(t, 9, tx.FrameBits())
	tx.ExtraStopBit = true
	require.Equal(t, 10, tx.FrameBits())
}

func TestTransmitterTeardown(t *testing.T) {
	tx, line, ticker := newTestTransmitter(false)
	tx.EnqueuePacket(Encode(ThreeButton, 0, 1, 1, 0))
	ticker.tick(line, 3)
	require.False(t, tx.Idle())
	require.Equal(t, 3, tx.Pending())

	tx.Teardown()
	require.False(t, ticker.running)
	require.True(t, line.level)
	require.True(t, tx.Idle())

	tx.Init()
	require.True(t, ticker.running)
	line.levels = nil
	ticker.tick(line, 2)
	require.Equal(t, waveform("11"), line.levels)
}

func TestTransmitterOverflow(t *testing.T) {
	tx, _, _ := newTestTransmitter(false)
	for i := 0; i < ring.Capacity+10; i++ {
		tx.Enqueue(byte(i))
	}
	require.Equal(t, ring.Capacity, tx.Pending())
	require.Equal(t, uint32(10), tx.Dropped())
}
