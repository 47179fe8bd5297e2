package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClockFiresTickers(t *testing.T) {
	c := NewClock()
	var fired []string
	fast, slow := c.NewTicker(), c.NewTicker()
	fast.Start(2*time.Millisecond, func() { fired = append(fired, "fast@"+c.Now().String()) })
	slow.Start(5*time.Millisecond, func() { fired = append(fired, "slow@"+c.Now().String()) })

	c.Sleep(6 * time.Millisecond)
	require.Equal(t, []string{"fast@2ms", "fast@4ms", "slow@5ms", "fast@6ms"}, fired)
	require.Equal(t, 6*time.Millisecond, c.Now())

	fired = nil
	fast.Stop()
	require.False(t, fast.Running())
	c.Advance(5 * time.Millisecond)
	require.Equal(t, []string{"slow@10ms"}, fired)
}

func TestClockTickerRestart(t *testing.T) {
	c := NewClock()
	tk := c.NewTicker()
	var n int
	tk.Start(time.Millisecond, func() { n++ })
	c.Advance(3500 * time.Microsecond)
	require.Equal(t, 3, n)
	tk.Start(time.Millisecond, func() { n += 10 })
	c.Advance(time.Millisecond)
	require.Equal(t, 13, n)
}

func TestTap(t *testing.T) {
	c := NewClock()
	var order []string
	tk := Tap(c.NewTicker(), func() { order = append(order, "after") })
	tk.Start(time.Millisecond, func() { order = append(order, "tick") })
	c.Advance(2 * time.Millisecond)
	require.Equal(t, []string{"tick", "after", "tick", "after"}, order)
}
