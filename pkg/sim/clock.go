package sim

import (
	"sync"
	"time"

	"github.com/robotalks/ps2serial/pkg/hal"
)

// Clock is a virtual clock. Time only moves in Sleep and Advance, and
// tickers created from the clock fire synchronously as it passes their
// deadlines.
type Clock struct {
	lock    sync.Mutex
	now     time.Duration
	tickers []*Ticker
}

// NewClock creates a Clock at time zero.
func NewClock() *Clock {
	return &Clock{}
}

// Now implements hal.Clock.
func (c *Clock) Now() time.Duration {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

// Sleep implements hal.Clock.
func (c *Clock) Sleep(d time.Duration) {
	c.Advance(d)
}

// Advance moves the clock forward by d, firing due tickers in deadline order.
func (c *Clock) Advance(d time.Duration) {
	c.lock.Lock()
	target := c.now + d
	for {
		t := c.nextDue(target)
		if t == nil {
			break
		}
		c.now = t.next
		t.next += t.period
		fn := t.handler
		c.lock.Unlock()
		fn()
		c.lock.Lock()
	}
	c.now = target
	c.lock.Unlock()
}

func (c *Clock) nextDue(target time.Duration) (due *Ticker) {
	for _, t := range c.tickers {
		if t.running && t.next <= target && (due == nil || t.next < due.next) {
			due = t
		}
	}
	return
}

// NewTicker creates a stopped Ticker driven by the clock.
func (c *Clock) NewTicker() *Ticker {
	t := &Ticker{clock: c}
	c.lock.Lock()
	c.tickers = append(c.tickers, t)
	c.lock.Unlock()
	return t
}

// Ticker is a hal.Ticker on a virtual Clock.
type Ticker struct {
	clock   *Clock
	period  time.Duration
	next    time.Duration
	handler func()
	running bool
}

// Start implements hal.Ticker.
func (t *Ticker) Start(period time.Duration, handler func()) {
	t.clock.lock.Lock()
	defer t.clock.lock.Unlock()
	t.period, t.handler = period, handler
	t.next = t.clock.now + period
	t.running = true
}

// Stop implements hal.Ticker.
func (t *Ticker) Stop() {
	t.clock.lock.Lock()
	defer t.clock.lock.Unlock()
	t.running = false
}

// Running reports whether the ticker is started.
func (t *Ticker) Running() bool {
	t.clock.lock.Lock()
	defer t.clock.lock.Unlock()
	return t.running
}

// RealTicker is a hal.Ticker backed by time.Ticker. Handlers run on a
// dedicated goroutine.
type RealTicker struct {
	lock sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// Start implements hal.Ticker.
func (t *RealTicker) Start(period time.Duration, handler func()) {
	t.Stop()
	t.lock.Lock()
	defer t.lock.Unlock()
	stop, done := make(chan struct{}), make(chan struct{})
	t.stop, t.done = stop, done
	go func() {
		defer close(done)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				handler()
			}
		}
	}()
}

// Stop implements hal.Ticker. It returns after the handler goroutine exits.
func (t *RealTicker) Stop() {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.stop != nil {
		close(t.stop)
		<-t.done
		t.stop, t.done = nil, nil
	}
}

type tappedTicker struct {
	hal.Ticker
	after func()
}

// Tap returns a Ticker that calls after following every handler call.
func Tap(t hal.Ticker, after func()) hal.Ticker {
	return &tappedTicker{Ticker: t, after: after}
}

func (t *tappedTicker) Start(period time.Duration, handler func()) {
	t.Ticker.Start(period, func() {
		handler()
		t.after()
	})
}
