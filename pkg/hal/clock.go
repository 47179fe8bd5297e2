package hal

import "time"

// SystemClock is a Clock backed by the time package.
type SystemClock struct {
	origin time.Time
}

// NewSystemClock creates a SystemClock with the origin set to now.
func NewSystemClock() *SystemClock {
	return &SystemClock{origin: time.Now()}
}

// Now implements Clock.
func (c *SystemClock) Now() time.Duration {
	return time.Since(c.origin)
}

// Sleep implements Clock.
func (c *SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
