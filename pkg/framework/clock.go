package framework

import (
	"sync"
	"time"
)

// Clock abstracts the monotonic time used by the loop and
// by blocking waits inside controllers.
type Clock interface {
	Now() time.Time
	Sleep(time.Duration)
}

// SystemClock is the Clock backed by package time.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// Sleep implements Clock.
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// ManualClock is a virtual Clock which only moves when told to.
// Sleep advances the clock instead of blocking.
type ManualClock struct {
	now  time.Time
	lock sync.Mutex
}

// NewManualClock creates a ManualClock starting at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

// Now implements Clock.
func (c *ManualClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

// Sleep implements Clock.
func (c *ManualClock) Sleep(d time.Duration) {
	c.Advance(d)
}

// Advance moves the clock forward.
func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	if d > 0 {
		c.now = c.now.Add(d)
	}
	return c.now
}

// Set moves the clock to t. Moving backwards is ignored.
func (c *ManualClock) Set(t time.Time) {
	c.lock.Lock()
	if t.After(c.now) {
		c.now = t
	}
	c.lock.Unlock()
}

// Periodic fires at a fixed interval. It is checked once per loop
// iteration rather than driven by an interrupt.
type Periodic struct {
	Interval time.Duration

	last    time.Time
	started bool
}

// NewPeriodic creates a Periodic.
func NewPeriodic(interval time.Duration) *Periodic {
	return &Periodic{Interval: interval}
}

// Due reports whether the period elapsed and re-arms the timer.
// The first check is always due.
func (p *Periodic) Due(now time.Time) bool {
	if !p.started || now.Sub(p.last) >= p.Interval {
		p.started, p.last = true, now
		return true
	}
	return false
}

// Reset makes the next check due.
func (p *Periodic) Reset() {
	p.started = false
}
