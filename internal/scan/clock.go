package scan

import "time"

// PausableClock is the monotonic, pause-aware clock described by
// spec.md §6.3: NowMs never decreases between two calls not separated
// by a Pause, and reads taken while paused return the value frozen at
// pause onset.
type PausableClock struct {
	accumulated  time.Duration
	segmentStart time.Time
	paused       bool
	pausedAt     time.Duration
}

// NewPausableClock starts a clock reading zero at now.
func NewPausableClock(now time.Time) *PausableClock {
	return &PausableClock{segmentStart: now}
}

// NowMs returns the clock's current reading, in milliseconds, as of
// the wall-clock time now.
func (c *PausableClock) NowMs(now time.Time) int64 {
	return c.elapsed(now).Milliseconds()
}

func (c *PausableClock) elapsed(now time.Time) time.Duration {
	if c.paused {
		return c.pausedAt
	}
	return c.accumulated + now.Sub(c.segmentStart)
}

// Pause freezes the clock's reading as of now. Pausing an
// already-paused clock has no effect.
func (c *PausableClock) Pause(now time.Time) {
	if c.paused {
		return
	}
	c.pausedAt = c.elapsed(now)
	c.accumulated = c.pausedAt
	c.paused = true
}

// Resume unfreezes the clock, continuing from the reading recorded at
// Pause. Resuming a clock that isn't paused has no effect.
func (c *PausableClock) Resume(now time.Time) {
	if !c.paused {
		return
	}
	c.paused = false
	c.segmentStart = now
}
