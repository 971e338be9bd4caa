package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPausableClockAccumulatesWhileRunning(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewPausableClock(t0)
	assert.Equal(t, int64(0), c.NowMs(t0))
	assert.Equal(t, int64(5000), c.NowMs(t0.Add(5*time.Second)))
}

func TestPausableClockFreezesWhilePaused(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewPausableClock(t0)

	c.Pause(t0.Add(5 * time.Second))
	assert.Equal(t, int64(5000), c.NowMs(t0.Add(5*time.Second)))
	// Reads while paused stay frozen no matter how much wall time passes.
	assert.Equal(t, int64(5000), c.NowMs(t0.Add(30*time.Second)))
}

func TestPausableClockExcludesPausedDuration(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewPausableClock(t0)

	c.Pause(t0.Add(5 * time.Second))
	c.Resume(t0.Add(20 * time.Second))
	assert.Equal(t, int64(10000), c.NowMs(t0.Add(25*time.Second)))
}

func TestPausableClockPauseResumeAreIdempotent(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewPausableClock(t0)

	c.Resume(t0.Add(time.Second)) // resuming an unpaused clock is a no-op
	assert.Equal(t, int64(1000), c.NowMs(t0.Add(time.Second)))

	c.Pause(t0.Add(2 * time.Second))
	c.Pause(t0.Add(10 * time.Second)) // second pause call is a no-op
	assert.Equal(t, int64(2000), c.NowMs(t0.Add(99*time.Second)))
}
