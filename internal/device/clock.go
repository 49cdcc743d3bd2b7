package device

import (
	"sync"
	"time"
)

// frameClock derives playback time from the number of frames the audio
// device has pulled. Between pulls it interpolates with the wall clock, never
// further than the length of the last pull, so it cannot drift from the
// hardware.
type frameClock struct {
	mu     sync.Mutex
	rate   float64
	frames int64     // frames handed to the device
	stamp  time.Time // wall time of the last pull
	chunk  float64   // seconds covered by the last pull
	last   float64   // last reported time

	// pending reports frames handed over but not yet audible. When set, the
	// clock uses it instead of wall-clock interpolation.
	pending func() int

	wall func() time.Time
}

func newFrameClock(rate int) *frameClock {
	return &frameClock{rate: float64(rate), wall: time.Now}
}

// advance records a device pull of n frames. Called on the audio goroutine.
func (c *frameClock) advance(n int) {
	now := c.wall()
	c.mu.Lock()
	c.frames += int64(n)
	c.stamp = now
	c.chunk = float64(n) / c.rate
	c.mu.Unlock()
}

// Now returns the playback time in seconds. It never decreases.
func (c *frameClock) Now() float64 {
	// Query the player outside our lock; it may hold its own lock while
	// pulling from the mixer
	queued := 0
	if c.pending != nil {
		queued = c.pending()
	}
	now := c.wall()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stamp.IsZero() {
		return c.last
	}

	var t float64
	if c.pending != nil {
		t = float64(c.frames-int64(queued)) / c.rate
	} else {
		// The last pull started playing at stamp
		t = float64(c.frames)/c.rate - c.chunk
		elapsed := now.Sub(c.stamp).Seconds()
		t += max(0, min(elapsed, c.chunk))
	}

	if t < c.last {
		t = c.last
	}
	c.last = t
	return t
}
