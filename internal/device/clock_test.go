package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeWall is a settable wall clock
type fakeWall struct {
	t time.Time
}

func (w *fakeWall) now() time.Time { return w.t }

func (w *fakeWall) add(d time.Duration) { w.t = w.t.Add(d) }

func newTestClock(rate int) (*frameClock, *fakeWall) {
	w := &fakeWall{t: time.Unix(1000, 0)}
	c := newFrameClock(rate)
	c.wall = w.now
	return c, w
}

func TestFrameClockStartsAtZero(t *testing.T) {
	c, _ := newTestClock(1000)
	assert.Equal(t, 0.0, c.Now())
}

func TestFrameClockInterpolatesWithinChunk(t *testing.T) {
	c, w := newTestClock(1000)

	c.advance(100) // 0.1s pulled, starts playing now
	assert.InDelta(t, 0.0, c.Now(), 1e-9)

	w.add(40 * time.Millisecond)
	assert.InDelta(t, 0.04, c.Now(), 1e-9)

	// Interpolation stops at the end of the pulled chunk
	w.add(time.Second)
	assert.InDelta(t, 0.1, c.Now(), 1e-9)
}

func TestFrameClockFollowsPulls(t *testing.T) {
	c, w := newTestClock(1000)

	for i := 0; i < 10; i++ {
		c.advance(50)
		w.add(50 * time.Millisecond)
	}
	assert.InDelta(t, 0.5, c.Now(), 1e-9)
}

func TestFrameClockNeverGoesBackwards(t *testing.T) {
	c, w := newTestClock(1000)

	c.advance(100)
	w.add(90 * time.Millisecond)
	first := c.Now()

	// A smaller pull arriving late would otherwise move the clock back
	c.advance(10)
	assert.GreaterOrEqual(t, c.Now(), first)
}

func TestFrameClockUsesPendingFrames(t *testing.T) {
	c, _ := newTestClock(1000)
	queued := 300
	c.pending = func() int { return queued }

	c.advance(500)
	assert.InDelta(t, 0.2, c.Now(), 1e-9)

	queued = 100
	assert.InDelta(t, 0.4, c.Now(), 1e-9)

	// Queue growing again does not rewind
	queued = 400
	assert.InDelta(t, 0.4, c.Now(), 1e-9)
}
