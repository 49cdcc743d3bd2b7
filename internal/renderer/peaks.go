package renderer

import (
	"sync"

	"github.com/linuxmatters/flux/internal/audio"
)

// Column is the min/max summary of the samples that fall under one pixel
// column. N is the number of samples scanned; columns with N == 0 are empty.
type Column struct {
	Min float32
	Max float32
	N   int
}

// ComputePeaks compresses samples into width columns of min/max pairs.
//
// Each column scans ceil(len(samples)/width) consecutive samples starting at
// i*step. Min starts at 1 and Max at -1, so a column of in-range samples
// always reports the true extremes.
func ComputePeaks(samples []float32, width int) []Column {
	if width <= 0 {
		return nil
	}

	cols := make([]Column, width)
	n := len(samples)
	step := (n + width - 1) / width

	for i := range cols {
		lo := min(i*step, n)
		hi := min(lo+step, n)

		c := Column{Min: 1, Max: -1, N: hi - lo}
		for _, s := range samples[lo:hi] {
			if s < c.Min {
				c.Min = s
			}
			if s > c.Max {
				c.Max = s
			}
		}
		cols[i] = c
	}

	return cols
}

// PeakCache memoises the column summary of the most recent buffer and width,
// so steady-state frames cost O(width) instead of O(samples).
type PeakCache struct {
	mu    sync.Mutex
	buf   *audio.Buffer
	width int
	cols  []Column

	// Computes counts cache misses
	Computes int
}

// Get returns the columns for channel 0 of buf at width, recomputing only when
// the buffer or the width changed.
func (c *PeakCache) Get(buf *audio.Buffer, width int) []Column {
	if buf == nil || width <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.buf == buf && c.width == width {
		return c.cols
	}

	c.cols = ComputePeaks(buf.Channel(0), width)
	c.buf = buf
	c.width = width
	c.Computes++
	return c.cols
}

// Reset drops the cached summary
func (c *PeakCache) Reset() {
	c.mu.Lock()
	c.buf, c.width, c.cols = nil, 0, nil
	c.mu.Unlock()
}
