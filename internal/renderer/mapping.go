package renderer

import (
	"fmt"
	"math"
)

// TimeToX maps a time in seconds to a horizontal pixel offset
func TimeToX(t float64, width int, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return t / duration * float64(width)
}

// XToTime maps a horizontal pixel offset back to seconds, clamped to
// [0, duration]
func XToTime(x float64, width int, duration float64) float64 {
	if width <= 0 || duration <= 0 {
		return 0
	}
	t := x / float64(width) * duration
	return math.Max(0, math.Min(duration, t))
}

// FormatTimecode renders seconds as m:ss.cc
func FormatTimecode(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	mins := int(seconds / 60)
	secs := int(math.Mod(seconds, 60))
	centis := int(math.Mod(seconds, 1) * 100)
	return fmt.Sprintf("%d:%02d.%02d", mins, secs, centis)
}

// columnAt converts a pixel offset to a drawable column index, or -1 when it
// falls outside [0, width]. The right edge maps onto the last column.
func columnAt(x float64, width int) int {
	if math.IsNaN(x) || x < 0 || x > float64(width) {
		return -1
	}
	col := int(x)
	if col >= width {
		col = width - 1
	}
	return col
}
