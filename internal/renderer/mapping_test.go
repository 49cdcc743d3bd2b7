package renderer

import (
	"math"
	"testing"
)

func TestTimeToX(t *testing.T) {
	tests := []struct {
		time, duration float64
		width          int
		want           float64
	}{
		{time: 0, duration: 10, width: 800, want: 0},
		{time: 5, duration: 10, width: 800, want: 400},
		{time: 10, duration: 10, width: 800, want: 800},
		{time: 3, duration: 0, width: 800, want: 0},
	}
	for _, tt := range tests {
		if got := TimeToX(tt.time, tt.width, tt.duration); got != tt.want {
			t.Errorf("TimeToX(%v, %d, %v) = %v, want %v", tt.time, tt.width, tt.duration, got, tt.want)
		}
	}
}

func TestXToTime(t *testing.T) {
	tests := []struct {
		name     string
		x        float64
		width    int
		duration float64
		want     float64
	}{
		{name: "left edge", x: 0, width: 800, duration: 10, want: 0},
		{name: "middle", x: 400, width: 800, duration: 10, want: 5},
		{name: "right edge", x: 800, width: 800, duration: 10, want: 10},
		{name: "past right clamps", x: 900, width: 800, duration: 10, want: 10},
		{name: "negative clamps", x: -5, width: 800, duration: 10, want: 0},
		{name: "zero width", x: 10, width: 0, duration: 10, want: 0},
		{name: "zero duration", x: 10, width: 800, duration: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := XToTime(tt.x, tt.width, tt.duration); got != tt.want {
				t.Errorf("XToTime = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeXRoundTrip(t *testing.T) {
	const width, duration = 1280, 183.5
	for _, tm := range []float64{0, 0.001, 42.42, 91.75, 183.5} {
		got := XToTime(TimeToX(tm, width, duration), width, duration)
		if math.Abs(got-tm) > 1e-9 {
			t.Errorf("round trip of %v = %v", tm, got)
		}
	}
}

func TestFormatTimecode(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "0:00.00"},
		{in: 1.5, want: "0:01.50"},
		{in: 59.99, want: "0:59.99"},
		{in: 61.25, want: "1:01.25"},
		{in: 600, want: "10:00.00"},
		{in: -3, want: "0:00.00"},
	}
	for _, tt := range tests {
		if got := FormatTimecode(tt.in); got != tt.want {
			t.Errorf("FormatTimecode(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColumnAt(t *testing.T) {
	if got := columnAt(100, 100); got != 99 {
		t.Errorf("columnAt(right edge) = %d, want 99", got)
	}
	if got := columnAt(-0.5, 100); got != -1 {
		t.Errorf("columnAt(negative) = %d, want -1", got)
	}
	if got := columnAt(42.9, 100); got != 42 {
		t.Errorf("columnAt(42.9) = %d, want 42", got)
	}
}
