package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Display settings
const (
	FPS = 30 // Display refresh rate driving the transport tick

	SeekStep = 1.0 // Seconds moved by the arrow keys

	// Snapshot raster size used when no size is given on the command line
	DefaultWidth  = 1280
	DefaultHeight = 360
)

// Waveform layout
const (
	GridColumns = 10 // Vertical grid lines at x = i*width/GridColumns
	GridRows    = 6  // Horizontal grid lines at y = i*height/GridRows

	// Amplitude scale is height/AmplitudeHeadroom, so a full-scale sample
	// reaches 80% of the half-height above or below the centre line
	AmplitudeHeadroom = 2.5

	// Selection borders are dashed: SelectionDashOn pixels drawn,
	// SelectionDashOff pixels skipped
	SelectionDashOn  = 2
	SelectionDashOff = 2
)

// Appearance - phosphor terminal palette
const (
	// Background #050A05
	BackgroundColorR = 0x05
	BackgroundColorG = 0x0A
	BackgroundColorB = 0x05

	// Trace #00FF41, also used for the dashed selection borders
	TraceColorR = 0x00
	TraceColorG = 0xFF
	TraceColorB = 0x41

	// Grid uses the trace colour at GridAlpha over the background
	GridAlpha = 0.15

	// Playhead is drawn in white
	PlayheadColorR = 0xFF
	PlayheadColorG = 0xFF
	PlayheadColorB = 0xFF

	// Selection fill rgb(0,50,0) at SelectionAlpha
	SelectionColorR = 0
	SelectionColorG = 50
	SelectionColorB = 0
	SelectionAlpha  = 0.5

	// Timecode label size in points for PNG snapshots
	LabelFontSize = 18.0
	LabelMargin   = 12
)

// Audio device settings
const (
	DeviceSampleRate = 44100                 // Output rate; buffers at other rates are resampled
	DeviceBuffer     = 20 * time.Millisecond // Period of the device pull, bounds clock granularity
	ResampleQuality  = 4                     // beep.Resample quality, 1 (fast) to 6 (best)
)

// Audio analysis settings
const (
	FFTSize         = 4096 // Power of two, required by gofft
	AnalysisWindows = 16   // Windows averaged for the spectrum estimate
)

// Export settings
const (
	ExportPrefix    = "FLUX_EXPORT_"
	ExportExtension = ".wav"
)

// RuntimeConfig holds optional overrides supplied on the command line.
// Nil fields fall back to the compile-time defaults above.
type RuntimeConfig struct {
	TraceColorR *uint8
	TraceColorG *uint8
	TraceColorB *uint8

	PlayheadColorR *uint8
	PlayheadColorG *uint8
	PlayheadColorB *uint8
}

// GetTraceColor returns the trace colour, using the overrides only when all
// three channels are set.
func (c *RuntimeConfig) GetTraceColor() (r, g, b uint8) {
	if c != nil && c.TraceColorR != nil && c.TraceColorG != nil && c.TraceColorB != nil {
		return *c.TraceColorR, *c.TraceColorG, *c.TraceColorB
	}
	return TraceColorR, TraceColorG, TraceColorB
}

// GetPlayheadColor returns the playhead colour, using the overrides only
// when all three channels are set.
func (c *RuntimeConfig) GetPlayheadColor() (r, g, b uint8) {
	if c != nil && c.PlayheadColorR != nil && c.PlayheadColorG != nil && c.PlayheadColorB != nil {
		return *c.PlayheadColorR, *c.PlayheadColorG, *c.PlayheadColorB
	}
	return PlayheadColorR, PlayheadColorG, PlayheadColorB
}

// SetTraceColor parses a hex colour and stores it as the trace override.
func (c *RuntimeConfig) SetTraceColor(hex string) error {
	r, g, b, err := ParseHexColor(hex)
	if err != nil {
		return fmt.Errorf("trace colour: %w", err)
	}
	c.TraceColorR, c.TraceColorG, c.TraceColorB = &r, &g, &b
	return nil
}

// SetPlayheadColor parses a hex colour and stores it as the playhead override.
func (c *RuntimeConfig) SetPlayheadColor(hex string) error {
	r, g, b, err := ParseHexColor(hex)
	if err != nil {
		return fmt.Errorf("playhead colour: %w", err)
	}
	c.PlayheadColorR, c.PlayheadColorG, c.PlayheadColorB = &r, &g, &b
	return nil
}

// ParseHexColor parses a colour in RRGGBB form with an optional leading '#'.
func ParseHexColor(s string) (r, g, b uint8, err error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q: want 6 hex digits", s)
	}

	// ParseUint rejects signs, spaces and any stray '#'
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}

	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}
