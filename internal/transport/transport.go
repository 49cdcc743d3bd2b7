// Package transport owns playback state: the play/stop state machine, the
// hardware-clock anchored position and the selection range.
package transport

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/linuxmatters/flux/internal/audio"
)

var (
	// ErrNoClock is returned when a transport is built without an output clock
	ErrNoClock = errors.New("transport: no audio clock")

	// ErrNoScheduler is returned when a transport is built without a frame scheduler
	ErrNoScheduler = errors.New("transport: no frame scheduler")
)

// Clock reports the audio hardware's playback time in seconds. It must be
// monotonic.
type Clock interface {
	Now() float64
}

// Voice is one playing instance of a buffer
type Voice interface {
	// Stop silences the voice immediately. Calling it twice is harmless.
	Stop()
}

// Output is an audio device: a clock plus the ability to start voices
type Output interface {
	Clock

	// Start begins playing buf from offset seconds
	Start(buf *audio.Buffer, offset float64) (Voice, error)
}

// State is a published transport snapshot
type State struct {
	Playing        bool
	Position       float64
	SelectionStart float64
	SelectionEnd   float64
	Duration       float64
}

// Transport is the playback state machine. It is not safe for concurrent
// use; drive it from a single goroutine (the shell's update loop).
type Transport struct {
	out    Output
	frames FrameScheduler

	buf      *audio.Buffer
	duration float64

	playing  bool
	position float64
	anchor   float64 // clock time corresponding to position 0
	selStart float64
	selEnd   float64

	voice   Voice
	frame   FrameHandle
	pending bool

	listener func(State)
}

// New creates a transport bound to an output device and a frame scheduler
func New(out Output, frames FrameScheduler) (*Transport, error) {
	if out == nil {
		return nil, ErrNoClock
	}
	if frames == nil {
		return nil, ErrNoScheduler
	}
	return &Transport{out: out, frames: frames}, nil
}

// SetListener registers fn to receive every published state change
func (t *Transport) SetListener(fn func(State)) {
	t.listener = fn
}

// Load replaces the buffer, stops playback and resets position and
// selection. A nil buffer unloads.
func (t *Transport) Load(buf *audio.Buffer) {
	t.halt()

	t.buf = buf
	t.duration = 0
	if buf != nil {
		t.duration = buf.Duration()
	}
	t.position = 0
	t.selStart = 0
	t.selEnd = t.duration

	log.Debug("transport load", "duration", t.duration)
	t.publish()
}

// Play starts playback from the current position, or from zero when the
// position has reached the end. It is a no-op while playing or with nothing
// loaded.
func (t *Transport) Play() error {
	if t.buf == nil || t.playing || t.duration <= 0 {
		return nil
	}

	start := t.position
	if start >= t.duration {
		start = 0
	}

	// At most one voice at a time
	t.stopVoice()

	voice, err := t.out.Start(t.buf, start)
	if err != nil {
		return fmt.Errorf("start voice: %w", err)
	}

	t.voice = voice
	t.anchor = t.out.Now() - start
	t.position = start
	t.playing = true

	log.Debug("transport play", "from", start)
	t.publish()
	t.schedule()
	return nil
}

// Tick advances the position from the clock. The frame loop calls it once per
// display refresh while playing; it does nothing when stopped.
func (t *Transport) Tick() {
	t.cancelFrame()
	if !t.playing {
		return
	}

	pos := t.out.Now() - t.anchor

	// Position never moves backwards while playing
	if pos < t.position {
		pos = t.position
	}

	if pos >= t.duration {
		// Natural end of media: the next Play restarts from zero
		t.position = t.duration
		t.Stop()
		return
	}

	t.position = pos
	t.publish()
	t.schedule()
}

// Stop halts playback and keeps the position, so Play resumes from it
func (t *Transport) Stop() {
	if !t.playing {
		return
	}
	t.halt()
	log.Debug("transport stop", "at", t.position)
	t.publish()
}

// Seek moves the position to t seconds, clamped to the buffer. Seeking while
// playing stops playback; it never resumes on its own.
func (t *Transport) Seek(seconds float64) {
	if t.buf == nil {
		return
	}
	t.halt()
	t.position = t.clamp(seconds)
	t.publish()
}

// SetSelection sets the export range. Bounds are clamped to the buffer and
// ordered so start <= end.
func (t *Transport) SetSelection(start, end float64) {
	if t.buf == nil {
		return
	}
	start, end = t.clamp(start), t.clamp(end)
	if end < start {
		start, end = end, start
	}
	t.selStart, t.selEnd = start, end
	t.publish()
}

// Position returns the last published position in seconds
func (t *Transport) Position() float64 {
	return t.position
}

// Playing reports whether a voice is active
func (t *Transport) Playing() bool {
	return t.playing
}

// Buffer returns the loaded buffer, or nil
func (t *Transport) Buffer() *audio.Buffer {
	return t.buf
}

// State returns the current snapshot
func (t *Transport) State() State {
	return State{
		Playing:        t.playing,
		Position:       t.position,
		SelectionStart: t.selStart,
		SelectionEnd:   t.selEnd,
		Duration:       t.duration,
	}
}

// halt stops the voice and the tick without publishing
func (t *Transport) halt() {
	t.stopVoice()
	t.cancelFrame()
	t.playing = false
}

func (t *Transport) stopVoice() {
	if t.voice != nil {
		t.voice.Stop()
		t.voice = nil
	}
}

func (t *Transport) schedule() {
	t.cancelFrame()
	t.frame = t.frames.RequestFrame(t.Tick)
	t.pending = true
}

func (t *Transport) cancelFrame() {
	if t.pending {
		t.frames.CancelFrame(t.frame)
		t.pending = false
	}
}

func (t *Transport) clamp(seconds float64) float64 {
	if math.IsNaN(seconds) {
		return 0
	}
	return math.Max(0, math.Min(t.duration, seconds))
}

func (t *Transport) publish() {
	if t.listener != nil {
		t.listener(t.State())
	}
}
