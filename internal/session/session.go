// Package session ties one loaded buffer to its transport, renderer and
// encoder. It is the surface the shell drives.
package session

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/linuxmatters/flux/internal/audio"
	"github.com/linuxmatters/flux/internal/config"
	"github.com/linuxmatters/flux/internal/encoder"
	"github.com/linuxmatters/flux/internal/renderer"
	"github.com/linuxmatters/flux/internal/transport"
)

// ErrPlaybackUnavailable is returned by Play when no audio device is attached
var ErrPlaybackUnavailable = errors.New("playback unavailable")

// Session is not safe for concurrent use; the shell drives it from its
// update loop. Export reads only the immutable buffer and may run elsewhere.
type Session struct {
	tr       *transport.Transport
	playable bool

	frame   *renderer.Frame
	profile audio.Profile
}

// New creates an empty session. A nil out leaves playback unavailable; the
// session still seeks, selects, renders and exports.
func New(out transport.Output, frames transport.FrameScheduler, palette renderer.Palette) (*Session, error) {
	playable := out != nil
	if out == nil {
		out = silentOutput{}
	}

	tr, err := transport.New(out, frames)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	return &Session{
		tr:       tr,
		playable: playable,
		frame:    renderer.NewFrame(0, 0, palette),
	}, nil
}

// SetListener forwards every published transport state to fn
func (s *Session) SetListener(fn func(transport.State)) {
	s.tr.SetListener(fn)
}

// LoadBuffer replaces the buffer and resets playback. A nil buffer unloads.
func (s *Session) LoadBuffer(buf *audio.Buffer) {
	s.tr.Load(buf)
	s.frame.Peaks().Reset()
	s.profile = audio.Analyze(buf)

	if buf != nil {
		log.Info("buffer loaded",
			"duration", renderer.FormatTimecode(buf.Duration()),
			"rate", buf.SampleRate(),
			"channels", buf.NumChannels(),
			"peak", fmt.Sprintf("%.3f", s.profile.Peak))
	}
}

// Buffer returns the loaded buffer, or nil
func (s *Session) Buffer() *audio.Buffer {
	return s.tr.Buffer()
}

// Play starts playback from the current position
func (s *Session) Play() error {
	if !s.playable {
		if s.tr.Buffer() == nil {
			return nil
		}
		return ErrPlaybackUnavailable
	}
	return s.tr.Play()
}

// Stop halts playback, keeping the position
func (s *Session) Stop() {
	s.tr.Stop()
}

// Toggle plays when stopped and stops when playing
func (s *Session) Toggle() error {
	if s.tr.Playing() {
		s.tr.Stop()
		return nil
	}
	return s.Play()
}

// Seek moves the playhead to t seconds and stops playback
func (s *Session) Seek(t float64) {
	s.tr.Seek(t)
}

// SeekToX seeks to the time under column x of a viewport width pixels wide
func (s *Session) SeekToX(x float64, width int) {
	st := s.tr.State()
	s.tr.Seek(renderer.XToTime(x, width, st.Duration))
}

// Position returns the playhead in seconds
func (s *Session) Position() float64 {
	return s.tr.Position()
}

// SetSelection sets the export range
func (s *Session) SetSelection(start, end float64) {
	s.tr.SetSelection(start, end)
}

// MarkSelectionStart moves the selection start to the playhead
func (s *Session) MarkSelectionStart() {
	st := s.tr.State()
	s.tr.SetSelection(st.Position, st.SelectionEnd)
}

// MarkSelectionEnd moves the selection end to the playhead
func (s *Session) MarkSelectionEnd() {
	st := s.tr.State()
	s.tr.SetSelection(st.SelectionStart, st.Position)
}

// SelectAll selects the whole buffer
func (s *Session) SelectAll() {
	st := s.tr.State()
	s.tr.SetSelection(0, st.Duration)
}

// State returns the current transport snapshot
func (s *Session) State() transport.State {
	return s.tr.State()
}

// RenderFrame draws the current state into a width × height raster. The
// image is reused by the next call.
func (s *Session) RenderFrame(width, height int) *image.RGBA {
	if w, h := s.frame.Size(); w != width || h != height {
		s.frame.Resize(width, height)
	}
	return s.frame.Draw(s.tr.Buffer(), RendererState(s.tr.State()))
}

// ExportRange encodes [start, end) seconds of the buffer as a WAV file
func (s *Session) ExportRange(start, end float64) ([]byte, error) {
	return exportRange(s.tr.Buffer(), start, end)
}

// ExportSelection encodes the current selection. With nothing loaded it
// returns nil and no error.
func (s *Session) ExportSelection() ([]byte, error) {
	export := s.SelectionExport()
	if export == nil {
		return nil, nil
	}
	return export()
}

// SelectionExport captures the buffer and selection now and returns a
// function that encodes them later. The function may run on any goroutine.
// It is nil when nothing is loaded.
func (s *Session) SelectionExport() func() ([]byte, error) {
	buf := s.tr.Buffer()
	if buf == nil {
		return nil
	}
	st := s.tr.State()
	return func() ([]byte, error) {
		return exportRange(buf, st.SelectionStart, st.SelectionEnd)
	}
}

func exportRange(buf *audio.Buffer, start, end float64) ([]byte, error) {
	data, err := encoder.Encode(buf, start, end)
	if err != nil {
		return nil, err
	}
	log.Debug("exported range", "start", start, "end", end, "bytes", len(data))
	return data, nil
}

// Profile returns the loudness and spectrum summary of the loaded buffer
func (s *Session) Profile() audio.Profile {
	return s.profile
}

// PlaybackAvailable reports whether an audio device is attached
func (s *Session) PlaybackAvailable() bool {
	return s.playable
}

// Close unloads the buffer, stopping any voice, and releases the raster
func (s *Session) Close() {
	s.tr.Load(nil)
	s.frame.Release()
}

// RendererState converts a transport snapshot into the renderer's overlay state
func RendererState(st transport.State) renderer.State {
	return renderer.State{
		Position:       st.Position,
		SelectionStart: st.SelectionStart,
		SelectionEnd:   st.SelectionEnd,
		Duration:       st.Duration,
	}
}

// ExportFileName names an export written at t
func ExportFileName(t time.Time) string {
	return config.ExportPrefix + strconv.FormatInt(t.UnixMilli(), 10) + config.ExportExtension
}

// silentOutput stands in for a missing device. Its clock never moves and
// it refuses to start voices.
type silentOutput struct{}

func (silentOutput) Now() float64 { return 0 }

func (silentOutput) Start(*audio.Buffer, float64) (transport.Voice, error) {
	return nil, ErrPlaybackUnavailable
}
