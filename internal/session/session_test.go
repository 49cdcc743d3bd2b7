package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/flux/internal/audio"
	"github.com/linuxmatters/flux/internal/config"
	"github.com/linuxmatters/flux/internal/encoder"
	"github.com/linuxmatters/flux/internal/renderer"
	"github.com/linuxmatters/flux/internal/transport"
)

type fakeOutput struct {
	now    float64
	active int
}

func (o *fakeOutput) Now() float64 { return o.now }

func (o *fakeOutput) Start(*audio.Buffer, float64) (transport.Voice, error) {
	o.active++
	return &fakeVoice{out: o}, nil
}

type fakeVoice struct {
	out  *fakeOutput
	done bool
}

func (v *fakeVoice) Stop() {
	if !v.done {
		v.done = true
		v.out.active--
	}
}

func sine(rate int, seconds float64) *audio.Buffer {
	n := int(float64(rate) * seconds)
	s := make([]float32, n)
	for i := range s {
		// Square-ish wave so peak is exact
		if (i/10)%2 == 0 {
			s[i] = 0.5
		} else {
			s[i] = -0.5
		}
	}
	buf, err := audio.NewBuffer(rate, [][]float32{s})
	if err != nil {
		panic(err)
	}
	return buf
}

func newSession(t *testing.T, out transport.Output) (*Session, *transport.FrameLoop) {
	t.Helper()
	loop := transport.NewFrameLoop()
	s, err := New(out, loop, renderer.NewPalette(nil))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, loop
}

func TestEmptySessionIsInert(t *testing.T) {
	s, _ := newSession(t, &fakeOutput{})

	require.NoError(t, s.Play())
	s.Stop()
	s.Seek(2)
	s.SeekToX(50, 100)
	s.SetSelection(1, 2)
	s.MarkSelectionStart()
	s.MarkSelectionEnd()
	s.SelectAll()

	assert.Equal(t, transport.State{}, s.State())

	data, err := s.ExportSelection()
	assert.NoError(t, err)
	assert.Nil(t, data)

	_, err = s.ExportRange(0, 1)
	assert.ErrorIs(t, err, encoder.ErrInvalidRange)

	img := s.RenderFrame(20, 10)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, audio.Profile{}, s.Profile())
}

func TestLoadBufferAnalyses(t *testing.T) {
	s, _ := newSession(t, &fakeOutput{})
	s.LoadBuffer(sine(8000, 2))

	p := s.Profile()
	assert.InDelta(t, 0.5, p.Peak, 1e-6)
	assert.Equal(t, 8000, p.SampleRate)
	assert.Equal(t, 2.0, s.State().Duration)
	assert.Equal(t, 2.0, s.State().SelectionEnd)
}

func TestPlayFollowsClock(t *testing.T) {
	out := &fakeOutput{now: 5}
	s, loop := newSession(t, out)
	s.LoadBuffer(sine(1000, 2))

	require.NoError(t, s.Toggle())
	assert.True(t, s.State().Playing)

	out.now += 0.5
	loop.Flush()
	assert.InDelta(t, 0.5, s.Position(), 1e-9)

	require.NoError(t, s.Toggle())
	assert.False(t, s.State().Playing)
	assert.Equal(t, 0, out.active)
}

func TestSeekToX(t *testing.T) {
	s, _ := newSession(t, &fakeOutput{})
	s.LoadBuffer(sine(1000, 4))

	s.SeekToX(25, 100)
	assert.InDelta(t, 1.0, s.Position(), 1e-9)

	s.SeekToX(-10, 100)
	assert.Equal(t, 0.0, s.Position())

	s.SeekToX(500, 100)
	assert.Equal(t, 4.0, s.Position())
}

func TestSelectionMarks(t *testing.T) {
	s, _ := newSession(t, &fakeOutput{})
	s.LoadBuffer(sine(1000, 4))

	s.Seek(1)
	s.MarkSelectionStart()
	s.Seek(3)
	s.MarkSelectionEnd()

	st := s.State()
	assert.Equal(t, 1.0, st.SelectionStart)
	assert.Equal(t, 3.0, st.SelectionEnd)

	// Marking the end before the start swaps them
	s.Seek(0.5)
	s.MarkSelectionEnd()
	st = s.State()
	assert.Equal(t, 0.5, st.SelectionStart)
	assert.Equal(t, 1.0, st.SelectionEnd)

	s.SelectAll()
	st = s.State()
	assert.Equal(t, 0.0, st.SelectionStart)
	assert.Equal(t, 4.0, st.SelectionEnd)
}

func TestExportSelection(t *testing.T) {
	s, _ := newSession(t, &fakeOutput{})
	s.LoadBuffer(sine(44100, 2))
	s.SetSelection(0.5, 1.5)

	data, err := s.ExportSelection()
	require.NoError(t, err)
	assert.Len(t, data, 88244)

	h, err := encoder.ParseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, 44100, h.NumFrames())
}

func TestSelectionExportCapturesState(t *testing.T) {
	s, _ := newSession(t, &fakeOutput{})
	assert.Nil(t, s.SelectionExport())

	s.LoadBuffer(sine(44100, 2))
	s.SetSelection(0.5, 1.5)
	export := s.SelectionExport()
	require.NotNil(t, export)

	// Later edits do not change what was captured
	s.SetSelection(0, 0.25)
	s.LoadBuffer(nil)

	data, err := export()
	require.NoError(t, err)
	assert.Len(t, data, 88244)
}

func TestExportEmptySelectionFails(t *testing.T) {
	s, _ := newSession(t, &fakeOutput{})
	s.LoadBuffer(sine(1000, 1))
	s.SetSelection(0.5, 0.5)

	data, err := s.ExportSelection()
	assert.ErrorIs(t, err, encoder.ErrInvalidRange)
	assert.Nil(t, data)
}

func TestPlaybackUnavailable(t *testing.T) {
	s, _ := newSession(t, nil)
	assert.False(t, s.PlaybackAvailable())

	// Nothing loaded: still a silent no-op
	assert.NoError(t, s.Play())

	s.LoadBuffer(sine(1000, 2))
	assert.ErrorIs(t, s.Play(), ErrPlaybackUnavailable)
	assert.False(t, s.State().Playing)

	// Viewing, seeking and export keep working
	s.Seek(1)
	assert.Equal(t, 1.0, s.Position())
	data, err := s.ExportSelection()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderFrameDrawsPlayhead(t *testing.T) {
	s, _ := newSession(t, &fakeOutput{})
	s.LoadBuffer(sine(1000, 1))
	s.SetSelection(0, 0.2) // keep the fill off the playhead column
	s.Seek(0.5)

	img := s.RenderFrame(100, 40)
	px := img.RGBAAt(50, 1)
	assert.Equal(t, uint8(config.PlayheadColorR), px.R)
	assert.Equal(t, uint8(config.PlayheadColorG), px.G)

	// Resizing reuses the session's frame at the new size
	img = s.RenderFrame(60, 20)
	assert.Equal(t, 60, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
}

func TestLoadBufferStopsPlayback(t *testing.T) {
	out := &fakeOutput{}
	s, loop := newSession(t, out)
	s.LoadBuffer(sine(1000, 2))
	require.NoError(t, s.Play())

	s.LoadBuffer(nil)
	assert.Equal(t, 0, out.active)
	assert.Equal(t, 0, loop.Pending())
	assert.Nil(t, s.Buffer())
}

func TestListenerReceivesStates(t *testing.T) {
	s, _ := newSession(t, &fakeOutput{})
	var got []transport.State
	s.SetListener(func(st transport.State) { got = append(got, st) })

	s.LoadBuffer(sine(1000, 2))
	s.Seek(1)
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[1].Position)
}

func TestExportFileName(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	assert.Equal(t, "FLUX_EXPORT_1700000000123.wav", ExportFileName(ts))
}

func TestRendererState(t *testing.T) {
	st := transport.State{Playing: true, Position: 1, SelectionStart: 0.5, SelectionEnd: 2, Duration: 3}
	assert.Equal(t, renderer.State{Position: 1, SelectionStart: 0.5, SelectionEnd: 2, Duration: 3}, RendererState(st))
}
