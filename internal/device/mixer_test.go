package device

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/flux/internal/audio"
)

func ramp(n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(i) / float32(n)
	}
	return s
}

func testBuffer(t *testing.T, rate int, channels ...[]float32) *audio.Buffer {
	t.Helper()
	buf, err := audio.NewBuffer(rate, channels)
	require.NoError(t, err)
	return buf
}

// decodeFrames reads stereo float32 frames written by the oto mixer
func decodeFrames(p []byte) [][2]float32 {
	out := make([][2]float32, len(p)/otoFrameBytes)
	for i := range out {
		off := i * otoFrameBytes
		out[i][0] = math.Float32frombits(binary.LittleEndian.Uint32(p[off:]))
		out[i][1] = math.Float32frombits(binary.LittleEndian.Uint32(p[off+4:]))
	}
	return out
}

func TestBufferStreamerMonoDuplicates(t *testing.T) {
	s := newBufferStreamer(testBuffer(t, 100, []float32{0.1, 0.2, 0.3}))

	samples := make([][2]float64, 8)
	n, ok := s.Stream(samples)
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, samples[i][0], samples[i][1])
	}
	assert.InDelta(t, 0.2, samples[1][0], 1e-6)

	n, ok = s.Stream(samples)
	assert.False(t, ok)
	assert.Zero(t, n)
}

func TestBufferStreamerStereoAndSeek(t *testing.T) {
	s := newBufferStreamer(testBuffer(t, 100, []float32{1, 2, 3, 4}, []float32{-1, -2, -3, -4}))
	var _ beep.StreamSeeker = s

	require.NoError(t, s.Seek(2))
	assert.Equal(t, 2, s.Position())
	assert.Equal(t, 4, s.Len())

	samples := make([][2]float64, 2)
	n, _ := s.Stream(samples)
	assert.Equal(t, 2, n)
	assert.Equal(t, [2]float64{3, -3}, samples[0])
	assert.Equal(t, [2]float64{4, -4}, samples[1])

	assert.Error(t, s.Seek(-1))
	assert.Error(t, s.Seek(5))
	assert.NoError(t, s.Err())
}

func TestClockStreamerPadsAndCounts(t *testing.T) {
	c, _ := newTestClock(100)
	mixer := &beep.Mixer{}
	mixer.Add(newBufferStreamer(testBuffer(t, 100, []float32{0.5, 0.5})))
	cs := &clockStreamer{mixer: mixer, clock: c}

	samples := make([][2]float64, 10)
	for i := range samples {
		samples[i] = [2]float64{9, 9}
	}
	n, ok := cs.Stream(samples)
	assert.True(t, ok)
	assert.Equal(t, 10, n)
	assert.InDelta(t, 0.5, samples[0][0], 1e-9)
	assert.Equal(t, [2]float64{}, samples[9])

	assert.Equal(t, int64(10), c.frames)
}

func TestOtoMixerPlaysFromOffset(t *testing.T) {
	c, _ := newTestClock(100)
	m := newOtoMixer(100, c)
	m.add(testBuffer(t, 100, ramp(100)), 0.5)

	p := make([]byte, 4*otoFrameBytes)
	n, err := m.Read(p)
	require.NoError(t, err)
	assert.Equal(t, len(p), n)

	frames := decodeFrames(p)
	assert.InDelta(t, 0.50, frames[0][0], 1e-6)
	assert.InDelta(t, 0.53, frames[3][1], 1e-6)
	assert.Equal(t, int64(4), c.frames)
}

func TestOtoMixerStopSilences(t *testing.T) {
	c, _ := newTestClock(100)
	m := newOtoMixer(100, c)
	v := m.add(testBuffer(t, 100, ramp(100)), 0.5)
	v.Stop()
	v.Stop()

	p := make([]byte, 2*otoFrameBytes)
	_, err := m.Read(p)
	require.NoError(t, err)
	assert.Equal(t, [][2]float32{{0, 0}, {0, 0}}, decodeFrames(p))
	assert.Empty(t, m.voices)
}

func TestOtoMixerDropsFinishedVoices(t *testing.T) {
	c, _ := newTestClock(100)
	m := newOtoMixer(100, c)
	m.add(testBuffer(t, 100, []float32{0.25, 0.25}), 0)

	p := make([]byte, 4*otoFrameBytes)
	_, err := m.Read(p)
	require.NoError(t, err)

	frames := decodeFrames(p)
	assert.InDelta(t, 0.25, frames[1][0], 1e-6)
	assert.Equal(t, [2]float32{0, 0}, frames[2])
	assert.Empty(t, m.voices)
}

func TestOtoMixerResamples(t *testing.T) {
	c, _ := newTestClock(200)
	m := newOtoMixer(200, c)
	m.add(testBuffer(t, 100, []float32{0, 1, 1}), 0)

	p := make([]byte, 3*otoFrameBytes)
	_, err := m.Read(p)
	require.NoError(t, err)

	// Half-speed read interpolates between source frames
	frames := decodeFrames(p)
	assert.InDelta(t, 0.0, frames[0][0], 1e-6)
	assert.InDelta(t, 0.5, frames[1][0], 1e-6)
	assert.InDelta(t, 1.0, frames[2][0], 1e-6)
}

func TestAcquireUnknownBackend(t *testing.T) {
	_, err := Acquire(Config{Backend: "alsa"})
	assert.True(t, errors.Is(err, ErrUnknownBackend))
	assert.NoError(t, Release())
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("oto")
	require.NoError(t, err)
	assert.Equal(t, BackendOto, b)

	b, err = ParseBackend("speaker")
	require.NoError(t, err)
	assert.Equal(t, BackendSpeaker, b)

	_, err = ParseBackend("jack")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, BackendSpeaker, cfg.Backend)
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Positive(t, cfg.Buffer)
}

func TestOtoContextKeepsFirstSettings(t *testing.T) {
	origNew := newOtoContext
	t.Cleanup(func() {
		newOtoContext = origNew
		otoOnce, otoCtx, otoCfg, otoErr = sync.Once{}, nil, Config{}, nil
	})
	otoOnce, otoCtx, otoCfg, otoErr = sync.Once{}, nil, Config{}, nil

	var opened []oto.NewContextOptions
	newOtoContext = func(opts *oto.NewContextOptions) (*oto.Context, chan struct{}, error) {
		opened = append(opened, *opts)
		ready := make(chan struct{})
		close(ready)
		return nil, ready, nil
	}

	first := Config{Backend: BackendOto, SampleRate: 48000, Buffer: 100 * time.Millisecond}
	_, got, err := otoContext(first)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := Config{Backend: BackendOto, SampleRate: 22050, Buffer: 20 * time.Millisecond}
	_, got, err = otoContext(second)
	require.NoError(t, err)
	assert.Equal(t, 48000, got.SampleRate)
	assert.Equal(t, 100*time.Millisecond, got.Buffer)

	require.Len(t, opened, 1)
	assert.Equal(t, 48000, opened[0].SampleRate)
}

func TestOtoContextReportsCreateError(t *testing.T) {
	origNew := newOtoContext
	t.Cleanup(func() {
		newOtoContext = origNew
		otoOnce, otoCtx, otoCfg, otoErr = sync.Once{}, nil, Config{}, nil
	})
	otoOnce, otoCtx, otoCfg, otoErr = sync.Once{}, nil, Config{}, nil

	boom := errors.New("no audio server")
	newOtoContext = func(*oto.NewContextOptions) (*oto.Context, chan struct{}, error) {
		return nil, nil, boom
	}

	_, _, err := otoContext(DefaultConfig())
	assert.ErrorIs(t, err, boom)
}
