package device

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/linuxmatters/flux/internal/audio"
	"github.com/linuxmatters/flux/internal/transport"
)

const (
	otoChannels   = 2
	otoFrameBytes = otoChannels * 4 // float32 LE
)

// oto allows one context per process, so it outlives Release and is
// suspended instead of closed. otoCfg holds the rate and buffer it was
// created with.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoCfg  Config
	otoErr  error

	newOtoContext = oto.NewContext
)

// otoContext returns the process context and the config it actually runs
// at. Only the first call's rate and buffer take effect.
func otoContext(cfg Config) (*oto.Context, Config, error) {
	otoOnce.Do(func() {
		otoCfg = cfg
		ctx, ready, err := newOtoContext(&oto.NewContextOptions{
			SampleRate:   cfg.SampleRate,
			ChannelCount: otoChannels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   cfg.Buffer,
		})
		if err != nil {
			otoErr = fmt.Errorf("failed to create audio context: %w", err)
			return
		}
		<-ready
		otoCtx = ctx
	})
	if otoErr != nil {
		return nil, cfg, otoErr
	}

	if cfg.SampleRate != otoCfg.SampleRate || cfg.Buffer != otoCfg.Buffer {
		log.Warn("oto context already open, keeping its settings",
			"rate", otoCfg.SampleRate, "requested", cfg.SampleRate)
	}
	cfg.SampleRate = otoCfg.SampleRate
	cfg.Buffer = otoCfg.Buffer
	return otoCtx, cfg, nil
}

// otoBackend writes a float32 mix straight to an oto player
type otoBackend struct {
	ctx    *oto.Context
	player *oto.Player
	mixer  *otoMixer
	clock  *frameClock
}

// openOto starts a player on the process context. The returned config
// carries the rate and buffer the context really uses.
func openOto(cfg Config) (*otoBackend, Config, error) {
	ctx, cfg, err := otoContext(cfg)
	if err != nil {
		return nil, cfg, err
	}
	if err := ctx.Resume(); err != nil {
		return nil, cfg, fmt.Errorf("failed to resume audio context: %w", err)
	}

	clock := newFrameClock(cfg.SampleRate)
	mixer := newOtoMixer(cfg.SampleRate, clock)
	player := ctx.NewPlayer(mixer)

	// Bytes queued in the player have not been heard yet
	clock.pending = func() int {
		return player.BufferedSize() / otoFrameBytes
	}
	player.Play()

	log.Debug("oto ready", "rate", cfg.SampleRate, "buffer", cfg.Buffer)
	return &otoBackend{ctx: ctx, player: player, mixer: mixer, clock: clock}, cfg, nil
}

func (b *otoBackend) now() float64 {
	return b.clock.Now()
}

func (b *otoBackend) start(buf *audio.Buffer, offset float64) (transport.Voice, error) {
	return b.mixer.add(buf, offset), nil
}

func (b *otoBackend) close() error {
	b.mixer.clear()
	if err := b.player.Close(); err != nil {
		return fmt.Errorf("failed to close player: %w", err)
	}
	if err := b.ctx.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend audio context: %w", err)
	}
	return nil
}

// otoMixer is the io.Reader behind the oto player. It sums the live voices,
// resampling each to the device rate, and never reports EOF.
type otoMixer struct {
	mu     sync.Mutex
	rate   float64
	voices []*otoVoice
	clock  *frameClock
}

func newOtoMixer(rate int, clock *frameClock) *otoMixer {
	return &otoMixer{rate: float64(rate), clock: clock}
}

func (m *otoMixer) add(buf *audio.Buffer, offset float64) *otoVoice {
	v := &otoVoice{
		mixer: m,
		left:  buf.Channel(0),
		right: buf.Channel(0),
		step:  float64(buf.SampleRate()) / m.rate,
		pos:   math.Max(0, math.Floor(offset*float64(buf.SampleRate()))),
	}
	if buf.NumChannels() > 1 {
		v.right = buf.Channel(1)
	}

	m.mu.Lock()
	m.voices = append(m.voices, v)
	m.mu.Unlock()
	return v
}

func (m *otoMixer) clear() {
	m.mu.Lock()
	m.voices = nil
	m.mu.Unlock()
}

func (m *otoMixer) Read(p []byte) (int, error) {
	frames := len(p) / otoFrameBytes
	if frames == 0 {
		return 0, nil
	}

	m.mu.Lock()
	live := m.voices[:0]
	for i := 0; i < frames; i++ {
		var l, r float32
		for _, v := range m.voices {
			vl, vr := v.next()
			l += vl
			r += vr
		}
		off := i * otoFrameBytes
		binary.LittleEndian.PutUint32(p[off:], math.Float32bits(l))
		binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(r))
	}
	for _, v := range m.voices {
		if !v.done() {
			live = append(live, v)
		}
	}
	for i := len(live); i < len(m.voices); i++ {
		m.voices[i] = nil
	}
	m.voices = live
	m.mu.Unlock()

	m.clock.advance(frames)
	return frames * otoFrameBytes, nil
}

// otoVoice reads a buffer at a fractional position. Fields other than
// stopped are owned by the mixer's read loop.
type otoVoice struct {
	mixer   *otoMixer
	left    []float32
	right   []float32
	step    float64
	pos     float64
	stopped bool
}

func (v *otoVoice) next() (float32, float32) {
	if v.done() {
		return 0, 0
	}
	i := int(v.pos)
	frac := float32(v.pos - float64(i))
	l, r := v.left[i], v.right[i]
	if i+1 < len(v.left) {
		l += (v.left[i+1] - l) * frac
		r += (v.right[i+1] - r) * frac
	}
	v.pos += v.step
	return l, r
}

func (v *otoVoice) done() bool {
	return v.stopped || int(v.pos) >= len(v.left)
}

// Stop silences the voice from the next mixed frame
func (v *otoVoice) Stop() {
	v.mixer.mu.Lock()
	v.stopped = true
	v.mixer.mu.Unlock()
}
