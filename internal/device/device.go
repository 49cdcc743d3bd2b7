// Package device owns the process-wide audio output. It exposes the output's
// hardware clock and starts voices for the transport.
package device

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/linuxmatters/flux/internal/audio"
	"github.com/linuxmatters/flux/internal/config"
	"github.com/linuxmatters/flux/internal/transport"
)

// Backend names an audio output implementation
type Backend string

const (
	// BackendSpeaker plays through beep's speaker package
	BackendSpeaker Backend = "speaker"
	// BackendOto writes a float32 mix directly to an oto player
	BackendOto Backend = "oto"
)

// ErrUnknownBackend is returned by Acquire for an unrecognised backend name
var ErrUnknownBackend = errors.New("unknown audio backend")

// Config selects and sizes the output
type Config struct {
	Backend    Backend
	SampleRate int
	Buffer     time.Duration
}

// DefaultConfig returns the speaker backend at the standard device rate
func DefaultConfig() Config {
	return Config{
		Backend:    BackendSpeaker,
		SampleRate: config.DeviceSampleRate,
		Buffer:     config.DeviceBuffer,
	}
}

type backend interface {
	now() float64
	start(buf *audio.Buffer, offset float64) (transport.Voice, error)
	close() error
}

// Device is an open audio output. It implements transport.Output.
type Device struct {
	cfg Config
	b   backend
}

var _ transport.Output = (*Device)(nil)

// Now returns the output clock in seconds
func (d *Device) Now() float64 {
	return d.b.now()
}

// Start begins playing buf from offset seconds
func (d *Device) Start(buf *audio.Buffer, offset float64) (transport.Voice, error) {
	if buf == nil {
		return nil, fmt.Errorf("start voice: %w", audio.ErrInvalidBuffer)
	}
	return d.b.start(buf, offset)
}

// Config returns the configuration the device runs at. With oto this is
// the process context's rate and buffer.
func (d *Device) Config() Config {
	return d.cfg
}

var (
	mu      sync.Mutex
	shared  *Device
	holders int
)

// Acquire returns the shared device, opening it on first use. Later calls
// reuse the open device and ignore cfg. Each Acquire needs a matching
// Release.
func Acquire(cfg Config) (*Device, error) {
	mu.Lock()
	defer mu.Unlock()

	if shared != nil {
		holders++
		return shared, nil
	}

	if cfg.SampleRate <= 0 {
		cfg.SampleRate = config.DeviceSampleRate
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = config.DeviceBuffer
	}

	var (
		b   backend
		err error
	)
	switch cfg.Backend {
	case BackendSpeaker, "":
		cfg.Backend = BackendSpeaker
		b, err = openSpeaker(cfg)
	case BackendOto:
		b, cfg, err = openOto(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	shared = &Device{cfg: cfg, b: b}
	holders = 1
	log.Info("audio device open", "backend", cfg.Backend, "rate", cfg.SampleRate)
	return shared, nil
}

// Release drops one hold on the shared device and closes it with the last
func Release() error {
	mu.Lock()
	defer mu.Unlock()

	if shared == nil {
		return nil
	}
	holders--
	if holders > 0 {
		return nil
	}

	err := shared.b.close()
	shared = nil
	holders = 0
	log.Debug("audio device closed")
	return err
}

// ParseBackend validates a backend name from the command line
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(name); b {
	case BackendSpeaker, BackendOto:
		return b, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}
