package device

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/linuxmatters/flux/internal/audio"
	"github.com/linuxmatters/flux/internal/config"
	"github.com/linuxmatters/flux/internal/transport"
)

// speakerBackend plays through beep's speaker. Voices are beep.Ctrl
// streamers added to a single mixer; the speaker lock guards the mixer.
type speakerBackend struct {
	rate  beep.SampleRate
	mixer *beep.Mixer
	clock *frameClock
}

func openSpeaker(cfg Config) (*speakerBackend, error) {
	sr := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(cfg.Buffer)); err != nil {
		return nil, fmt.Errorf("failed to initialise speaker: %w", err)
	}

	b := &speakerBackend{
		rate:  sr,
		mixer: &beep.Mixer{},
		clock: newFrameClock(cfg.SampleRate),
	}
	speaker.Play(&clockStreamer{mixer: b.mixer, clock: b.clock})

	log.Debug("speaker ready", "rate", cfg.SampleRate, "buffer", cfg.Buffer)
	return b, nil
}

func (b *speakerBackend) now() float64 {
	return b.clock.Now()
}

func (b *speakerBackend) start(buf *audio.Buffer, offset float64) (transport.Voice, error) {
	src := newBufferStreamer(buf)
	frame := int(math.Floor(offset * float64(buf.SampleRate())))
	if err := src.Seek(min(max(frame, 0), src.Len())); err != nil {
		return nil, err
	}

	var s beep.Streamer = src
	if from := beep.SampleRate(buf.SampleRate()); from != b.rate {
		s = beep.Resample(config.ResampleQuality, from, b.rate, src)
	}

	ctrl := &beep.Ctrl{Streamer: s}
	speaker.Lock()
	b.mixer.Add(ctrl)
	speaker.Unlock()

	return &speakerVoice{ctrl: ctrl}, nil
}

func (b *speakerBackend) close() error {
	speaker.Clear()
	speaker.Close()
	return nil
}

// speakerVoice stops by detaching its streamer; the mixer then drops it
type speakerVoice struct {
	ctrl *beep.Ctrl
}

func (v *speakerVoice) Stop() {
	speaker.Lock()
	v.ctrl.Streamer = nil
	speaker.Unlock()
}
