package audio

import (
	"errors"
	"fmt"
)

// ErrInvalidBuffer is returned when buffer construction input is inconsistent
var ErrInvalidBuffer = errors.New("invalid audio buffer")

// Buffer holds fully decoded audio as planar float32 channels.
//
// A Buffer is immutable once constructed: the transport, the renderer and the
// encoder all read it concurrently without locking. Samples are nominally in
// [-1, 1] but are stored untouched; consumers clip.
type Buffer struct {
	sampleRate int
	channels   [][]float32
}

// NewBuffer validates and wraps planar channel data. The slices are owned by
// the buffer after the call and must not be modified by the caller.
func NewBuffer(sampleRate int, channels [][]float32) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidBuffer, sampleRate)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidBuffer)
	}
	frames := len(channels[0])
	for i, ch := range channels[1:] {
		if len(ch) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d frames, channel 0 has %d",
				ErrInvalidBuffer, i+1, len(ch), frames)
		}
	}
	return &Buffer{sampleRate: sampleRate, channels: channels}, nil
}

// SampleRate returns the sample rate in Hz
func (b *Buffer) SampleRate() int {
	return b.sampleRate
}

// NumChannels returns the number of channels
func (b *Buffer) NumChannels() int {
	return len(b.channels)
}

// NumFrames returns the number of sample frames per channel
func (b *Buffer) NumFrames() int {
	return len(b.channels[0])
}

// Duration returns the buffer length in seconds
func (b *Buffer) Duration() float64 {
	return float64(b.NumFrames()) / float64(b.sampleRate)
}

// Channel returns the samples of channel i. The returned slice is shared and
// must be treated as read-only.
func (b *Buffer) Channel(i int) []float32 {
	return b.channels[i]
}
