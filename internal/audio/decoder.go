package audio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrUnsupportedFormat is returned for file extensions with no decoder
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// ErrNoAudio is returned when a file decodes to zero sample frames
var ErrNoAudio = errors.New("no audio data in file")

// chunkFrames is the number of frames requested per ReadChunk while decoding
const chunkFrames = 8192

// Decoder defines the interface for all audio format decoders
type Decoder interface {
	// ReadChunk reads up to numFrames frames as planar float32 channels.
	// Returns io.EOF once the stream is exhausted.
	ReadChunk(numFrames int) ([][]float32, error)

	// SampleRate returns the audio sample rate in Hz
	SampleRate() int

	// NumChannels returns the number of audio channels (1=mono, 2=stereo)
	NumChannels() int

	// NumFrames returns the total number of frames, or 0 when unknown
	NumFrames() int64

	// Close closes the decoder and releases resources
	Close() error
}

// NewDecoder opens filename with the decoder matching its extension
func NewDecoder(filename string) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav", ".wave":
		return NewWAVDecoder(filename)
	case ".mp3":
		return NewMP3Decoder(filename)
	case ".flac":
		return NewFLACDecoder(filename)
	case ".ogg", ".oga":
		return NewVorbisDecoder(filename)
	case ".aif", ".aiff":
		return NewAIFFDecoder(filename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// DecodeFile fully decodes filename into a Buffer
func DecodeFile(filename string) (*Buffer, error) {
	dec, err := NewDecoder(filename)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	buf, err := Decode(dec)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(filename), err)
	}

	log.Debug("decoded audio",
		"file", filepath.Base(filename),
		"rate", buf.SampleRate(),
		"channels", buf.NumChannels(),
		"frames", buf.NumFrames())
	return buf, nil
}

// Decode drains a decoder into a Buffer
func Decode(dec Decoder) (*Buffer, error) {
	numChans := dec.NumChannels()
	if numChans < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidBuffer, numChans)
	}

	// Pre-size when the decoder knows its length
	channels := make([][]float32, numChans)
	if n := dec.NumFrames(); n > 0 {
		for ch := range channels {
			channels[ch] = make([]float32, 0, n)
		}
	}

	for {
		chunk, err := dec.ReadChunk(chunkFrames)
		for ch := 0; ch < numChans && ch < len(chunk); ch++ {
			channels[ch] = append(channels[ch], chunk[ch]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
	}

	if len(channels[0]) == 0 {
		return nil, ErrNoAudio
	}
	return NewBuffer(dec.SampleRate(), channels)
}

// deinterleave splits interleaved samples into planar channels
func deinterleave(interleaved []float32, numChans int) [][]float32 {
	frames := len(interleaved) / numChans
	out := make([][]float32, numChans)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChans; ch++ {
			out[ch][i] = interleaved[i*numChans+ch]
		}
	}
	return out
}
