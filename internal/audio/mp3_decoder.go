package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// MP3Decoder implements Decoder for MP3 files
type MP3Decoder struct {
	decoder     *mp3.Decoder
	file        *os.File
	sampleRate  int
	numChannels int
	buf         []byte
}

// NewMP3Decoder creates a new MP3 decoder
func NewMP3Decoder(filename string) (*MP3Decoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}

	return &MP3Decoder{
		decoder:     decoder,
		file:        f,
		sampleRate:  decoder.SampleRate(),
		numChannels: 2, // go-mp3 always outputs stereo
	}, nil
}

// ReadChunk reads the next chunk of frames
func (d *MP3Decoder) ReadChunk(numFrames int) ([][]float32, error) {
	// go-mp3 outputs interleaved 16-bit stereo: 4 bytes per frame
	size := numFrames * 4
	if cap(d.buf) < size {
		d.buf = make([]byte, size)
	}
	buf := d.buf[:size]

	// Read may return short counts mid-stream; fill as far as possible
	n, err := io.ReadFull(d.decoder, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read MP3 data: %w", err)
	}
	if n < 4 {
		return nil, io.EOF
	}

	frames := n / 4
	left := make([]float32, frames)
	right := make([]float32, frames)
	for i := 0; i < frames; i++ {
		l := int16(buf[i*4]) | int16(buf[i*4+1])<<8
		r := int16(buf[i*4+2]) | int16(buf[i*4+3])<<8
		left[i] = float32(l) / 32768.0
		right[i] = float32(r) / 32768.0
	}
	return [][]float32{left, right}, nil
}

// SampleRate returns the sample rate
func (d *MP3Decoder) SampleRate() int {
	return d.sampleRate
}

// NumChannels returns the number of audio channels
func (d *MP3Decoder) NumChannels() int {
	return d.numChannels
}

// NumFrames returns the decoded length, or 0 if the stream length is unknown
func (d *MP3Decoder) NumFrames() int64 {
	if n := d.decoder.Length(); n > 0 {
		return n / 4
	}
	return 0
}

// Close closes the decoder and releases resources
func (d *MP3Decoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
