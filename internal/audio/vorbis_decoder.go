package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/jfreymuth/oggvorbis"
)

// VorbisDecoder implements Decoder for Ogg Vorbis files
type VorbisDecoder struct {
	reader      *oggvorbis.Reader
	file        *os.File
	sampleRate  int
	numChannels int
	buf         []float32
}

// NewVorbisDecoder creates a new Ogg Vorbis decoder
func NewVorbisDecoder(filename string) (*VorbisDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create Vorbis decoder: %w", err)
	}

	return &VorbisDecoder{
		reader:      reader,
		file:        f,
		sampleRate:  reader.SampleRate(),
		numChannels: reader.Channels(),
	}, nil
}

// ReadChunk reads the next chunk of frames
func (d *VorbisDecoder) ReadChunk(numFrames int) ([][]float32, error) {
	size := numFrames * d.numChannels
	if cap(d.buf) < size {
		d.buf = make([]float32, size)
	}
	buf := d.buf[:size]

	// Read returns a count of interleaved values, always a multiple of the
	// channel count
	n, err := d.reader.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read Vorbis data: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}
	return deinterleave(buf[:n], d.numChannels), nil
}

// SampleRate returns the sample rate
func (d *VorbisDecoder) SampleRate() int {
	return d.sampleRate
}

// NumChannels returns the number of audio channels
func (d *VorbisDecoder) NumChannels() int {
	return d.numChannels
}

// NumFrames returns the stream length in frames, or 0 if unknown
func (d *VorbisDecoder) NumFrames() int64 {
	if n := d.reader.Length(); n > 0 {
		return n
	}
	return 0
}

// Close closes the decoder and releases resources
func (d *VorbisDecoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
