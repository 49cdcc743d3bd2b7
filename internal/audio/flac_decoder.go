package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
)

// FLACDecoder implements Decoder for FLAC files
type FLACDecoder struct {
	stream      *flac.Stream
	file        *os.File
	sampleRate  int
	numFrames   int64
	numChannels int
	pending     [][]float32 // decoded samples not yet returned
	eof         bool
}

// NewFLACDecoder creates a new FLAC decoder
func NewFLACDecoder(filename string) (*FLACDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	// Parse FLAC stream - reads signature and StreamInfo block
	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create FLAC decoder: %w", err)
	}

	numChannels := int(stream.Info.NChannels)
	return &FLACDecoder{
		stream:      stream,
		file:        f,
		sampleRate:  int(stream.Info.SampleRate),
		numFrames:   int64(stream.Info.NSamples),
		numChannels: numChannels,
		pending:     make([][]float32, numChannels),
	}, nil
}

// ReadChunk reads the next chunk of frames
func (d *FLACDecoder) ReadChunk(numFrames int) ([][]float32, error) {
	// FLAC frames have their own block size; parse until enough are buffered
	for !d.eof && len(d.pending[0]) < numFrames {
		frame, err := d.stream.ParseNext()
		if err != nil {
			if err == io.EOF {
				d.eof = true
				break
			}
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		// Normalize to [-1.0, 1.0] based on bits per sample (4-32)
		maxVal := float32(int64(1) << (frame.BitsPerSample - 1))
		for ch := 0; ch < d.numChannels && ch < len(frame.Subframes); ch++ {
			for _, s := range frame.Subframes[ch].Samples {
				d.pending[ch] = append(d.pending[ch], float32(s)/maxVal)
			}
		}
	}

	available := len(d.pending[0])
	if available == 0 {
		return nil, io.EOF
	}
	if numFrames > available {
		numFrames = available
	}

	out := make([][]float32, d.numChannels)
	for ch := range out {
		out[ch] = append([]float32(nil), d.pending[ch][:numFrames]...)
		d.pending[ch] = d.pending[ch][numFrames:]
	}
	return out, nil
}

// SampleRate returns the sample rate
func (d *FLACDecoder) SampleRate() int {
	return d.sampleRate
}

// NumFrames returns the total number of frames from StreamInfo
func (d *FLACDecoder) NumFrames() int64 {
	return d.numFrames
}

// NumChannels returns the number of audio channels
func (d *FLACDecoder) NumChannels() int {
	return d.numChannels
}

// Close closes the decoder and releases resources
func (d *FLACDecoder) Close() error {
	if d.stream != nil {
		d.stream.Close()
	}
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
