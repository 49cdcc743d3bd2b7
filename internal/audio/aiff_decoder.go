package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
)

// AIFFDecoder implements Decoder for AIFF files
type AIFFDecoder struct {
	decoder    *aiff.Decoder
	file       *os.File
	sampleRate int
	bitDepth   int
	numChans   int
	numFrames  int64
	intBuf     *goaudio.IntBuffer
}

// NewAIFFDecoder creates a new AIFF decoder
func NewAIFFDecoder(filename string) (*AIFFDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	decoder := aiff.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("invalid AIFF file")
	}
	decoder.ReadInfo()

	format := decoder.Format()
	if format == nil || format.NumChannels < 1 {
		f.Close()
		return nil, fmt.Errorf("%w: AIFF layout", ErrUnsupportedFormat)
	}

	return &AIFFDecoder{
		decoder:    decoder,
		file:       f,
		sampleRate: format.SampleRate,
		bitDepth:   int(decoder.BitDepth),
		numChans:   format.NumChannels,
		numFrames:  int64(decoder.NumSampleFrames),
	}, nil
}

// ReadChunk reads the next chunk of frames
func (d *AIFFDecoder) ReadChunk(numFrames int) ([][]float32, error) {
	bufSize := numFrames * d.numChans
	if d.intBuf == nil || cap(d.intBuf.Data) < bufSize {
		d.intBuf = &goaudio.IntBuffer{
			Data:           make([]int, bufSize),
			Format:         d.decoder.Format(),
			SourceBitDepth: d.bitDepth,
		}
	}
	d.intBuf.Data = d.intBuf.Data[:bufSize]

	n, err := d.decoder.PCMBuffer(d.intBuf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read AIFF data: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}

	// AIFF samples are signed at every bit depth
	maxVal := float32(goaudio.IntMaxSignedValue(d.bitDepth))
	frames := n / d.numChans
	out := make([][]float32, d.numChans)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < d.numChans; ch++ {
			out[ch][i] = float32(d.intBuf.Data[i*d.numChans+ch]) / maxVal
		}
	}
	return out, nil
}

// SampleRate returns the sample rate
func (d *AIFFDecoder) SampleRate() int {
	return d.sampleRate
}

// NumChannels returns the number of audio channels
func (d *AIFFDecoder) NumChannels() int {
	return d.numChans
}

// NumFrames returns the frame count from the COMM chunk
func (d *AIFFDecoder) NumFrames() int64 {
	return d.numFrames
}

// Close closes the decoder and releases resources
func (d *AIFFDecoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
