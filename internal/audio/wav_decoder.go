package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavFormatIEEEFloat is the fmt chunk tag for 32-bit float WAV files
const wavFormatIEEEFloat = 3

// WAVDecoder implements Decoder for integer PCM WAV files
type WAVDecoder struct {
	decoder    *wav.Decoder
	file       *os.File
	sampleRate int
	bitDepth   int
	numChans   int
	numFrames  int64
	intBuf     *audio.IntBuffer
}

// NewWAVDecoder creates a new WAV decoder
func NewWAVDecoder(filename string) (*WAVDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("invalid WAV file")
	}
	if decoder.WavAudioFormat == wavFormatIEEEFloat {
		f.Close()
		return nil, fmt.Errorf("%w: floating point WAV", ErrUnsupportedFormat)
	}

	// Get format info without reading all samples
	if err := decoder.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to seek to PCM data: %w", err)
	}

	d := &WAVDecoder{
		decoder:    decoder,
		file:       f,
		sampleRate: int(decoder.SampleRate),
		bitDepth:   int(decoder.BitDepth),
		numChans:   int(decoder.NumChans),
	}
	if bytesPerFrame := d.numChans * d.bitDepth / 8; bytesPerFrame > 0 {
		d.numFrames = int64(decoder.PCMSize / bytesPerFrame)
	}
	return d, nil
}

// ReadChunk reads the next chunk of frames
func (d *WAVDecoder) ReadChunk(numFrames int) ([][]float32, error) {
	// Interleaved read: numFrames × numChannels ints
	bufSize := numFrames * d.numChans
	if d.intBuf == nil || cap(d.intBuf.Data) < bufSize {
		d.intBuf = &audio.IntBuffer{
			Data: make([]int, bufSize),
			Format: &audio.Format{
				NumChannels: d.numChans,
				SampleRate:  d.sampleRate,
			},
			SourceBitDepth: d.bitDepth,
		}
	}
	d.intBuf.Data = d.intBuf.Data[:bufSize]

	n, err := d.decoder.PCMBuffer(d.intBuf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read PCM buffer: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}

	// 8-bit WAV is unsigned, go-audio returns it as 0..255
	maxVal := float32(audio.IntMaxSignedValue(d.bitDepth))
	offset := 0
	if d.bitDepth == 8 {
		maxVal, offset = 128, 128
	}

	frames := n / d.numChans
	out := make([][]float32, d.numChans)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < d.numChans; ch++ {
			out[ch][i] = float32(d.intBuf.Data[i*d.numChans+ch]-offset) / maxVal
		}
	}
	return out, nil
}

// SampleRate returns the sample rate
func (d *WAVDecoder) SampleRate() int {
	return d.sampleRate
}

// NumChannels returns the number of audio channels
func (d *WAVDecoder) NumChannels() int {
	return d.numChans
}

// NumFrames returns the frame count from the data chunk size
func (d *WAVDecoder) NumFrames() int64 {
	return d.numFrames
}

// Close closes the decoder and releases resources
func (d *WAVDecoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
