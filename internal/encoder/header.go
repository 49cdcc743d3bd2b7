package encoder

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalidHeader is returned when bytes do not start with a canonical
// 16-bit PCM header
var ErrInvalidHeader = errors.New("invalid WAV header")

// Header describes the format fields of a canonical PCM WAV header
type Header struct {
	SampleRate    int
	NumChannels   int
	BitsPerSample int
	ByteRate      int
	BlockAlign    int
	DataSize      int
}

// NumFrames returns the number of sample frames in the data chunk
func (h Header) NumFrames() int {
	if h.BlockAlign == 0 {
		return 0
	}
	return h.DataSize / h.BlockAlign
}

// Duration returns the data chunk length in seconds
func (h Header) Duration() float64 {
	if h.SampleRate == 0 {
		return 0
	}
	return float64(h.NumFrames()) / float64(h.SampleRate)
}

// ParseHeader reads back the 44-byte header written by Encode
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrInvalidHeader, len(b))
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return Header{}, fmt.Errorf("%w: missing RIFF/WAVE tags", ErrInvalidHeader)
	}
	if string(b[12:16]) != "fmt " || string(b[36:40]) != "data" {
		return Header{}, fmt.Errorf("%w: unexpected chunk layout", ErrInvalidHeader)
	}
	if format := binary.LittleEndian.Uint16(b[20:22]); format != formatPCM {
		return Header{}, fmt.Errorf("%w: format tag %d", ErrInvalidHeader, format)
	}

	h := Header{
		NumChannels:   int(binary.LittleEndian.Uint16(b[22:24])),
		SampleRate:    int(binary.LittleEndian.Uint32(b[24:28])),
		ByteRate:      int(binary.LittleEndian.Uint32(b[28:32])),
		BlockAlign:    int(binary.LittleEndian.Uint16(b[32:34])),
		BitsPerSample: int(binary.LittleEndian.Uint16(b[34:36])),
		DataSize:      int(binary.LittleEndian.Uint32(b[40:44])),
	}

	riffSize := int(binary.LittleEndian.Uint32(b[4:8]))
	if riffSize != 36+h.DataSize {
		return Header{}, fmt.Errorf("%w: RIFF size %d does not match data size %d", ErrInvalidHeader, riffSize, h.DataSize)
	}
	return h, nil
}
