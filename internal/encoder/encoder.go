package encoder

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/linuxmatters/flux/internal/audio"
)

// ErrInvalidRange is returned when an export range selects no frames
var ErrInvalidRange = errors.New("invalid export range")

const (
	// HeaderSize is the size of the canonical RIFF/WAVE header
	HeaderSize = 44

	bitsPerSample  = 16
	bytesPerSample = bitsPerSample / 8
	formatPCM      = 1
	fmtChunkSize   = 16
)

// FrameRange converts a time range in seconds to a half-open frame range
// [startFrame, endFrame). Both ends are clamped to the buffer before the
// integer conversion.
func FrameRange(buf *audio.Buffer, start, end float64) (startFrame, endFrame int) {
	rate := float64(buf.SampleRate())
	total := float64(buf.NumFrames())
	startFrame = int(clampFrames(math.Floor(start*rate), total))
	endFrame = int(clampFrames(math.Floor(end*rate), total))
	return startFrame, endFrame
}

// clampFrames bounds a frame position to [0, total]. NaN maps to 0.
func clampFrames(f, total float64) float64 {
	if !(f > 0) {
		return 0
	}
	return math.Min(f, total)
}

// Encode renders [start, end) seconds of buf as a 16-bit PCM WAV file.
// The result is exactly HeaderSize + frames*channels*2 bytes.
func Encode(buf *audio.Buffer, start, end float64) ([]byte, error) {
	if buf == nil || !(end > start) || math.IsInf(start, 0) || math.IsInf(end, 0) {
		return nil, ErrInvalidRange
	}

	startFrame, endFrame := FrameRange(buf, start, end)
	frameCount := endFrame - startFrame
	if frameCount <= 0 {
		return nil, ErrInvalidRange
	}

	numChans := buf.NumChannels()
	dataSize := frameCount * numChans * bytesPerSample
	out := make([]byte, HeaderSize+dataSize)

	putHeader(out[:HeaderSize], buf.SampleRate(), numChans, dataSize)

	// Interleave channels frame by frame
	pos := HeaderSize
	for i := startFrame; i < endFrame; i++ {
		for ch := 0; ch < numChans; ch++ {
			binary.LittleEndian.PutUint16(out[pos:], uint16(SampleToInt16(buf.Channel(ch)[i])))
			pos += bytesPerSample
		}
	}

	return out, nil
}

// SampleToInt16 converts a float sample to 16-bit PCM. Values are clipped to
// [-1, 1]; negatives scale by 32768 and the rest by 32767 so both rails are
// reachable. NaN encodes as silence.
func SampleToInt16(v float32) int16 {
	s := float64(v)
	switch {
	case math.IsNaN(s):
		return 0
	case s > 1:
		s = 1
	case s < -1:
		s = -1
	}

	if s < 0 {
		return int16(s * 32768)
	}
	return int16(s * 32767)
}

// putHeader writes the 44-byte canonical header into dst
func putHeader(dst []byte, sampleRate, numChans, dataSize int) {
	byteRate := sampleRate * numChans * bytesPerSample
	blockAlign := numChans * bytesPerSample

	// RIFF header (12 bytes)
	copy(dst[0:4], "RIFF")
	binary.LittleEndian.PutUint32(dst[4:8], uint32(36+dataSize))
	copy(dst[8:12], "WAVE")

	// fmt chunk (24 bytes)
	copy(dst[12:16], "fmt ")
	binary.LittleEndian.PutUint32(dst[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(dst[20:22], formatPCM)
	binary.LittleEndian.PutUint16(dst[22:24], uint16(numChans))
	binary.LittleEndian.PutUint32(dst[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(dst[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(dst[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(dst[34:36], bitsPerSample)

	// data chunk header (8 bytes)
	copy(dst[36:40], "data")
	binary.LittleEndian.PutUint32(dst[40:44], uint32(dataSize))
}
