package device

import (
	"fmt"

	"github.com/gopxl/beep/v2"

	"github.com/linuxmatters/flux/internal/audio"
)

// bufferStreamer implements beep.StreamSeeker over a decoded buffer. Mono is
// duplicated to both sides; channels beyond the second are not played.
type bufferStreamer struct {
	left  []float32
	right []float32
	pos   int
}

func newBufferStreamer(buf *audio.Buffer) *bufferStreamer {
	s := &bufferStreamer{left: buf.Channel(0), right: buf.Channel(0)}
	if buf.NumChannels() > 1 {
		s.right = buf.Channel(1)
	}
	return s
}

// Stream fills samples with stereo frames
func (s *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.left) {
		return 0, false
	}

	n = min(len(samples), len(s.left)-s.pos)
	for i := 0; i < n; i++ {
		samples[i][0] = float64(s.left[s.pos+i])
		samples[i][1] = float64(s.right[s.pos+i])
	}
	s.pos += n
	return n, true
}

// Err returns nil; a decoded buffer cannot fail mid-stream
func (s *bufferStreamer) Err() error {
	return nil
}

// Len returns the total number of frames
func (s *bufferStreamer) Len() int {
	return len(s.left)
}

// Position returns the current frame position
func (s *bufferStreamer) Position() int {
	return s.pos
}

// Seek moves to frame p
func (s *bufferStreamer) Seek(p int) error {
	if p < 0 || p > len(s.left) {
		return fmt.Errorf("seek position %d out of range [0, %d]", p, len(s.left))
	}
	s.pos = p
	return nil
}

// clockStreamer feeds the speaker from a mixer and counts the frames pulled.
// It always produces a full buffer, padding with silence, so the speaker
// clock keeps running when nothing is playing.
type clockStreamer struct {
	mixer *beep.Mixer
	clock *frameClock
}

func (s *clockStreamer) Stream(samples [][2]float64) (int, bool) {
	n, _ := s.mixer.Stream(samples)
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	s.clock.advance(len(samples))
	return len(samples), true
}

func (s *clockStreamer) Err() error {
	return nil
}
