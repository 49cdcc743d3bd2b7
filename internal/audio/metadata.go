package audio

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Metadata holds information about an audio file
type Metadata struct {
	Format     string // Lower-case extension without the dot
	SampleRate int
	Channels   int
	NumFrames  int64   // 0 when the container does not record it
	Duration   float64 // in seconds, 0 when NumFrames is unknown
}

// Probe reads only the stream header of filename. It is cheap compared with
// DecodeFile and is used to describe an input before decoding it.
func Probe(filename string) (*Metadata, error) {
	dec, err := NewDecoder(filename)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	sampleRate := dec.SampleRate()
	if sampleRate <= 0 {
		return nil, fmt.Errorf("probe %s: %w", filepath.Base(filename), ErrInvalidBuffer)
	}

	meta := &Metadata{
		Format:     strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."),
		SampleRate: sampleRate,
		Channels:   dec.NumChannels(),
		NumFrames:  dec.NumFrames(),
	}
	meta.Duration = float64(meta.NumFrames) / float64(sampleRate)
	return meta, nil
}
