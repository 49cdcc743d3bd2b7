package audio

import (
	"math"

	"github.com/linuxmatters/flux/internal/config"
)

// Profile holds whole-buffer level statistics shown alongside the waveform
type Profile struct {
	// Levels across all channels
	Peak           float64 // Highest absolute sample value
	RMS            float64 // Root mean square over every sample
	DynamicRange   float64 // Ratio of Peak to RMS, 0 for silence
	ClippedSamples int     // Samples at or beyond full scale

	// Spectral estimate of channel 0
	DominantFrequency float64 // Hz of the strongest bin, 0 when unknown

	// Buffer metadata
	SampleRate int
	Channels   int
	Duration   float64 // Seconds
}

// Analyze computes a Profile for buf. A nil buffer yields the zero Profile.
func Analyze(buf *Buffer) Profile {
	if buf == nil {
		return Profile{}
	}

	profile := Profile{
		SampleRate: buf.SampleRate(),
		Channels:   buf.NumChannels(),
		Duration:   buf.Duration(),
	}

	var sumSquares float64
	var count int
	for ch := 0; ch < buf.NumChannels(); ch++ {
		for _, s := range buf.Channel(ch) {
			v := math.Abs(float64(s))
			if v > profile.Peak {
				profile.Peak = v
			}
			if v >= 1.0 {
				profile.ClippedSamples++
			}
			sumSquares += float64(s) * float64(s)
			count++
		}
	}

	if count > 0 {
		profile.RMS = math.Sqrt(sumSquares / float64(count))
	}

	// Avoid division by zero
	if profile.RMS > 0 {
		profile.DynamicRange = profile.Peak / profile.RMS
	}

	profile.DominantFrequency = dominantFrequency(buf.Channel(0), buf.SampleRate())
	return profile
}

// dominantFrequency averages the spectra of evenly spaced windows and returns
// the frequency of the strongest bin
func dominantFrequency(samples []float32, sampleRate int) float64 {
	size := config.FFTSize
	if len(samples) < size {
		return 0
	}

	windows := config.AnalysisWindows
	span := len(samples) - size
	avg := make([]float64, size/2)
	chunk := make([]float64, size)

	for w := 0; w < windows; w++ {
		start := 0
		if windows > 1 {
			start = span * w / (windows - 1)
		}
		for i := range chunk {
			chunk[i] = float64(samples[start+i])
		}

		mags, err := Spectrum(chunk)
		if err != nil {
			return 0
		}
		for i, m := range mags {
			avg[i] += m
		}
	}

	bin := PeakBin(avg)
	if bin == 0 {
		return 0
	}
	return BinFrequency(bin, size, sampleRate)
}
