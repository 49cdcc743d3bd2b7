package audio

import (
	"fmt"
	"math"

	"github.com/argusdusty/gofft"
)

// ApplyHanning applies a Hanning window to the input data
func ApplyHanning(data []float64) []float64 {
	windowed := make([]float64, len(data))
	n := len(data)
	if n < 2 {
		copy(windowed, data)
		return windowed
	}
	for i := range data {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = data[i] * window
	}
	return windowed
}

// Spectrum returns the magnitudes of the positive-frequency bins of a
// Hanning-windowed FFT. len(samples) must be a power of two.
func Spectrum(samples []float64) ([]float64, error) {
	if n := len(samples); n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("fft size %d is not a power of two", len(samples))
	}

	coeffs := gofft.Float64ToComplex128Array(ApplyHanning(samples))
	if err := gofft.FFT(coeffs); err != nil {
		return nil, fmt.Errorf("fft: %w", err)
	}

	half := len(coeffs) / 2
	mags := make([]float64, half)
	for i := 0; i < half; i++ {
		re, im := real(coeffs[i]), imag(coeffs[i])
		mags[i] = math.Sqrt(re*re + im*im)
	}
	return mags, nil
}

// PeakBin returns the index of the strongest bin, ignoring DC.
// Returns 0 if every bin is silent.
func PeakBin(mags []float64) int {
	best, bestMag := 0, 0.0
	for i := 1; i < len(mags); i++ {
		if mags[i] > bestMag {
			best, bestMag = i, mags[i]
		}
	}
	return best
}

// BinFrequency converts a bin index to Hz for an FFT of fftSize points
func BinFrequency(bin, fftSize, sampleRate int) float64 {
	return float64(bin) * float64(sampleRate) / float64(fftSize)
}
