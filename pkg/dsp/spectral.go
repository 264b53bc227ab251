package dsp

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/tremorsense/tremor-monitor/pkg/logging"
)

// Spectrum holds the magnitude spectrum of one completed sample window.
// It is recomputed fresh from every window and carries no state across
// analysis cycles.
type Spectrum struct {
	Magnitude      []float64 `json:"magnitude"`
	SampleRate     float64   `json:"sample_rate"`
	FreqResolution float64   `json:"freq_resolution"`
}

// Bins returns the number of usable frequency bins (N/2 for a real input).
func (s *Spectrum) Bins() int {
	return len(s.Magnitude)
}

// Frequency maps a bin index to its center frequency in Hz.
func (s *Spectrum) Frequency(bin int) float64 {
	return float64(bin) * s.FreqResolution
}

// BandPeak returns the maximum magnitude over bins whose frequency falls in
// [lo, hi] Hz. Bin 0 (DC) is always excluded. Replacement is strictly
// greater, so the first maximum wins on an exact tie. Returns 0 when no bin
// falls inside the band.
func (s *Spectrum) BandPeak(lo, hi float64) float64 {
	peak := 0.0
	for i := 1; i < len(s.Magnitude); i++ {
		freq := s.Frequency(i)
		if freq < lo || freq > hi {
			continue
		}
		if s.Magnitude[i] > peak {
			peak = s.Magnitude[i]
		}
	}
	return peak
}

// SpectralAnalyzer turns completed sample windows into magnitude spectra.
// A Hamming window is applied before the transform to reduce spectral
// leakage, since the signal is not periodic within the capture window.
type SpectralAnalyzer struct {
	windowSize int
	sampleRate float64
	hamming    []float64
	logger     logging.Logger
}

// NewSpectralAnalyzer creates an analyzer for windows of the given size at
// the given sampling rate.
func NewSpectralAnalyzer(windowSize int, sampleRate float64, logger logging.Logger) (*SpectralAnalyzer, error) {
	if windowSize <= 0 || !isPowerOfTwo(windowSize) {
		return nil, fmt.Errorf("window size must be a positive power of two, got %d", windowSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", sampleRate)
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &SpectralAnalyzer{
		windowSize: windowSize,
		sampleRate: sampleRate,
		hamming:    window.Hamming(windowSize),
		logger: logger.WithFields(logging.Fields{
			"component":   "spectral_analyzer",
			"window_size": windowSize,
			"sample_rate": sampleRate,
		}),
	}, nil
}

// Analyze applies the Hamming window to a copy of the input, computes the
// forward FFT of the windowed real sequence, and converts the complex result
// to per-bin magnitudes. Only the first N/2 bins are kept; by symmetry of a
// real-input transform the upper half is redundant. The input slice is never
// mutated, so re-analyzing an unchanged window yields an identical spectrum.
func (sa *SpectralAnalyzer) Analyze(samples []float64) (*Spectrum, error) {
	if len(samples) != sa.windowSize {
		return nil, fmt.Errorf("expected %d samples, got %d", sa.windowSize, len(samples))
	}

	windowed := make([]float64, len(samples))
	for i, s := range samples {
		windowed[i] = s * sa.hamming[i]
	}

	bins := fft.FFTReal(windowed)

	half := len(bins) / 2
	magnitude := make([]float64, half)
	for i := 0; i < half; i++ {
		magnitude[i] = cmplx.Abs(bins[i])
	}

	spectrum := &Spectrum{
		Magnitude:      magnitude,
		SampleRate:     sa.sampleRate,
		FreqResolution: sa.sampleRate / float64(sa.windowSize),
	}

	sa.logger.Debug("spectral analysis completed", logging.Fields{
		"freq_bins":       spectrum.Bins(),
		"freq_resolution": spectrum.FreqResolution,
	})

	return spectrum, nil
}

// WindowSize returns the expected input length.
func (sa *SpectralAnalyzer) WindowSize() int {
	return sa.windowSize
}

// SampleRate returns the configured sampling rate in Hz.
func (sa *SpectralAnalyzer) SampleRate() float64 {
	return sa.sampleRate
}
