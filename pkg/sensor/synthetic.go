package sensor

import (
	"fmt"
	"math"
	"math/rand"
)

// Synthetic generates a deterministic oscillation standing in for the
// accelerometer. Each Read advances one sample step, so the waveform is a
// function of the call count rather than the wall clock: driving it at the
// configured sampling rate reproduces a tone at the configured frequency.
//
// The oscillation rides the gravity axis. The pipeline analyzes the vector
// magnitude, and only motion along the dominant static component survives in
// it at the driving frequency; a tone perpendicular to gravity would fold
// into the magnitude at twice the frequency instead.
type Synthetic struct {
	frequency  float64
	amplitude  float64
	gravity    float64
	noise      float64
	sampleRate float64
	rng        *rand.Rand
	step       uint64
}

// SyntheticOption configures a Synthetic source.
type SyntheticOption func(*Synthetic)

// WithGravity sets the constant bias applied to the z axis. The default of
// 9.81 mimics a device resting flat.
func WithGravity(gravity float64) SyntheticOption {
	return func(s *Synthetic) { s.gravity = gravity }
}

// WithNoise adds uniform noise of the given magnitude to every axis, seeded
// for reproducible runs.
func WithNoise(magnitude float64, seed int64) SyntheticOption {
	return func(s *Synthetic) {
		s.noise = magnitude
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// NewSynthetic creates a source oscillating on the z axis at the given
// frequency and amplitude when sampled at sampleRate.
func NewSynthetic(frequency, amplitude, sampleRate float64, opts ...SyntheticOption) (*Synthetic, error) {
	if frequency < 0 {
		return nil, fmt.Errorf("frequency must not be negative, got %g", frequency)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", sampleRate)
	}
	s := &Synthetic{
		frequency:  frequency,
		amplitude:  amplitude,
		gravity:    9.81,
		sampleRate: sampleRate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Read returns the next sample of the synthetic waveform.
func (s *Synthetic) Read() (float64, float64, float64, error) {
	t := float64(s.step) / s.sampleRate
	s.step++

	x := 0.0
	y := 0.0
	z := s.gravity + s.amplitude*math.Sin(2*math.Pi*s.frequency*t)

	if s.rng != nil && s.noise > 0 {
		x += s.jitter()
		y += s.jitter()
		z += s.jitter()
	}
	return x, y, z, nil
}

func (s *Synthetic) jitter() float64 {
	return (s.rng.Float64()*2 - 1) * s.noise
}
