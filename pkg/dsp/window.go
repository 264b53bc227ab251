package dsp

import (
	"fmt"
	"math"
)

// Magnitude returns the Euclidean norm of one triaxial acceleration reading.
func Magnitude(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}

// SampleWindow accumulates one fixed-length window of scalar motion-magnitude
// samples. It enforces no timing of its own; the sampling gate lives upstream
// in the monitor loop.
type SampleWindow struct {
	samples []float64
	cursor  int
}

// NewSampleWindow creates a window of the given capacity. The capacity must
// be a power of two so completed windows satisfy the transform precondition.
func NewSampleWindow(size int) (*SampleWindow, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}
	if !isPowerOfTwo(size) {
		return nil, fmt.Errorf("window size must be a power of two, got %d", size)
	}
	return &SampleWindow{samples: make([]float64, size)}, nil
}

// Push appends one sample at the current cursor and returns true exactly when
// the window becomes complete, at which point the cursor wraps to 0 for the
// next fill cycle. When the cursor is at 0 before a push, all slots are
// cleared first so a short-lived fill cycle never exposes a stale tail.
func (w *SampleWindow) Push(sample float64) bool {
	if w.cursor == 0 {
		for i := range w.samples {
			w.samples[i] = 0
		}
	}
	w.samples[w.cursor] = sample
	w.cursor++
	if w.cursor >= len(w.samples) {
		w.cursor = 0
		return true
	}
	return false
}

// Samples returns the underlying buffer. Valid for analysis only immediately
// after Push returned true; the next Push starts a new fill cycle.
func (w *SampleWindow) Samples() []float64 {
	return w.samples
}

// Cursor returns the current write position.
func (w *SampleWindow) Cursor() int {
	return w.cursor
}

// Size returns the window capacity.
func (w *SampleWindow) Size() int {
	return len(w.samples)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
