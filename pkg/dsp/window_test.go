package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSampleWindowValidation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"valid 128", 128, false},
		{"valid 64", 64, false},
		{"zero", 0, true},
		{"negative", -8, true},
		{"not power of two", 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewSampleWindow(tt.size)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, w)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.size, w.Size())
			}
		})
	}
}

func TestPushCompletesOnlyOnNthSample(t *testing.T) {
	const size = 128

	w, err := NewSampleWindow(size)
	require.NoError(t, err)

	for i := 0; i < size-1; i++ {
		assert.False(t, w.Push(1.0), "push %d should not complete the window", i)
	}
	assert.True(t, w.Push(1.0), "final push should complete the window")
	assert.Equal(t, 0, w.Cursor(), "cursor should wrap to 0 on completion")
}

func TestPushClearsStaleContentsOnNewCycle(t *testing.T) {
	w, err := NewSampleWindow(8)
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		w.Push(5.0)
	}

	// First push of the next cycle must zero every slot before writing.
	w.Push(2.0)
	samples := w.Samples()
	assert.Equal(t, 2.0, samples[0])
	for i := 1; i < len(samples); i++ {
		assert.Zero(t, samples[i], "slot %d should be cleared", i)
	}
}

func TestMagnitude(t *testing.T) {
	assert.Equal(t, 0.0, Magnitude(0, 0, 0))
	assert.InDelta(t, 1.0, Magnitude(1, 0, 0), 1e-12)
	assert.InDelta(t, 3.0, Magnitude(1, 2, 2), 1e-12)
}
