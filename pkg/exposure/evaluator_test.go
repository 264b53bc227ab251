package exposure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tremorsense/tremor-monitor/pkg/logging"
)

func testConfig() Config {
	return Config{
		SampleInterval:   2 * time.Second,
		EvaluationPeriod: 18 * time.Second,
		DangerIntensity:  60.0,
		DangerRatio:      0.6,
	}
}

func newTestEvaluator(t *testing.T, cfg Config) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	return e
}

// drive feeds ticks spaced exactly one sample interval apart. With an 18s
// period and a 2s interval, the period boundary is reached exactly at the
// tenth tick.
func drive(e *Evaluator, start time.Time, intensities []float64, alarmEnabled bool) *Verdict {
	var verdict *Verdict
	for i, intensity := range intensities {
		now := start.Add(time.Duration(i) * 2 * time.Second)
		if v := e.Observe(now, intensity, alarmEnabled); v != nil {
			verdict = v
		}
	}
	return verdict
}

func intensities(dangerous int) []float64 {
	values := make([]float64, 10)
	for i := range values {
		if i < dangerous {
			values[i] = 70.0
		} else {
			values[i] = 10.0
		}
	}
	return values
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.SampleInterval = 0 }},
		{"zero period", func(c *Config) { c.EvaluationPeriod = 0 }},
		{"period shorter than interval", func(c *Config) { c.EvaluationPeriod = time.Second }},
		{"negative intensity", func(c *Config) { c.DangerIntensity = -1 }},
		{"zero ratio", func(c *Config) { c.DangerRatio = 0 }},
		{"ratio above one", func(c *Config) { c.DangerRatio = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			_, err := NewEvaluator(cfg, logging.NewNopLogger())
			assert.Error(t, err)
		})
	}
}

func TestAlarmFiresAboveRatioThreshold(t *testing.T) {
	e := newTestEvaluator(t, testConfig())
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	verdict := drive(e, start, intensities(6), true)
	require.NotNil(t, verdict)
	assert.InDelta(t, 0.6, verdict.Ratio, 1e-12)
	assert.Equal(t, uint64(10), verdict.Samples)
	assert.Equal(t, uint64(6), verdict.Dangerous)
	assert.True(t, verdict.Exceeded)
	assert.True(t, verdict.Alarm)
	assert.Equal(t, start, verdict.PeriodStart)
	assert.Equal(t, start.Add(18*time.Second), verdict.PeriodEnd)
}

func TestDisabledAlarmStaysSilent(t *testing.T) {
	e := newTestEvaluator(t, testConfig())
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	verdict := drive(e, start, intensities(6), false)
	require.NotNil(t, verdict)
	assert.True(t, verdict.Exceeded, "the ratio threshold was still crossed")
	assert.False(t, verdict.Alarm, "a muted alarm must not fire")
}

func TestRatioBelowThresholdNeverAlarms(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		e := newTestEvaluator(t, testConfig())
		start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

		verdict := drive(e, start, intensities(5), enabled)
		require.NotNil(t, verdict)
		assert.InDelta(t, 0.5, verdict.Ratio, 1e-12)
		assert.False(t, verdict.Exceeded)
		assert.False(t, verdict.Alarm)
	}
}

func TestBoundaryIntensityCountsAsDangerous(t *testing.T) {
	e := newTestEvaluator(t, testConfig())
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Exactly at the danger threshold classifies as dangerous.
	e.Observe(start, 60.0, true)
	snap := e.Snapshot()
	assert.Equal(t, uint64(1), snap.Dangerous)

	e.Observe(start.Add(2*time.Second), 59.999, true)
	snap = e.Snapshot()
	assert.Equal(t, uint64(2), snap.Samples)
	assert.Equal(t, uint64(1), snap.Dangerous)
}

func TestCountersResetAfterEveryBoundary(t *testing.T) {
	e := newTestEvaluator(t, testConfig())
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	verdict := drive(e, start, intensities(5), true)
	require.NotNil(t, verdict)

	snap := e.Snapshot()
	assert.Zero(t, snap.Samples)
	assert.Zero(t, snap.Dangerous)
	assert.Zero(t, snap.Ratio)
	assert.Equal(t, verdict.PeriodEnd, snap.PeriodStart, "the next period starts at the boundary")
}

func TestTickGateIgnoresEarlyObservations(t *testing.T) {
	e := newTestEvaluator(t, testConfig())
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	e.Observe(start, 70.0, true)
	// Half a second later: inside the sample interval, must not count.
	assert.Nil(t, e.Observe(start.Add(500*time.Millisecond), 70.0, true))

	snap := e.Snapshot()
	assert.Equal(t, uint64(1), snap.Samples)
	assert.Equal(t, uint64(1), snap.Dangerous)
}

func TestEmptyPeriodIsDiscardedNotEvaluated(t *testing.T) {
	e := newTestEvaluator(t, testConfig())
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.Reset(start)

	// The device sat paused for far longer than a full period. The first
	// observation afterwards must open a fresh period, not evaluate an
	// empty one.
	resume := start.Add(time.Minute)
	assert.Nil(t, e.Observe(resume, 70.0, true))

	snap := e.Snapshot()
	assert.Equal(t, uint64(1), snap.Samples)
	assert.Equal(t, resume, snap.PeriodStart)
}

func TestConsecutivePeriodsAreIndependent(t *testing.T) {
	e := newTestEvaluator(t, testConfig())
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first := drive(e, start, intensities(10), true)
	require.NotNil(t, first)
	assert.True(t, first.Alarm)

	// A fully calm second period must not inherit anything from the first.
	second := drive(e, first.PeriodEnd.Add(2*time.Second), intensities(0), true)
	require.NotNil(t, second)
	assert.Zero(t, second.Dangerous)
	assert.False(t, second.Exceeded)
	assert.False(t, second.Alarm)
	assert.NotEqual(t, first.ID, second.ID)
}
