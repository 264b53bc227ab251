package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tremorsense/tremor-monitor/pkg/exposure"
	"github.com/tremorsense/tremor-monitor/pkg/feedback"
	"github.com/tremorsense/tremor-monitor/pkg/logging"
	"github.com/tremorsense/tremor-monitor/pkg/sensor"
)

// countingSource wraps a Source and counts reads.
type countingSource struct {
	inner sensor.Source
	reads int
}

func (c *countingSource) Read() (float64, float64, float64, error) {
	c.reads++
	return c.inner.Read()
}

// failingSource always errors.
type failingSource struct{}

func (failingSource) Read() (float64, float64, float64, error) {
	return 0, 0, 0, errors.New("sensor unavailable")
}

func testMonitorConfig() Config {
	return Config{
		WindowSize: 128,
		SampleRate: 50,
		BandLow:    3,
		BandHigh:   6,
		Exposure: exposure.Config{
			SampleInterval:   2 * time.Second,
			EvaluationPeriod: 10 * time.Second,
			DangerIntensity:  60,
			DangerRatio:      0.6,
		},
		TierLow:  25,
		TierHigh: 60,
	}
}

// tremorSource is a synthetic tone centered on an FFT bin inside the band.
func tremorSource(t *testing.T, amplitude float64) *sensor.Synthetic {
	t.Helper()
	src, err := sensor.NewSynthetic(11*50.0/128.0, amplitude, 50)
	require.NoError(t, err)
	return src
}

// drive steps the monitor once per sampling period starting at t0.
func drive(m *Monitor, t0 time.Time, steps int) {
	for i := 0; i < steps; i++ {
		m.Step(t0.Add(time.Duration(i) * 20 * time.Millisecond))
	}
}

func TestNewValidation(t *testing.T) {
	logger := logging.NewNopLogger()
	src := tremorSource(t, 1)

	cfg := testMonitorConfig()
	cfg.BandHigh = 2 // below BandLow
	_, err := New(cfg, src, nil, logger, Callbacks{})
	assert.Error(t, err)

	cfg = testMonitorConfig()
	cfg.WindowSize = 100
	_, err = New(cfg, src, nil, logger, Callbacks{})
	assert.Error(t, err)

	cfg = testMonitorConfig()
	cfg.Exposure.DangerRatio = 0
	_, err = New(cfg, src, nil, logger, Callbacks{})
	assert.Error(t, err)

	_, err = New(testMonitorConfig(), nil, nil, logger, Callbacks{})
	assert.Error(t, err, "a sensor source is required")
}

func TestSamplingGate(t *testing.T) {
	src := &countingSource{inner: tremorSource(t, 1)}
	m, err := New(testMonitorConfig(), src, nil, logging.NewNopLogger(), Callbacks{})
	require.NoError(t, err)
	m.Start()

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.Step(t0)
	assert.Equal(t, 1, src.reads)

	// Inside the 20ms sampling period: gate stays closed.
	m.Step(t0.Add(10 * time.Millisecond))
	assert.Equal(t, 1, src.reads)

	m.Step(t0.Add(20 * time.Millisecond))
	assert.Equal(t, 2, src.reads)
}

func TestPausedMonitorDoesNotSample(t *testing.T) {
	src := &countingSource{inner: tremorSource(t, 1)}
	m, err := New(testMonitorConfig(), src, nil, logging.NewNopLogger(), Callbacks{})
	require.NoError(t, err)

	drive(m, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), 10)
	assert.Zero(t, src.reads)
	assert.False(t, m.Snapshot().Running)
}

func TestCompletedWindowEmitsIntensity(t *testing.T) {
	var intensities []float64
	var tiers []feedback.Tier

	m, err := New(testMonitorConfig(), tremorSource(t, 10), nil, logging.NewNopLogger(), Callbacks{
		OnIntensity: func(intensity float64, tier feedback.Tier) {
			intensities = append(intensities, intensity)
			tiers = append(tiers, tier)
		},
	})
	require.NoError(t, err)
	m.Start()

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	drive(m, t0, 127)
	assert.Empty(t, intensities, "no emission before the window completes")

	m.Step(t0.Add(127 * 20 * time.Millisecond))
	require.Len(t, intensities, 1)
	assert.Greater(t, intensities[0], 60.0, "an amplitude-10 tremor tone scores well above the danger threshold")
	assert.Equal(t, feedback.TierHigh, tiers[0])

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.WindowsAnalyzed)
	assert.Equal(t, intensities[0], snap.LastIntensity)
	assert.Equal(t, "high", snap.LastTier)
	assert.Equal(t, 1, snap.PeriodIntensity.Count)
}

func TestSustainedTremorRaisesAlarm(t *testing.T) {
	var verdicts, alarms int

	m, err := New(testMonitorConfig(), tremorSource(t, 10), nil, logging.NewNopLogger(), Callbacks{
		OnVerdict: func(v *exposure.Verdict) { verdicts++ },
		OnAlarm: func(v *exposure.Verdict) {
			alarms++
			assert.True(t, v.Alarm)
			assert.InDelta(t, 1.0, v.Ratio, 1e-12)
		},
	})
	require.NoError(t, err)
	m.Start()

	// 700 sampling periods cover one full evaluation period of windows.
	drive(m, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), 700)

	assert.Equal(t, 1, verdicts)
	assert.Equal(t, 1, alarms)

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.Verdicts)
	assert.Equal(t, uint64(1), snap.Alarms)
	require.NotNil(t, snap.LastVerdict)
	assert.True(t, snap.LastVerdict.Alarm)
	assert.Zero(t, snap.Exposure.Samples, "exposure counters reset at the boundary")
}

func TestCalmSignalNeverAlarms(t *testing.T) {
	var verdicts, alarms int

	m, err := New(testMonitorConfig(), tremorSource(t, 0.01), nil, logging.NewNopLogger(), Callbacks{
		OnVerdict: func(v *exposure.Verdict) { verdicts++ },
		OnAlarm:   func(v *exposure.Verdict) { alarms++ },
	})
	require.NoError(t, err)
	m.Start()

	drive(m, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), 700)

	assert.Equal(t, 1, verdicts)
	assert.Zero(t, alarms)

	snap := m.Snapshot()
	require.NotNil(t, snap.LastVerdict)
	assert.False(t, snap.LastVerdict.Exceeded)
	assert.Zero(t, snap.LastVerdict.Dangerous)
}

func TestMutedAlarmRecordsExceededVerdict(t *testing.T) {
	var alarms int
	var last *exposure.Verdict

	m, err := New(testMonitorConfig(), tremorSource(t, 10), nil, logging.NewNopLogger(), Callbacks{
		OnVerdict: func(v *exposure.Verdict) { last = v },
		OnAlarm:   func(v *exposure.Verdict) { alarms++ },
	})
	require.NoError(t, err)
	m.Start()
	m.SetAlarmEnabled(false)

	drive(m, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), 700)

	require.NotNil(t, last)
	assert.True(t, last.Exceeded)
	assert.False(t, last.Alarm)
	assert.Zero(t, alarms)
}

func TestSensorFailureSkipsSample(t *testing.T) {
	m, err := New(testMonitorConfig(), failingSource{}, nil, logging.NewNopLogger(), Callbacks{})
	require.NoError(t, err)
	m.Start()

	drive(m, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), 300)

	snap := m.Snapshot()
	assert.Zero(t, snap.WindowsAnalyzed)
	assert.Zero(t, snap.Exposure.Samples)
}

func TestToggles(t *testing.T) {
	m, err := New(testMonitorConfig(), tremorSource(t, 1), nil, logging.NewNopLogger(), Callbacks{})
	require.NoError(t, err)

	assert.False(t, m.Running())
	assert.True(t, m.ToggleDevice())
	assert.True(t, m.Running())
	assert.False(t, m.ToggleDevice())

	assert.True(t, m.AlarmEnabled())
	assert.False(t, m.ToggleAlarm())
	assert.False(t, m.AlarmEnabled())
	assert.True(t, m.ToggleAlarm())
}
