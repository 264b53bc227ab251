// Package monitor drives the tremor-detection pipeline: a single polling
// loop reads triaxial samples through a per-sample timing gate, feeds
// completed windows to the spectral analyzer, and routes the resulting
// intensity score to both the feedback mapper and the exposure evaluator.
package monitor

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/tremorsense/tremor-monitor/pkg/dsp"
	"github.com/tremorsense/tremor-monitor/pkg/exposure"
	"github.com/tremorsense/tremor-monitor/pkg/feedback"
	"github.com/tremorsense/tremor-monitor/pkg/logging"
	"github.com/tremorsense/tremor-monitor/pkg/sensor"
)

// Config holds the pipeline parameters.
type Config struct {
	// WindowSize is the number of magnitude samples per analysis window.
	WindowSize int
	// SampleRate is the sampling frequency in Hz; the per-sample gate
	// period is 1e6/SampleRate microseconds.
	SampleRate float64
	// BandLow and BandHigh bound the tremor band in Hz, inclusive.
	BandLow  float64
	BandHigh float64
	// Exposure configures the rolling danger-ratio evaluator.
	Exposure exposure.Config
	// TierLow and TierHigh are the feedback tier boundaries.
	TierLow  float64
	TierHigh float64
}

// Validate checks the pipeline parameters. Component constructors validate
// their own slices of the config; this covers what only the monitor sees.
func (c Config) Validate() error {
	if c.BandLow < 0 || c.BandHigh <= c.BandLow {
		return fmt.Errorf("tremor band [%g, %g] is not a valid frequency range", c.BandLow, c.BandHigh)
	}
	return nil
}

// Callbacks are invoked from the monitor loop goroutine while it holds the
// monitor state lock; they must not call back into Snapshot. All are
// optional.
type Callbacks struct {
	// OnIntensity fires once per completed sample window.
	OnIntensity func(intensity float64, tier feedback.Tier)
	// OnVerdict fires once per completed evaluation period.
	OnVerdict func(v *exposure.Verdict)
	// OnAlarm fires at most once per evaluation period, when the danger
	// ratio threshold was crossed while the alarm was enabled.
	OnAlarm func(v *exposure.Verdict)
}

// IntensityStats summarizes the intensity scores seen during the current
// evaluation period.
type IntensityStats struct {
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Max    float64 `json:"max" yaml:"max"`
}

// Snapshot is a point-in-time view of the monitor for observability.
type Snapshot struct {
	Running          bool              `json:"running" yaml:"running"`
	AlarmEnabled     bool              `json:"alarm_enabled" yaml:"alarm_enabled"`
	LastIntensity    float64           `json:"last_intensity" yaml:"last_intensity"`
	LastTier         string            `json:"last_tier" yaml:"last_tier"`
	WindowsAnalyzed  uint64            `json:"windows_analyzed" yaml:"windows_analyzed"`
	AnalysisFailures uint64            `json:"analysis_failures" yaml:"analysis_failures"`
	Verdicts         uint64            `json:"verdicts" yaml:"verdicts"`
	Alarms           uint64            `json:"alarms" yaml:"alarms"`
	Exposure         exposure.Snapshot `json:"exposure" yaml:"exposure"`
	LastVerdict      *exposure.Verdict `json:"last_verdict,omitempty" yaml:"last_verdict,omitempty"`
	PeriodIntensity  IntensityStats    `json:"period_intensity" yaml:"period_intensity"`
}

// maxPeriodIntensities bounds the per-period stats buffer in case the
// evaluation period is configured far longer than the default.
const maxPeriodIntensities = 8192

// Monitor owns the sample window, analyzer, evaluator, and mapper, and
// steps them from a single goroutine. Device and alarm flags may be toggled
// from other goroutines; Snapshot is safe to call concurrently.
type Monitor struct {
	cfg       Config
	window    *dsp.SampleWindow
	analyzer  *dsp.SpectralAnalyzer
	evaluator *exposure.Evaluator
	mapper    *feedback.Mapper
	source    sensor.Source
	clock     Clock
	logger    logging.Logger
	callbacks Callbacks

	samplingPeriod time.Duration
	lastSample     time.Time

	running      atomic.Bool
	alarmEnabled atomic.Bool

	mu                sync.RWMutex
	lastIntensity     float64
	lastTier          feedback.Tier
	lastVerdict       *exposure.Verdict
	periodIntensities []float64
	windowsAnalyzed   uint64
	analysisFailures  uint64
	verdicts          uint64
	alarms            uint64
}

// New wires the pipeline from config. The monitor starts paused with the
// alarm enabled; Start or ToggleDevice begins sampling.
func New(cfg Config, source sensor.Source, clock Clock, logger logging.Logger, callbacks Callbacks) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid monitor configuration: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("a sensor source is required")
	}
	if clock == nil {
		clock = RealClock()
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	window, err := dsp.NewSampleWindow(cfg.WindowSize)
	if err != nil {
		return nil, err
	}
	analyzer, err := dsp.NewSpectralAnalyzer(cfg.WindowSize, cfg.SampleRate, logger)
	if err != nil {
		return nil, err
	}
	evaluator, err := exposure.NewEvaluator(cfg.Exposure, logger)
	if err != nil {
		return nil, err
	}
	mapper, err := feedback.NewMapper(cfg.TierLow, cfg.TierHigh)
	if err != nil {
		return nil, err
	}

	m := &Monitor{
		cfg:            cfg,
		window:         window,
		analyzer:       analyzer,
		evaluator:      evaluator,
		mapper:         mapper,
		source:         source,
		clock:          clock,
		logger:         logger.WithFields(logging.Fields{"component": "monitor"}),
		callbacks:      callbacks,
		samplingPeriod: time.Duration(float64(time.Second) / cfg.SampleRate),
	}
	m.alarmEnabled.Store(true)
	return m, nil
}

// Step performs one non-blocking pass through the timing gates. Pausing the
// device gates sampling only; window and evaluator state stay as they are
// and accounting resumes where it left off.
func (m *Monitor) Step(now time.Time) {
	if !m.running.Load() {
		return
	}
	if !m.lastSample.IsZero() && now.Sub(m.lastSample) < m.samplingPeriod {
		return
	}
	m.lastSample = now

	x, y, z, err := m.source.Read()
	if err != nil {
		m.logger.Warn("sensor read failed", logging.Fields{"error": err.Error()})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.window.Push(dsp.Magnitude(x, y, z)) {
		return
	}

	spectrum, err := m.analyzer.Analyze(m.window.Samples())
	if err != nil {
		// A failed analysis skips the classification tick entirely;
		// it is never counted as a zero-intensity sample.
		m.analysisFailures++
		m.logger.Error("spectral analysis failed", logging.Fields{"error": err.Error()})
		return
	}

	intensity := spectrum.BandPeak(m.cfg.BandLow, m.cfg.BandHigh)
	tier := m.mapper.MapTier(intensity)

	m.lastIntensity = intensity
	m.lastTier = tier
	m.windowsAnalyzed++
	if len(m.periodIntensities) < maxPeriodIntensities {
		m.periodIntensities = append(m.periodIntensities, intensity)
	}

	if cb := m.callbacks.OnIntensity; cb != nil {
		cb(intensity, tier)
	}

	verdict := m.evaluator.Observe(now, intensity, m.alarmEnabled.Load())
	if verdict == nil {
		return
	}

	m.lastVerdict = verdict
	m.verdicts++
	m.periodIntensities = m.periodIntensities[:0]
	if verdict.Alarm {
		m.alarms++
	}

	if cb := m.callbacks.OnVerdict; cb != nil {
		cb(verdict)
	}
	if verdict.Alarm {
		if cb := m.callbacks.OnAlarm; cb != nil {
			cb(verdict)
		}
	}
}

// Run drives Step at the sampling period until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.samplingPeriod)
	defer ticker.Stop()

	m.logger.Info("monitor loop started", logging.Fields{
		"sample_rate":       m.cfg.SampleRate,
		"window_size":       m.cfg.WindowSize,
		"band_low":          m.cfg.BandLow,
		"band_high":         m.cfg.BandHigh,
		"sample_interval":   m.cfg.Exposure.SampleInterval.String(),
		"evaluation_period": m.cfg.Exposure.EvaluationPeriod.String(),
	})

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor loop stopped")
			return ctx.Err()
		case <-ticker.C:
			m.Step(m.clock.Now())
		}
	}
}

// Start begins sampling.
func (m *Monitor) Start() { m.running.Store(true) }

// Stop pauses sampling, preserving in-flight window and evaluator state.
func (m *Monitor) Stop() { m.running.Store(false) }

// Running reports whether the device is sampling.
func (m *Monitor) Running() bool { return m.running.Load() }

// ToggleDevice flips the device flag and returns the new state.
func (m *Monitor) ToggleDevice() bool {
	for {
		old := m.running.Load()
		if m.running.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// AlarmEnabled reports whether a crossing of the danger ratio may fire.
func (m *Monitor) AlarmEnabled() bool { return m.alarmEnabled.Load() }

// SetAlarmEnabled sets the alarm flag.
func (m *Monitor) SetAlarmEnabled(enabled bool) { m.alarmEnabled.Store(enabled) }

// ToggleAlarm flips the alarm flag and returns the new state.
func (m *Monitor) ToggleAlarm() bool {
	for {
		old := m.alarmEnabled.Load()
		if m.alarmEnabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Snapshot returns the current diagnostic state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		Running:          m.running.Load(),
		AlarmEnabled:     m.alarmEnabled.Load(),
		LastIntensity:    m.lastIntensity,
		LastTier:         m.lastTier.String(),
		WindowsAnalyzed:  m.windowsAnalyzed,
		AnalysisFailures: m.analysisFailures,
		Verdicts:         m.verdicts,
		Alarms:           m.alarms,
		Exposure:         m.evaluator.Snapshot(),
		LastVerdict:      m.lastVerdict,
		PeriodIntensity:  intensityStats(m.periodIntensities),
	}
	return snap
}

func intensityStats(intensities []float64) IntensityStats {
	s := IntensityStats{Count: len(intensities)}
	if len(intensities) == 0 {
		return s
	}
	s.Mean = stat.Mean(intensities, nil)
	s.Max = math.Inf(-1)
	for _, v := range intensities {
		if v > s.Max {
			s.Max = v
		}
	}
	if len(intensities) > 1 {
		s.StdDev = stat.StdDev(intensities, nil)
	}
	return s
}
