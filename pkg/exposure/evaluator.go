// Package exposure implements the rolling danger-ratio evaluator. Once per
// sample interval it classifies the current intensity score against the
// danger threshold, accumulates counts over the evaluation period, and
// decides at the period boundary whether the alarm should fire. Every period
// is evaluated independently; no cross-period memory is retained.
package exposure

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tremorsense/tremor-monitor/pkg/logging"
)

// Config holds the evaluator thresholds and timing gates.
type Config struct {
	// SampleInterval is the minimum spacing between classification ticks.
	SampleInterval time.Duration
	// EvaluationPeriod is the rolling window over which the danger ratio
	// is accumulated before being evaluated and reset.
	EvaluationPeriod time.Duration
	// DangerIntensity is the intensity score at or above which a tick is
	// classified as dangerous.
	DangerIntensity float64
	// DangerRatio is the dangerous/total fraction at or above which the
	// alarm fires.
	DangerRatio float64
}

// Validate checks the configuration at construction time.
func (c Config) Validate() error {
	if c.SampleInterval <= 0 {
		return fmt.Errorf("sample interval must be positive, got %s", c.SampleInterval)
	}
	if c.EvaluationPeriod <= 0 {
		return fmt.Errorf("evaluation period must be positive, got %s", c.EvaluationPeriod)
	}
	if c.EvaluationPeriod < c.SampleInterval {
		return fmt.Errorf("evaluation period %s is shorter than the sample interval %s",
			c.EvaluationPeriod, c.SampleInterval)
	}
	if c.DangerIntensity < 0 {
		return fmt.Errorf("danger intensity must not be negative, got %g", c.DangerIntensity)
	}
	if c.DangerRatio <= 0 || c.DangerRatio > 1 {
		return fmt.Errorf("danger ratio must be in (0, 1], got %g", c.DangerRatio)
	}
	return nil
}

// Verdict is the outcome of one completed evaluation period.
type Verdict struct {
	ID          string    `json:"id" yaml:"id"`
	Ratio       float64   `json:"ratio" yaml:"ratio"`
	Samples     uint64    `json:"samples" yaml:"samples"`
	Dangerous   uint64    `json:"dangerous" yaml:"dangerous"`
	Exceeded    bool      `json:"exceeded" yaml:"exceeded"`
	Alarm       bool      `json:"alarm" yaml:"alarm"`
	PeriodStart time.Time `json:"period_start" yaml:"period_start"`
	PeriodEnd   time.Time `json:"period_end" yaml:"period_end"`
}

// Snapshot exposes the evaluator's diagnostic counters mid-period.
type Snapshot struct {
	Samples     uint64    `json:"samples" yaml:"samples"`
	Dangerous   uint64    `json:"dangerous" yaml:"dangerous"`
	Ratio       float64   `json:"ratio" yaml:"ratio"`
	PeriodStart time.Time `json:"period_start" yaml:"period_start"`
	LastTick    time.Time `json:"last_tick" yaml:"last_tick"`
}

// Evaluator accumulates tick classifications over one evaluation period.
// It is not safe for concurrent use; the monitor loop serializes access.
type Evaluator struct {
	cfg    Config
	logger logging.Logger

	samples     uint64
	dangerous   uint64
	periodStart time.Time
	lastTick    time.Time
}

// NewEvaluator creates an evaluator. The first Observe call establishes the
// period start unless Reset is called explicitly beforehand.
func NewEvaluator(cfg Config, logger logging.Logger) (*Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid exposure configuration: %w", err)
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Evaluator{
		cfg:    cfg,
		logger: logger.WithFields(logging.Fields{"component": "exposure_evaluator"}),
	}, nil
}

// Reset clears all counters and starts a fresh period at now.
func (e *Evaluator) Reset(now time.Time) {
	e.samples = 0
	e.dangerous = 0
	e.periodStart = now
	e.lastTick = time.Time{}
}

// Observe feeds one intensity score into the evaluator. Ticks closer than
// the sample interval to the previous tick are ignored. When the evaluation
// period has elapsed the accumulated danger ratio is evaluated, the counters
// are reset, and a Verdict is returned; otherwise Observe returns nil.
//
// If a full period elapsed with no samples at all (the device was paused),
// the empty period is discarded rather than evaluated: a danger ratio over
// zero samples is undefined, so the evaluator starts a fresh period instead
// of dividing by zero.
func (e *Evaluator) Observe(now time.Time, intensity float64, alarmEnabled bool) *Verdict {
	if e.periodStart.IsZero() {
		e.periodStart = now
	}

	if e.samples == 0 && now.Sub(e.periodStart) >= e.cfg.EvaluationPeriod {
		e.logger.Debug("discarding empty evaluation period", logging.Fields{
			"period_start": e.periodStart,
		})
		e.periodStart = now
	}

	if !e.lastTick.IsZero() && now.Sub(e.lastTick) < e.cfg.SampleInterval {
		return nil
	}
	e.lastTick = now

	if intensity >= e.cfg.DangerIntensity {
		e.dangerous++
	}
	e.samples++

	e.logger.Debug("classification tick", logging.Fields{
		"intensity":    intensity,
		"samples":      e.samples,
		"dangerous":    e.dangerous,
		"period_start": e.periodStart,
	})

	if now.Sub(e.periodStart) < e.cfg.EvaluationPeriod {
		return nil
	}

	ratio := float64(e.dangerous) / float64(e.samples)
	exceeded := ratio >= e.cfg.DangerRatio
	verdict := &Verdict{
		ID:          uuid.NewString(),
		Ratio:       ratio,
		Samples:     e.samples,
		Dangerous:   e.dangerous,
		Exceeded:    exceeded,
		Alarm:       exceeded && alarmEnabled,
		PeriodStart: e.periodStart,
		PeriodEnd:   now,
	}

	e.logger.Info("evaluation period completed", logging.Fields{
		"verdict_id": verdict.ID,
		"ratio":      ratio,
		"samples":    verdict.Samples,
		"dangerous":  verdict.Dangerous,
		"alarm":      verdict.Alarm,
	})

	e.samples = 0
	e.dangerous = 0
	e.periodStart = now

	return verdict
}

// Snapshot returns the current counters. The running ratio is 0 while no
// samples have been classified.
func (e *Evaluator) Snapshot() Snapshot {
	snap := Snapshot{
		Samples:     e.samples,
		Dangerous:   e.dangerous,
		PeriodStart: e.periodStart,
		LastTick:    e.lastTick,
	}
	if e.samples > 0 {
		snap.Ratio = float64(e.dangerous) / float64(e.samples)
	}
	return snap
}
