// Package app wires configuration, logging, the sensor source, the monitor
// loop, and the control API into one application lifecycle.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tremorsense/tremor-monitor/configs"
	"github.com/tremorsense/tremor-monitor/internal/monitor"
	"github.com/tremorsense/tremor-monitor/internal/web"
	"github.com/tremorsense/tremor-monitor/pkg/exposure"
	"github.com/tremorsense/tremor-monitor/pkg/feedback"
	"github.com/tremorsense/tremor-monitor/pkg/logging"
	"github.com/tremorsense/tremor-monitor/pkg/sensor"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	ConfigFile   string
	OutputFormat string
	Listen       string
	Duration     time.Duration
	Verbose      bool
	Quiet        bool
	StartPaused  bool
	MuteAlarm    bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// MonitorApp handles the monitor application lifecycle
type MonitorApp struct {
	ctx     *Context
	config  *configs.Config
	logger  logging.Logger
	monitor *monitor.Monitor
	server  *web.Server
}

// RunSummary is the end-of-run report written to stdout.
type RunSummary struct {
	Duration string           `json:"duration" yaml:"duration"`
	Snapshot monitor.Snapshot `json:"snapshot" yaml:"snapshot"`
}

// NewMonitorApp creates a new monitor application
func NewMonitorApp(ctx *Context) (*MonitorApp, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogging(ctx, config)
	ctx.Logger = logger
	if ctx.OutputFormat != "" {
		config.OutputFormat = ctx.OutputFormat
	}
	if ctx.Listen != "" {
		config.Web.Listen = ctx.Listen
	}
	ctx.Config = config

	source, err := buildSource(config)
	if err != nil {
		return nil, fmt.Errorf("failed to build sensor source: %w", err)
	}

	mon, err := monitor.New(monitorConfig(config), source, monitor.RealClock(), logger, callbacks(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to build monitor: %w", err)
	}

	app := &MonitorApp{
		ctx:     ctx,
		config:  config,
		logger:  logger,
		monitor: mon,
	}
	if config.Web.Listen != "" {
		app.server = web.NewServer(config.Web.Listen, mon, logger)
	}

	logger.Debug("monitor application initialized", logging.Fields{
		"config_file":       ctx.ConfigFile,
		"sensor_type":       config.Sensor.Type,
		"sample_rate":       config.Sampling.Rate,
		"window_size":       config.Sampling.WindowSize,
		"evaluation_period": config.Exposure.EvaluationPeriod.String(),
		"listen":            config.Web.Listen,
	})

	return app, nil
}

// Run executes the monitor until ctx is done or the configured duration
// elapses, then writes the run summary.
func (app *MonitorApp) Run(ctx context.Context) error {
	if app.ctx.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.ctx.Duration)
		defer cancel()
	}

	serverErr := make(chan error, 1)
	if app.server != nil {
		go func() {
			serverErr <- app.server.Listen()
		}()
		defer func() {
			if err := app.server.Shutdown(); err != nil {
				app.logger.Warn("control API shutdown failed", logging.Fields{"error": err.Error()})
			}
		}()
	}

	if !app.ctx.StartPaused {
		app.monitor.Start()
	}
	if app.ctx.MuteAlarm {
		app.monitor.SetAlarmEnabled(false)
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- app.monitor.Run(ctx)
	}()

	start := time.Now()
	var err error
	select {
	case err = <-runErr:
	case err = <-serverErr:
		if err != nil {
			return fmt.Errorf("control API failed: %w", err)
		}
		err = <-runErr
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("monitor execution failed: %w", err)
	}

	if app.ctx.Quiet {
		return nil
	}
	return app.writeSummary(RunSummary{
		Duration: time.Since(start).Round(time.Millisecond).String(),
		Snapshot: app.monitor.Snapshot(),
	})
}

// Monitor exposes the running monitor, mainly for commands that inspect it.
func (app *MonitorApp) Monitor() *monitor.Monitor {
	return app.monitor
}

func (app *MonitorApp) writeSummary(summary RunSummary) error {
	var (
		data []byte
		err  error
	)
	switch app.config.OutputFormat {
	case "json":
		data, err = json.MarshalIndent(summary, "", "  ")
	default:
		data, err = yaml.Marshal(summary)
	}
	if err != nil {
		return fmt.Errorf("failed to encode run summary: %w", err)
	}

	_, err = os.Stdout.Write(append(data, '\n'))
	return err
}

// setupLogging configures logging based on context and configuration
func setupLogging(ctx *Context, config *configs.Config) logging.Logger {
	level := config.LogLevel
	if ctx.Verbose {
		level = "debug"
	} else if ctx.Quiet {
		level = "error"
	}
	return logging.NewLogger(level)
}

// monitorConfig translates the application configuration into the pipeline
// configuration.
func monitorConfig(config *configs.Config) monitor.Config {
	return monitor.Config{
		WindowSize: config.Sampling.WindowSize,
		SampleRate: config.Sampling.Rate,
		BandLow:    config.Band.Low,
		BandHigh:   config.Band.High,
		Exposure: exposure.Config{
			SampleInterval:   config.Exposure.SampleInterval,
			EvaluationPeriod: config.Exposure.EvaluationPeriod,
			DangerIntensity:  config.Exposure.DangerIntensity,
			DangerRatio:      config.Exposure.DangerRatio,
		},
		TierLow:  config.Feedback.LowThreshold,
		TierHigh: config.Feedback.HighThreshold,
	}
}

// buildSource constructs the configured acceleration source.
func buildSource(config *configs.Config) (sensor.Source, error) {
	switch config.Sensor.Type {
	case "replay":
		return sensor.NewReplay(config.Sensor.ReplayFile, config.Sensor.ReplayLoop)
	default:
		var opts []sensor.SyntheticOption
		if config.Sensor.Synthetic.Noise > 0 {
			opts = append(opts, sensor.WithNoise(config.Sensor.Synthetic.Noise, config.Sensor.Synthetic.Seed))
		}
		return sensor.NewSynthetic(
			config.Sensor.Synthetic.Frequency,
			config.Sensor.Synthetic.Amplitude,
			config.Sampling.Rate,
			opts...,
		)
	}
}

// callbacks renders pipeline events as structured log lines, standing in for
// on-device LED and alarm output.
func callbacks(logger logging.Logger) monitor.Callbacks {
	var lastTier feedback.Tier = -1

	return monitor.Callbacks{
		OnIntensity: func(intensity float64, tier feedback.Tier) {
			logger.Debug("intensity update", logging.Fields{
				"intensity": intensity,
				"tier":      tier.String(),
			})
			if tier != lastTier {
				logger.Info("feedback tier changed", logging.Fields{
					"tier":      tier.String(),
					"color":     tier.Color(),
					"intensity": intensity,
				})
				lastTier = tier
			}
		},
		OnVerdict: func(v *exposure.Verdict) {
			logger.Info("evaluation verdict", logging.Fields{
				"verdict_id": v.ID,
				"ratio":      v.Ratio,
				"samples":    v.Samples,
				"dangerous":  v.Dangerous,
				"exceeded":   v.Exceeded,
				"alarm":      v.Alarm,
			})
		},
		OnAlarm: func(v *exposure.Verdict) {
			logger.Warn("alarm triggered: danger level exceeded", logging.Fields{
				"verdict_id": v.ID,
				"ratio":      v.Ratio,
			})
		},
	}
}
