// Package configs defines the application configuration, loaded through
// viper from file, environment, and flags.
package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`

	// Sampling configuration
	Sampling SamplingConfig `mapstructure:"sampling"`

	// Tremor band configuration
	Band BandConfig `mapstructure:"band"`

	// Exposure evaluation configuration
	Exposure ExposureConfig `mapstructure:"exposure"`

	// Feedback tier configuration
	Feedback FeedbackConfig `mapstructure:"feedback"`

	// Sensor source configuration
	Sensor SensorConfig `mapstructure:"sensor"`

	// Control API configuration
	Web WebConfig `mapstructure:"web"`
}

// SamplingConfig contains the sampling gate settings
type SamplingConfig struct {
	Rate       float64 `mapstructure:"rate"`        // Hz
	WindowSize int     `mapstructure:"window_size"` // samples per analysis window
}

// BandConfig bounds the tremor frequency band, inclusive
type BandConfig struct {
	Low  float64 `mapstructure:"low"`  // Hz
	High float64 `mapstructure:"high"` // Hz
}

// ExposureConfig contains the rolling danger-ratio evaluator settings
type ExposureConfig struct {
	SampleInterval   time.Duration `mapstructure:"sample_interval"`
	EvaluationPeriod time.Duration `mapstructure:"evaluation_period"`
	DangerIntensity  float64       `mapstructure:"danger_intensity"`
	DangerRatio      float64       `mapstructure:"danger_ratio"`
}

// FeedbackConfig contains the severity tier boundaries
type FeedbackConfig struct {
	LowThreshold  float64 `mapstructure:"low_threshold"`
	HighThreshold float64 `mapstructure:"high_threshold"`
}

// SensorConfig selects and configures the acceleration source
type SensorConfig struct {
	Type       string          `mapstructure:"type"` // synthetic or replay
	Synthetic  SyntheticConfig `mapstructure:"synthetic"`
	ReplayFile string          `mapstructure:"replay_file"`
	ReplayLoop bool            `mapstructure:"replay_loop"`
}

// SyntheticConfig parameterizes the simulated oscillation source
type SyntheticConfig struct {
	Frequency float64 `mapstructure:"frequency"` // Hz
	Amplitude float64 `mapstructure:"amplitude"`
	Noise     float64 `mapstructure:"noise"`
	Seed      int64   `mapstructure:"seed"`
}

// WebConfig contains the control API settings
type WebConfig struct {
	Listen string `mapstructure:"listen"` // empty disables the API
}

// LoadConfig loads and validates configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Sampling.Rate <= 0 {
		return fmt.Errorf("sampling rate must be positive")
	}

	if c.Sampling.WindowSize <= 0 || c.Sampling.WindowSize&(c.Sampling.WindowSize-1) != 0 {
		return fmt.Errorf("sampling window size must be a positive power of two, got %d", c.Sampling.WindowSize)
	}

	if c.Band.Low < 0 || c.Band.High <= c.Band.Low {
		return fmt.Errorf("tremor band [%g, %g] is not a valid frequency range", c.Band.Low, c.Band.High)
	}

	if c.Band.High > c.Sampling.Rate/2 {
		return fmt.Errorf("band upper bound %g Hz exceeds the Nyquist frequency %g Hz",
			c.Band.High, c.Sampling.Rate/2)
	}

	if c.Exposure.SampleInterval <= 0 {
		return fmt.Errorf("exposure sample interval must be positive")
	}

	if c.Exposure.EvaluationPeriod < c.Exposure.SampleInterval {
		return fmt.Errorf("exposure evaluation period must be at least the sample interval")
	}

	if c.Exposure.DangerIntensity < 0 {
		return fmt.Errorf("danger intensity must not be negative")
	}

	if c.Exposure.DangerRatio <= 0 || c.Exposure.DangerRatio > 1 {
		return fmt.Errorf("danger ratio must be in (0, 1]")
	}

	if c.Feedback.LowThreshold < 0 || c.Feedback.HighThreshold <= c.Feedback.LowThreshold {
		return fmt.Errorf("feedback thresholds must satisfy 0 <= low < high")
	}

	switch c.Sensor.Type {
	case "synthetic":
	case "replay":
		if c.Sensor.ReplayFile == "" {
			return fmt.Errorf("sensor type replay requires a replay file")
		}
	default:
		return fmt.Errorf("unknown sensor type %q", c.Sensor.Type)
	}

	return nil
}
