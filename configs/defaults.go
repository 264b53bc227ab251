package configs

import (
	"time"

	"github.com/spf13/viper"
)

// SetDefaults sets default configuration values for all components. The
// defaults mirror the reference handheld: 128-sample windows at 50 Hz, the
// 3-6 Hz tremor band, 2 s classification ticks over a 10 minute evaluation
// period, and a 60% danger ratio.
func SetDefaults(v *viper.Viper) {
	// Application defaults
	if !v.IsSet("log_level") {
		v.Set("log_level", "info")
	}
	if !v.IsSet("output_format") {
		v.Set("output_format", "yaml")
	}

	// Sampling defaults
	if !v.IsSet("sampling.rate") {
		v.Set("sampling.rate", 50.0)
	}
	if !v.IsSet("sampling.window_size") {
		v.Set("sampling.window_size", 128)
	}

	// Tremor band defaults
	if !v.IsSet("band.low") {
		v.Set("band.low", 3.0)
	}
	if !v.IsSet("band.high") {
		v.Set("band.high", 6.0)
	}

	// Exposure defaults
	if !v.IsSet("exposure.sample_interval") {
		v.Set("exposure.sample_interval", 2*time.Second)
	}
	if !v.IsSet("exposure.evaluation_period") {
		v.Set("exposure.evaluation_period", 10*time.Minute)
	}
	if !v.IsSet("exposure.danger_intensity") {
		v.Set("exposure.danger_intensity", 60.0)
	}
	if !v.IsSet("exposure.danger_ratio") {
		v.Set("exposure.danger_ratio", 0.6)
	}

	// Feedback defaults
	if !v.IsSet("feedback.low_threshold") {
		v.Set("feedback.low_threshold", 25.0)
	}
	if !v.IsSet("feedback.high_threshold") {
		v.Set("feedback.high_threshold", 60.0)
	}

	// Sensor defaults
	if !v.IsSet("sensor.type") {
		v.Set("sensor.type", "synthetic")
	}
	if !v.IsSet("sensor.synthetic.frequency") {
		v.Set("sensor.synthetic.frequency", 4.5)
	}
	if !v.IsSet("sensor.synthetic.amplitude") {
		v.Set("sensor.synthetic.amplitude", 1.0)
	}
	if !v.IsSet("sensor.synthetic.noise") {
		v.Set("sensor.synthetic.noise", 0.1)
	}
	if !v.IsSet("sensor.synthetic.seed") {
		v.Set("sensor.synthetic.seed", int64(1))
	}
	if !v.IsSet("sensor.replay_loop") {
		v.Set("sensor.replay_loop", false)
	}

	// Control API defaults: disabled unless a listen address is given
	if !v.IsSet("web.listen") {
		v.Set("web.listen", "")
	}
}
