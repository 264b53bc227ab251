package configs

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefaults(t *testing.T) *Config {
	t.Helper()

	v := viper.New()
	SetDefaults(v)

	config := &Config{}
	require.NoError(t, v.Unmarshal(config))
	return config
}

func TestDefaults(t *testing.T) {
	config := loadDefaults(t)
	require.NoError(t, config.Validate())

	assert.Equal(t, 50.0, config.Sampling.Rate)
	assert.Equal(t, 128, config.Sampling.WindowSize)
	assert.Equal(t, 3.0, config.Band.Low)
	assert.Equal(t, 6.0, config.Band.High)
	assert.Equal(t, 2*time.Second, config.Exposure.SampleInterval)
	assert.Equal(t, 10*time.Minute, config.Exposure.EvaluationPeriod)
	assert.Equal(t, 60.0, config.Exposure.DangerIntensity)
	assert.Equal(t, 0.6, config.Exposure.DangerRatio)
	assert.Equal(t, 25.0, config.Feedback.LowThreshold)
	assert.Equal(t, 60.0, config.Feedback.HighThreshold)
	assert.Equal(t, "synthetic", config.Sensor.Type)
	assert.Empty(t, config.Web.Listen)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sampling rate", func(c *Config) { c.Sampling.Rate = 0 }},
		{"window size not power of two", func(c *Config) { c.Sampling.WindowSize = 100 }},
		{"negative window size", func(c *Config) { c.Sampling.WindowSize = -128 }},
		{"inverted band", func(c *Config) { c.Band.Low, c.Band.High = 6, 3 }},
		{"band above nyquist", func(c *Config) { c.Band.High = 30 }},
		{"zero sample interval", func(c *Config) { c.Exposure.SampleInterval = 0 }},
		{"period below interval", func(c *Config) { c.Exposure.EvaluationPeriod = time.Second }},
		{"danger ratio above one", func(c *Config) { c.Exposure.DangerRatio = 1.1 }},
		{"inverted feedback thresholds", func(c *Config) { c.Feedback.LowThreshold = 70 }},
		{"unknown sensor type", func(c *Config) { c.Sensor.Type = "lidar" }},
		{"replay without file", func(c *Config) { c.Sensor.Type = "replay"; c.Sensor.ReplayFile = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := loadDefaults(t)
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}
