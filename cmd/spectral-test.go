package cmd

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tremorsense/tremor-monitor/configs"
	"github.com/tremorsense/tremor-monitor/pkg/dsp"
	"github.com/tremorsense/tremor-monitor/pkg/feedback"
	"github.com/tremorsense/tremor-monitor/pkg/logging"
)

var (
	spectralTestFrequency float64
	spectralTestAmplitude float64
)

// spectralTestCmd analyzes a single synthetic tone and prints the spectrum
var spectralTestCmd = &cobra.Command{
	Use:   "spectral-test",
	Short: "Analyze one synthetic tone and display the band spectrum",
	Long: `Generate one window of a pure tone, run the spectral analyzer on it,
and display the low-frequency bins together with the band peak and tier.
Useful for verifying windowing and bin-to-frequency mapping by eye.

Examples:
  # A tone inside the tremor band
  tremor-monitor spectral-test --frequency 4.5 --amplitude 10

  # A tone outside the band; the band peak should stay near zero
  tremor-monitor spectral-test --frequency 8 --amplitude 10`,
	RunE: runSpectralTest,
}

func init() {
	rootCmd.AddCommand(spectralTestCmd)

	spectralTestCmd.Flags().Float64Var(&spectralTestFrequency, "frequency", 4.5,
		"tone frequency in Hz")
	spectralTestCmd.Flags().Float64Var(&spectralTestAmplitude, "amplitude", 10,
		"tone amplitude")
}

func runSpectralTest(cmd *cobra.Command, args []string) error {
	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	analyzer, err := dsp.NewSpectralAnalyzer(config.Sampling.WindowSize, config.Sampling.Rate, logging.NewNopLogger())
	if err != nil {
		return err
	}
	mapper, err := feedback.NewMapper(config.Feedback.LowThreshold, config.Feedback.HighThreshold)
	if err != nil {
		return err
	}

	samples := make([]float64, config.Sampling.WindowSize)
	for i := range samples {
		samples[i] = spectralTestAmplitude *
			math.Sin(2*math.Pi*spectralTestFrequency*float64(i)/config.Sampling.Rate)
	}

	spectrum, err := analyzer.Analyze(samples)
	if err != nil {
		return err
	}

	fmt.Printf("SPECTRAL ANALYSIS: %.2f Hz tone, amplitude %.2f\n", spectralTestFrequency, spectralTestAmplitude)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("%-6s %-12s %-14s %s\n", "bin", "freq (Hz)", "magnitude", "")

	for i := 1; i < spectrum.Bins(); i++ {
		freq := spectrum.Frequency(i)
		if freq > 2*config.Band.High {
			break
		}
		marker := ""
		if freq >= config.Band.Low && freq <= config.Band.High {
			marker = "in band"
		}
		fmt.Printf("%-6d %-12.4f %-14.4f %s\n", i, freq, spectrum.Magnitude[i], marker)
	}

	intensity := spectrum.BandPeak(config.Band.Low, config.Band.High)
	tier := mapper.MapTier(intensity)
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("band peak [%g, %g] Hz: %.4f  tier: %s (%s)\n",
		config.Band.Low, config.Band.High, intensity, tier, tier.Color())

	return nil
}
