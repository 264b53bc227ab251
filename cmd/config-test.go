package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tremorsense/tremor-monitor/configs"
)

// configTestCmd represents the config test command
var configTestCmd = &cobra.Command{
	Use:   "config-test",
	Short: "Test and display all configuration values",
	Long: `Test configuration loading and display all values to verify proper parsing.

Examples:
  # Test with default config file
  tremor-monitor config-test

  # Test with specific config file
  tremor-monitor --config /path/to/config.yaml config-test`,
	RunE: runConfigTest,
}

func init() {
	rootCmd.AddCommand(configTestCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	fmt.Println("TREMOR MONITOR CONFIGURATION TEST")
	fmt.Println(strings.Repeat("=", 60))

	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printSection("APPLICATION SETTINGS")
	printKeyValue("Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue("Log Level", config.LogLevel)
	printKeyValue("Output Format", config.OutputFormat)

	printSection("SAMPLING CONFIGURATION")
	printKeyValue("Rate", fmt.Sprintf("%g Hz", config.Sampling.Rate))
	printKeyValue("Window Size", fmt.Sprintf("%d samples", config.Sampling.WindowSize))
	printKeyValue("Window Duration", fmt.Sprintf("%.2f s", float64(config.Sampling.WindowSize)/config.Sampling.Rate))
	printKeyValue("Frequency Resolution", fmt.Sprintf("%.4f Hz/bin", config.Sampling.Rate/float64(config.Sampling.WindowSize)))

	printSection("TREMOR BAND")
	printKeyValue("Low", fmt.Sprintf("%g Hz", config.Band.Low))
	printKeyValue("High", fmt.Sprintf("%g Hz", config.Band.High))

	printSection("EXPOSURE EVALUATION")
	printKeyValue("Sample Interval", config.Exposure.SampleInterval.String())
	printKeyValue("Evaluation Period", config.Exposure.EvaluationPeriod.String())
	printKeyValue("Danger Intensity", fmt.Sprintf("%g", config.Exposure.DangerIntensity))
	printKeyValue("Danger Ratio", fmt.Sprintf("%g", config.Exposure.DangerRatio))

	printSection("FEEDBACK TIERS")
	printKeyValue("Low Threshold", fmt.Sprintf("%g", config.Feedback.LowThreshold))
	printKeyValue("High Threshold", fmt.Sprintf("%g", config.Feedback.HighThreshold))

	printSection("SENSOR SOURCE")
	printKeyValue("Type", config.Sensor.Type)
	switch config.Sensor.Type {
	case "synthetic":
		printKeyValue("Frequency", fmt.Sprintf("%g Hz", config.Sensor.Synthetic.Frequency))
		printKeyValue("Amplitude", fmt.Sprintf("%g", config.Sensor.Synthetic.Amplitude))
		printKeyValue("Noise", fmt.Sprintf("%g", config.Sensor.Synthetic.Noise))
		printKeyValue("Seed", fmt.Sprintf("%d", config.Sensor.Synthetic.Seed))
	case "replay":
		printKeyValue("Replay File", config.Sensor.ReplayFile)
		printKeyValue("Replay Loop", fmt.Sprintf("%t", config.Sensor.ReplayLoop))
	}

	printSection("CONTROL API")
	if config.Web.Listen == "" {
		printKeyValue("Listen", "(disabled)")
	} else {
		printKeyValue("Listen", config.Web.Listen)
	}

	fmt.Println()
	fmt.Println("Configuration loaded and validated successfully.")
	return nil
}

func printSection(title string) {
	fmt.Println()
	fmt.Println(title)
	fmt.Println(strings.Repeat("-", len(title)))
}

func printKeyValue(key, value string) {
	fmt.Printf("  %-22s %s\n", key+":", value)
}
