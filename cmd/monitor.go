package cmd

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tremorsense/tremor-monitor/internal/app"
)

var (
	monitorListen      string
	monitorDuration    time.Duration
	monitorStartPaused bool
	monitorMuteAlarm   bool
)

// monitorCmd runs the live monitoring loop
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the tremor monitor loop",
	Long: `Run the monitoring loop against the configured sensor source until
interrupted or until --duration elapses.

Examples:
  # Monitor with the configured source until interrupted
  tremor-monitor monitor

  # Monitor a recorded session with the control API enabled
  tremor-monitor monitor --listen :8080 --duration 15m

  # Start paused; toggle the device over the control API
  tremor-monitor monitor --listen :8080 --start-paused`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().StringVar(&monitorListen, "listen", "",
		"control API listen address (overrides web.listen)")
	monitorCmd.Flags().DurationVar(&monitorDuration, "duration", 0,
		"stop after this duration (0 runs until interrupted)")
	monitorCmd.Flags().BoolVar(&monitorStartPaused, "start-paused", false,
		"start with the device paused")
	monitorCmd.Flags().BoolVar(&monitorMuteAlarm, "mute-alarm", false,
		"start with the alarm disabled")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	monitorApp, err := app.NewMonitorApp(&app.Context{
		ConfigFile:   configFile,
		OutputFormat: outputFormat,
		Listen:       monitorListen,
		Duration:     monitorDuration,
		Verbose:      verbose,
		Quiet:        quiet,
		StartPaused:  monitorStartPaused,
		MuteAlarm:    monitorMuteAlarm,
	})
	if err != nil {
		return err
	}

	return monitorApp.Run(ctx)
}
