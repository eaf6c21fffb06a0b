package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/riorajhon/lotteryd/pkg/observability"
	"github.com/riorajhon/lotteryd/pkg/scheduler"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	schedulerCfgFile string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Start the lotteryd scheduler service",
	Long: `The scheduler service enqueues the daily scrape pipeline on a cron
schedule. Instances elect a leader through redis so only one schedules.`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.Flags().StringVar(&schedulerCfgFile, "config", "config.yaml", "config file (default is config.yaml)")
}

func runScheduler(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	app, err := newApplication(schedulerCfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()

	observability.StartMetricsServer(app.config.MetricsAddr)

	if err := app.startOps(ctx); err != nil {
		return err
	}

	app.startQueue()

	svc, err := scheduler.NewService(app.log, &app.config.Scheduler, app.redisOpt, app.queue)
	if err != nil {
		return err
	}

	if err := svc.Start(ctx); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	if err := svc.Stop(); err != nil {
		app.log.WithError(err).Error("Failed to stop scheduler service")
	}
	app.stop(ctx)

	return nil
}
