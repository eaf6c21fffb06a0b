package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/riorajhon/lotteryd/pkg/observability"
	"github.com/riorajhon/lotteryd/pkg/pipeline"
	"github.com/riorajhon/lotteryd/pkg/scrape"
	"github.com/riorajhon/lotteryd/pkg/worker"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	workerCfgFile string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the lotteryd worker service",
	Long:  `The worker service processes scrape, update and rebuild tasks from the queue.`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().StringVar(&workerCfgFile, "config", "config.yaml", "config file (default is config.yaml)")
}

func runWorker(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	app, err := newApplication(workerCfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()

	observability.StartMetricsServer(app.config.MetricsAddr)

	if err := app.startOps(ctx); err != nil {
		return err
	}

	if err := app.startStore(ctx); err != nil {
		return err
	}
	app.startQueue()

	scraper, err := scrape.NewScraper(app.log, &app.config.Scrape, app.store)
	if err != nil {
		return err
	}

	svc, err := worker.NewService(app.log, &app.config.Worker, scraper, pipeline.New(app.log, app.store), app.queue, app.redisOpt)
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
		app.log.WithError(err).Error("Failed to stop worker service")
	}
	app.stop(ctx)

	return nil
}
