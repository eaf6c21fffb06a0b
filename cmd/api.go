package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/riorajhon/lotteryd/pkg/api"
	"github.com/riorajhon/lotteryd/pkg/observability"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	apiCfgFile string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the lotteryd API service",
	Long:  `The API service exposes stored draws and derived statistics over REST.`,
	RunE:  runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiCfgFile, "config", "config.yaml", "config file (default is config.yaml)")
}

func runAPI(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	app, err := newApplication(apiCfgFile)
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

	svc := api.NewService(&app.config.API, app.store, app.queue, app.log)

	if err := svc.Start(ctx); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	if err := svc.Stop(); err != nil {
		app.log.WithError(err).Error("Failed to stop API service")
	}
	app.stop(ctx)

	return nil
}
