package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/riorajhon/lotteryd/pkg/lottery"
	"github.com/riorajhon/lotteryd/pkg/pipeline"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	rebuildCfgFile string
	rebuildLottery string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild derived statistics from stored draws",
	Long: `Drops the derived collections of a game and replays its full stored
draw history. Without --lottery every game is rebuilt.`,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
	rebuildCmd.Flags().StringVar(&rebuildCfgFile, "config", "config.yaml", "config file (default is config.yaml)")
	rebuildCmd.Flags().StringVar(&rebuildLottery, "lottery", "", "game slug (default all games)")
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	return runPipeline(rebuildCfgFile, rebuildLottery, func(ctx context.Context, p *pipeline.Pipeline, cfg *lottery.Config) error {
		return p.Rebuild(ctx, cfg)
	})
}

// runPipeline wires the store and pipeline and applies fn to the selected
// games. Shared by the rebuild and update commands.
func runPipeline(cfgFile, slug string, fn func(context.Context, *pipeline.Pipeline, *lottery.Config) error) error {
	app, err := newApplication(cfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()

	if err := app.startStore(ctx); err != nil {
		return err
	}
	defer app.stop(ctx)

	games := lottery.DailyOrder()
	if slug != "" {
		cfg, err := lottery.BySlug(slug)
		if err != nil {
			return err
		}
		games = []*lottery.Config{cfg}
	}

	p := pipeline.New(app.log, app.store)
	for _, cfg := range games {
		if err := fn(ctx, p, cfg); err != nil {
			return err
		}
	}

	return nil
}
