package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/riorajhon/lotteryd/pkg/lottery"
	"github.com/riorajhon/lotteryd/pkg/pipeline"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	updateCfgFile string
	updateLottery string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Incrementally extend derived statistics",
	Long: `Reconstructs engine state from the latest stored snapshot and
processes draws newer than it. Falls back to a full rebuild when no derived
artifacts exist yet. Without --lottery every game is updated.`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVar(&updateCfgFile, "config", "config.yaml", "config file (default is config.yaml)")
	updateCmd.Flags().StringVar(&updateLottery, "lottery", "", "game slug (default all games)")
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	return runPipeline(updateCfgFile, updateLottery, func(ctx context.Context, p *pipeline.Pipeline, cfg *lottery.Config) error {
		return p.Update(ctx, cfg)
	})
}
