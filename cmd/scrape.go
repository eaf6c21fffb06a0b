package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/riorajhon/lotteryd/pkg/draws"
	"github.com/riorajhon/lotteryd/pkg/lottery"
	"github.com/riorajhon/lotteryd/pkg/scrape"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	scrapeCfgFile string
	scrapeLottery string
	scrapeFrom    string
	scrapeTo      string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch draw results from the upstream source",
	Long: `Fetches official draw results and stores the raw records. Without
--from/--to the daily catch-up window is used. Without --lottery every game
is scraped in the daily order.`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	scrapeCmd.Flags().StringVar(&scrapeCfgFile, "config", "config.yaml", "config file (default is config.yaml)")
	scrapeCmd.Flags().StringVar(&scrapeLottery, "lottery", "", "game slug (default all games)")
	scrapeCmd.Flags().StringVar(&scrapeFrom, "from", "", "start date YYYY-MM-DD (inclusive)")
	scrapeCmd.Flags().StringVar(&scrapeTo, "to", "", "end date YYYY-MM-DD (inclusive)")
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	app, err := newApplication(scrapeCfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()

	if err := app.startStore(ctx); err != nil {
		return err
	}
	defer app.stop(ctx)

	scraper, err := scrape.NewScraper(app.log, &app.config.Scrape, app.store)
	if err != nil {
		return err
	}

	if scrapeFrom == "" && scrapeTo == "" {
		if scrapeLottery == "" {
			return scraper.ScrapeAllDaily(ctx)
		}
		cfg, err := lottery.BySlug(scrapeLottery)
		if err != nil {
			return err
		}
		_, err = scraper.ScrapeDaily(ctx, cfg)
		return err
	}

	from, to, err := parseScrapeWindow(scrapeFrom, scrapeTo)
	if err != nil {
		return err
	}

	games := lottery.DailyOrder()
	if scrapeLottery != "" {
		cfg, err := lottery.BySlug(scrapeLottery)
		if err != nil {
			return err
		}
		games = []*lottery.Config{cfg}
	}

	for _, cfg := range games {
		if _, err := scraper.ScrapeRange(ctx, cfg, from, to); err != nil {
			return err
		}
	}

	return nil
}

func parseScrapeWindow(fromStr, toStr string) (from, to time.Time, err error) {
	if fromStr == "" || toStr == "" {
		return from, to, fmt.Errorf("--from and --to must be given together")
	}
	from, err = time.Parse(draws.DateLayout, fromStr)
	if err != nil {
		return from, to, fmt.Errorf("invalid --from date: %w", err)
	}
	to, err = time.Parse(draws.DateLayout, toStr)
	if err != nil {
		return from, to, fmt.Errorf("invalid --to date: %w", err)
	}
	if to.Before(from) {
		return from, to, fmt.Errorf("--to is before --from")
	}
	return from, to, nil
}
