package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/riorajhon/lotteryd/pkg/lottery"
	"github.com/riorajhon/lotteryd/pkg/observability"
	"github.com/riorajhon/lotteryd/pkg/storage"
)

// Scraper fetches raw draws upstream and persists them.
type Scraper struct {
	log    logrus.FieldLogger
	config *Config
	client *Client
	store  storage.Store
	now    func() time.Time
}

// NewScraper creates a scraper over a store.
func NewScraper(log logrus.FieldLogger, cfg *Config, store storage.Store) (*Scraper, error) {
	client, err := NewClient(log, cfg)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		log:    log.WithField("service", "scraper"),
		config: cfg,
		client: client,
		store:  store,
		now:    time.Now,
	}, nil
}

// ScrapeRange fetches one game's draws in [from, to] and upserts them,
// returning how many were new. The recorded last draw date only moves
// forward.
func (s *Scraper) ScrapeRange(ctx context.Context, cfg *lottery.Config, from, to time.Time) (int, error) {
	log := s.log.WithField("lottery", cfg.Slug)

	raws, err := s.client.Fetch(ctx, cfg, from, to)
	if err != nil {
		return 0, fmt.Errorf("fetch failed for %s: %w", cfg.Slug, err)
	}

	saved, err := s.store.SaveRawDraws(ctx, cfg, raws)
	if err != nil {
		return 0, fmt.Errorf("failed to save raw draws for %s: %w", cfg.Slug, err)
	}
	observability.RecordScrapeDrawsSaved(cfg.Slug, saved)

	latest := ""
	for i := range raws {
		if date := raws[i].DateOnly(); date > latest {
			latest = date
		}
	}
	if latest != "" {
		recorded, err := s.store.LastScrapedDate(ctx, cfg.Slug)
		if err != nil {
			return saved, fmt.Errorf("failed to read scrape metadata: %w", err)
		}
		if latest > recorded {
			if err := s.store.SetLastScrapedDate(ctx, cfg.Slug, latest); err != nil {
				return saved, fmt.Errorf("failed to record scrape metadata: %w", err)
			}
		}
	}

	log.WithFields(logrus.Fields{
		"fetched": len(raws),
		"saved":   saved,
		"from":    from.Format(upstreamDateLayout),
		"to":      to.Format(upstreamDateLayout),
	}).Info("Scraped draw range")

	return saved, nil
}

// ScrapeDaily runs the daily catch-up window for one game: the configured
// number of days back through today.
func (s *Scraper) ScrapeDaily(ctx context.Context, cfg *lottery.Config) (int, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	return s.ScrapeRange(ctx, cfg, today.AddDate(0, 0, -s.config.DaysBack), today)
}

// ScrapeAllDaily runs the daily window for every game in the fixed daily
// order. A failing game does not stop the rest; the first error is returned
// after all games ran.
func (s *Scraper) ScrapeAllDaily(ctx context.Context) error {
	var firstErr error
	for _, cfg := range lottery.DailyOrder() {
		if _, err := s.ScrapeDaily(ctx, cfg); err != nil {
			s.log.WithError(err).WithField("lottery", cfg.Slug).Error("Daily scrape failed")
			observability.RecordError("scraper", "daily_scrape")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
