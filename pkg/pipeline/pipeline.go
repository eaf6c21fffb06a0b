// Package pipeline orchestrates engine runs against the store: full rebuilds
// and incremental updates, one game at a time.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/riorajhon/lotteryd/pkg/draws"
	"github.com/riorajhon/lotteryd/pkg/engine"
	"github.com/riorajhon/lotteryd/pkg/lottery"
	"github.com/riorajhon/lotteryd/pkg/observability"
	"github.com/riorajhon/lotteryd/pkg/storage"
)

// Run modes reported in logs and metrics.
const (
	ModeRebuild     = "rebuild"
	ModeIncremental = "incremental"
)

// Pipeline drives engine runs for all configured games over one store.
type Pipeline struct {
	log   logrus.FieldLogger
	store storage.Store
}

// New creates a pipeline over the given store.
func New(log logrus.FieldLogger, store storage.Store) *Pipeline {
	return &Pipeline{
		log:   log.WithField("service", "pipeline"),
		store: store,
	}
}

// Rebuild replays the full stored history of one game from scratch. Derived
// collections are reset first so stale artifacts cannot survive.
func (p *Pipeline) Rebuild(ctx context.Context, cfg *lottery.Config) error {
	log := p.log.WithField("lottery", cfg.Slug)
	start := time.Now()

	ds, err := p.loadDraws(ctx, cfg, storage.DateWindow{})
	if err != nil {
		observability.RecordRun(cfg.Slug, ModeRebuild, "error", time.Since(start).Seconds())
		return err
	}

	if err := p.store.ResetDerived(ctx, cfg); err != nil {
		observability.RecordRun(cfg.Slug, ModeRebuild, "error", time.Since(start).Seconds())
		return fmt.Errorf("failed to reset derived artifacts: %w", err)
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	sink := newMetricSink(p.store, cfg, ModeRebuild)
	if _, err := eng.Rebuild(ctx, ds, sink); err != nil {
		observability.RecordRun(cfg.Slug, ModeRebuild, "error", time.Since(start).Seconds())
		return fmt.Errorf("rebuild failed for %s: %w", cfg.Slug, err)
	}

	observability.RecordRun(cfg.Slug, ModeRebuild, "success", time.Since(start).Seconds())
	log.WithFields(logrus.Fields{
		"draws":    len(ds),
		"duration": time.Since(start),
	}).Info("Completed full rebuild")

	return nil
}

// Update extends the derived artifacts with draws newer than the last
// committed snapshot. With no snapshot yet it falls back to a full rebuild.
func (p *Pipeline) Update(ctx context.Context, cfg *lottery.Config) error {
	log := p.log.WithField("lottery", cfg.Slug)

	last, err := p.store.LastSnapshot(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to load last snapshot: %w", err)
	}
	if last == nil {
		log.Info("No existing snapshots, falling back to full rebuild")
		return p.Rebuild(ctx, cfg)
	}

	start := time.Now()

	comboLastSeen, err := p.store.ComboLastSeen(ctx, cfg)
	if err != nil {
		observability.RecordRun(cfg.Slug, ModeIncremental, "error", time.Since(start).Seconds())
		return fmt.Errorf("failed to load combination history: %w", err)
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	state, err := eng.Reconstruct(last, comboLastSeen)
	if err != nil {
		observability.RecordRun(cfg.Slug, ModeIncremental, "error", time.Since(start).Seconds())
		return fmt.Errorf("state reconstruction failed for %s: %w", cfg.Slug, err)
	}

	ds, err := p.loadDraws(ctx, cfg, storage.DateWindow{From: last.DrawDate})
	if err != nil {
		observability.RecordRun(cfg.Slug, ModeIncremental, "error", time.Since(start).Seconds())
		return err
	}

	// The window is inclusive; drop everything up to the boundary draw
	fresh := ds[:0:0]
	for _, d := range ds {
		if d.Date > last.DrawDate {
			fresh = append(fresh, d)
		}
	}

	if len(fresh) == 0 {
		observability.RecordRun(cfg.Slug, ModeIncremental, "success", time.Since(start).Seconds())
		log.Info("No new draws")
		return nil
	}

	sink := newMetricSink(p.store, cfg, ModeIncremental)
	if err := eng.Extend(ctx, state, fresh, sink); err != nil {
		observability.RecordRun(cfg.Slug, ModeIncremental, "error", time.Since(start).Seconds())
		return fmt.Errorf("incremental update failed for %s: %w", cfg.Slug, err)
	}

	observability.RecordRun(cfg.Slug, ModeIncremental, "success", time.Since(start).Seconds())
	log.WithFields(logrus.Fields{
		"draws":    len(fresh),
		"duration": time.Since(start),
	}).Info("Completed incremental update")

	return nil
}

// loadDraws reads stored raw records and turns them into the canonical
// ordered draw sequence.
func (p *Pipeline) loadDraws(ctx context.Context, cfg *lottery.Config, window storage.DateWindow) ([]draws.Draw, error) {
	raws, err := p.store.RawDraws(ctx, cfg, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load raw draws: %w", err)
	}

	ds, _ := draws.NewNormalizer(cfg, p.log).NormalizeAll(raws)

	return draws.Sequence(ds), nil
}

// metricSink commits through the store and records per-draw metrics.
type metricSink struct {
	inner engine.Sink
	slug  string
	mode  string
}

func newMetricSink(store storage.Store, cfg *lottery.Config, mode string) *metricSink {
	return &metricSink{
		inner: storage.NewResultSink(store, cfg),
		slug:  cfg.Slug,
		mode:  mode,
	}
}

func (s *metricSink) Commit(ctx context.Context, res *engine.Result) error {
	if err := s.inner.Commit(ctx, res); err != nil {
		return err
	}

	observability.RecordSnapshotWritten(s.slug, s.mode, res.Snapshot.DrawIndex)
	observability.RecordHistoryAppends(s.slug, "number", len(res.Numbers))
	observability.RecordHistoryAppends(s.slug, "combo", len(res.Combos))

	return nil
}
