// Package storage persists raw draws and derived feature artifacts. Two
// adapters implement the same contract: MongoDB for production and an
// in-memory store for tests.
package storage

import (
	"context"
	"errors"

	"github.com/riorajhon/lotteryd/pkg/draws"
	"github.com/riorajhon/lotteryd/pkg/engine"
	"github.com/riorajhon/lotteryd/pkg/lottery"
)

// Static errors
var (
	ErrUnknownDegree = errors.New("no combination name for degree")
	ErrUnknownPool   = errors.New("pool is not part of the game")
)

// DateWindow bounds a query by YYYY-MM-DD date, inclusive on both ends.
// Empty strings leave the corresponding end unbounded.
type DateWindow struct {
	From string
	To   string
}

// Contains reports whether the date falls inside the window. Dates are
// sortable strings so plain comparison is enough.
func (w DateWindow) Contains(date string) bool {
	if w.From != "" && date < w.From {
		return false
	}
	if w.To != "" && date > w.To {
		return false
	}
	return true
}

// Page is a limit/offset pair for list queries. A zero limit means the
// adapter's default page size.
type Page struct {
	Limit  int
	Offset int
}

const defaultPageSize = 50

func (p Page) limit() int {
	if p.Limit <= 0 {
		return defaultPageSize
	}
	return p.Limit
}

// Store is the persistence contract shared by the mongo and memory adapters.
type Store interface {
	// SaveRawDraws upserts raw records keyed by id_sorteo and returns how
	// many were not previously stored.
	SaveRawDraws(ctx context.Context, cfg *lottery.Config, raws []draws.RawDraw) (int, error)

	// RawDraws returns every stored raw record for the game inside the
	// window, ordered by draw date ascending.
	RawDraws(ctx context.Context, cfg *lottery.Config, window DateWindow) ([]draws.RawDraw, error)

	// ListRawDraws is the paginated variant for the query API, ordered by
	// draw date descending. The second return is the total match count.
	ListRawDraws(ctx context.Context, cfg *lottery.Config, window DateWindow, page Page) ([]draws.RawDraw, int, error)

	// BetSeries returns the per-draw betting figures inside the window,
	// ordered by draw date ascending.
	BetSeries(ctx context.Context, cfg *lottery.Config, window DateWindow) ([]BetPoint, error)

	// CommitResult persists one draw's artifacts as a unit: snapshot upsert
	// by draw_id plus idempotent history appends.
	CommitResult(ctx context.Context, cfg *lottery.Config, res *engine.Result) error

	// LastSnapshot returns the feature snapshot with the highest draw index,
	// or nil when no features exist yet.
	LastSnapshot(ctx context.Context, cfg *lottery.Config) (*engine.Snapshot, error)

	// ComboLastSeen returns the latest appearance index per tracked
	// combination, grouped by degree.
	ComboLastSeen(ctx context.Context, cfg *lottery.Config) (map[int]map[engine.Combo]int, error)

	// ResetDerived drops every derived artifact for the game. Raw draws and
	// scrape metadata survive.
	ResetDerived(ctx context.Context, cfg *lottery.Config) error

	// Features returns snapshots ordered by draw date descending, paginated.
	// The second return is the total snapshot count.
	Features(ctx context.Context, cfg *lottery.Config, page Page) ([]engine.Snapshot, int, error)

	// NumberHistory returns the appearance log of one number in one pool,
	// filtered to the window, ordered by draw index ascending.
	NumberHistory(ctx context.Context, cfg *lottery.Config, pool string, number int, window DateWindow) ([]engine.Appearance, error)

	// NumberHistoryDates returns the appearance dates of every number in the
	// pool, keyed by number.
	NumberHistoryDates(ctx context.Context, cfg *lottery.Config, pool string) (map[int][]string, error)

	// LastScrapedDate returns the recorded last draw date for a game slug,
	// empty when never scraped.
	LastScrapedDate(ctx context.Context, slug string) (string, error)

	// SetLastScrapedDate records the last draw date for a game slug.
	SetLastScrapedDate(ctx context.Context, slug, date string) error
}

// comboNames maps a combination degree to its persisted type name.
var comboNames = map[int]string{
	2: "pair",
	3: "trio",
	4: "quad",
}

// ComboName returns the persisted type name for a combination degree.
func ComboName(degree int) (string, error) {
	name, ok := comboNames[degree]
	if !ok {
		return "", ErrUnknownDegree
	}
	return name, nil
}

// comboDegree is the reverse of ComboName.
func comboDegree(name string) (int, bool) {
	for degree, n := range comboNames {
		if n == name {
			return degree, true
		}
	}
	return 0, false
}

// ResultSink adapts a Store to the engine's per-draw commit interface for a
// fixed game.
type ResultSink struct {
	store Store
	cfg   *lottery.Config
}

// NewResultSink binds a store and a game into an engine sink.
func NewResultSink(store Store, cfg *lottery.Config) *ResultSink {
	return &ResultSink{store: store, cfg: cfg}
}

// Commit persists one result through the underlying store.
func (s *ResultSink) Commit(ctx context.Context, res *engine.Result) error {
	return s.store.CommitResult(ctx, s.cfg, res)
}
