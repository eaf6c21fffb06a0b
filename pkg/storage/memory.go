package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/riorajhon/lotteryd/pkg/draws"
	"github.com/riorajhon/lotteryd/pkg/engine"
	"github.com/riorajhon/lotteryd/pkg/lottery"
)

type numberKey struct {
	pool   string
	number int
}

type comboKey struct {
	degree int
	combo  engine.Combo
}

type memoryGame struct {
	raws      map[string]draws.RawDraw
	snapshots map[string]engine.Snapshot
	numbers   map[numberKey][]engine.Appearance
	combos    map[comboKey][]engine.Appearance
}

func newMemoryGame() *memoryGame {
	return &memoryGame{
		raws:      map[string]draws.RawDraw{},
		snapshots: map[string]engine.Snapshot{},
		numbers:   map[numberKey][]engine.Appearance{},
		combos:    map[comboKey][]engine.Appearance{},
	}
}

// Memory is an in-process Store used by tests. It reproduces the mongo
// adapter's idempotence semantics: snapshot replace by draw_id and history
// appends filtered by draw index.
type Memory struct {
	mu       sync.Mutex
	games    map[string]*memoryGame
	metadata map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		games:    map[string]*memoryGame{},
		metadata: map[string]string{},
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) game(slug string) *memoryGame {
	g, ok := m.games[slug]
	if !ok {
		g = newMemoryGame()
		m.games[slug] = g
	}
	return g
}

func (m *Memory) SaveRawDraws(_ context.Context, cfg *lottery.Config, raws []draws.RawDraw) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.game(cfg.Slug)
	saved := 0
	for _, raw := range raws {
		if _, exists := g.raws[raw.DrawID]; !exists {
			saved++
		}
		g.raws[raw.DrawID] = raw
	}
	return saved, nil
}

func (m *Memory) rawsInWindow(cfg *lottery.Config, window DateWindow) []draws.RawDraw {
	g := m.game(cfg.Slug)
	out := make([]draws.RawDraw, 0, len(g.raws))
	for _, raw := range g.raws {
		if window.Contains(raw.DateOnly()) {
			out = append(out, raw)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].DrawID < out[j].DrawID
	})
	return out
}

func (m *Memory) RawDraws(_ context.Context, cfg *lottery.Config, window DateWindow) ([]draws.RawDraw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.rawsInWindow(cfg, window), nil
}

func (m *Memory) ListRawDraws(_ context.Context, cfg *lottery.Config, window DateWindow, page Page) ([]draws.RawDraw, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	asc := m.rawsInWindow(cfg, window)
	total := len(asc)

	// Descending for listings
	for i, j := 0, len(asc)-1; i < j; i, j = i+1, j-1 {
		asc[i], asc[j] = asc[j], asc[i]
	}

	return slicePage(asc, page), total, nil
}

func (m *Memory) BetSeries(_ context.Context, cfg *lottery.Config, window DateWindow) ([]BetPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return betPoints(m.rawsInWindow(cfg, window)), nil
}

func (m *Memory) CommitResult(_ context.Context, cfg *lottery.Config, res *engine.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.game(cfg.Slug)
	g.snapshots[res.Snapshot.DrawID] = res.Snapshot

	for _, app := range res.Numbers {
		key := numberKey{pool: app.Pool, number: app.Number}
		g.numbers[key] = appendOnce(g.numbers[key], app.Appearance)
	}

	for _, app := range res.Combos {
		key := comboKey{degree: app.Degree, combo: engine.NewCombo(app.Combo)}
		g.combos[key] = appendOnce(g.combos[key], app.Appearance)
	}

	return nil
}

// appendOnce appends unless an entry for the same draw index already exists.
func appendOnce(log []engine.Appearance, app engine.Appearance) []engine.Appearance {
	for _, existing := range log {
		if existing.DrawIndex == app.DrawIndex {
			return log
		}
	}
	return append(log, app)
}

func (m *Memory) sortedSnapshots(cfg *lottery.Config) []engine.Snapshot {
	g := m.game(cfg.Slug)
	out := make([]engine.Snapshot, 0, len(g.snapshots))
	for _, snap := range g.snapshots {
		out = append(out, snap)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DrawIndex < out[j].DrawIndex
	})
	return out
}

func (m *Memory) LastSnapshot(_ context.Context, cfg *lottery.Config) (*engine.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snaps := m.sortedSnapshots(cfg)
	if len(snaps) == 0 {
		return nil, nil
	}
	last := snaps[len(snaps)-1]
	return &last, nil
}

func (m *Memory) ComboLastSeen(_ context.Context, cfg *lottery.Config) (map[int]map[engine.Combo]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.game(cfg.Slug)
	out := map[int]map[engine.Combo]int{}
	for key, log := range g.combos {
		if len(log) == 0 {
			continue
		}
		if out[key.degree] == nil {
			out[key.degree] = map[engine.Combo]int{}
		}
		out[key.degree][key.combo] = log[len(log)-1].DrawIndex
	}
	return out, nil
}

func (m *Memory) ResetDerived(_ context.Context, cfg *lottery.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.game(cfg.Slug)
	g.snapshots = map[string]engine.Snapshot{}
	g.numbers = map[numberKey][]engine.Appearance{}
	g.combos = map[comboKey][]engine.Appearance{}
	return nil
}

func (m *Memory) Features(_ context.Context, cfg *lottery.Config, page Page) ([]engine.Snapshot, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snaps := m.sortedSnapshots(cfg)
	total := len(snaps)

	// Descending date order, same as draw-index descending
	for i, j := 0, len(snaps)-1; i < j; i, j = i+1, j-1 {
		snaps[i], snaps[j] = snaps[j], snaps[i]
	}

	return slicePage(snaps, page), total, nil
}

func (m *Memory) NumberHistory(_ context.Context, cfg *lottery.Config, pool string, number int, window DateWindow) ([]engine.Appearance, error) {
	if _, err := poolByName(cfg, pool); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.game(cfg.Slug)
	var out []engine.Appearance
	for _, app := range g.numbers[numberKey{pool: pool, number: number}] {
		if window.Contains(app.Date) {
			out = append(out, app)
		}
	}
	return out, nil
}

func (m *Memory) NumberHistoryDates(_ context.Context, cfg *lottery.Config, pool string) (map[int][]string, error) {
	if _, err := poolByName(cfg, pool); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.game(cfg.Slug)
	out := map[int][]string{}
	for key, log := range g.numbers {
		if key.pool != pool {
			continue
		}
		for _, app := range log {
			out[key.number] = append(out[key.number], app.Date)
		}
	}
	return out, nil
}

func (m *Memory) LastScrapedDate(_ context.Context, slug string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.metadata[slug], nil
}

func (m *Memory) SetLastScrapedDate(_ context.Context, slug, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metadata[slug] = date
	return nil
}

func slicePage[T any](items []T, page Page) []T {
	start := page.Offset
	if start > len(items) {
		start = len(items)
	}
	end := start + page.limit()
	if end > len(items) {
		end = len(items)
	}
	return append([]T(nil), items[start:end]...)
}

func poolByName(cfg *lottery.Config, name string) (lottery.Pool, error) {
	for _, pool := range cfg.Pools() {
		if pool.Name == name {
			return pool, nil
		}
	}
	return lottery.Pool{}, ErrUnknownPool
}
