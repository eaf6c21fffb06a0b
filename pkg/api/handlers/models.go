package handlers

import (
	"github.com/riorajhon/lotteryd/pkg/draws"
	"github.com/riorajhon/lotteryd/pkg/engine"
	"github.com/riorajhon/lotteryd/pkg/lottery"
	"github.com/riorajhon/lotteryd/pkg/storage"
)

// PoolInfo describes one drawing pool of a game.
type PoolInfo struct {
	Name     string `json:"name"`
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	DrawSize int    `json:"draw_size"`
}

// LotteryInfo describes one registered game.
type LotteryInfo struct {
	Slug        string     `json:"slug"`
	DisplayName string     `json:"display_name"`
	Pools       []PoolInfo `json:"pools"`
}

func lotteryInfo(cfg *lottery.Config) LotteryInfo {
	info := LotteryInfo{
		Slug:        cfg.Slug,
		DisplayName: cfg.DisplayName,
	}
	for _, pool := range cfg.Pools() {
		info.Pools = append(info.Pools, PoolInfo{
			Name:     pool.Name,
			Min:      pool.Min,
			Max:      pool.Max,
			DrawSize: pool.DrawSize,
		})
	}
	return info
}

// DrawListResponse is a paginated raw draw listing.
type DrawListResponse struct {
	Lottery string          `json:"lottery"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
	Draws   []draws.RawDraw `json:"draws"`
}

// FeatureListResponse is a paginated feature snapshot listing. Snapshots are
// rendered in wire form with pool-named fields.
type FeatureListResponse struct {
	Lottery  string           `json:"lottery"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
	Features []map[string]any `json:"features"`
}

// BetSeriesResponse is the per-draw betting figure series of one game.
type BetSeriesResponse struct {
	Lottery string             `json:"lottery"`
	Points  []storage.BetPoint `json:"points"`
}

// ImportResponse reports the outcome of a bulk draw import.
type ImportResponse struct {
	Lottery string `json:"lottery"`
	Saved   int    `json:"saved"`
	Total   int    `json:"total"`
}

// AppearancePoint is one appearance-log entry.
type AppearancePoint struct {
	DrawIndex int    `json:"draw_index"`
	DrawID    string `json:"draw_id"`
	Date      string `json:"date"`
	Gap       *int   `json:"gap_draws_since_prev"`
}

func appearancePoints(apps []engine.Appearance) []AppearancePoint {
	out := make([]AppearancePoint, 0, len(apps))
	for _, app := range apps {
		out = append(out, AppearancePoint{
			DrawIndex: app.DrawIndex,
			DrawID:    app.DrawID,
			Date:      app.Date,
			Gap:       app.Gap,
		})
	}
	return out
}

// NumberHistoryResponse is the appearance log of one number.
type NumberHistoryResponse struct {
	Lottery     string            `json:"lottery"`
	Pool        string            `json:"pool"`
	Number      int               `json:"number"`
	Appearances []AppearancePoint `json:"appearances"`
}

// NumberDatesResponse groups appearance dates by number for one pool.
type NumberDatesResponse struct {
	Lottery string           `json:"lottery"`
	Pool    string           `json:"pool"`
	Dates   map[int][]string `json:"dates"`
}

// TaskResponse acknowledges an enqueued background task.
type TaskResponse struct {
	Lottery string `json:"lottery"`
	Type    string `json:"type"`
	Status  string `json:"status"`
}
