package storage

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/riorajhon/lotteryd/pkg/engine"
	"github.com/riorajhon/lotteryd/pkg/lottery"
)

// Static errors for document decoding
var (
	ErrBadDocument = errors.New("malformed feature document")
)

// SnapshotDocument renders a typed snapshot into its wire form. Field names
// carry the pool names of the game (main_numbers, star_gap_draws, ...);
// secondary-pool fields are omitted when the game has a single pool.
func SnapshotDocument(cfg *lottery.Config, snap *engine.Snapshot) map[string]any {
	doc := map[string]any{
		"draw_id":    snap.DrawID,
		"draw_date":  snap.DrawDate,
		"weekday":    snap.Weekday,
		"draw_index": snap.DrawIndex,
	}

	writePool := func(pool lottery.Pool, numbers, prev, hot, cold, freq []int, gaps []*int) {
		doc[pool.Name+"_numbers"] = numbers
		doc["prev_"+pool.Name+"_numbers"] = prev
		doc["hot_"+pool.Name+"_numbers"] = hot
		doc["cold_"+pool.Name+"_numbers"] = cold
		doc[pool.Name+"_frequency_counts"] = freq
		doc[pool.Name+"_gap_draws"] = gaps
	}

	writePool(cfg.Primary, snap.Primary, snap.PrevPrimary,
		snap.HotPrimary, snap.ColdPrimary, snap.PrimaryFreq, snap.PrimaryGaps)

	if cfg.HasSecondary() {
		writePool(*cfg.Secondary, snap.Secondary, snap.PrevSecondary,
			snap.HotSecondary, snap.ColdSecondary, snap.SecondaryFreq, snap.SecondaryGaps)
	}

	doc["prev_draw_id"] = snap.PrevDrawID
	doc["prev_draw_date"] = snap.PrevDrawDate
	doc["prev_weekday"] = snap.PrevWeekday

	return doc
}

// SnapshotFromDocument is the inverse of SnapshotDocument. It tolerates the
// numeric widenings a BSON round trip introduces.
func SnapshotFromDocument(cfg *lottery.Config, doc map[string]any) (engine.Snapshot, error) {
	var snap engine.Snapshot

	var ok bool
	if snap.DrawID, ok = doc["draw_id"].(string); !ok {
		return snap, fmt.Errorf("%w: draw_id", ErrBadDocument)
	}
	if snap.DrawDate, ok = doc["draw_date"].(string); !ok {
		return snap, fmt.Errorf("%w: draw_date", ErrBadDocument)
	}
	snap.Weekday, _ = doc["weekday"].(string)

	idx, ok := asInt(doc["draw_index"])
	if !ok {
		return snap, fmt.Errorf("%w: draw_index", ErrBadDocument)
	}
	snap.DrawIndex = idx

	readPool := func(pool lottery.Pool, numbers, prev, hot, cold, freq *[]int, gaps *[]*int) {
		*numbers = asIntSlice(doc[pool.Name+"_numbers"])
		*prev = asIntSlice(doc["prev_"+pool.Name+"_numbers"])
		*hot = asIntSlice(doc["hot_"+pool.Name+"_numbers"])
		*cold = asIntSlice(doc["cold_"+pool.Name+"_numbers"])
		*freq = asIntSlice(doc[pool.Name+"_frequency_counts"])
		*gaps = asGapSlice(doc[pool.Name+"_gap_draws"])
	}

	readPool(cfg.Primary, &snap.Primary, &snap.PrevPrimary,
		&snap.HotPrimary, &snap.ColdPrimary, &snap.PrimaryFreq, &snap.PrimaryGaps)

	if cfg.HasSecondary() {
		readPool(*cfg.Secondary, &snap.Secondary, &snap.PrevSecondary,
			&snap.HotSecondary, &snap.ColdSecondary, &snap.SecondaryFreq, &snap.SecondaryGaps)
	}

	snap.PrevDrawID = asStringPtr(doc["prev_draw_id"])
	snap.PrevDrawDate = asStringPtr(doc["prev_draw_date"])
	snap.PrevWeekday = asStringPtr(doc["prev_weekday"])

	return snap, nil
}

// appearanceDocument renders one history log entry.
func appearanceDocument(app engine.Appearance) map[string]any {
	return map[string]any{
		"draw_index":           app.DrawIndex,
		"draw_id":              app.DrawID,
		"date":                 app.Date,
		"gap_draws_since_prev": app.Gap,
	}
}

func appearanceFromDocument(doc map[string]any) (engine.Appearance, error) {
	var app engine.Appearance

	idx, ok := asInt(doc["draw_index"])
	if !ok {
		return app, fmt.Errorf("%w: appearance draw_index", ErrBadDocument)
	}
	app.DrawIndex = idx
	app.DrawID, _ = doc["draw_id"].(string)
	app.Date, _ = doc["date"].(string)

	if gap, ok := asInt(doc["gap_draws_since_prev"]); ok {
		app.Gap = &gap
	}

	return app, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func asIntSlice(v any) []int {
	if a, ok := v.(primitive.A); ok {
		v = []any(a)
	}
	switch s := v.(type) {
	case nil:
		return nil
	case []int:
		return append([]int(nil), s...)
	case []any:
		out := make([]int, 0, len(s))
		for _, item := range s {
			if n, ok := asInt(item); ok {
				out = append(out, n)
			}
		}
		return out
	default:
		return nil
	}
}

func asGapSlice(v any) []*int {
	if a, ok := v.(primitive.A); ok {
		v = []any(a)
	}
	switch s := v.(type) {
	case nil:
		return nil
	case []*int:
		out := make([]*int, len(s))
		for i, g := range s {
			if g != nil {
				n := *g
				out[i] = &n
			}
		}
		return out
	case []any:
		out := make([]*int, len(s))
		for i, item := range s {
			if n, ok := asInt(item); ok {
				out[i] = &n
			}
		}
		return out
	default:
		return nil
	}
}

func asStringPtr(v any) *string {
	switch s := v.(type) {
	case nil:
		return nil
	case string:
		return &s
	case *string:
		if s == nil {
			return nil
		}
		c := *s
		return &c
	default:
		return nil
	}
}
