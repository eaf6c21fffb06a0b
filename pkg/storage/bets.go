package storage

import (
	"github.com/riorajhon/lotteryd/pkg/draws"
)

// BetPoint is one draw's betting figures for time-series charts. Fields stay
// nil when the upstream record lacks the value or it does not parse.
type BetPoint struct {
	DrawID  string   `json:"draw_id"`
	Date    string   `json:"date"`
	Bets    *int     `json:"apuestas"`
	Prizes  *float64 `json:"premios"`
	Jackpot *float64 `json:"premio_bote"`
}

// betPoint maps a raw record to its series point. Upstream reports premios in
// cents; premio_bote is already in euros.
func betPoint(raw *draws.RawDraw) BetPoint {
	point := BetPoint{
		DrawID:  raw.DrawID,
		Date:    raw.DateOnly(),
		Bets:    draws.ParseCount(raw.Apuestas),
		Jackpot: draws.ParseAmount(raw.PremioBote),
	}

	if prizes := draws.ParseAmount(raw.Premios); prizes != nil {
		euros := *prizes / 100
		point.Prizes = &euros
	}

	return point
}

func betPoints(raws []draws.RawDraw) []BetPoint {
	out := make([]BetPoint, 0, len(raws))
	for i := range raws {
		out = append(out, betPoint(&raws[i]))
	}
	return out
}
