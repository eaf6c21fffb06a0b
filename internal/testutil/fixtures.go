// Package testutil provides shared test fixtures: deterministic draw
// histories and an in-memory redis.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/riorajhon/lotteryd/pkg/draws"
	"github.com/riorajhon/lotteryd/pkg/lottery"
)

// SmallGame is a compact single-pool game used to keep fixture histories
// readable: 3 of 1-10, pairs tracked.
func SmallGame() *lottery.Config {
	return &lottery.Config{
		Slug:         "testgame",
		DisplayName:  "Test Game",
		GameID:       "TEST",
		Primary:      lottery.Pool{Name: "main", Min: 1, Max: 10, DrawSize: 3},
		ComboDegrees: []int{2},
		HotColdCount: 5,
	}
}

// GenerateDraws produces n valid draws for the game with strictly increasing
// dates. The same seed always yields the same history.
func GenerateDraws(cfg *lottery.Config, n int, seed int64) []draws.Draw {
	rng := rand.New(rand.NewSource(seed))
	out := make([]draws.Draw, 0, n)
	date := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < n; i++ {
		d := draws.Draw{
			ID:      fmt.Sprintf("%s-%04d", cfg.Slug, i),
			Date:    date.Format(draws.DateLayout),
			Primary: samplePool(rng, cfg.Primary),
		}
		if cfg.HasSecondary() {
			d.Secondary = samplePool(rng, *cfg.Secondary)
		}
		out = append(out, d)
		date = date.AddDate(0, 0, 1+rng.Intn(3))
	}
	return out
}

func samplePool(rng *rand.Rand, pool lottery.Pool) []int {
	perm := rng.Perm(pool.Size())
	nums := make([]int, pool.DrawSize)
	for i := range nums {
		nums[i] = pool.Number(perm[i])
	}
	return nums
}
