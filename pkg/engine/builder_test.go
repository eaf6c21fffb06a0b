package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riorajhon/lotteryd/internal/testutil"
	"github.com/riorajhon/lotteryd/pkg/draws"
	"github.com/riorajhon/lotteryd/pkg/engine"
	"github.com/riorajhon/lotteryd/pkg/lottery"
)

// captureSink records every committed result in order.
type captureSink struct {
	results []*engine.Result
}

func (s *captureSink) Commit(_ context.Context, res *engine.Result) error {
	s.results = append(s.results, res)
	return nil
}

func pick6() *lottery.Config {
	return &lottery.Config{
		Slug:         "pick6",
		DisplayName:  "Pick 6",
		GameID:       "PIK6",
		Primary:      lottery.Pool{Name: "main", Min: 1, Max: 49, DrawSize: 6},
		ComboDegrees: []int{2, 3},
		HotColdCount: 5,
	}
}

func rebuild(t *testing.T, cfg *lottery.Config, ds []draws.Draw) []*engine.Result {
	t.Helper()
	eng, err := engine.New(cfg)
	require.NoError(t, err)
	sink := &captureSink{}
	_, err = eng.Rebuild(context.Background(), ds, sink)
	require.NoError(t, err)
	require.Len(t, sink.results, len(ds))
	return sink.results
}

func gapAt(t *testing.T, snap engine.Snapshot, pool lottery.Pool, n int) *int {
	t.Helper()
	return snap.PrimaryGaps[pool.Offset(n)]
}

func TestRebuildTwoDrawScenario(t *testing.T) {
	cfg := pick6()
	ds := []draws.Draw{
		{ID: "d0", Date: "2024-01-01", Primary: []int{1, 2, 3, 4, 5, 6}},
		{ID: "d1", Date: "2024-01-03", Primary: []int{1, 2, 7, 8, 9, 10}},
	}

	results := rebuild(t, cfg, ds)
	first, second := results[0].Snapshot, results[1].Snapshot

	t.Run("first snapshot has no history", func(t *testing.T) {
		assert.Equal(t, 0, first.DrawIndex)
		assert.Equal(t, "Monday", first.Weekday)
		assert.Nil(t, first.PrevDrawID)
		assert.Empty(t, first.HotPrimary)
		assert.Empty(t, first.ColdPrimary)
		for n := cfg.Primary.Min; n <= cfg.Primary.Max; n++ {
			assert.Zero(t, first.PrimaryFreq[cfg.Primary.Offset(n)])
			assert.Nil(t, gapAt(t, first, cfg.Primary, n))
		}
	})

	t.Run("second snapshot reflects only the first draw", func(t *testing.T) {
		assert.Equal(t, 1, second.DrawIndex)
		require.NotNil(t, second.PrevDrawID)
		assert.Equal(t, "d0", *second.PrevDrawID)
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, second.PrevPrimary)

		for n := cfg.Primary.Min; n <= cfg.Primary.Max; n++ {
			want := 0
			if n <= 6 {
				want = 1
			}
			assert.Equal(t, want, second.PrimaryFreq[cfg.Primary.Offset(n)], "freq of %d", n)

			gap := gapAt(t, second, cfg.Primary, n)
			if n <= 6 {
				require.NotNil(t, gap, "gap of %d", n)
				assert.Equal(t, 1, *gap)
			} else {
				assert.Nil(t, gap, "gap of %d", n)
			}
		}
	})

	t.Run("hot and cold at index one", func(t *testing.T) {
		// All of 1-6 are tied at frequency one: ascending tie-break
		assert.Equal(t, []int{1, 2, 3, 4, 5}, second.HotPrimary)
		// Zero-frequency numbers dominate cold, ascending
		assert.Equal(t, []int{7, 8, 9, 10, 11}, second.ColdPrimary)
	})

	t.Run("number history appearances", func(t *testing.T) {
		ones := appearancesOf(results, "main", 1)
		require.Len(t, ones, 2)
		assert.Equal(t, 0, ones[0].DrawIndex)
		assert.Nil(t, ones[0].Gap)
		assert.Equal(t, 1, ones[1].DrawIndex)
		require.NotNil(t, ones[1].Gap)
		assert.Equal(t, 1, *ones[1].Gap)

		sevens := appearancesOf(results, "main", 7)
		require.Len(t, sevens, 1)
		assert.Equal(t, 1, sevens[0].DrawIndex)
		assert.Nil(t, sevens[0].Gap)
	})

	t.Run("combo history appearances", func(t *testing.T) {
		repeat := comboAppearancesOf(results, 2, []int{1, 2})
		require.Len(t, repeat, 2)
		assert.Nil(t, repeat[0].Gap)
		require.NotNil(t, repeat[1].Gap)
		assert.Equal(t, 1, *repeat[1].Gap)

		fresh := comboAppearancesOf(results, 2, []int{1, 7})
		require.Len(t, fresh, 1)
		assert.Equal(t, 1, fresh[0].DrawIndex)
		assert.Nil(t, fresh[0].Gap)
	})
}

func appearancesOf(results []*engine.Result, pool string, n int) []engine.Appearance {
	var out []engine.Appearance
	for _, res := range results {
		for _, app := range res.Numbers {
			if app.Pool == pool && app.Number == n {
				out = append(out, app.Appearance)
			}
		}
	}
	return out
}

func comboAppearancesOf(results []*engine.Result, degree int, combo []int) []engine.Appearance {
	var out []engine.Appearance
	for _, res := range results {
		for _, app := range res.Combos {
			if app.Degree == degree && assert.ObjectsAreEqual(combo, app.Combo) {
				out = append(out, app.Appearance)
			}
		}
	}
	return out
}

func TestGapLaw(t *testing.T) {
	cfg := testutil.SmallGame()
	ds := testutil.GenerateDraws(cfg, 60, 7)
	results := rebuild(t, cfg, ds)

	lastSeen := map[int]int{}
	for i, res := range results {
		for n := cfg.Primary.Min; n <= cfg.Primary.Max; n++ {
			gap := res.Snapshot.PrimaryGaps[cfg.Primary.Offset(n)]
			if seen, ok := lastSeen[n]; ok {
				require.NotNil(t, gap, "draw %d number %d", i, n)
				assert.Equal(t, i-seen, *gap, "draw %d number %d", i, n)
			} else {
				assert.Nil(t, gap, "draw %d number %d", i, n)
			}
		}
		for _, n := range ds[i].Primary {
			lastSeen[n] = i
		}
	}
}

func TestHotColdTieBreak(t *testing.T) {
	cfg := testutil.SmallGame()
	// 9 and 2 tie at one appearance each; 2 must rank first in both lists
	ds := []draws.Draw{
		{ID: "a", Date: "2024-02-01", Primary: []int{9, 2, 5}},
		{ID: "b", Date: "2024-02-05", Primary: []int{1, 3, 4}},
	}
	results := rebuild(t, cfg, ds)
	snap := results[1].Snapshot

	assert.Equal(t, []int{2, 5, 9}, snap.HotPrimary)
	assert.Equal(t, []int{1, 3, 4, 6, 7}, snap.ColdPrimary)
}

func TestRebuildIdempotence(t *testing.T) {
	cfg := testutil.SmallGame()
	ds := testutil.GenerateDraws(cfg, 40, 11)

	first := rebuild(t, cfg, ds)
	second := rebuild(t, cfg, ds)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i], second[i], "result %d", i)
	}
}

func TestNoLookAhead(t *testing.T) {
	cfg := testutil.SmallGame()
	ds := testutil.GenerateDraws(cfg, 30, 3)

	base := rebuild(t, cfg, ds)

	// Mutating a later draw must not change any earlier snapshot
	mutated := make([]draws.Draw, len(ds))
	copy(mutated, ds)
	cut := 20
	mutated[cut].Primary = []int{1, 2, 3}
	mutatedResults := rebuild(t, cfg, mutated)

	for i := 0; i < cut; i++ {
		assert.Equal(t, base[i], mutatedResults[i], "result %d changed", i)
	}

	// Truncating the history must not change surviving snapshots either
	truncated := rebuild(t, cfg, ds[:cut])
	for i := 0; i < cut; i++ {
		assert.Equal(t, base[i], truncated[i], "result %d changed after truncation", i)
	}
}

func TestStageRejectsInvalidDraw(t *testing.T) {
	cfg := testutil.SmallGame()
	eng, err := engine.New(cfg)
	require.NoError(t, err)
	st := eng.NewState()

	_, err = eng.Stage(st, draws.Draw{ID: "bad", Date: "2024-01-01", Primary: []int{1, 2}})
	require.ErrorIs(t, err, draws.ErrArity)

	_, err = eng.Stage(st, draws.Draw{ID: "bad", Date: "2024-01-01", Primary: []int{1, 2, 99}})
	require.ErrorIs(t, err, draws.ErrOutOfRange)
}

func TestSecondaryPoolTracking(t *testing.T) {
	cfg := lottery.Euromillones()
	ds := []draws.Draw{
		{ID: "e0", Date: "2024-03-01", Primary: []int{10, 20, 30, 40, 50}, Secondary: []int{3, 7}},
		{ID: "e1", Date: "2024-03-05", Primary: []int{10, 21, 31, 41, 49}, Secondary: []int{3, 9}},
	}
	results := rebuild(t, cfg, ds)
	snap := results[1].Snapshot

	star := *cfg.Secondary
	assert.Equal(t, 1, snap.SecondaryFreq[star.Offset(3)])
	assert.Equal(t, 1, snap.SecondaryFreq[star.Offset(7)])
	assert.Zero(t, snap.SecondaryFreq[star.Offset(9)])

	gap := snap.SecondaryGaps[star.Offset(3)]
	require.NotNil(t, gap)
	assert.Equal(t, 1, *gap)
	assert.Nil(t, snap.SecondaryGaps[star.Offset(9)])

	// Combos are tracked for the primary pool only
	for _, res := range results {
		for _, app := range res.Combos {
			for _, member := range app.Combo {
				assert.True(t, cfg.Primary.Contains(member))
			}
		}
	}
}
