package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riorajhon/lotteryd/internal/testutil"
	"github.com/riorajhon/lotteryd/pkg/draws"
	"github.com/riorajhon/lotteryd/pkg/engine"
	"github.com/riorajhon/lotteryd/pkg/lottery"
)

func TestComboCanonicalization(t *testing.T) {
	assert.Equal(t, engine.NewCombo([]int{3, 7}), engine.NewCombo([]int{7, 3}))
	assert.Equal(t, engine.NewCombo([]int{9, 1, 5}), engine.NewCombo([]int{5, 9, 1}))
	assert.NotEqual(t, engine.NewCombo([]int{3, 7}), engine.NewCombo([]int{3, 8}))

	combo := engine.NewCombo([]int{7, 3})
	assert.Equal(t, []int{3, 7}, combo.Members(2))
}

func TestComboAppearancesCoverAllSubsets(t *testing.T) {
	cfg := lottery.Euromillones() // 5 mains: 10 pairs + 10 trios
	ds := testutil.GenerateDraws(cfg, 1, 21)
	results := rebuild(t, cfg, ds)

	pairs, trios := 0, 0
	for _, app := range results[0].Combos {
		switch app.Degree {
		case 2:
			pairs++
			require.Len(t, app.Combo, 2)
			assert.Less(t, app.Combo[0], app.Combo[1])
		case 3:
			trios++
			require.Len(t, app.Combo, 3)
			assert.Less(t, app.Combo[0], app.Combo[1])
			assert.Less(t, app.Combo[1], app.Combo[2])
		}
	}
	assert.Equal(t, 10, pairs)
	assert.Equal(t, 10, trios)
}

func TestApplyAdvancesState(t *testing.T) {
	cfg := testutil.SmallGame()
	eng, err := engine.New(cfg)
	require.NoError(t, err)

	st := eng.NewState()
	d := draws.Draw{ID: "d0", Date: "2024-01-01", Primary: []int{2, 9, 4}}
	eng.Apply(st, d)

	assert.Equal(t, 1, st.NextIndex)
	for _, n := range d.Primary {
		off := cfg.Primary.Offset(n)
		assert.Equal(t, 1, st.Primary.Freq[off])
		assert.Equal(t, 0, st.Primary.LastSeen[off])
	}
	require.NotNil(t, st.Prev)
	assert.Equal(t, "d0", st.Prev.ID)
	assert.Equal(t, "Monday", st.Prev.Weekday)

	// Pairs of {2,4,9} tracked under canonical keys
	assert.Contains(t, st.Combos[2], engine.NewCombo([]int{2, 4}))
	assert.Contains(t, st.Combos[2], engine.NewCombo([]int{2, 9}))
	assert.Contains(t, st.Combos[2], engine.NewCombo([]int{4, 9}))
	assert.Len(t, st.Combos[2], 3)
}

func TestStageDoesNotMutateState(t *testing.T) {
	cfg := testutil.SmallGame()
	eng, err := engine.New(cfg)
	require.NoError(t, err)

	st := eng.NewState()
	d := draws.Draw{ID: "d0", Date: "2024-01-01", Primary: []int{1, 2, 3}}

	first, err := eng.Stage(st, d)
	require.NoError(t, err)
	second, err := eng.Stage(st, d)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 0, st.NextIndex)
	assert.Nil(t, st.Prev)
}

func TestNewRejectsUnsupportedDegrees(t *testing.T) {
	cfg := &lottery.Config{
		Slug:         "wide",
		Primary:      lottery.Pool{Name: "main", Min: 1, Max: 20, DrawSize: 8},
		ComboDegrees: []int{5},
		HotColdCount: 5,
	}
	_, err := engine.New(cfg)
	require.ErrorIs(t, err, engine.ErrComboDegree)
}
