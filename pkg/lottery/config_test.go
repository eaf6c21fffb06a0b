package lottery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	pool := Pool{Name: "main", Min: 1, Max: 49, DrawSize: 6}

	assert.Equal(t, 49, pool.Size())
	assert.True(t, pool.Contains(1))
	assert.True(t, pool.Contains(49))
	assert.False(t, pool.Contains(0))
	assert.False(t, pool.Contains(50))
	assert.Equal(t, 0, pool.Offset(1))
	assert.Equal(t, 48, pool.Offset(49))
	assert.Equal(t, 7, pool.Number(pool.Offset(7)))

	zeroBased := Pool{Name: "reintegro", Min: 0, Max: 9, DrawSize: 1}
	assert.Equal(t, 10, zeroBased.Size())
	assert.Equal(t, 0, zeroBased.Offset(0))
	assert.True(t, zeroBased.Contains(0))
}

func TestPoolValidate(t *testing.T) {
	tests := []struct {
		name    string
		pool    Pool
		wantErr error
	}{
		{name: "valid", pool: Pool{Name: "main", Min: 1, Max: 49, DrawSize: 6}},
		{name: "missing name", pool: Pool{Min: 1, Max: 49, DrawSize: 6}, wantErr: ErrPoolName},
		{name: "inverted range", pool: Pool{Name: "main", Min: 10, Max: 1, DrawSize: 1}, wantErr: ErrPoolRange},
		{name: "zero draw size", pool: Pool{Name: "main", Min: 1, Max: 49}, wantErr: ErrPoolDrawSize},
		{name: "draw size exceeds pool", pool: Pool{Name: "clave", Min: 0, Max: 9, DrawSize: 11}, wantErr: ErrPoolDrawSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pool.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRegistry(t *testing.T) {
	t.Run("all games validate", func(t *testing.T) {
		for _, cfg := range All() {
			require.NoError(t, cfg.Validate(), "game %s", cfg.Slug)
		}
	})

	t.Run("daily order", func(t *testing.T) {
		order := DailyOrder()
		require.Len(t, order, 3)
		assert.Equal(t, SlugEuromillones, order[0].Slug)
		assert.Equal(t, SlugLaPrimitiva, order[1].Slug)
		assert.Equal(t, SlugElGordo, order[2].Slug)
	})

	t.Run("lookup by slug", func(t *testing.T) {
		cfg, err := BySlug(SlugEuromillones)
		require.NoError(t, err)
		assert.Equal(t, "EMIL", cfg.GameID)
		require.True(t, cfg.HasSecondary())
		assert.Equal(t, "star", cfg.Secondary.Name)
		assert.Equal(t, 2, cfg.Secondary.DrawSize)

		_, err = BySlug("powerball")
		require.ErrorIs(t, err, ErrUnknownLottery)
	})

	t.Run("pools", func(t *testing.T) {
		require.Len(t, Euromillones().Pools(), 2)
		require.Len(t, LaPrimitiva().Pools(), 2)

		noSecondary := &Config{
			Slug:         "test",
			Primary:      Pool{Name: "main", Min: 1, Max: 49, DrawSize: 6},
			HotColdCount: 5,
		}
		require.Len(t, noSecondary.Pools(), 1)
		assert.False(t, noSecondary.HasSecondary())
	})

	t.Run("combo degree bounds", func(t *testing.T) {
		cfg := ElGordo()
		cfg.ComboDegrees = []int{6}
		require.ErrorIs(t, cfg.Validate(), ErrComboDegree)
	})
}
