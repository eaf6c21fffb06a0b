package draws_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riorajhon/lotteryd/pkg/draws"
	"github.com/riorajhon/lotteryd/pkg/lottery"
)

func TestParseCombinacion(t *testing.T) {
	tests := []struct {
		name           string
		combinacion    string
		numbers        []int
		complementario *int
		reintegro      *int
	}{
		{
			name:           "primitiva with annotations",
			combinacion:    "04 - 12 - 16 - 37 - 39 - 45 C(44) R(9)",
			numbers:        []int{4, 12, 16, 37, 39, 45},
			complementario: intPtr(44),
			reintegro:      intPtr(9),
		},
		{
			name:        "plain numbers",
			combinacion: "01 - 02 - 03 - 04 - 05",
			numbers:     []int{1, 2, 3, 4, 5},
		},
		{
			name:        "empty string",
			combinacion: "",
		},
		{
			name:        "reintegro only",
			combinacion: "07 - 11 - 21 - 30 - 48 R(0)",
			numbers:     []int{7, 11, 21, 30, 48},
			reintegro:   intPtr(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := draws.ParseCombinacion(tt.combinacion)
			assert.Equal(t, tt.numbers, got.Numbers)
			assert.Equal(t, tt.complementario, got.Complementario)
			assert.Equal(t, tt.reintegro, got.Reintegro)
		})
	}
}

func TestNumericTokens(t *testing.T) {
	assert.Equal(t, []int{5, 14, 26, 37, 44, 3, 8},
		draws.NumericTokens("05 - 14 - 26 - 37 - 44 - 03 - 08"))
	assert.Equal(t, []int{1, 2}, draws.NumericTokens(" 1 2 "))
	assert.Nil(t, draws.NumericTokens(""))
}

func TestDateOnly(t *testing.T) {
	raw := draws.RawDraw{Date: "2024-05-09 21:30:00"}
	assert.Equal(t, "2024-05-09", raw.DateOnly())

	raw.Date = "2024-05-09"
	assert.Equal(t, "2024-05-09", raw.DateOnly())
}

func TestWeekdayName(t *testing.T) {
	assert.Equal(t, "Thursday", draws.WeekdayName("2024-05-09"))
	assert.Equal(t, "", draws.WeekdayName("not-a-date"))
}

func TestDrawValidate(t *testing.T) {
	cfg := lottery.Euromillones()

	valid := draws.Draw{
		ID:        "2420045",
		Date:      "2024-05-09",
		Primary:   []int{5, 14, 26, 37, 44},
		Secondary: []int{3, 8},
	}
	require.NoError(t, valid.Validate(cfg))

	t.Run("missing id", func(t *testing.T) {
		d := valid
		d.ID = ""
		assert.ErrorIs(t, d.Validate(cfg), draws.ErrMissingID)
	})

	t.Run("missing date", func(t *testing.T) {
		d := valid
		d.Date = ""
		assert.ErrorIs(t, d.Validate(cfg), draws.ErrMissingDate)
	})

	t.Run("wrong arity", func(t *testing.T) {
		d := valid
		d.Primary = []int{5, 14, 26}
		assert.ErrorIs(t, d.Validate(cfg), draws.ErrArity)
	})

	t.Run("out of range", func(t *testing.T) {
		d := valid
		d.Primary = []int{5, 14, 26, 37, 51}
		assert.ErrorIs(t, d.Validate(cfg), draws.ErrOutOfRange)
	})

	t.Run("secondary out of range", func(t *testing.T) {
		d := valid
		d.Secondary = []int{3, 13}
		assert.ErrorIs(t, d.Validate(cfg), draws.ErrOutOfRange)
	})
}

func TestSequence(t *testing.T) {
	ds := []draws.Draw{
		{ID: "c", Date: "2024-03-01"},
		{ID: "a", Date: "2024-01-01"},
		{ID: "b1", Date: "2024-02-01"},
		{ID: "b2", Date: "2024-02-01"},
	}

	got := draws.Sequence(ds)
	require.Len(t, got, 4)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b1", got[1].ID)
	assert.Equal(t, "b2", got[2].ID)
	assert.Equal(t, "c", got[3].ID)

	// input untouched
	assert.Equal(t, "c", ds[0].ID)
}

func intPtr(v int) *int { return &v }
