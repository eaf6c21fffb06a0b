package draws_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riorajhon/lotteryd/pkg/draws"
)

func TestParseCount(t *testing.T) {
	tests := []struct {
		input string
		want  *int
	}{
		{"12.345.678", intPtr(12345678)},
		{"1,234", intPtr(1234)},
		{"42", intPtr(42)},
		{" 7 ", intPtr(7)},
		{"", nil},
		{"n/a", nil},
		{"12x34", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := draws.ParseCount(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  *float64
	}{
		{"1.234.567,89", floatPtr(1234567.89)},
		{"950,50", floatPtr(950.50)},
		{"1000", floatPtr(1000)},
		{"0,00", floatPtr(0)},
		{"", nil},
		{"sin datos", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := draws.ParseAmount(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func floatPtr(v float64) *float64 { return &v }
