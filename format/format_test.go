package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount float64
		signed bool
		want   string
	}{
		{"zero", 0, false, "$0"},
		{"thousands", 3000, false, "$3,000"},
		{"rounds", 1234.6, false, "$1,235"},
		{"negative unsigned", -250, false, "$250"},
		{"positive signed", 200, true, "+$200"},
		{"negative signed", -100, true, "-$100"},
		{"zero signed", 0, true, "$0"},
		{"millions", 1250000, false, "$1,250,000"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Currency(tt.amount, tt.signed))
		})
	}
}

func TestPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "3.3%", Percent(3.333, false))
	assert.Equal(t, "+3.3%", Percent(3.333, true))
	assert.Equal(t, "-12.5%", Percent(-12.5, true))
	assert.Equal(t, "0.0%", Percent(0, true))
}

func TestRoundAndFixed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 42.9, Round(150.0/350.0*100, 1))
	assert.Equal(t, 3.3, Round(100.0/3000.0*100, 1))
	assert.Equal(t, "42.9", Fixed(150.0/350.0*100, 1))
	assert.Equal(t, "563.50", Fixed(563.5, 2))
	assert.Equal(t, "450", Fixed(450, 0))
	assert.True(t, math.IsNaN(Round(math.NaN(), 1)))
	assert.Equal(t, "Infinity", Fixed(math.Inf(1), 1))
}

func TestNumber(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1,234.57", Number(1234.567, 2))
	assert.Equal(t, "12", Number(12.4, 0))
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 10.0, PercentChange(100, 110), 1e-9)
	assert.Equal(t, 0.0, PercentChange(0, 110))
	assert.InDelta(t, 150.0/350.0, RiskReward(150, 350), 1e-12)
	assert.Equal(t, 0.0, RiskReward(150, 0))
	assert.Equal(t, 1, PositionSize(3000, 15, 350))
	assert.Equal(t, 0, PositionSize(3000, 15, 0))
}

func TestValidateTradeInputs(t *testing.T) {
	t.Parallel()

	good := TradeInputs{Type: "bullPut", CurrentPrice: 570, ShortStrike: 565, LongStrike: 560, Credit: 150, DTE: 30}
	assert.Empty(t, ValidateTradeInputs(good))

	bearGood := TradeInputs{Type: "bearCall", CurrentPrice: 570, ShortStrike: 575, LongStrike: 580, Credit: 150, DTE: 30}
	assert.Empty(t, ValidateTradeInputs(bearGood))

	tests := []struct {
		name string
		in   TradeInputs
		want []string
	}{
		{
			name: "inverted bull put",
			in:   TradeInputs{Type: "bullPut", CurrentPrice: 570, ShortStrike: 560, LongStrike: 565, Credit: 150, DTE: 30},
			want: []string{"For bull put spreads, short strike must be higher than long strike"},
		},
		{
			name: "inverted bear call",
			in:   TradeInputs{Type: "bearCall", CurrentPrice: 570, ShortStrike: 580, LongStrike: 575, Credit: 150, DTE: 30},
			want: []string{"For bear call spreads, short strike must be lower than long strike"},
		},
		{
			name: "out of range",
			in:   TradeInputs{Type: "bullPut", CurrentPrice: math.NaN(), ShortStrike: 565, LongStrike: 560, Credit: 1000, DTE: 0},
			want: []string{
				"Current price must be a valid number between 0 and 10,000",
				"Credit must be a valid number between 0 and 1,000",
				"DTE must be between 1 and 365 days",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ValidateTradeInputs(tt.in))
		})
	}
}
