package spread

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeBullPut(t *testing.T) {
	t.Parallel()

	a, err := Analyze(Params{Type: BullPut, CurrentPrice: 570, ShortStrike: 565, LongStrike: 560, Credit: 150})
	require.NoError(t, err)

	assert.Equal(t, 500.0, a.StrikeWidth)
	assert.Equal(t, 150.0, a.MaxProfit)
	assert.Equal(t, 350.0, a.MaxRisk)
	assert.Equal(t, "42.9", a.ReturnPercentString())
	assert.Equal(t, "563.50", a.BreakevenString())
	assert.Equal(t, 45, a.ProfitProbability)
	assert.InDelta(t, 0.43, a.RiskReward, 1e-9)
}

func TestAnalyzeBearCall(t *testing.T) {
	t.Parallel()

	a, err := Analyze(Params{Type: BearCall, CurrentPrice: 500, ShortStrike: 530, LongStrike: 535, Credit: 100})
	require.NoError(t, err)

	assert.Equal(t, 500.0, a.StrikeWidth)
	assert.Equal(t, 400.0, a.MaxRisk)
	assert.Equal(t, "531.00", a.BreakevenString())
	assert.Equal(t, "25.0", a.ReturnPercentString())
	assert.Equal(t, 65, a.ProfitProbability)
}

func TestAnalyzeCreditAccountingIdentity(t *testing.T) {
	t.Parallel()

	cases := []Params{
		{Type: BullPut, CurrentPrice: 100, ShortStrike: 95, LongStrike: 90, Credit: 120},
		{Type: BearCall, CurrentPrice: 250, ShortStrike: 260, LongStrike: 270, Credit: 310},
		{Type: BullPut, CurrentPrice: 4500, ShortStrike: 4400, LongStrike: 4390, Credit: 455},
	}
	for _, p := range cases {
		a, err := Analyze(p)
		require.NoError(t, err)
		assert.Equal(t, a.StrikeWidth, a.MaxProfit+a.MaxRisk)
		assert.Equal(t, a.StrikeWidth-p.Credit, a.MaxRisk)
		assert.Equal(t, p.Credit, a.MaxProfit)
	}
}

func TestAnalyzeDegenerateCredit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		credit  float64
		maxRisk float64
		ret     float64
		rr      float64
	}{
		{"credit above width", 150, -50, -300, -3},
		{"credit equals width", 100, 0, 0, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, err := Analyze(Params{Type: BullPut, CurrentPrice: 100, ShortStrike: 95, LongStrike: 94, Credit: tt.credit})
			require.NoError(t, err)
			assert.Equal(t, tt.maxRisk, a.MaxRisk)
			assert.Equal(t, tt.ret, a.ReturnPercent)
			assert.Equal(t, tt.rr, a.RiskReward)
			assert.False(t, math.IsInf(a.ReturnPercent, 0))
		})
	}
}

func TestAnalyzeInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    Params
	}{
		{"nan price", Params{Type: BullPut, CurrentPrice: math.NaN(), ShortStrike: 1, LongStrike: 2, Credit: 1}},
		{"nan short", Params{Type: BullPut, CurrentPrice: 1, ShortStrike: math.NaN(), LongStrike: 2, Credit: 1}},
		{"nan long", Params{Type: BearCall, CurrentPrice: 1, ShortStrike: 1, LongStrike: math.NaN(), Credit: 1}},
		{"inf credit", Params{Type: BearCall, CurrentPrice: 1, ShortStrike: 1, LongStrike: 2, Credit: math.Inf(1)}},
		{"no type", Params{CurrentPrice: 1, ShortStrike: 1, LongStrike: 2, Credit: 1}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Analyze(tt.p)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestParseType(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"bullPut", "Bull Put Spread", "bull_put", "BULL-PUT"} {
		got, err := ParseType(s)
		require.NoError(t, err, s)
		assert.Equal(t, BullPut, got)
	}
	got, err := ParseType("bearCall")
	require.NoError(t, err)
	assert.Equal(t, BearCall, got)
	assert.Equal(t, "Bear Call Spread", got.String())
	assert.Equal(t, "bearCall", got.Key())

	_, err = ParseType("iron condor")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProfitProbability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		price, strike float64
		want          int
	}{
		{100, 89, 85},
		{100, 92, 75},
		{100, 94, 65},
		{100, 96, 55},
		{100, 97.5, 45},
		{100, 103.5, 55},
		{0, 10, 45},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ProfitProbability(tt.price, tt.strike), "%v/%v", tt.price, tt.strike)
	}
}
