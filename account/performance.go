package account

import (
	"math"

	"github.com/rustyeddy/spreads/format"
)

// Metrics summarize closed trades. They are derived on demand and never stored.
//
// SharpeRatio is a simplified per-trade figure: the mean return on risk
// divided by its population standard deviation, with no risk-free rate and
// no annualization.
type Metrics struct {
	TotalReturn   float64 `json:"totalReturn"`
	MonthlyReturn float64 `json:"monthlyReturn"`
	WinRate       float64 `json:"winRate"`
	AvgReturn     float64 `json:"avgReturn"`
	BestTrade     float64 `json:"bestTrade"`
	WorstTrade    float64 `json:"worstTrade"`
	SharpeRatio   float64 `json:"sharpeRatio"`
	ClosedTrades  int     `json:"closedTrades"`
}

// Performance computes Metrics over closed trades. With nothing closed every
// figure is zero.
func (a *Account) Performance() Metrics {
	closed := a.ClosedTrades()
	if len(closed) == 0 {
		return Metrics{}
	}

	var (
		wins  int
		sum   float64
		best  = math.Inf(-1)
		worst = math.Inf(1)
	)
	for _, t := range closed {
		if t.PnL > 0 {
			wins++
		}
		sum += t.PnL
		best = math.Max(best, t.PnL)
		worst = math.Min(worst, t.PnL)
	}

	n := float64(len(closed))
	totalReturn := format.Round((a.balance-a.startingBalance)/a.startingBalance*100, 1)

	return Metrics{
		TotalReturn: totalReturn,
		// Monthly return is not tracked separately yet.
		MonthlyReturn: totalReturn,
		WinRate:       format.Round(float64(wins)/n*100, 1),
		AvgReturn:     format.Round(sum/n, 0),
		BestTrade:     best,
		WorstTrade:    worst,
		SharpeRatio:   sharpe(closed),
		ClosedTrades:  len(closed),
	}
}

func sharpe(closed []Trade) float64 {
	returns := make([]float64, 0, len(closed))
	for _, t := range closed {
		if r, ok := t.ReturnOnRisk(); ok {
			returns = append(returns, r)
		}
	}
	if len(returns) == 0 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return format.Round(mean/std, 2)
}
