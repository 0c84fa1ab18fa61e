// Package format holds the display and input-checking helpers shared by the
// CLI, the HTTP surface and the reports.
package format

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// usd is the whole-dollar formatter used for balances and P/L.
var usd = func() *money.Formatter {
	c := money.GetCurrency(money.USD)
	return money.NewFormatter(0, c.Decimal, c.Thousand, c.Grapheme, c.Template)
}()

// Round rounds half away from zero at the given number of decimal places.
// NaN and infinities are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Fixed renders v with exactly places decimals, e.g. Fixed(563.5, 2) == "563.50".
func Fixed(v float64, places int32) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if math.IsInf(v, 0) {
		if v > 0 {
			return "Infinity"
		}
		return "-Infinity"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Currency renders a whole-dollar amount such as "$3,000". With signed set,
// non-zero amounts carry an explicit "+" or "-".
func Currency(amount float64, signed bool) string {
	s := usd.Format(decimal.NewFromFloat(math.Abs(amount)).Round(0).IntPart())
	return withSign(s, amount, signed)
}

// Percent renders one decimal followed by "%".
func Percent(v float64, signed bool) string {
	return withSign(Fixed(math.Abs(v), 1)+"%", v, signed)
}

// Number renders v with thousands separators and a fixed number of decimals.
func Number(v float64, decimals int) string {
	f := money.NewFormatter(decimals, ".", ",", "", "1")
	return f.Format(decimal.NewFromFloat(v).Shift(int32(decimals)).Round(0).IntPart())
}

func withSign(s string, v float64, signed bool) string {
	if !signed || v == 0 {
		return s
	}
	if v > 0 {
		return "+" + s
	}
	return "-" + s
}

// PercentChange is the relative move from old to new in percent, 0 when old is 0.
func PercentChange(old, new float64) float64 {
	if old == 0 {
		return 0
	}
	return (new - old) / old * 100
}

// RiskReward is maxProfit per dollar of maxRisk, 0 when there is no risk.
func RiskReward(maxProfit, maxRisk float64) float64 {
	if maxRisk == 0 {
		return 0
	}
	return maxProfit / maxRisk
}

// PositionSize is how many spreads of maxRisk fit inside riskPercent of the balance.
func PositionSize(balance, riskPercent, maxRisk float64) int {
	if maxRisk <= 0 {
		return 0
	}
	allowed := balance * (riskPercent / 100)
	return int(math.Floor(allowed / maxRisk))
}
