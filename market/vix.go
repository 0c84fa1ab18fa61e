// Package market turns market data readings into qualitative signals for
// credit spread entries. The figures are heuristics, not models.
package market

import (
	"fmt"
	"math"
)

// Signal is a recommendation attached to an environment reading.
type Signal string

const (
	SignalFavorable Signal = "FAVORABLE"
	SignalGood      Signal = "GOOD"
	SignalCaution   Signal = "CAUTION"
	SignalAvoid     Signal = "AVOID"
	SignalUnknown   Signal = "UNKNOWN"
)

// VIXReading is a volatility index quote. Available is false when the data
// provider could not supply one; Level is then meaningless.
type VIXReading struct {
	Level         float64 `json:"level"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Available     bool    `json:"available"`
	NeedsAPIKey   bool    `json:"needsApiKey,omitempty"`
}

func (r VIXReading) known() bool {
	return r.Available && !math.IsNaN(r.Level) && !math.IsInf(r.Level, 0)
}

// VIXEnvironment classifies a VIX level.
type VIXEnvironment struct {
	Environment    string `json:"environment"`
	Recommendation Signal `json:"recommendation"`
	Analysis       string `json:"analysis"`
}

type vixBand struct {
	Below          float64
	Environment    string
	Recommendation Signal
	Analysis       string
}

// Checked in order; the last band catches everything above.
var vixBands = []vixBand{
	{12, "Very Low", SignalAvoid, "indicates extremely low volatility. Credit spread premiums will be poor."},
	{15, "Low", SignalCaution, "shows low volatility. Credit spreads may offer limited premiums."},
	{20, "Ideal", SignalFavorable, "is in the sweet spot for credit spreads. Good premium collection with manageable risk."},
	{25, "Moderate", SignalGood, "indicates moderate volatility. Credit spreads can work well."},
	{30, "High", SignalCaution, "shows elevated volatility. Credit spreads face higher risk."},
	{math.Inf(1), "Very High", SignalAvoid, "indicates extreme volatility. Credit spreads are very risky."},
}

// AnalyzeVIX maps a reading onto the band table. Unavailable readings are
// Unknown rather than an error.
func AnalyzeVIX(r VIXReading) VIXEnvironment {
	if !r.known() {
		return VIXEnvironment{
			Environment:    "Unknown",
			Recommendation: SignalUnknown,
			Analysis:       "VIX data unavailable.",
		}
	}
	for _, b := range vixBands {
		if r.Level < b.Below {
			return VIXEnvironment{
				Environment:    b.Environment,
				Recommendation: b.Recommendation,
				Analysis:       fmt.Sprintf("VIX at %.2f %s", r.Level, b.Analysis),
			}
		}
	}
	// unreachable: the last band is +Inf
	return VIXEnvironment{Environment: "Unknown", Recommendation: SignalUnknown}
}
