package market

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/spreads/format"
)

type Direction string

const (
	Up       Direction = "Up"
	Down     Direction = "Down"
	Sideways Direction = "Sideways"
)

type Strength string

const (
	Strong   Strength = "Strong"
	Moderate Strength = "Moderate"
	Weak     Strength = "Weak"
)

// Unknown is used by both Direction and Strength when there is not enough
// data to say.
const Unknown = "Unknown"

// Trend compares the mean of the last five closes against the five before.
// Change is that difference in percent, rounded to 2 decimals.
type Trend struct {
	Direction Direction `json:"direction"`
	Strength  Strength  `json:"strength"`
	Change    float64   `json:"change"`
}

var unknownTrend = Trend{Direction: Unknown, Strength: Unknown}

func (t Trend) Known() bool { return t.Direction != Unknown && t.Direction != "" }

const trendWindow = 5

// CalculateTrend needs at least ten closes, oldest first.
func CalculateTrend(closes []float64) Trend {
	if len(closes) < 2*trendWindow {
		return unknownTrend
	}
	recent := mean(closes[len(closes)-trendWindow:])
	older := mean(closes[len(closes)-2*trendWindow : len(closes)-trendWindow])
	if older == 0 {
		return unknownTrend
	}

	change := (recent - older) / older * 100
	t := Trend{Change: format.Round(change, 2)}
	switch {
	case change > -1 && change < 1:
		t.Direction, t.Strength = Sideways, Weak
	case change > 0:
		t.Direction, t.Strength = Up, strengthOf(change)
	default:
		t.Direction, t.Strength = Down, strengthOf(-change)
	}
	return t
}

func strengthOf(absChange float64) Strength {
	switch {
	case absChange > 3:
		return Strong
	case absChange > 1.5:
		return Moderate
	}
	return Weak
}

func mean(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// Candle is one daily bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// TickerData is an index ETF quote with its recent trend.
type TickerData struct {
	Symbol      string   `json:"symbol"`
	Price       float64  `json:"price"`
	Trend       Trend    `json:"trend"`
	Candles     []Candle `json:"candles,omitempty"`
	Available   bool     `json:"available"`
	NeedsAPIKey bool     `json:"needsApiKey,omitempty"`
}

// Closes returns candle closes, oldest first.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// OverallTrend combines the SPY and QQQ trends.
type OverallTrend struct {
	Strength    Strength `json:"strength"`
	Environment string   `json:"environment"`
	Analysis    string   `json:"analysis"`
}

// AnalyzeOverallTrend rates the broad market for selling premium. Sideways
// markets are best; strong aligned trends are worst.
func AnalyzeOverallTrend(spy, qqq TickerData) OverallTrend {
	if !spy.Available || !qqq.Available || !spy.Trend.Known() || !qqq.Trend.Known() {
		return OverallTrend{
			Strength:    Unknown,
			Environment: Unknown,
			Analysis:    "Insufficient trend data available.",
		}
	}

	sd, qd := spy.Trend.Direction, qqq.Trend.Direction
	ss, qs := spy.Trend.Strength, qqq.Trend.Strength

	strength := Weak
	switch {
	case (ss == Strong || qs == Strong) && sd == qd:
		strength = Strong
	case ss == Moderate || qs == Moderate:
		strength = Moderate
	}

	o := OverallTrend{Strength: strength}
	dir := strings.ToLower(string(sd))
	switch {
	case sd == Sideways && qd == Sideways:
		o.Environment = "EXCELLENT"
		o.Analysis = "Both SPY and QQQ in sideways trend. Ideal environment for credit spreads."
	case strength == Weak && (sd != qd || sd == Sideways || qd == Sideways):
		o.Environment = "GOOD"
		o.Analysis = "Weak trending or mixed signals. Good environment for credit spreads."
	case strength == Moderate:
		o.Environment = "CAUTION"
		o.Analysis = fmt.Sprintf("Moderate %s trend detected. Credit spreads face higher risk.", dir)
	case strength == Strong:
		o.Environment = "AVOID"
		o.Analysis = fmt.Sprintf("Strong %s trend in progress. High risk for credit spreads.", dir)
	default:
		o.Environment = "MIXED"
		o.Analysis = "Conflicting trends between SPY and QQQ. Exercise caution."
	}
	return o
}
