// Package spread analyzes vertical credit spreads: what the position can make,
// what it can lose, and where it breaks even.
package spread

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rustyeddy/spreads/format"
)

// ContractMultiplier converts a per-share strike width into dollars per contract.
const ContractMultiplier = 100

var ErrInvalidInput = errors.New("invalid trade parameters")

// Type is the spread variant.
type Type int

const (
	BullPut Type = iota + 1
	BearCall
)

func (t Type) String() string {
	switch t {
	case BullPut:
		return "Bull Put Spread"
	case BearCall:
		return "Bear Call Spread"
	}
	return "Unknown"
}

// Key is the short form used by forms and the HTTP API.
func (t Type) Key() string {
	switch t {
	case BullPut:
		return "bullPut"
	case BearCall:
		return "bearCall"
	}
	return ""
}

// ParseType accepts the short key ("bullPut"), the display name
// ("Bull Put Spread") or a hyphen/underscore variant ("bull_put").
func ParseType(s string) (Type, error) {
	norm := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s))
	norm = strings.TrimSuffix(norm, "spread")
	switch norm {
	case "bullput":
		return BullPut, nil
	case "bearcall":
		return BearCall, nil
	}
	return 0, fmt.Errorf("%w: unknown spread type %q", ErrInvalidInput, s)
}

// Params are the raw inputs of a proposed spread. Credit is the premium in
// dollars per contract.
type Params struct {
	Type         Type
	CurrentPrice float64
	ShortStrike  float64
	LongStrike   float64
	Credit       float64
}

// Analysis is derived from Params and never stored.
type Analysis struct {
	MaxProfit         float64 `json:"maxProfit"`
	MaxRisk           float64 `json:"maxRisk"`
	ReturnPercent     float64 `json:"returnPercent"`
	Breakeven         float64 `json:"breakeven"`
	StrikeWidth       float64 `json:"strikeWidth"`
	ProfitProbability int     `json:"profitProbability"`
	RiskReward        float64 `json:"riskReward"`
}

// Analyze computes the risk and reward of p. MaxRisk is strike width less
// credit and is not checked for sign: a credit at or above the width gives
// zero or negative risk, and callers see that as is.
func Analyze(p Params) (Analysis, error) {
	for _, v := range []float64{p.CurrentPrice, p.ShortStrike, p.LongStrike, p.Credit} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Analysis{}, ErrInvalidInput
		}
	}
	if p.Type != BullPut && p.Type != BearCall {
		return Analysis{}, fmt.Errorf("%w: unknown spread type", ErrInvalidInput)
	}

	width := math.Abs(p.ShortStrike-p.LongStrike) * ContractMultiplier
	maxProfit := p.Credit
	maxRisk := width - p.Credit

	var returnPct float64
	if maxRisk != 0 {
		returnPct = format.Round(maxProfit/maxRisk*100, 1)
	}

	breakeven := p.ShortStrike + p.Credit/ContractMultiplier
	if p.Type == BullPut {
		breakeven = p.ShortStrike - p.Credit/ContractMultiplier
	}

	return Analysis{
		MaxProfit:         maxProfit,
		MaxRisk:           maxRisk,
		ReturnPercent:     returnPct,
		Breakeven:         format.Round(breakeven, 2),
		StrikeWidth:       width,
		ProfitProbability: ProfitProbability(p.CurrentPrice, p.ShortStrike),
		RiskReward:        format.Round(format.RiskReward(maxProfit, maxRisk), 2),
	}, nil
}

// ReturnPercentString is the return on risk with one decimal, e.g. "42.9".
func (a Analysis) ReturnPercentString() string { return format.Fixed(a.ReturnPercent, 1) }

// BreakevenString is the breakeven price with two decimals, e.g. "563.50".
func (a Analysis) BreakevenString() string { return format.Fixed(a.Breakeven, 2) }

// MarshalText encodes the display name, which is what stored ledgers carry.
func (t Type) MarshalText() ([]byte, error) {
	if t != BullPut && t != BearCall {
		return nil, fmt.Errorf("%w: unknown spread type %d", ErrInvalidInput, int(t))
	}
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
