package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/rustyeddy/spreads/format"
)

var ErrRiskExceeded = errors.New("trade risk exceeds account limit")

// ExceededError reports a rejected trade together with the largest risk the
// account would have accepted.
type ExceededError struct {
	Risk       float64
	MaxAllowed float64
	MaxRiskPct float64
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("Trade risk ($%s) exceeds %s%% of account. Maximum allowed: $%s",
		format.Fixed(e.Risk, 0), format.Fixed(e.MaxRiskPct*100, 0), format.Fixed(e.MaxAllowed, 0))
}

func (e *ExceededError) Unwrap() error { return ErrRiskExceeded }

// Validation is the outcome of checking one trade's max loss against the cap.
type Validation struct {
	IsValid    bool    `json:"isValid"`
	MaxAllowed float64 `json:"maxAllowed"`
	RiskAmount float64 `json:"riskAmount"`
	RiskPct    float64 `json:"riskPercentage"`
	maxRiskPct float64
}

// ValidateTradeRisk checks maxRisk against the default 15% cap.
func ValidateTradeRisk(maxRisk, balance float64) Validation {
	return DefaultPolicy().Validate(maxRisk, balance)
}

// Validate checks maxRisk against p.MaxRiskPct of balance. It has no side
// effects; a failed check is reported, not raised.
func (p Policy) Validate(maxRisk, balance float64) Validation {
	maxAllowed := balance * p.MaxRiskPct
	pct := RiskPct(maxRisk, balance) * 100
	if math.IsInf(pct, 1) {
		// reported as all of the balance so the figure stays encodable
		pct = 100
	}
	return Validation{
		IsValid:    maxRisk <= maxAllowed,
		MaxAllowed: maxAllowed,
		RiskAmount: maxRisk,
		RiskPct:    pct,
		maxRiskPct: p.MaxRiskPct,
	}
}

// MaxAllowedString is the cap in whole dollars, e.g. "450".
func (v Validation) MaxAllowedString() string { return format.Fixed(v.MaxAllowed, 0) }

// Err returns nil for an accepted trade and an *ExceededError otherwise.
func (v Validation) Err() error {
	if v.IsValid {
		return nil
	}
	return &ExceededError{Risk: v.RiskAmount, MaxAllowed: v.MaxAllowed, MaxRiskPct: v.maxRiskPct}
}
