package format

import "math"

// Input bounds for a proposed spread.
const (
	MaxPrice  = 10000.0
	MaxCredit = 1000.0
	MinDTE    = 1
	MaxDTE    = 365
)

// TradeInputs is the raw form data for a proposed spread. Type is
// "bullPut" or "bearCall".
type TradeInputs struct {
	Type         string
	CurrentPrice float64
	ShortStrike  float64
	LongStrike   float64
	Credit       float64
	DTE          int
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func IsValidPrice(v float64) bool  { return finite(v) && v > 0 && v < MaxPrice }
func IsValidStrike(v float64) bool { return finite(v) && v > 0 && v < MaxPrice }
func IsValidCredit(v float64) bool { return finite(v) && v > 0 && v < MaxCredit }
func IsValidDTE(d int) bool        { return d >= MinDTE && d <= MaxDTE }

// ValidateTradeInputs returns one message per violated rule, in a stable
// order. An empty result means the inputs are acceptable.
func ValidateTradeInputs(in TradeInputs) []string {
	var errs []string

	if !IsValidPrice(in.CurrentPrice) {
		errs = append(errs, "Current price must be a valid number between 0 and 10,000")
	}
	if !IsValidStrike(in.ShortStrike) {
		errs = append(errs, "Short strike must be a valid number between 0 and 10,000")
	}
	if !IsValidStrike(in.LongStrike) {
		errs = append(errs, "Long strike must be a valid number between 0 and 10,000")
	}
	if !IsValidCredit(in.Credit) {
		errs = append(errs, "Credit must be a valid number between 0 and 1,000")
	}
	if !IsValidDTE(in.DTE) {
		errs = append(errs, "DTE must be between 1 and 365 days")
	}

	switch in.Type {
	case "bullPut":
		if in.ShortStrike <= in.LongStrike {
			errs = append(errs, "For bull put spreads, short strike must be higher than long strike")
		}
	case "bearCall":
		if in.ShortStrike >= in.LongStrike {
			errs = append(errs, "For bear call spreads, short strike must be lower than long strike")
		}
	}

	return errs
}
