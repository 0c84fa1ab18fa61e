package risk

import "math"

// RiskPct is risk as a fraction of balance. A non-positive balance can
// absorb no risk at all.
func RiskPct(risk, balance float64) float64 {
	if balance <= 0 {
		if risk <= 0 {
			return 0
		}
		return math.Inf(1)
	}
	return risk / balance
}
