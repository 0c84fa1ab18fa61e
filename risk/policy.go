package risk

// Policy holds the account-level risk limits.
type Policy struct {
	// MaxRiskPct caps the max loss of a single new spread as a fraction of
	// the balance (0.15 == 15%).
	MaxRiskPct float64

	// Capital-at-risk thresholds, in percent of balance, for the risk level.
	LowPct    float64 // below this: Low
	MediumPct float64 // below this: Medium, otherwise High
}

// DefaultMaxRiskPct is the 15% single-trade cap.
const DefaultMaxRiskPct = 0.15

func DefaultPolicy() Policy {
	return Policy{
		MaxRiskPct: DefaultMaxRiskPct,
		LowPct:     10,
		MediumPct:  25,
	}
}
