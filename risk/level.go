package risk

// Level is the account's exposure class.
type Level string

const (
	Low    Level = "Low Risk"
	Medium Level = "Medium Risk"
	High   Level = "High Risk"
)

// Class is the CSS-style tag the dashboard uses for a level.
func (l Level) Class() string {
	switch l {
	case Low:
		return "risk-low"
	case Medium:
		return "risk-medium"
	}
	return "risk-high"
}

type levelThreshold struct {
	below float64 // percent, exclusive
	level Level
}

// Classify maps capital at risk to a level using p's thresholds, checked in
// ascending order. Anything at or above the last threshold is High.
func (p Policy) Classify(capitalAtRisk, balance float64) Level {
	pct := RiskPct(capitalAtRisk, balance) * 100
	table := []levelThreshold{
		{p.LowPct, Low},
		{p.MediumPct, Medium},
	}
	for _, th := range table {
		if pct < th.below {
			return th.level
		}
	}
	return High
}
