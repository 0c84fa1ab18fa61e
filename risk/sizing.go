package risk

import "github.com/rustyeddy/spreads/format"

// Sizing is how many contracts of one spread fit inside the per-trade cap.
type Sizing struct {
	Contracts  int     `json:"contracts"`
	RiskBudget float64 `json:"riskBudget"`
	TotalRisk  float64 `json:"totalRisk"`
}

// Size fits whole contracts of maxRisk each into p's cap on balance. A
// non-positive maxRisk sizes to zero contracts.
func (p Policy) Size(balance, maxRisk float64) Sizing {
	n := format.PositionSize(balance, p.MaxRiskPct*100, maxRisk)
	return Sizing{
		Contracts:  n,
		RiskBudget: balance * p.MaxRiskPct,
		TotalRisk:  float64(n) * maxRisk,
	}
}
