package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		balance float64
		maxRisk float64
		want    Sizing
	}{
		{"one contract", 3000, 350, Sizing{Contracts: 1, RiskBudget: 450, TotalRisk: 350}},
		{"several contracts", 10000, 300, Sizing{Contracts: 5, RiskBudget: 1500, TotalRisk: 1500}},
		{"over the cap", 3000, 500, Sizing{Contracts: 0, RiskBudget: 450}},
		{"zero risk", 3000, 0, Sizing{Contracts: 0, RiskBudget: 450}},
		{"negative risk", 3000, -20, Sizing{Contracts: 0, RiskBudget: 450}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := DefaultPolicy().Size(tt.balance, tt.maxRisk)
			assert.Equal(t, tt.want.Contracts, got.Contracts)
			assert.InDelta(t, tt.want.RiskBudget, got.RiskBudget, 1e-9)
			assert.InDelta(t, tt.want.TotalRisk, got.TotalRisk, 1e-9)
		})
	}
}
