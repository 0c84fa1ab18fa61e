package account

import (
	"fmt"
	"math"

	"github.com/rustyeddy/spreads/risk"
	"github.com/rustyeddy/spreads/spread"
)

// TradeParams are the inputs for opening a spread.
type TradeParams struct {
	Type         spread.Type
	Underlying   string
	CurrentPrice float64
	ShortStrike  float64
	LongStrike   float64
	Credit       float64
	DTE          int
}

func (p TradeParams) analyzerParams() spread.Params {
	return spread.Params{
		Type:         p.Type,
		CurrentPrice: p.CurrentPrice,
		ShortStrike:  p.ShortStrike,
		LongStrike:   p.LongStrike,
		Credit:       p.Credit,
	}
}

// AddTrade analyzes p, checks its max loss against the risk policy and, if
// accepted, appends an Open trade. Balance and history are untouched until
// the trade closes. Rejections wrap spread.ErrInvalidInput or
// risk.ErrRiskExceeded and leave the ledger unchanged.
func (a *Account) AddTrade(p TradeParams) (Trade, error) {
	analysis, err := spread.Analyze(p.analyzerParams())
	if err != nil {
		return Trade{}, fmt.Errorf("add trade: %w", err)
	}

	if err := a.policy.Validate(analysis.MaxRisk, a.balance).Err(); err != nil {
		return Trade{}, fmt.Errorf("add trade: %w", err)
	}

	t := &Trade{
		ID:           ID(a.newID()),
		Type:         p.Type,
		Underlying:   p.Underlying,
		OpenDate:     Date{a.now()},
		CurrentPrice: p.CurrentPrice,
		ShortStrike:  p.ShortStrike,
		LongStrike:   p.LongStrike,
		Credit:       p.Credit,
		MaxRisk:      analysis.MaxRisk,
		DTE:          p.DTE,
		Status:       Open,
	}
	a.trades = append(a.trades, t)
	return t.clone(), nil
}

// CloseTrade realizes pnl on an open trade, credits it to the balance and
// appends the new balance to the history. Closing twice is an error rather
// than a second credit.
func (a *Account) CloseTrade(tradeID string, pnl float64) (Trade, error) {
	if math.IsNaN(pnl) || math.IsInf(pnl, 0) {
		return Trade{}, fmt.Errorf("close trade: %w: pnl must be a finite number", spread.ErrInvalidInput)
	}

	t, ok := a.find(tradeID)
	if !ok {
		return Trade{}, fmt.Errorf("close trade: %w: %q", ErrTradeNotFound, tradeID)
	}
	if t.Status == Closed {
		return Trade{}, fmt.Errorf("close trade: %w: %q", ErrTradeAlreadyClosed, tradeID)
	}

	closed := Date{a.now()}
	t.Status = Closed
	t.PnL = pnl
	t.CloseDate = &closed

	a.balance += pnl
	a.history = append(a.history, a.balance)

	return t.clone(), nil
}

// Positions summarizes the open book.
type Positions struct {
	Count            int     `json:"count"`
	CapitalAtRisk    float64 `json:"capitalAtRisk"`
	MaxLoss          float64 `json:"maxLoss"`
	AvailableCapital float64 `json:"availableCapital"`
}

// ActivePositions sums max risk across open trades. Max loss equals capital
// at risk for defined-risk spreads.
func (a *Account) ActivePositions() Positions {
	var p Positions
	for _, t := range a.trades {
		if t.Status != Open {
			continue
		}
		p.Count++
		p.CapitalAtRisk += t.MaxRisk
	}
	p.MaxLoss = p.CapitalAtRisk
	p.AvailableCapital = a.balance - p.CapitalAtRisk
	return p
}

// RiskLevel classifies capital at risk against the balance.
func (a *Account) RiskLevel() risk.Level {
	return a.policy.Classify(a.ActivePositions().CapitalAtRisk, a.balance)
}
