// Package journal keeps an append-only record of closed spreads and the
// balance after each close, separate from the account ledger itself.
package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/spreads/account"
)

var (
	ErrNotFound  = errors.New("journal: not found")
	ErrTradeOpen = errors.New("journal: trade is still open")
)

// TradeRecord is a closed spread.
type TradeRecord struct {
	TradeID      string
	Underlying   string
	Type         string
	ShortStrike  float64
	LongStrike   float64
	Credit       float64
	MaxRisk      float64
	DTE          int
	OpenTime     time.Time
	CloseTime    time.Time
	RealizedPL   float64
	ReturnOnRisk float64
}

// BalanceSnapshot is the account right after a close.
type BalanceSnapshot struct {
	Time          time.Time
	Balance       float64
	CapitalAtRisk float64
	Available     float64
	OpenPositions int
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordBalance(BalanceSnapshot) error
	Close() error
}

// FromTrade builds the record for a closed trade.
func FromTrade(t account.Trade) (TradeRecord, error) {
	if t.Status != account.Closed || t.CloseDate == nil {
		return TradeRecord{}, fmt.Errorf("%w: %s", ErrTradeOpen, t.ID)
	}
	ror, _ := t.ReturnOnRisk()
	return TradeRecord{
		TradeID:      string(t.ID),
		Underlying:   t.Underlying,
		Type:         t.Type.String(),
		ShortStrike:  t.ShortStrike,
		LongStrike:   t.LongStrike,
		Credit:       t.Credit,
		MaxRisk:      t.MaxRisk,
		DTE:          t.DTE,
		OpenTime:     t.OpenDate.UTC(),
		CloseTime:    t.CloseDate.UTC(),
		RealizedPL:   t.PnL,
		ReturnOnRisk: ror,
	}, nil
}

// Snapshot captures a's balance and open book at time at.
func Snapshot(a *account.Account, at time.Time) BalanceSnapshot {
	pos := a.ActivePositions()
	return BalanceSnapshot{
		Time:          at.UTC(),
		Balance:       a.Balance(),
		CapitalAtRisk: pos.CapitalAtRisk,
		Available:     pos.AvailableCapital,
		OpenPositions: pos.Count,
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error       { return nil }
func (Nop) RecordBalance(BalanceSnapshot) error { return nil }
func (Nop) Close() error                        { return nil }

const (
	TypeCSV    = "csv"
	TypeSQLite = "sqlite"
	TypeNone   = "none"
)

// Open returns the journal named by kind.
func Open(kind, tradesPath, balancePath, dbPath string) (Journal, error) {
	switch kind {
	case TypeCSV:
		return NewCSV(tradesPath, balancePath)
	case TypeSQLite:
		return NewSQLite(dbPath)
	case TypeNone, "":
		return Nop{}, nil
	}
	return nil, fmt.Errorf("unknown journal type %q", kind)
}
