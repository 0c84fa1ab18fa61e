// Package account is the credit spread ledger: the cash balance, the trades
// opened against it, and the balance history written each time a trade
// closes.
//
// An Account is mutated only through AddTrade and CloseTrade, and keeps
//
//	balance == startingBalance + sum(pnl of closed trades)
//	len(history) == 1 + number of closed trades
//
// Account is not safe for concurrent use; callers serialize writers.
package account

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/spreads/id"
	"github.com/rustyeddy/spreads/risk"
	"github.com/rustyeddy/spreads/spread"
)

// DefaultStartingBalance seeds a new ledger.
const DefaultStartingBalance = 3000.0

var (
	ErrTradeNotFound      = errors.New("trade not found")
	ErrTradeAlreadyClosed = errors.New("trade already closed")
)

type Account struct {
	balance         float64
	startingBalance float64
	trades          []*Trade
	history         []float64

	policy risk.Policy
	now    func() time.Time
	newID  func() string
}

type Option func(*Account)

// WithPolicy replaces the default 15% risk policy.
func WithPolicy(p risk.Policy) Option {
	return func(a *Account) { a.policy = p }
}

// WithClock sets the time source for open and close dates.
func WithClock(now func() time.Time) Option {
	return func(a *Account) { a.now = now }
}

// WithIDs sets the trade id generator.
func WithIDs(next func() string) Option {
	return func(a *Account) { a.newID = next }
}

func newAccount(opts []Option) *Account {
	a := &Account{
		policy: risk.DefaultPolicy(),
		now:    time.Now,
		newID:  id.New,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// New returns an empty ledger holding startingBalance.
func New(startingBalance float64, opts ...Option) (*Account, error) {
	if math.IsNaN(startingBalance) || math.IsInf(startingBalance, 0) || startingBalance <= 0 {
		return nil, fmt.Errorf("%w: starting balance must be positive", spread.ErrInvalidInput)
	}
	a := newAccount(opts)
	a.balance = startingBalance
	a.startingBalance = startingBalance
	a.history = []float64{startingBalance}
	return a, nil
}

// FromRecord rebuilds a ledger from its persisted form after validating it.
func FromRecord(rec Record, opts ...Option) (*Account, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	a := newAccount(opts)
	a.balance = rec.Balance
	a.startingBalance = rec.StartingBalance
	a.history = append([]float64(nil), rec.AccountHistory...)
	if len(a.history) == 0 {
		a.history = []float64{rec.StartingBalance}
	}
	a.trades = make([]*Trade, 0, len(rec.Trades))
	for _, t := range rec.Trades {
		t := t.clone()
		a.trades = append(a.trades, &t)
	}
	return a, nil
}

// Record snapshots the ledger in its persisted form.
func (a *Account) Record() Record {
	return Record{
		Balance:         a.balance,
		StartingBalance: a.startingBalance,
		Trades:          a.Trades(),
		AccountHistory:  a.History(),
	}
}

func (a *Account) Balance() float64         { return a.balance }
func (a *Account) StartingBalance() float64 { return a.startingBalance }
func (a *Account) Policy() risk.Policy      { return a.policy }

// History returns a copy of the balance snapshots, oldest first.
func (a *Account) History() []float64 {
	return append([]float64(nil), a.history...)
}

// Trades returns copies of all trades in the order they were opened.
func (a *Account) Trades() []Trade {
	return a.filter(func(*Trade) bool { return true })
}

func (a *Account) OpenTrades() []Trade {
	return a.filter(func(t *Trade) bool { return t.Status == Open })
}

func (a *Account) ClosedTrades() []Trade {
	return a.filter(func(t *Trade) bool { return t.Status == Closed })
}

func (a *Account) filter(keep func(*Trade) bool) []Trade {
	out := make([]Trade, 0, len(a.trades))
	for _, t := range a.trades {
		if keep(t) {
			out = append(out, t.clone())
		}
	}
	return out
}

// Trade returns a copy of the trade with the given id.
func (a *Account) Trade(tradeID string) (Trade, error) {
	t, ok := a.find(tradeID)
	if !ok {
		return Trade{}, fmt.Errorf("%w: %q", ErrTradeNotFound, tradeID)
	}
	return t.clone(), nil
}

func (a *Account) find(tradeID string) (*Trade, bool) {
	for _, t := range a.trades {
		if string(t.ID) == tradeID {
			return t, true
		}
	}
	return nil, false
}
