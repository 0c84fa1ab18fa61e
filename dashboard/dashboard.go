// Package dashboard is the controller behind every user-facing surface. A
// Service owns the one live account and serializes all changes to it,
// persisting after each change and journaling closed trades.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/spreads/account"
	"github.com/rustyeddy/spreads/format"
	"github.com/rustyeddy/spreads/journal"
	"github.com/rustyeddy/spreads/market"
	"github.com/rustyeddy/spreads/risk"
	"github.com/rustyeddy/spreads/spread"
	"github.com/rustyeddy/spreads/store"
	"github.com/rustyeddy/spreads/timing"
)

// Store is the persistence the service needs. *store.Store implements it.
type Store interface {
	LoadAccount(ctx context.Context) (account.Record, bool, error)
	SaveAccount(ctx context.Context, rec account.Record) error
	ClearAll(ctx context.Context) error
	CreateBackup(ctx context.Context, rec account.Record) error
	RestoreBackup(ctx context.Context) (account.Record, error)
	LoadSettings(ctx context.Context) store.Settings
	DeviceID(ctx context.Context) (string, error)
}

// InputError lists every problem with a proposed trade.
type InputError struct {
	Problems []string
}

func (e *InputError) Error() string {
	return "invalid trade inputs: " + strings.Join(e.Problems, "; ")
}

func (e *InputError) Unwrap() error { return spread.ErrInvalidInput }

type Options struct {
	StartingBalance float64
	Policy          risk.Policy
	Journal         journal.Journal
	Market          market.Source
	Logger          *zap.Logger
	Now             func() time.Time
	// MinDTE and MaxDTE bound the preferred expiry window. Trades outside
	// it are allowed but Analyze warns about them.
	MinDTE int
	MaxDTE int
	// IDs overrides trade id generation.
	IDs func() string
}

type Service struct {
	mu      sync.Mutex
	acct    *account.Account
	store   Store
	journal journal.Journal
	market  market.Source
	opts    Options
	log     *zap.Logger
}

// New loads the saved account, falling back to the backup and then to a
// fresh account when the saved one is missing or invalid.
func New(ctx context.Context, st Store, opts Options) (*Service, error) {
	if opts.StartingBalance <= 0 {
		opts.StartingBalance = account.DefaultStartingBalance
	}
	if opts.Policy == (risk.Policy{}) {
		opts.Policy = risk.DefaultPolicy()
	}
	if opts.Journal == nil {
		opts.Journal = journal.Nop{}
	}
	if opts.Market == nil {
		opts.Market = offline{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Service{
		store:   st,
		journal: opts.Journal,
		market:  opts.Market,
		opts:    opts,
		log:     opts.Logger.Named("dashboard"),
	}

	acct, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.acct = acct
	return s, nil
}

// Now is the service clock.
func (s *Service) Now() time.Time { return s.opts.Now() }

func (s *Service) accountOptions() []account.Option {
	o := []account.Option{account.WithPolicy(s.opts.Policy), account.WithClock(s.opts.Now)}
	if s.opts.IDs != nil {
		o = append(o, account.WithIDs(s.opts.IDs))
	}
	return o
}

func (s *Service) load(ctx context.Context) (*account.Account, error) {
	rec, ok, err := s.store.LoadAccount(ctx)
	switch {
	case err != nil && errors.Is(err, account.ErrInvalidRecord):
		s.log.Warn("saved account is invalid, trying backup", zap.Error(err))
		if rec, err = s.store.RestoreBackup(ctx); err != nil {
			s.log.Warn("no usable backup, starting fresh", zap.Error(err))
			return account.New(s.opts.StartingBalance, s.accountOptions()...)
		}
	case err != nil:
		return nil, fmt.Errorf("load account: %w", err)
	case !ok:
		s.log.Info("no saved account, starting fresh", zap.Float64("balance", s.opts.StartingBalance))
		return account.New(s.opts.StartingBalance, s.accountOptions()...)
	}
	return account.FromRecord(rec, s.accountOptions()...)
}

// save persists the account when auto-save is on. Callers hold mu.
func (s *Service) save(ctx context.Context) error {
	if !s.store.LoadSettings(ctx).AutoSave {
		return nil
	}
	if err := s.store.SaveAccount(ctx, s.acct.Record()); err != nil {
		s.log.Error("save account", zap.Error(err))
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

// Save persists the account regardless of the auto-save setting.
func (s *Service) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SaveAccount(ctx, s.acct.Record())
}

// Close releases the journal.
func (s *Service) Close() error {
	return s.journal.Close()
}

// TradeInput is a proposed spread as entered by the user. Type is
// "bullPut" or "bearCall".
type TradeInput struct {
	Type         string  `json:"type"`
	Underlying   string  `json:"underlying"`
	CurrentPrice float64 `json:"currentPrice"`
	ShortStrike  float64 `json:"shortStrike"`
	LongStrike   float64 `json:"longStrike"`
	Credit       float64 `json:"credit"`
	DTE          int     `json:"dte"`
}

func (in TradeInput) params() (account.TradeParams, error) {
	problems := format.ValidateTradeInputs(format.TradeInputs{
		Type:         in.Type,
		CurrentPrice: in.CurrentPrice,
		ShortStrike:  in.ShortStrike,
		LongStrike:   in.LongStrike,
		Credit:       in.Credit,
		DTE:          in.DTE,
	})
	typ, err := spread.ParseType(in.Type)
	if err != nil {
		problems = append(problems, "Spread type must be bullPut or bearCall")
	}
	if len(problems) > 0 {
		return account.TradeParams{}, &InputError{Problems: problems}
	}
	underlying := strings.ToUpper(strings.TrimSpace(in.Underlying))
	if underlying == "" {
		underlying = "SPY"
	}
	return account.TradeParams{
		Type:         typ,
		Underlying:   underlying,
		CurrentPrice: in.CurrentPrice,
		ShortStrike:  in.ShortStrike,
		LongStrike:   in.LongStrike,
		Credit:       in.Credit,
		DTE:          in.DTE,
	}, nil
}

// Quote is the analysis of a proposed trade and how it sits against the
// risk cap.
type Quote struct {
	Analysis     spread.Analysis `json:"analysis"`
	Risk         risk.Validation `json:"risk"`
	MaxContracts int             `json:"maxContracts"`
	Warnings     []string        `json:"warnings,omitempty"`
}

// Analyze evaluates in without changing the account. A trade over the risk
// cap is reported in Quote.Risk, not as an error.
func (s *Service) Analyze(in TradeInput) (Quote, error) {
	p, err := in.params()
	if err != nil {
		return Quote{}, err
	}
	a, err := spread.Analyze(spread.Params{
		Type:         p.Type,
		CurrentPrice: p.CurrentPrice,
		ShortStrike:  p.ShortStrike,
		LongStrike:   p.LongStrike,
		Credit:       p.Credit,
	})
	if err != nil {
		return Quote{}, err
	}

	s.mu.Lock()
	balance := s.acct.Balance()
	s.mu.Unlock()

	q := Quote{
		Analysis:     a,
		Risk:         s.opts.Policy.Validate(a.MaxRisk, balance),
		MaxContracts: s.opts.Policy.Size(balance, a.MaxRisk).Contracts,
	}
	if !q.Risk.IsValid {
		q.Warnings = append(q.Warnings, fmt.Sprintf("Risk of %s exceeds the %s maximum",
			format.Currency(q.Risk.RiskAmount, false), format.Currency(q.Risk.MaxAllowed, false)))
	}
	if s.opts.MinDTE > 0 && s.opts.MaxDTE > 0 && (p.DTE < s.opts.MinDTE || p.DTE > s.opts.MaxDTE) {
		q.Warnings = append(q.Warnings, fmt.Sprintf("DTE %d is outside the preferred %d-%d day window",
			p.DTE, s.opts.MinDTE, s.opts.MaxDTE))
	}
	return q, nil
}

// AddTrade opens a trade and saves the account. On a save failure the
// trade is still open in memory and is returned along with the error.
func (s *Service) AddTrade(ctx context.Context, in TradeInput) (account.Trade, error) {
	p, err := in.params()
	if err != nil {
		return account.Trade{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.acct.AddTrade(p)
	if err != nil {
		s.log.Info("trade rejected", zap.String("underlying", p.Underlying), zap.Error(err))
		return account.Trade{}, err
	}
	s.log.Info("trade opened",
		zap.String("id", string(t.ID)),
		zap.String("underlying", t.Underlying),
		zap.Stringer("type", t.Type),
		zap.Float64("max_risk", t.MaxRisk))
	return t, s.save(ctx)
}

// CloseTrade realizes pnl, journals the result and saves the account.
// Journal failures are logged and do not fail the close.
func (s *Service) CloseTrade(ctx context.Context, tradeID string, pnl float64) (account.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.acct.CloseTrade(tradeID, pnl)
	if err != nil {
		return account.Trade{}, err
	}
	s.log.Info("trade closed",
		zap.String("id", string(t.ID)),
		zap.Float64("pnl", pnl),
		zap.Float64("balance", s.acct.Balance()))

	if rec, err := journal.FromTrade(t); err == nil {
		if err := s.journal.RecordTrade(rec); err != nil {
			s.log.Warn("journal trade", zap.Error(err))
		}
	}
	if err := s.journal.RecordBalance(journal.Snapshot(s.acct, s.opts.Now())); err != nil {
		s.log.Warn("journal balance", zap.Error(err))
	}
	return t, s.save(ctx)
}

// Summary is the account panel.
type Summary struct {
	Balance         float64           `json:"balance"`
	StartingBalance float64           `json:"startingBalance"`
	Positions       account.Positions `json:"positions"`
	RiskLevel       risk.Level        `json:"riskLevel"`
	RiskClass       string            `json:"riskClass"`
	Metrics         account.Metrics   `json:"metrics"`
	History         []float64         `json:"accountHistory"`
	OpenTrades      []account.Trade   `json:"openTrades"`
	RecentTrades    []account.Trade   `json:"recentTrades"`
}

// RecentTrades is how many of the latest trades a Summary carries.
const RecentTrades = 10

func (s *Service) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	level := s.acct.RiskLevel()
	trades := s.acct.Trades()
	recent := make([]account.Trade, 0, RecentTrades)
	for i := len(trades) - 1; i >= 0 && len(recent) < RecentTrades; i-- {
		recent = append(recent, trades[i])
	}
	return Summary{
		Balance:         s.acct.Balance(),
		StartingBalance: s.acct.StartingBalance(),
		Positions:       s.acct.ActivePositions(),
		RiskLevel:       level,
		RiskClass:       level.Class(),
		Metrics:         s.acct.Performance(),
		History:         s.acct.History(),
		OpenTrades:      s.acct.OpenTrades(),
		RecentTrades:    recent,
	}
}

func (s *Service) Trades() []account.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acct.Trades()
}

func (s *Service) Trade(tradeID string) (account.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acct.Trade(tradeID)
}

func (s *Service) Positions() account.Positions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acct.ActivePositions()
}

func (s *Service) Metrics() account.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acct.Performance()
}

// Record snapshots the account.
func (s *Service) Record() account.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acct.Record()
}

// Timing analyzes entry timing now. A non-positive dte uses the saved
// default.
func (s *Service) Timing(ctx context.Context, dte int) timing.Analysis {
	if dte <= 0 {
		dte = s.store.LoadSettings(ctx).DefaultDTE
	}
	return timing.Analyze(s.opts.Now(), dte)
}

// Market fetches and classifies the market environment.
func (s *Service) Market(ctx context.Context) market.Overview {
	return market.Analyze(ctx, s.market, s.opts.Now())
}

// offline stands in for a market source when none is configured.
type offline struct{}

func (offline) VIX(context.Context) market.VIXReading {
	return market.VIXReading{NeedsAPIKey: true}
}

func (offline) Ticker(_ context.Context, symbol string) market.TickerData {
	return market.TickerData{Symbol: symbol, Trend: market.Trend{Direction: market.Unknown, Strength: market.Unknown}, NeedsAPIKey: true}
}

func (offline) EconomicCalendar(context.Context) market.Calendar {
	return market.Calendar{NeedsAPIKey: true}
}
