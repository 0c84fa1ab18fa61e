package dashboard

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/spreads/account"
	"github.com/rustyeddy/spreads/journal"
	"github.com/rustyeddy/spreads/market"
	"github.com/rustyeddy/spreads/risk"
	"github.com/rustyeddy/spreads/spread"
	"github.com/rustyeddy/spreads/store"
	"github.com/rustyeddy/spreads/timing"
)

// Wednesday, 2024-03-06.
var testNow = time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC)

type recordingJournal struct {
	mu       sync.Mutex
	trades   []journal.TradeRecord
	balances []journal.BalanceSnapshot
}

func (j *recordingJournal) RecordTrade(t journal.TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.trades = append(j.trades, t)
	return nil
}

func (j *recordingJournal) RecordBalance(b journal.BalanceSnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.balances = append(j.balances, b)
	return nil
}

func (j *recordingJournal) Close() error { return nil }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "spreads.sqlite"),
		store.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newTestService(t *testing.T, st Store, j journal.Journal) *Service {
	t.Helper()
	n := 0
	s, err := New(context.Background(), st, Options{
		Journal: j,
		Now:     func() time.Time { return testNow },
		IDs:     func() string { n++; return fmt.Sprintf("t%d", n) },
	})
	require.NoError(t, err)
	return s
}

func spyBullPut() TradeInput {
	return TradeInput{Type: "bullPut", Underlying: " spy ", CurrentPrice: 570, ShortStrike: 565, LongStrike: 560, Credit: 150, DTE: 30}
}

func TestNewStartsFresh(t *testing.T) {
	t.Parallel()

	s := newTestService(t, newTestStore(t), nil)
	sum := s.Summary()
	assert.Equal(t, 3000.0, sum.Balance)
	assert.Equal(t, []float64{3000}, sum.History)
	assert.Equal(t, risk.Low, sum.RiskLevel)
	assert.Equal(t, "risk-low", sum.RiskClass)
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	s := newTestService(t, newTestStore(t), nil)
	q, err := s.Analyze(spyBullPut())
	require.NoError(t, err)
	assert.Equal(t, 350.0, q.Analysis.MaxRisk)
	assert.True(t, q.Risk.IsValid)
	assert.Equal(t, 450.0, q.Risk.MaxAllowed)
	assert.Equal(t, 1, q.MaxContracts)

	// Over the cap is reported, not rejected.
	in := spyBullPut()
	in.LongStrike, in.Credit = 555, 500
	q, err = s.Analyze(in)
	require.NoError(t, err)
	assert.False(t, q.Risk.IsValid)
	assert.Equal(t, []string{"Risk of $500 exceeds the $450 maximum"}, q.Warnings)
	assert.Empty(t, s.Trades())
}

func TestAnalyzeWarnsOutsideDTEWindow(t *testing.T) {
	t.Parallel()

	s, err := New(context.Background(), newTestStore(t), Options{MinDTE: 7, MaxDTE: 60})
	require.NoError(t, err)
	in := spyBullPut()
	in.DTE = 90
	q, err := s.Analyze(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"DTE 90 is outside the preferred 7-60 day window"}, q.Warnings)
}

func TestAddTradeSavesAndReloads(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	s := newTestService(t, st, nil)
	tr, err := s.AddTrade(ctx, spyBullPut())
	require.NoError(t, err)
	assert.Equal(t, account.ID("t1"), tr.ID)
	assert.Equal(t, "SPY", tr.Underlying)
	assert.Equal(t, account.Open, tr.Status)

	again := newTestService(t, st, nil)
	require.Len(t, again.Trades(), 1)
	assert.Equal(t, 350.0, again.Positions().CapitalAtRisk)
}

func TestAddTradeRejects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestService(t, newTestStore(t), nil)

	tests := []struct {
		name   string
		mutate func(*TradeInput)
		target error
	}{
		{"inverted bull put", func(in *TradeInput) { in.ShortStrike, in.LongStrike = 560, 565 }, spread.ErrInvalidInput},
		{"unknown type", func(in *TradeInput) { in.Type = "ironCondor" }, spread.ErrInvalidInput},
		{"zero dte", func(in *TradeInput) { in.DTE = 0 }, spread.ErrInvalidInput},
		{"over risk cap", func(in *TradeInput) { in.LongStrike, in.Credit = 555, 500 }, risk.ErrRiskExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := spyBullPut()
			tt.mutate(&in)
			_, err := s.AddTrade(ctx, in)
			assert.ErrorIs(t, err, tt.target)
		})
	}
	assert.Empty(t, s.Trades())

	in := spyBullPut()
	in.ShortStrike, in.LongStrike = 560, 565
	_, err := s.AddTrade(ctx, in)
	var ie *InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, []string{"For bull put spreads, short strike must be higher than long strike"}, ie.Problems)

	in = spyBullPut()
	in.LongStrike, in.Credit = 555, 500
	_, err = s.AddTrade(ctx, in)
	var ee *risk.ExceededError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 450.0, ee.MaxAllowed)
}

func TestCloseTradeJournals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	j := &recordingJournal{}
	st := newTestStore(t)
	s := newTestService(t, st, j)

	_, err := s.AddTrade(ctx, spyBullPut())
	require.NoError(t, err)
	closed, err := s.CloseTrade(ctx, "t1", 200)
	require.NoError(t, err)
	assert.Equal(t, account.Closed, closed.Status)

	require.Len(t, j.trades, 1)
	assert.Equal(t, "t1", j.trades[0].TradeID)
	assert.Equal(t, 200.0, j.trades[0].RealizedPL)
	require.Len(t, j.balances, 1)
	assert.Equal(t, 3200.0, j.balances[0].Balance)
	assert.Equal(t, 0, j.balances[0].OpenPositions)

	_, err = s.CloseTrade(ctx, "t1", 200)
	assert.ErrorIs(t, err, account.ErrTradeAlreadyClosed)
	_, err = s.CloseTrade(ctx, "nope", 1)
	assert.ErrorIs(t, err, account.ErrTradeNotFound)

	rec, ok, err := st.LoadAccount(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3200.0, rec.Balance)
	assert.Equal(t, []float64{3000, 3200}, rec.AccountHistory)
}

func TestSummaryRecentTradesNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestService(t, newTestStore(t), nil)

	for i := 0; i < 3; i++ {
		_, err := s.AddTrade(ctx, spyBullPut())
		require.NoError(t, err)
		_, err = s.CloseTrade(ctx, fmt.Sprintf("t%d", i+1), 10)
		require.NoError(t, err)
	}
	sum := s.Summary()
	require.Len(t, sum.RecentTrades, 3)
	assert.Equal(t, account.ID("t3"), sum.RecentTrades[0].ID)
	assert.Equal(t, 3, sum.Metrics.ClosedTrades)
	assert.Equal(t, 100.0, sum.Metrics.WinRate)
	assert.Empty(t, sum.OpenTrades)
}

func TestExportResetImport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)
	s := newTestService(t, st, nil)

	_, err := s.AddTrade(ctx, spyBullPut())
	require.NoError(t, err)
	_, err = s.CloseTrade(ctx, "t1", -50)
	require.NoError(t, err)

	data, name, err := s.Export()
	require.NoError(t, err)
	assert.Equal(t, "credit-spreads-data-2024-03-06.json", name)

	require.NoError(t, s.Reset(ctx))
	assert.Equal(t, 3000.0, s.Summary().Balance)
	assert.Empty(t, s.Trades())

	rec, err := s.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 2950.0, rec.Balance)
	assert.Equal(t, 2950.0, s.Summary().Balance)
	require.Len(t, s.Trades(), 1)

	_, err = s.Import(ctx, []byte(`{"balance":1}`))
	assert.ErrorIs(t, err, account.ErrInvalidRecord)
	assert.Equal(t, 2950.0, s.Summary().Balance)
}

func TestSyncExportIsImportable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestService(t, newTestStore(t), nil)

	_, err := s.AddTrade(ctx, spyBullPut())
	require.NoError(t, err)
	data, name, err := s.SyncExport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "credit-spreads-sync-2024-03-06.json", name)

	other := newTestService(t, newTestStore(t), nil)
	_, err = other.Import(ctx, data)
	require.NoError(t, err)
	assert.Len(t, other.Trades(), 1)
}

func TestInvalidSavedAccountFallsBackToBackup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	good, err := account.New(4000)
	require.NoError(t, err)
	require.NoError(t, st.CreateBackup(ctx, good.Record()))
	require.NoError(t, st.Set(ctx, store.KeyAccount, []byte(`{"balance":-1}`)))

	s := newTestService(t, st, nil)
	assert.Equal(t, 4000.0, s.Summary().Balance)
}

func TestTimingUsesSavedDefaultDTE(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)
	s := newTestService(t, st, nil)

	a := s.Timing(ctx, 0)
	assert.Equal(t, timing.Analyze(testNow, 30), a)
	assert.Equal(t, 28, a.OptimalDTE)

	require.NoError(t, st.SaveSettings(ctx, store.Settings{RiskPercentage: 15, DefaultDTE: 45, AutoSave: true}))
	assert.Equal(t, 43, s.Timing(ctx, 0).OptimalDTE)
	assert.Equal(t, 21, s.Timing(ctx, 10).OptimalDTE)
}

func TestMarketOffline(t *testing.T) {
	t.Parallel()

	s := newTestService(t, newTestStore(t), nil)
	o := s.Market(context.Background())
	assert.True(t, o.VIX.NeedsAPIKey)
	assert.Equal(t, market.SignalUnknown, o.VIXAnalysis.Recommendation)
	assert.Equal(t, "SPY", o.SPY.Symbol)
	assert.True(t, o.Calendar.NeedsAPIKey)
	assert.Equal(t, testNow, o.Updated)
}

func TestAutoSaveOff(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.SaveSettings(ctx, store.Settings{AutoSave: false, DefaultDTE: 30}))

	s := newTestService(t, st, nil)
	_, err := s.AddTrade(ctx, spyBullPut())
	require.NoError(t, err)
	_, ok, err := st.LoadAccount(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx))
	_, ok, err = st.LoadAccount(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
