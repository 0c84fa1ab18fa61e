package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/spreads/market"
)

// VIXSymbol is the volatility index as Finnhub names it.
const VIXSymbol = "VIX"

type Quote struct {
	Symbol        string
	Current       float64
	Change        float64
	ChangePercent float64
	High          float64
	Low           float64
	Open          float64
	PrevClose     float64
	Time          time.Time
}

type quoteResponse struct {
	C  *float64 `json:"c"`
	D  float64  `json:"d"`
	DP float64  `json:"dp"`
	H  float64  `json:"h"`
	L  float64  `json:"l"`
	O  float64  `json:"o"`
	PC float64  `json:"pc"`
	T  int64    `json:"t"`
}

func (r quoteResponse) quote(symbol string) (Quote, error) {
	if r.C == nil {
		return Quote{}, fmt.Errorf("%w: quote for %s has no current price", ErrBadPayload, symbol)
	}
	return Quote{
		Symbol:        symbol,
		Current:       *r.C,
		Change:        r.D,
		ChangePercent: r.DP,
		High:          r.H,
		Low:           r.L,
		Open:          r.O,
		PrevClose:     r.PC,
		Time:          time.Unix(r.T, 0).UTC(),
	}, nil
}

func (c *Client) Quote(ctx context.Context, symbol string) (Quote, error) {
	body, err := c.get(ctx, "/quote", url.Values{"symbol": {symbol}}, c.quoteTTL)
	if err != nil {
		return Quote{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	var r quoteResponse
	if err := decode(body, &r); err != nil {
		return Quote{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	return r.quote(symbol)
}

type candleResponse struct {
	C []float64 `json:"c"`
	H []float64 `json:"h"`
	L []float64 `json:"l"`
	O []float64 `json:"o"`
	V []float64 `json:"v"`
	T []int64   `json:"t"`
	S string    `json:"s"`
}

// Candles returns daily bars between from and to, oldest first.
func (c *Client) Candles(ctx context.Context, symbol string, from, to time.Time) ([]market.Candle, error) {
	params := url.Values{
		"symbol":     {symbol},
		"resolution": {"D"},
		"from":       {strconv.FormatInt(from.Unix(), 10)},
		"to":         {strconv.FormatInt(to.Unix(), 10)},
	}
	body, err := c.get(ctx, "/stock/candle", params, c.quoteTTL)
	if err != nil {
		return nil, fmt.Errorf("candles %s: %w", symbol, err)
	}

	var r candleResponse
	if err := decode(body, &r); err != nil {
		return nil, fmt.Errorf("candles %s: %w", symbol, err)
	}
	if r.S == "no_data" {
		return nil, nil
	}
	if len(r.T) != len(r.C) {
		return nil, fmt.Errorf("candles %s: %w: %d timestamps for %d closes", symbol, ErrBadPayload, len(r.T), len(r.C))
	}

	at := func(v []float64, i int) float64 {
		if i < len(v) {
			return v[i]
		}
		return 0
	}
	candles := make([]market.Candle, len(r.C))
	for i := range r.C {
		candles[i] = market.Candle{
			Time:   time.Unix(r.T[i], 0).UTC(),
			Open:   at(r.O, i),
			High:   at(r.H, i),
			Low:    at(r.L, i),
			Close:  r.C[i],
			Volume: at(r.V, i),
		}
	}
	return candles, nil
}

// VIX never fails. A missing key or fetch error yields an unavailable
// reading.
func (c *Client) VIX(ctx context.Context) market.VIXReading {
	if !c.Configured() {
		return market.VIXReading{NeedsAPIKey: true}
	}
	q, err := c.Quote(ctx, VIXSymbol)
	if err != nil {
		c.log.Warn("vix unavailable", zap.Error(err))
		return market.VIXReading{}
	}
	return market.VIXReading{
		Level:         q.Current,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		Available:     true,
	}
}

// chartCandles is how many recent bars a ticker keeps for display.
const chartCandles = 10

// Ticker fetches the quote and the last 30 days of candles and computes the
// trend. It needs at least ten closes to be Available.
func (c *Client) Ticker(ctx context.Context, symbol string) market.TickerData {
	td := market.TickerData{Symbol: symbol, Trend: market.Trend{Direction: market.Unknown, Strength: market.Unknown}}
	if !c.Configured() {
		td.NeedsAPIKey = true
		return td
	}

	q, err := c.Quote(ctx, symbol)
	if err != nil {
		c.log.Warn("ticker quote unavailable", zap.String("symbol", symbol), zap.Error(err))
		return td
	}

	// Hourly granularity keeps the history request cacheable.
	now := c.now().Truncate(time.Hour)
	candles, err := c.Candles(ctx, symbol, now.AddDate(0, 0, -30), now)
	if err != nil {
		c.log.Warn("ticker history unavailable", zap.String("symbol", symbol), zap.Error(err))
		return td
	}
	if len(candles) < chartCandles {
		c.log.Warn("insufficient ticker history", zap.String("symbol", symbol), zap.Int("candles", len(candles)))
		return td
	}

	td.Price = q.Current
	td.Trend = market.CalculateTrend(market.Closes(candles))
	td.Candles = candles[len(candles)-chartCandles:]
	td.Available = true
	return td
}

// TestAPIKey checks key against a live quote without touching the cache or
// the client's own key.
func (c *Client) TestAPIKey(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrNoAPIKey
	}
	body, err := c.fetch(ctx, "/quote", url.Values{"symbol": {"SPY"}}, key)
	if err != nil {
		return err
	}
	var r quoteResponse
	if err := decode(body, &r); err != nil {
		return err
	}
	_, err = r.quote("SPY")
	return err
}
