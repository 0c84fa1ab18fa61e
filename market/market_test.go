package market

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeVIX(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level float64
		env   string
		rec   Signal
	}{
		{9.5, "Very Low", SignalAvoid},
		{12, "Low", SignalCaution},
		{14.99, "Low", SignalCaution},
		{17.2, "Ideal", SignalFavorable},
		{22, "Moderate", SignalGood},
		{27, "High", SignalCaution},
		{30, "Very High", SignalAvoid},
		{80, "Very High", SignalAvoid},
	}
	for _, tt := range tests {
		got := AnalyzeVIX(VIXReading{Level: tt.level, Available: true})
		assert.Equal(t, tt.env, got.Environment, "level %v", tt.level)
		assert.Equal(t, tt.rec, got.Recommendation, "level %v", tt.level)
		assert.Contains(t, got.Analysis, "VIX at")
	}
}

func TestAnalyzeVIXUnavailable(t *testing.T) {
	t.Parallel()

	for _, r := range []VIXReading{
		{},
		{Level: 18, Available: false, NeedsAPIKey: true},
		{Level: math.NaN(), Available: true},
	} {
		got := AnalyzeVIX(r)
		assert.Equal(t, "Unknown", got.Environment)
		assert.Equal(t, SignalUnknown, got.Recommendation)
	}
}

func series(older, recent float64) []float64 {
	out := make([]float64, 0, 10)
	for i := 0; i < 5; i++ {
		out = append(out, older)
	}
	for i := 0; i < 5; i++ {
		out = append(out, recent)
	}
	return out
}

func TestCalculateTrend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		closes   []float64
		dir      Direction
		strength Strength
		change   float64
	}{
		{"flat", series(100, 100.5), Sideways, Weak, 0.5},
		{"weak up", series(100, 101), Up, Weak, 1},
		{"moderate up", series(100, 102), Up, Moderate, 2},
		{"strong up", series(100, 104), Up, Strong, 4},
		{"weak down", series(100, 98.8), Down, Weak, -1.2},
		{"moderate down", series(100, 98), Down, Moderate, -2},
		{"strong down", series(100, 95), Down, Strong, -5},
		{"too short", []float64{1, 2, 3}, Unknown, Unknown, 0},
		{"zero baseline", series(0, 5), Unknown, Unknown, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CalculateTrend(tt.closes)
			assert.Equal(t, tt.dir, got.Direction)
			assert.Equal(t, tt.strength, got.Strength)
			assert.InDelta(t, tt.change, got.Change, 1e-9)
		})
	}
}

func TestCalculateTrendUsesLastTenCloses(t *testing.T) {
	t.Parallel()

	closes := append([]float64{1, 1, 1, 1}, series(100, 104)...)
	assert.Equal(t, Strong, CalculateTrend(closes).Strength)
}

func ticker(dir Direction, s Strength) TickerData {
	return TickerData{Available: true, Trend: Trend{Direction: dir, Strength: s}}
}

func TestAnalyzeOverallTrend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		spy, qqq TickerData
		env      string
		strength Strength
	}{
		{"both sideways", ticker(Sideways, Weak), ticker(Sideways, Weak), "EXCELLENT", Weak},
		{"weak mixed", ticker(Up, Weak), ticker(Down, Weak), "GOOD", Weak},
		{"weak with one sideways", ticker(Up, Weak), ticker(Sideways, Weak), "GOOD", Weak},
		{"moderate", ticker(Up, Moderate), ticker(Up, Weak), "CAUTION", Moderate},
		{"strong aligned", ticker(Down, Strong), ticker(Down, Moderate), "AVOID", Strong},
		{"strong diverging is weak", ticker(Up, Strong), ticker(Down, Weak), "GOOD", Weak},
		{"weak aligned", ticker(Up, Weak), ticker(Up, Weak), "MIXED", Weak},
		{"unavailable", TickerData{}, ticker(Up, Weak), Unknown, Unknown},
		{"unknown trend", ticker(Unknown, Unknown), ticker(Up, Weak), Unknown, Unknown},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := AnalyzeOverallTrend(tt.spy, tt.qqq)
			assert.Equal(t, tt.env, got.Environment)
			assert.Equal(t, tt.strength, got.Strength)
			assert.NotEmpty(t, got.Analysis)
		})
	}

	got := AnalyzeOverallTrend(ticker(Down, Strong), ticker(Down, Strong))
	assert.Equal(t, "Strong down trend in progress. High risk for credit spreads.", got.Analysis)
}

func TestMapImpactLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want Impact
	}{
		{nil, Low},
		{"high", High},
		{"High Impact", High},
		{"MEDIUM", Medium},
		{"low", Low},
		{float64(3), High},
		{float64(2), Medium},
		{1, Low},
		{3, High},
		{json.Number("2"), Medium},
		{"", Low},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapImpactLevel(tt.in), "%#v", tt.in)
	}
}

func events(impacts ...Impact) []Event {
	out := make([]Event, len(impacts))
	for i, im := range impacts {
		out[i] = Event{Name: "CPI", Impact: im}
	}
	return out
}

func TestAnalyzeCalendarRisk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		events []Event
		level  Impact
		advice string
	}{
		{"empty", nil, Low, "FAVORABLE"},
		{"two high", events(High, High), High, "AVOID TRADING"},
		{"one high", events(High, Medium, Low), Medium, "TRADE WITH CAUTION"},
		{"three medium", events(Medium, Medium, Medium), Medium, "TRADE WITH CAUTION"},
		{"two medium", events(Medium, Medium, Low), Low, "FAVORABLE"},
	}
	for _, tt := range tests {
		got := AnalyzeCalendarRisk(tt.events)
		assert.Equal(t, tt.level, got.Level, tt.name)
		assert.Equal(t, tt.advice, got.Advice, tt.name)
	}

	got := AnalyzeCalendarRisk(events(High))
	assert.Contains(t, got.Analysis, "(CPI)")
}

type fakeSource struct{}

func (fakeSource) VIX(context.Context) VIXReading {
	return VIXReading{Level: 16, Available: true}
}

func (fakeSource) Ticker(_ context.Context, symbol string) TickerData {
	return TickerData{Symbol: symbol, Price: 500, Available: true, Trend: Trend{Direction: Sideways, Strength: Weak}}
}

func (fakeSource) EconomicCalendar(context.Context) Calendar {
	return Calendar{Available: true, Events: events(High, High)}
}

func TestAnalyzeOverview(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 4, 14, 0, 0, 0, time.UTC)
	o := Analyze(context.Background(), fakeSource{}, now)
	assert.Equal(t, "Ideal", o.VIXAnalysis.Environment)
	assert.Equal(t, "SPY", o.SPY.Symbol)
	assert.Equal(t, "QQQ", o.QQQ.Symbol)
	assert.Equal(t, "EXCELLENT", o.Trend.Environment)
	assert.Equal(t, High, o.CalendarRisk.Level)
	assert.Equal(t, now, o.Updated)
}
