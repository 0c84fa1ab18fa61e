package market

import (
	"context"
	"time"
)

// Source supplies market readings. Implementations never fail: when data
// cannot be fetched they return a reading with Available set to false.
type Source interface {
	VIX(ctx context.Context) VIXReading
	Ticker(ctx context.Context, symbol string) TickerData
	EconomicCalendar(ctx context.Context) Calendar
}

// Overview is the complete market panel.
type Overview struct {
	VIX          VIXReading     `json:"vix"`
	VIXAnalysis  VIXEnvironment `json:"vixAnalysis"`
	SPY          TickerData     `json:"spy"`
	QQQ          TickerData     `json:"qqq"`
	Trend        OverallTrend   `json:"trend"`
	Calendar     Calendar       `json:"calendar"`
	CalendarRisk CalendarRisk   `json:"calendarRisk"`
	Updated      time.Time      `json:"updated"`
}

// Analyze fetches every reading from src and classifies it.
func Analyze(ctx context.Context, src Source, now time.Time) Overview {
	o := Overview{
		VIX:      src.VIX(ctx),
		SPY:      src.Ticker(ctx, "SPY"),
		QQQ:      src.Ticker(ctx, "QQQ"),
		Calendar: src.EconomicCalendar(ctx),
		Updated:  now,
	}
	o.VIXAnalysis = AnalyzeVIX(o.VIX)
	o.Trend = AnalyzeOverallTrend(o.SPY, o.QQQ)
	o.CalendarRisk = AnalyzeCalendarRisk(o.Calendar.Events)
	return o
}
