// Package report renders the dashboard as markdown, as an HTML page, or
// styled for a terminal.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/rustyeddy/spreads/dashboard"
	"github.com/rustyeddy/spreads/format"
	"github.com/rustyeddy/spreads/market"
	"github.com/rustyeddy/spreads/timing"
)

// DefaultStyle is the glamour style used when none is configured.
const DefaultStyle = "notty"

// Data is everything a report shows. Market is optional.
type Data struct {
	Title     string
	Generated time.Time
	Summary   dashboard.Summary
	Timing    timing.Analysis
	Market    *market.Overview
}

var funcs = template.FuncMap{
	"currency": func(v float64) string { return format.Currency(v, false) },
	"signed":   func(v float64) string { return format.Currency(v, true) },
	"pct":      format.Percent,
	"fixed":    format.Fixed,
	"date":     func(t time.Time) string { return t.Format("2006-01-02") },
	"datetime": func(t time.Time) string { return t.Format("2006-01-02 15:04 MST") },
	"short": func(s any) string {
		v := fmt.Sprint(s)
		if len(v) > 8 {
			return v[:8]
		}
		return v
	},
}

const dashboardTemplate = `# {{ .Title }}

_Generated {{ datetime .Generated }}_

## Account

| | |
|:---|---:|
| Balance | {{ currency .Summary.Balance }} |
| Starting balance | {{ currency .Summary.StartingBalance }} |
| Total return | {{ pct .Summary.Metrics.TotalReturn true }} |
| Risk level | {{ .Summary.RiskLevel }} |

## Active Positions

| Open | Capital at risk | Max loss | Available |
|---:|---:|---:|---:|
| {{ .Summary.Positions.Count }} | {{ currency .Summary.Positions.CapitalAtRisk }} | {{ currency .Summary.Positions.MaxLoss }} | {{ currency .Summary.Positions.AvailableCapital }} |
{{ if .Summary.OpenTrades }}
| Id | Underlying | Type | Strikes | Credit | Max risk | DTE | Opened |
|:---|:---|:---|---:|---:|---:|---:|:---|
{{- range .Summary.OpenTrades }}
| {{ short .ID }} | {{ .Underlying }} | {{ .Type }} | {{ fixed .ShortStrike 2 }}/{{ fixed .LongStrike 2 }} | {{ currency .Credit }} | {{ currency .MaxRisk }} | {{ .DTE }} | {{ date .OpenDate.Time }} |
{{- end }}
{{ end }}
## Performance

| Closed | Win rate | Avg P&L | Best | Worst | Sharpe |
|---:|---:|---:|---:|---:|---:|
{{- with .Summary.Metrics }}
| {{ .ClosedTrades }} | {{ pct .WinRate false }} | {{ signed .AvgReturn }} | {{ signed .BestTrade }} | {{ signed .WorstTrade }} | {{ fixed .SharpeRatio 2 }} |
{{- end }}

## Entry Timing

**{{ .Timing.CurrentDay }}: {{ .Timing.EntryRating }}.** {{ .Timing.Analysis }}

Week: {{ .Timing.WeekStatus }}. Optimal DTE: {{ .Timing.OptimalDTE }}.

| Mon | Tue | Wed | Thu | Fri |
|---:|---:|---:|---:|---:|
{{- with .Timing.DayScores }}
| {{ .Monday }} | {{ .Tuesday }} | {{ .Wednesday }} | {{ .Thursday }} | {{ .Friday }} |
{{- end }}
{{ with .Market }}
## Market

| | Reading | Assessment |
|:---|:---|:---|
| VIX | {{ if .VIX.Available }}{{ fixed .VIX.Level 2 }}{{ else }}n/a{{ end }} | {{ .VIXAnalysis.Environment }} ({{ .VIXAnalysis.Recommendation }}) |
| SPY | {{ if .SPY.Available }}{{ fixed .SPY.Price 2 }} {{ .SPY.Trend.Direction }}{{ else }}n/a{{ end }} | {{ .Trend.Strength }} ({{ .Trend.Environment }}) |
| QQQ | {{ if .QQQ.Available }}{{ fixed .QQQ.Price 2 }} {{ .QQQ.Trend.Direction }}{{ else }}n/a{{ end }} | |
| Calendar | {{ len .Calendar.Events }} events | {{ .CalendarRisk.Level }} ({{ .CalendarRisk.Advice }}) |
{{ end }}
## Recent Trades
{{ if .Summary.RecentTrades }}
| Opened | Underlying | Type | Strikes | Credit | Status | P&L |
|:---|:---|:---|---:|---:|:---|---:|
{{- range .Summary.RecentTrades }}
| {{ date .OpenDate.Time }} | {{ .Underlying }} | {{ .Type }} | {{ fixed .ShortStrike 2 }}/{{ fixed .LongStrike 2 }} | {{ currency .Credit }} | {{ .Status }} | {{ if .IsOpen }}-{{ else }}{{ signed .PnL }}{{ end }} |
{{- end }}
{{ else }}
No trades yet.
{{ end -}}
`

var tmpl = template.Must(template.New("dashboard").Funcs(funcs).Parse(dashboardTemplate))

// Markdown renders d.
func Markdown(d Data) (string, error) {
	if d.Title == "" {
		d.Title = "Credit Spreads Dashboard"
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, d); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return b.String(), nil
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Credit Spreads Dashboard</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 60rem; margin: 2rem auto; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { padding: .25rem .75rem; border-bottom: 1px solid #ddd; }
</style>
</head>
<body>
`

// HTML converts markdown to a standalone page. Raw HTML in the source is
// not passed through.
func HTML(markdown string) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(pageHead)
	if err := md.Convert([]byte(markdown), &b); err != nil {
		return nil, fmt.Errorf("convert report: %w", err)
	}
	b.WriteString("</body>\n</html>\n")
	return b.Bytes(), nil
}

// Terminal styles markdown for a terminal of the given width.
func Terminal(markdown, style string, width int) (string, error) {
	if style == "" {
		style = DefaultStyle
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("terminal renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render terminal report: %w", err)
	}
	return out, nil
}
