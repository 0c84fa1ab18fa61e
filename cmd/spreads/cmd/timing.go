package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/spreads/format"
	"github.com/rustyeddy/spreads/market"
)

var timingCmd = &cobra.Command{
	Use:   "timing",
	Short: "Rate today as an entry day",
	Long: `Timing rates the current day of week for opening credit spreads, flags
holiday, expiration and earnings weeks, and suggests an expiry adjusted for
the entry day.

Example:
  spreads timing --dte 45`,
	Args: cobra.NoArgs,
	RunE: withApp(runTiming),
}

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Show VIX, trend and economic calendar conditions",
	Long: `Market fetches the VIX, SPY and QQQ prices and this week's economic events
and rates the environment for selling premium. Set the API key named by
market.api_key_env (FINNHUB_API_KEY by default) in the environment or .env.`,
	Args: cobra.NoArgs,
	RunE: withApp(runMarket),
}

var timingDTE int

func init() {
	rootCmd.AddCommand(timingCmd)
	rootCmd.AddCommand(marketCmd)

	timingCmd.Flags().IntVar(&timingDTE, "dte", 0, "target days to expiration (default from settings)")
}

func runTiming(cmd *cobra.Command, args []string, a *app) error {
	t := a.svc.Timing(cmd.Context(), timingDTE)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s %s: %s\n", t.CurrentDay, t.Date.Format("2006-01-02"), t.EntryRating)
	fmt.Fprintf(out, "  %s\n", t.Analysis)
	fmt.Fprintf(out, "Week:         %s\n", t.WeekStatus)
	fmt.Fprintf(out, "Optimal DTE:  %d\n", t.OptimalDTE)
	fmt.Fprintf(out, "Day scores:   Mon %d  Tue %d  Wed %d  Thu %d  Fri %d\n",
		t.DayScores.Monday, t.DayScores.Tuesday, t.DayScores.Wednesday, t.DayScores.Thursday, t.DayScores.Friday)
	return nil
}

func runMarket(cmd *cobra.Command, args []string, a *app) error {
	if !a.market.Configured() {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s is not set; market data is unavailable\n", a.cfg.Market.APIKeyEnv)
	}
	o := a.svc.Market(cmd.Context())
	out := cmd.OutOrStdout()

	if o.VIX.Available {
		fmt.Fprintf(out, "VIX:       %s (%s)  %s\n",
			format.Fixed(o.VIX.Level, 2), format.Percent(o.VIX.ChangePercent, true), o.VIXAnalysis.Recommendation)
	} else {
		fmt.Fprintf(out, "VIX:       unavailable  %s\n", o.VIXAnalysis.Recommendation)
	}
	fmt.Fprintf(out, "  %s\n", o.VIXAnalysis.Analysis)
	for _, tk := range []market.TickerData{o.SPY, o.QQQ} {
		if !tk.Available {
			fmt.Fprintf(out, "%-4s       unavailable\n", tk.Symbol)
			continue
		}
		fmt.Fprintf(out, "%-4s       %s  %s %s (%s)\n", tk.Symbol, format.Fixed(tk.Price, 2),
			tk.Trend.Direction, tk.Trend.Strength, format.Percent(tk.Trend.Change, true))
	}
	fmt.Fprintf(out, "Trend:     %s\n", o.Trend.Environment)
	fmt.Fprintf(out, "  %s\n", o.Trend.Analysis)
	fmt.Fprintf(out, "Calendar:  %s\n", o.CalendarRisk.Level)
	fmt.Fprintf(out, "  %s %s\n", o.CalendarRisk.Analysis, o.CalendarRisk.Advice)
	for _, e := range o.Calendar.Events {
		fmt.Fprintf(out, "  %s  %-6s  %s (%s)\n", e.Time.Format("Mon Jan 2 15:04"), e.Impact, e.Name, e.Country)
	}
	return nil
}
