package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/spreads/account"
	"github.com/rustyeddy/spreads/dashboard"
	"github.com/rustyeddy/spreads/format"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a proposed credit spread without opening it",
	Long: `Analyze computes max profit, max risk, breakeven, return on risk and the
estimated probability of profit for a spread, and checks it against the
account's per-trade risk cap.

Example:
  spreads analyze --type bullPut --price 570 --short 565 --long 560 --credit 150 --dte 30`,
	Args: cobra.NoArgs,
	RunE: withApp(runAnalyze),
}

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Open, close and list trades",
	Long: `Manage the account's credit spread trades.

Subcommands:
  add    - Open a new spread (rejected when over the risk cap)
  close  - Close an open spread with its realized P&L
  list   - List trades

Examples:
  spreads trade add --type bearCall --underlying QQQ --price 480 --short 490 --long 495 --credit 120 --dte 35
  spreads trade close 01HS2Z6X2R3C4M5N6P7Q8R9S0T --pnl 120
  spreads trade list --open`,
}

var tradeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Open a new spread",
	Args:  cobra.NoArgs,
	RunE:  withApp(runTradeAdd),
}

var tradeCloseCmd = &cobra.Command{
	Use:   "close <trade-id>",
	Short: "Close an open spread",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runTradeClose),
}

var tradeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades",
	Args:  cobra.NoArgs,
	RunE:  withApp(runTradeList),
}

var (
	analyzeInput dashboard.TradeInput
	addInput     dashboard.TradeInput
	closePnL     float64
	listOpenOnly bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeAddCmd)
	tradeCmd.AddCommand(tradeCloseCmd)
	tradeCmd.AddCommand(tradeListCmd)

	tradeFlags(analyzeCmd, &analyzeInput)
	tradeFlags(tradeAddCmd, &addInput)

	tradeCloseCmd.Flags().Float64Var(&closePnL, "pnl", 0, "realized profit (positive) or loss (negative) in dollars (required)")
	tradeCloseCmd.MarkFlagRequired("pnl")

	tradeListCmd.Flags().BoolVar(&listOpenOnly, "open", false, "only list open trades")
}

func tradeFlags(c *cobra.Command, in *dashboard.TradeInput) {
	c.Flags().StringVarP(&in.Type, "type", "t", "bullPut", "spread type (bullPut, bearCall)")
	c.Flags().StringVarP(&in.Underlying, "underlying", "u", "SPY", "underlying symbol")
	c.Flags().Float64VarP(&in.CurrentPrice, "price", "p", 0, "current underlying price (required)")
	c.Flags().Float64Var(&in.ShortStrike, "short", 0, "short strike (required)")
	c.Flags().Float64Var(&in.LongStrike, "long", 0, "long strike (required)")
	c.Flags().Float64Var(&in.Credit, "credit", 0, "credit received per contract in dollars (required)")
	c.Flags().IntVar(&in.DTE, "dte", 30, "days to expiration")

	for _, f := range []string{"price", "short", "long", "credit"} {
		c.MarkFlagRequired(f)
	}
}

func runAnalyze(cmd *cobra.Command, args []string, a *app) error {
	q, err := a.svc.Analyze(analyzeInput)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	an := q.Analysis
	fmt.Fprintf(out, "Max Profit:          %s\n", format.Currency(an.MaxProfit, false))
	fmt.Fprintf(out, "Max Risk:            %s\n", format.Currency(an.MaxRisk, false))
	fmt.Fprintf(out, "Return on Risk:      %s\n", format.Percent(an.ReturnPercent, false))
	fmt.Fprintf(out, "Breakeven:           %s\n", format.Fixed(an.Breakeven, 2))
	fmt.Fprintf(out, "Strike Width:        %s\n", format.Fixed(an.StrikeWidth, 2))
	fmt.Fprintf(out, "Profit Probability:  %d%%\n", an.ProfitProbability)
	fmt.Fprintf(out, "Risk/Reward:         1:%s\n", format.Fixed(an.RiskReward, 2))
	fmt.Fprintf(out, "Account Risk:        %s of balance (max %s)\n",
		format.Percent(q.Risk.RiskPct, false), format.Currency(q.Risk.MaxAllowed, false))
	fmt.Fprintf(out, "Max Contracts:       %d\n", q.MaxContracts)
	if q.Risk.IsValid {
		fmt.Fprintln(out, "✓ Within the risk limit")
	}
	for _, w := range q.Warnings {
		fmt.Fprintf(out, "⚠ %s\n", w)
	}
	return nil
}

func runTradeAdd(cmd *cobra.Command, args []string, a *app) error {
	t, err := a.svc.AddTrade(cmd.Context(), addInput)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Opened %s %s %s/%s for %s credit (max risk %s)\n",
		t.ID, t.Underlying, format.Fixed(t.ShortStrike, 2), format.Fixed(t.LongStrike, 2),
		format.Currency(t.Credit, false), format.Currency(t.MaxRisk, false))
	return nil
}

func runTradeClose(cmd *cobra.Command, args []string, a *app) error {
	t, err := a.svc.CloseTrade(cmd.Context(), args[0], closePnL)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Closed %s with P&L %s. Balance %s\n",
		t.ID, format.Currency(t.PnL, true), format.Currency(a.svc.Summary().Balance, false))
	return nil
}

func runTradeList(cmd *cobra.Command, args []string, a *app) error {
	trades := a.svc.Trades()
	if listOpenOnly {
		sum := a.svc.Summary()
		trades = sum.OpenTrades
	}
	printTrades(cmd.OutOrStdout(), trades)
	return nil
}

func printTrades(w io.Writer, trades []account.Trade) {
	if len(trades) == 0 {
		fmt.Fprintln(w, "No trades.")
		return
	}
	fmt.Fprintf(w, "%-26s  %-10s  %-8s  %-6s  %15s  %10s  %10s  %-6s  %10s\n",
		"ID", "Opened", "Type", "Symbol", "Strikes", "Credit", "Max Risk", "Status", "P&L")
	for _, t := range trades {
		pnl := "-"
		if !t.IsOpen() {
			pnl = format.Currency(t.PnL, true)
		}
		fmt.Fprintf(w, "%-26s  %-10s  %-8s  %-6s  %15s  %10s  %10s  %-6s  %10s\n",
			t.ID, t.OpenDate.Format("2006-01-02"), t.Type, t.Underlying,
			format.Fixed(t.ShortStrike, 2)+"/"+format.Fixed(t.LongStrike, 2),
			format.Currency(t.Credit, false), format.Currency(t.MaxRisk, false), t.Status, pnl)
	}
}
