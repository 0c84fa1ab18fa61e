package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/spreads/format"
	"github.com/rustyeddy/spreads/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the closed-trade journal",
	Long: `Query and display closed trades from the SQLite journal as Org-mode
entries ready to paste into a trading diary. Requires journal.type sqlite
in the config, or --journal-db.

Subcommands:
  trade    - Get details of a specific trade by ID
  today    - List trades closed today
  day      - List trades closed on a specific day
  balance  - List balance snapshots taken on a specific day

Examples:
  spreads journal trade <trade-id>
  spreads journal today
  spreads journal day 2024-01-15`,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List trades closed today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalBalanceCmd = &cobra.Command{
	Use:   "balance [YYYY-MM-DD]",
	Short: "List balance snapshots for a day (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournalBalance,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)
	journalCmd.AddCommand(journalBalanceCmd)

	journalCmd.PersistentFlags().StringVar(&journalDBPath, "journal-db", "", "path to SQLite journal DB (default from config)")
}

func openJournal() (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		if cfg.Journal.Type != journal.TypeSQLite {
			return nil, fmt.Errorf("journal type is %q; set journal.type to sqlite or pass --journal-db", cfg.Journal.Type)
		}
		path = cfg.Journal.DBPath
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(rec))
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	return listClosed(cmd, time.Now())
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	day, err := time.ParseInLocation("2006-01-02", args[0], time.Local)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	return listClosed(cmd, day)
}

func listClosed(cmd *cobra.Command, day time.Time) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	start, end := journal.DayRange(day, time.Local)
	recs, err := j.ListTradesClosedBetween(start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No trades closed on %s.\n", start.Format("2006-01-02"))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}

func runJournalBalance(cmd *cobra.Command, args []string) error {
	day := time.Now()
	if len(args) == 1 {
		d, err := time.ParseInLocation("2006-01-02", args[0], time.Local)
		if err != nil {
			return fmt.Errorf("date: %w", err)
		}
		day = d
	}

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	start, end := journal.DayRange(day, time.Local)
	snaps, err := j.ListBalanceBetween(start, end)
	if err != nil {
		return fmt.Errorf("query balance: %w", err)
	}
	out := cmd.OutOrStdout()
	for _, s := range snaps {
		fmt.Fprintf(out, "%s  balance %s  at risk %s  available %s  open %d\n",
			s.Time.Local().Format("15:04:05"), format.Currency(s.Balance, false),
			format.Currency(s.CapitalAtRisk, false), format.Currency(s.Available, false), s.OpenPositions)
	}
	return nil
}
