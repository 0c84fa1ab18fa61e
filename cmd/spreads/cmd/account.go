package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/spreads/format"
)

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Show balance, open positions and risk level",
	Args:  cobra.NoArgs,
	RunE:  withApp(runPositions),
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show performance over closed trades",
	Args:  cobra.NoArgs,
	RunE:  withApp(runMetrics),
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the account to a JSON file",
	Long: `Write the account (balance, trades and balance history) to a dated JSON
file that import and the web dashboard accept.

Examples:
  spreads export
  spreads export --sync -o ~/Dropbox`,
	Args: cobra.NoArgs,
	RunE: withApp(runExport),
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the account with an exported file",
	Long: `Import validates the file and replaces the current account with it. The
current account is backed up first and can be brought back with
'spreads backup restore'. Export files and sync files are both accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runImport),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start over with a fresh account",
	Args:  cobra.NoArgs,
	RunE:  withApp(runReset),
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create, restore or inspect the local backup",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Back up the current account",
	Args:  cobra.NoArgs,
	RunE:  withApp(runBackupCreate),
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the account with the backup",
	Args:  cobra.NoArgs,
	RunE:  withApp(runBackupRestore),
}

var backupInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show what the store holds",
	Args:  cobra.NoArgs,
	RunE:  withApp(runBackupInfo),
}

var (
	exportDir  string
	exportSync bool
	resetYes   bool
)

func init() {
	rootCmd.AddCommand(positionsCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupInfoCmd)

	exportCmd.Flags().StringVarP(&exportDir, "output", "o", ".", "directory to write the export into")
	exportCmd.Flags().BoolVar(&exportSync, "sync", false, "write a sync file for another device instead of an export")

	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "confirm the reset")
}

func runPositions(cmd *cobra.Command, args []string, a *app) error {
	sum := a.svc.Summary()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Balance:            %s (started at %s)\n",
		format.Currency(sum.Balance, false), format.Currency(sum.StartingBalance, false))
	fmt.Fprintf(out, "Open Positions:     %d\n", sum.Positions.Count)
	fmt.Fprintf(out, "Capital at Risk:    %s\n", format.Currency(sum.Positions.CapitalAtRisk, false))
	fmt.Fprintf(out, "Max Loss:           %s\n", format.Currency(sum.Positions.MaxLoss, false))
	fmt.Fprintf(out, "Available Capital:  %s\n", format.Currency(sum.Positions.AvailableCapital, false))
	fmt.Fprintf(out, "Risk Level:         %s\n", sum.RiskLevel)
	if len(sum.OpenTrades) > 0 {
		fmt.Fprintln(out)
		printTrades(out, sum.OpenTrades)
	}
	return nil
}

func runMetrics(cmd *cobra.Command, args []string, a *app) error {
	m := a.svc.Metrics()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Closed Trades:   %d\n", m.ClosedTrades)
	fmt.Fprintf(out, "Total Return:    %s\n", format.Percent(m.TotalReturn, true))
	fmt.Fprintf(out, "Monthly Return:  %s\n", format.Percent(m.MonthlyReturn, true))
	fmt.Fprintf(out, "Win Rate:        %s\n", format.Percent(m.WinRate, false))
	fmt.Fprintf(out, "Avg Return:      %s\n", format.Percent(m.AvgReturn, true))
	fmt.Fprintf(out, "Best Trade:      %s\n", format.Currency(m.BestTrade, true))
	fmt.Fprintf(out, "Worst Trade:     %s\n", format.Currency(m.WorstTrade, true))
	fmt.Fprintf(out, "Sharpe Ratio:    %s\n", format.Fixed(m.SharpeRatio, 2))
	return nil
}

func runExport(cmd *cobra.Command, args []string, a *app) error {
	var (
		data []byte
		name string
		err  error
	)
	if exportSync {
		data, name, err = a.svc.SyncExport(cmd.Context())
	} else {
		data, name, err = a.svc.Export()
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	path := filepath.Join(exportDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d trades to %s\n", len(a.svc.Trades()), path)
	return nil
}

func runImport(cmd *cobra.Command, args []string, a *app) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	rec, err := a.svc.Import(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d trades. Balance %s\n",
		len(rec.Trades), format.Currency(rec.Balance, false))
	return nil
}

func runReset(cmd *cobra.Command, args []string, a *app) error {
	if !resetYes {
		fmt.Fprint(cmd.OutOrStdout(), "Reset the account? The current one is kept as the backup. [y/N] ")
		var answer string
		fmt.Fscanln(cmd.InOrStdin(), &answer)
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}
	if err := a.svc.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Account reset to %s\n", format.Currency(a.svc.Summary().Balance, false))
	return nil
}

func runBackupCreate(cmd *cobra.Command, args []string, a *app) error {
	if err := a.svc.Backup(cmd.Context()); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Backup created")
	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string, a *app) error {
	rec, err := a.svc.Restore(cmd.Context())
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Restored %d trades. Balance %s\n",
		len(rec.Trades), format.Currency(rec.Balance, false))
	return nil
}

func runBackupInfo(cmd *cobra.Command, args []string, a *app) error {
	info, err := a.store.Info(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Store:       %s\n", a.cfg.Storage.DBPath)
	fmt.Fprintf(out, "Account:     %v (%s bytes)\n", info.HasData, format.Number(float64(info.DataSize), 0))
	fmt.Fprintf(out, "Sync marker: %v\n", info.HasSync)
	fmt.Fprintf(out, "Backup:      %v\n", info.HasBackup)
	fmt.Fprintf(out, "Total:       %s bytes\n", format.Number(float64(info.TotalSize), 0))
	return nil
}
