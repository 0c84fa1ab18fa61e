package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/spreads/config"
	"github.com/rustyeddy/spreads/journal"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "spreads.yaml")

	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(dir, "spreads.sqlite")
	cfg.Journal = config.JournalConfig{Type: journal.TypeSQLite, DBPath: filepath.Join(dir, "journal.sqlite")}
	cfg.Log.Level = "error"
	require.NoError(t, cfg.SaveToFile(cfgPath))

	out := run(t, "config", "validate", "-f", cfgPath)
	assert.Contains(t, out, "Configuration valid")

	out = run(t, "--config", cfgPath, "analyze", "--price", "570", "--short", "565", "--long", "560", "--credit", "150")
	assert.Contains(t, out, "Max Risk:            $350")
	assert.Contains(t, out, "Within the risk limit")

	out = run(t, "--config", cfgPath, "trade", "add", "--price", "570", "--short", "565", "--long", "560", "--credit", "150")
	require.Contains(t, out, "Opened")
	tradeID := strings.Fields(out)[2]

	out = run(t, "--config", cfgPath, "trade", "list")
	assert.Contains(t, out, tradeID)
	assert.Contains(t, out, "565.00/560.00")

	out = run(t, "--config", cfgPath, "trade", "close", tradeID, "--pnl", "120")
	assert.Contains(t, out, "Balance $3,120")

	out = run(t, "--config", cfgPath, "positions")
	assert.Contains(t, out, "$3,120")
	assert.Contains(t, out, "Low Risk")

	out = run(t, "--config", cfgPath, "metrics")
	assert.Contains(t, out, "Closed Trades:   1")
	assert.Contains(t, out, "Win Rate:        100.0%")

	out = run(t, "--config", cfgPath, "journal", "trade", tradeID)
	assert.Contains(t, out, ":REALIZED_PL: 120.00")

	out = run(t, "--config", cfgPath, "export", "-o", dir)
	assert.Contains(t, out, "Exported 1 trades")
	matches, err := filepath.Glob(filepath.Join(dir, "credit-spreads-data-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	out = run(t, "--config", cfgPath, "reset", "--yes")
	assert.Contains(t, out, "Account reset to $3,000")

	out = run(t, "--config", cfgPath, "import", matches[0])
	assert.Contains(t, out, "Imported 1 trades. Balance $3,120")

	out = run(t, "--config", cfgPath, "report", "--markdown")
	assert.Contains(t, out, "Credit Spreads Dashboard")

	htmlPath := filepath.Join(dir, "dashboard.html")
	run(t, "--config", cfgPath, "report", "--markdown=false", "--html", htmlPath)
	page, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<table>")

	out = run(t, "--config", cfgPath, "timing", "--dte", "30")
	assert.Contains(t, out, "Optimal DTE:")

	out = run(t, "version")
	assert.Contains(t, out, "spreads version")
}
