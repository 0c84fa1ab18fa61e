package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/spreads/config"
	"github.com/rustyeddy/spreads/dashboard"
	"github.com/rustyeddy/spreads/finnhub"
	"github.com/rustyeddy/spreads/journal"
	"github.com/rustyeddy/spreads/logging"
	"github.com/rustyeddy/spreads/store"
)

var rootCmd = &cobra.Command{
	Use:   "spreads",
	Short: "Credit spread trade analyzer and account tracker",
	Long: `Spreads analyzes bull put and bear call credit spreads, enforces a
per-trade risk cap, and tracks an account's trades, balance and performance.

It provides tools for:
  - Analyzing a proposed spread before entering it
  - Opening and closing trades against the account
  - Entry timing and market conditions
  - Export, import, backup and Google Drive sync
  - A JSON API and HTML dashboard (spreads serve)

Settings come from an optional YAML or JSON config file (spreads config init)
and a .env file for API keys.`,
	SilenceUsage: true,
}

var (
	cfgFile  string
	dbPath   string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite store (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
}

// app is everything a command needs, built from the config.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	store  *store.Store
	market *finnhub.Client
	svc    *dashboard.Service
}

func loadConfig() (*config.Config, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Storage.DBPath, store.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	j, err := journal.Open(cfg.Journal.Type, cfg.Journal.TradesFile, cfg.Journal.BalanceFile, cfg.Journal.DBPath)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("open journal: %w", err)
	}

	fh := finnhub.NewClient(finnhub.Options{
		BaseURL:           cfg.Market.BaseURL,
		APIKey:            cfg.APIKey(),
		RequestsPerMinute: cfg.Market.RequestsPerMinute,
		QuoteTTL:          cfg.Market.QuoteTTL,
		CalendarTTL:       cfg.Market.CalendarTTL,
		Timeout:           cfg.Market.Timeout,
		Logger:            log,
	})

	svc, err := dashboard.New(ctx, st, dashboard.Options{
		StartingBalance: cfg.Account.StartingBalance,
		Policy:          cfg.Policy(),
		Journal:         j,
		Market:          fh,
		Logger:          log,
		MinDTE:          cfg.Trading.MinDTE,
		MaxDTE:          cfg.Trading.MaxDTE,
	})
	if err != nil {
		j.Close()
		st.Close()
		return nil, err
	}

	return &app{cfg: cfg, log: log, store: st, market: fh, svc: svc}, nil
}

func (a *app) Close() {
	if err := a.svc.Close(); err != nil {
		a.log.Warn("close journal", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("close store", zap.Error(err))
	}
	_ = a.log.Sync()
}

// withApp runs fn with an opened app and closes it afterwards.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}
