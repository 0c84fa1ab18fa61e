package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/spreads/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and HTML dashboard",
	Long: `Serve exposes the account over HTTP until interrupted.

Endpoints:
  GET  /report                  HTML dashboard (?market=1 adds market data)
  GET  /api/account             balance, positions, metrics and recent trades
  POST /api/analyze             analyze a proposed trade
  GET  /api/trades              list trades (?status=open|closed)
  POST /api/trades              open a trade
  POST /api/trades/{id}/close   close a trade, body {"pnl": 120}
  GET  /api/positions, /api/metrics, /api/timing?dte=N, /api/market
  GET  /api/export, POST /api/import

Example:
  spreads serve --addr 127.0.0.1:8080`,
	Args: cobra.NoArgs,
	RunE: withApp(runServe),
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string, a *app) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	srv := server.New(a.svc, server.Options{
		RequestsPerSecond: a.cfg.Server.RequestsPerSecond,
		Burst:             a.cfg.Server.Burst,
		Logger:            a.log,
	})
	return srv.ListenAndServe(ctx, addr)
}
