package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/spreads/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the dashboard in the terminal or as HTML",
	Long: `Report renders the account, positions, performance, entry timing and
recent trades as one page.

Examples:
  spreads report
  spreads report --market --style dark
  spreads report --html dashboard.html`,
	Args: cobra.NoArgs,
	RunE: withApp(runReport),
}

var (
	reportHTML   string
	reportMarket bool
	reportStyle  string
	reportRaw    bool
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportHTML, "html", "", "write an HTML page to this file instead")
	reportCmd.Flags().BoolVarP(&reportMarket, "market", "m", false, "include market conditions (calls the data provider)")
	reportCmd.Flags().StringVar(&reportStyle, "style", "", "terminal style: notty, dark, light, ascii (default from config)")
	reportCmd.Flags().BoolVar(&reportRaw, "markdown", false, "print the raw markdown")
}

func runReport(cmd *cobra.Command, args []string, a *app) error {
	d := report.Data{
		Generated: a.svc.Now(),
		Summary:   a.svc.Summary(),
		Timing:    a.svc.Timing(cmd.Context(), 0),
	}
	if reportMarket {
		o := a.svc.Market(cmd.Context())
		d.Market = &o
	}

	md, err := report.Markdown(d)
	if err != nil {
		return err
	}

	if reportHTML != "" {
		page, err := report.HTML(md)
		if err != nil {
			return err
		}
		if err := os.WriteFile(reportHTML, page, 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", reportHTML)
		return nil
	}

	if reportRaw {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}

	style := reportStyle
	if style == "" {
		style = a.cfg.Report.Style
	}
	out, err := report.Terminal(md, style, a.cfg.Report.Width)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
