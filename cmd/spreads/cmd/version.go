package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "spreads version %s\n", version)
		fmt.Fprintln(cmd.OutOrStdout(), "Credit spread trade analyzer and account tracker")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
