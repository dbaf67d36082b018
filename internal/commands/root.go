package commands

import (
	"github.com/spf13/cobra"

	"github.com/insightdelivered/eod-ledger-converter/internal/api"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "eod-ledger",
		Short: "Bank statement to daily EOD balance ledger converter",
		Long: `Converts Kotak-style and Axis-style bank statement PDFs into a
continuous day-by-day end-of-day balance ledger (CSV).

Supported bank formats:
  kotak  - fixed columns: SNO DD Mon YYYY DESCRIPTION ±AMOUNT BALANCE (default)
  axis   - heuristic: first date in the line, last two numbers are amount and balance`,
		Version: api.Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}
