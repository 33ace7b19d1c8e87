package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-b5-metrics/internal/report"
)

var logCmd = &cobra.Command{
	Use:   "log [match-id-prefix]",
	Short: "Print the action log of a match",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) > 0 {
			prefix = args[0]
		}
		s, err := currentOrArchived(prefix)
		if err != nil {
			return err
		}
		report.PrintActionLog(os.Stdout, s)
		return nil
	},
}
