package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-b5-metrics/internal/report"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all archived matches",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	matches, err := db.ListMatches()
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches archived yet. Finish one with 'b5stats end' to add it.")
		return nil
	}
	report.PrintMatchList(os.Stdout, matches)
	return nil
}
