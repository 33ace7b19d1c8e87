package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-b5-metrics/internal/report"
)

var (
	reportOut     string
	reportArchive string
	reportUTC     bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the plain-text match report",
	Long: `Render the plain-text match report: date, duration, final scores, per-team
player lines and the full action log. Prints to stdout unless --out is given.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "write the report to this file")
	reportCmd.Flags().StringVar(&reportArchive, "archived", "", "archived match id prefix instead of the match in progress")
	reportCmd.Flags().BoolVar(&reportUTC, "utc", false, "print times in UTC instead of local time")
}

func runReport(cmd *cobra.Command, args []string) error {
	s, err := currentOrArchived(reportArchive)
	if err != nil {
		return err
	}
	loc := time.Local
	if reportUTC {
		loc = time.UTC
	}
	text := report.MatchReport(s, time.Now(), loc)

	if reportOut == "" {
		fmt.Fprint(os.Stdout, text)
		return nil
	}
	if err := os.WriteFile(reportOut, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Info().Str("file", reportOut).Msg("report written")
	return nil
}
