package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-b5-metrics/internal/model"
	"github.com/pable/go-b5-metrics/internal/report"
)

var (
	showPlayer string
	showLog    bool
)

var showCmd = &cobra.Command{
	Use:   "show [match-id-prefix]",
	Short: "Show match stats",
	Long: `Show the scoreboard, batting and fielding tables and top performers of the
match in progress, or of an archived match when an id prefix is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showPlayer, "player", "", "highlight player (id, name or team.position)")
	showCmd.Flags().BoolVar(&showLog, "log", false, "also print the action log")
}

func runShow(cmd *cobra.Command, args []string) error {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}
	s, err := currentOrArchived(prefix)
	if err != nil {
		return err
	}

	focus := ""
	if showPlayer != "" {
		if focus, err = resolvePlayer(s, showPlayer); err != nil {
			return err
		}
	}
	printMatch(s, focus, showLog)
	return nil
}

func printMatch(s model.GameState, focus string, withLog bool) {
	sum := report.BuildSummary(s, time.Now())
	report.PrintMatchHeader(os.Stdout, sum)
	report.PrintScoreboard(os.Stdout, sum)
	for _, t := range sum.Teams {
		fmt.Fprintln(os.Stdout)
		report.PrintBattingTable(os.Stdout, t, focus)
		report.PrintFieldingTable(os.Stdout, t)
	}
	fmt.Fprintln(os.Stdout)
	report.PrintTopPerformers(os.Stdout, sum.Match.TopPerformers)
	if withLog {
		fmt.Fprintln(os.Stdout)
		report.PrintActionLog(os.Stdout, s)
	}
}
