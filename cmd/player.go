package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-b5-metrics/internal/aggregator"
	"github.com/pable/go-b5-metrics/internal/model"
	"github.com/pable/go-b5-metrics/internal/report"
)

var playerZones bool

// playerCmd is the cobra command for cross-match history of one or more players.
var playerCmd = &cobra.Command{
	Use:     "player <name> [<name>...]",
	Aliases: []string{"history"},
	Short:   "Cross-match history for one or more players",
	Long: `Print every archived match of each named player with a career line summed
over all of them. Names are matched case-insensitively; quote names with spaces.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlayer,
}

func init() {
	playerCmd.Flags().BoolVar(&playerZones, "zones", false, "also print the career hit-zone heat-map")
}

func runPlayer(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	for i, name := range args {
		lines, err := db.GetPlayerHistory(name)
		if err != nil {
			return fmt.Errorf("query history for %q: %w", name, err)
		}
		if len(lines) == 0 {
			fmt.Fprintf(os.Stderr, "No archived matches for %q\n", name)
			continue
		}
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		fmt.Fprintf(os.Stdout, "--- %s ---\n", lines[0].Name)
		report.PrintPlayerHistory(os.Stdout, lines)

		if playerZones {
			var zones model.HitZoneStats
			for _, l := range lines {
				for z := range zones {
					zones[z].Hits += l.Stats.HitZones[z].Hits
					zones[z].Attempts += l.Stats.HitZones[z].Attempts
				}
			}
			fmt.Fprintln(os.Stdout)
			report.PrintHeatmap(os.Stdout, lines[0].Name+" (career)", aggregator.ZoneHeatmap(zones))
		}
	}
	return nil
}
