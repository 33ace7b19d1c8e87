package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-b5-metrics/internal/aggregator"
	"github.com/pable/go-b5-metrics/internal/report"
)

var (
	heatmapPlayer  string
	heatmapTeam    int
	heatmapArchive string
)

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Print hit-zone heat-maps",
	Long: `Print the 3x3 hit-zone grid with hits, attempts and success rate per zone.
By default both teams are shown; --team or --player narrows it down.`,
	Args: cobra.NoArgs,
	RunE: runHeatmap,
}

func init() {
	heatmapCmd.Flags().StringVar(&heatmapPlayer, "player", "", "one player (id, name or team.position)")
	heatmapCmd.Flags().IntVar(&heatmapTeam, "team", 0, "one team, 1 or 2")
	heatmapCmd.Flags().StringVar(&heatmapArchive, "archived", "", "archived match id prefix instead of the match in progress")
}

func runHeatmap(cmd *cobra.Command, args []string) error {
	s, err := currentOrArchived(heatmapArchive)
	if err != nil {
		return err
	}

	if heatmapPlayer != "" {
		id, err := resolvePlayer(s, heatmapPlayer)
		if err != nil {
			return err
		}
		p := s.Player(id)
		report.PrintHeatmap(os.Stdout, p.Name, aggregator.ZoneHeatmap(p.Stats.HitZones))
		return nil
	}

	switch heatmapTeam {
	case 0:
		for i, t := range s.Teams {
			if i > 0 {
				fmt.Fprintln(os.Stdout)
			}
			report.PrintHeatmap(os.Stdout, t.Name, aggregator.TeamHeatmap(t))
		}
	case 1, 2:
		t := s.Teams[heatmapTeam-1]
		report.PrintHeatmap(os.Stdout, t.Name, aggregator.TeamHeatmap(t))
	default:
		return fmt.Errorf("--team must be 1 or 2, got %d", heatmapTeam)
	}
	return nil
}
