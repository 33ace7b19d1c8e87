package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-b5-metrics/internal/model"
	"github.com/pable/go-b5-metrics/internal/storage"
)

var (
	newTeam1   string
	newTeam2   string
	newRoster1 string
	newRoster2 string
	newDemo    bool
	newForce   bool
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Set up a new match",
	Long: `Set up a new match from two team names and two rosters of equal size.
Rosters are comma-separated player names in batting position order.

  b5stats new --team1 Lions --players1 "Ana,Ben,Cleo,Dan,Eve" \
              --team2 Owls  --players2 "Fay,Gus,Hal,Ivy,Jo"`,
	Args: cobra.NoArgs,
	RunE: runNew,
}

func init() {
	newCmd.Flags().StringVar(&newTeam1, "team1", "", "name of team 1 (bats first in the roster listing)")
	newCmd.Flags().StringVar(&newTeam2, "team2", "", "name of team 2")
	newCmd.Flags().StringVar(&newRoster1, "players1", "", "comma-separated roster of team 1")
	newCmd.Flags().StringVar(&newRoster2, "players2", "", "comma-separated roster of team 2")
	newCmd.Flags().BoolVar(&newDemo, "demo", false, "fill teams and rosters with example data")
	newCmd.Flags().BoolVarP(&newForce, "force", "f", false, "replace a match already in progress")
}

func splitRoster(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func runNew(cmd *cobra.Command, args []string) error {
	ms := model.Setup{
		Team1Name:    newTeam1,
		Team2Name:    newTeam2,
		Team1Players: splitRoster(newRoster1),
		Team2Players: splitRoster(newRoster2),
	}
	if newDemo {
		ms = model.DemoSetup()
	}

	slot, err := openSlot()
	if err != nil {
		return err
	}
	defer slot.Close()
	if slot.Exists() && !newForce {
		fmt.Fprintln(os.Stderr, "A match is already in progress. Re-run with --force to replace it.")
		return nil
	}

	s, err := model.NewGameState(ms, time.Now())
	if err != nil {
		return fmt.Errorf("set up match: %w", err)
	}
	if err := storage.SaveState(slot, s); err != nil {
		return err
	}
	log.Info().Str("match", s.MatchID).Msg("match created")

	fmt.Fprintf(os.Stdout, "Match %s: %s vs %s (%d players each)\n",
		s.MatchID[:8], s.Teams[0].Name, s.Teams[1].Name, len(s.Teams[0].Players))
	fmt.Fprintln(os.Stdout, "Run 'b5stats start' when play begins.")
	return nil
}
