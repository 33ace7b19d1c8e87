package cmd

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-b5-metrics/internal/game"
	"github.com/pable/go-b5-metrics/internal/model"
	"github.com/pable/go-b5-metrics/internal/report"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the match in progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := withSession(func(sess *game.Session) error { return sess.Start() })
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s vs %s: play ball, inning %d\n", s.Teams[0].Name, s.Teams[1].Name, s.CurrentInning)
		return nil
	},
}

var batCmd = &cobra.Command{
	Use:   "bat <player>",
	Short: "Set the current batter",
	Long:  "Set the current batter by player id, full name or team.position (e.g. 2.4).",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBat,
}

func runBat(cmd *cobra.Command, args []string) error {
	ref := strings.Join(args, " ")
	var name string
	_, err := withSession(func(sess *game.Session) error {
		snap := sess.Snapshot()
		id, err := resolvePlayer(snap, ref)
		if err != nil {
			return err
		}
		name = snap.Player(id).Name
		return sess.SelectBatter(id)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "At bat: %s\n", name)
	return nil
}

var (
	recordZone      int
	recordResult    string
	recordCaught    bool
	recordGoodThrow bool
	recordFielder   string
	recordRandom    bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record the current batter's play",
	Long: `Record the play of the current batter: the hit zone (1-9, left to right,
top to bottom), the result and, optionally, the fielder who handled the ball.
Without --fielder no fielding is recorded unless --random-fielder is set.`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().IntVarP(&recordZone, "zone", "z", 0, "hit zone 1-9")
	recordCmd.Flags().StringVarP(&recordResult, "result", "r", "", "safe or out")
	recordCmd.Flags().BoolVar(&recordCaught, "caught", false, "the fielder caught the ball")
	recordCmd.Flags().BoolVar(&recordGoodThrow, "good-throw", false, "the fielder made a good throw")
	recordCmd.Flags().StringVar(&recordFielder, "fielder", "", "fielding player (id, name or team.position)")
	recordCmd.Flags().BoolVar(&recordRandom, "random-fielder", false, "credit a random player other than the batter")
	recordCmd.MarkFlagRequired("zone")
	recordCmd.MarkFlagRequired("result")
}

// pickFielder chooses a player other than the current batter, or "" when
// there is none.
func pickFielder(s model.GameState, r *rand.Rand) string {
	var candidates []string
	for _, p := range s.AllPlayers() {
		if p.ID != string(s.CurrentBatter) {
			candidates = append(candidates, p.ID)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[r.IntN(len(candidates))]
}

func runRecord(cmd *cobra.Command, args []string) error {
	p := game.PendingAction{
		HitZone:   recordZone,
		Result:    model.Result(strings.ToLower(recordResult)),
		Caught:    recordCaught,
		GoodThrow: recordGoodThrow,
	}
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	var a model.GameAction
	_, err := withSession(func(sess *game.Session) error {
		snap := sess.Snapshot()
		switch {
		case recordFielder != "":
			id, err := resolvePlayer(snap, recordFielder)
			if err != nil {
				return err
			}
			p.FielderID = id
		case recordRandom:
			p.FielderID = pickFielder(snap, rng)
		}
		var err error
		a, err = sess.RecordAction(p)
		return err
	})
	if errors.Is(err, game.ErrNoBatter) {
		return fmt.Errorf("%w: pick one with 'b5stats bat <player>'", err)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Inning %d - %s: Zone %d → %s\n", a.Inning, a.BatterName, a.HitZone, strings.ToUpper(string(a.Result)))
	return nil
}

var inningCmd = &cobra.Command{
	Use:   "inning",
	Short: "Move to the next inning",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := withSession(func(sess *game.Session) error { return sess.AdvanceInning() })
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Inning %d\n", s.CurrentInning)
		return nil
	},
}

var endNoArchive bool

var endCmd = &cobra.Command{
	Use:   "end",
	Short: "Complete the match and archive it",
	Args:  cobra.NoArgs,
	RunE:  runEnd,
}

func init() {
	endCmd.Flags().BoolVar(&endNoArchive, "no-archive", false, "do not store the match in the archive database")
}

func runEnd(cmd *cobra.Command, args []string) error {
	s, err := withSession(func(sess *game.Session) error { return sess.Complete() })
	if err != nil {
		return err
	}
	if !endNoArchive {
		if err := archive(s); err != nil {
			return fmt.Errorf("archive match: %w", err)
		}
	}

	sum := report.BuildSummary(s, time.Now())
	report.PrintMatchHeader(os.Stdout, sum)
	report.PrintScoreboard(os.Stdout, sum)
	if sum.Match.IsDraw {
		fmt.Fprintf(os.Stdout, "\nDraw, %s\n", sum.Match.FinalScore)
	} else {
		fmt.Fprintf(os.Stdout, "\n%s wins %s\n", sum.Match.Winner.TeamName, sum.Match.FinalScore)
	}
	return nil
}

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the match in progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		slot, err := openSlot()
		if err != nil {
			return err
		}
		defer slot.Close()
		if !slot.Exists() {
			fmt.Fprintln(os.Stdout, "No match in progress, nothing to clear.")
			return nil
		}
		if !clearForce {
			fmt.Fprintln(os.Stderr, "This discards the match in progress. Re-run with --force to confirm.")
			return nil
		}
		if err := slot.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "Match in progress discarded.")
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "skip confirmation")
}

var verifyCmd = &cobra.Command{
	Use:   "verify [match-id-prefix]",
	Short: "Check a match's counters against its action log",
	Long: `Check the counter invariants of a match and replay its action log from
scratch, comparing the replayed counters with the stored ones. Without an
argument the match in progress is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}
	s, err := currentOrArchived(prefix)
	if err != nil {
		return err
	}
	if err := verifyState(s); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "OK: %d actions, counters match the log\n", len(s.Actions))
	return nil
}

// verifyState checks the invariants of s and that replaying its log
// reproduces every counter.
func verifyState(s model.GameState) error {
	if err := game.Check(s); err != nil {
		return fmt.Errorf("inconsistent match:\n%w", err)
	}
	rebuilt, err := game.RebuildFromLog(s, s.Actions)
	if err != nil {
		return err
	}
	for t := range s.Teams {
		if rebuilt.Teams[t].Score != s.Teams[t].Score {
			return fmt.Errorf("%s: stored score %d, replayed %d", s.Teams[t].Name, s.Teams[t].Score, rebuilt.Teams[t].Score)
		}
		for i, p := range s.Teams[t].Players {
			if rebuilt.Teams[t].Players[i].Stats != p.Stats {
				return fmt.Errorf("%s: stored counters differ from the replayed log", p.Name)
			}
		}
	}
	return nil
}
