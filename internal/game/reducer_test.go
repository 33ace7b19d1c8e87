package game

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/pable/go-b5-metrics/internal/model"
)

var matchStart = time.Date(2026, 6, 13, 10, 0, 0, 0, time.UTC)

// newActiveMatch builds the demo match and starts it.
func newActiveMatch(t *testing.T) model.GameState {
	t.Helper()
	s, err := model.NewGameState(model.DemoSetup(), matchStart)
	if err != nil {
		t.Fatalf("NewGameState: %v", err)
	}
	s, err = Start(s)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

// atBat selects batter or fails the test.
func atBat(t *testing.T, s model.GameState, batter string) model.GameState {
	t.Helper()
	s, err := SelectBatter(s, batter)
	if err != nil {
		t.Fatalf("SelectBatter(%s): %v", batter, err)
	}
	return s
}

// play builds a resolved action for batter.
func play(s model.GameState, id, batter string, zone int, res model.Result, caught, good bool, fielder string) model.GameAction {
	name := ""
	if p := s.Player(batter); p != nil {
		name = p.Name
	}
	return model.GameAction{
		ID:         id,
		Inning:     s.CurrentInning,
		BatterID:   batter,
		BatterName: name,
		HitZone:    zone,
		Result:     res,
		Defensive:  model.Defensive{Caught: caught, GoodThrow: good, FielderID: fielder},
		Timestamp:  matchStart.UnixMilli() + int64(len(s.Actions)),
	}
}

func TestRecordAction_SafeWithFielder(t *testing.T) {
	s := newActiveMatch(t)
	s, err := SelectBatter(s, "team1-player-1")
	if err != nil {
		t.Fatalf("SelectBatter: %v", err)
	}
	a := play(s, "a1", "team1-player-1", 5, model.ResultSafe, false, false, "team2-player-2")
	s, err = RecordAction(s, a)
	if err != nil {
		t.Fatalf("RecordAction: %v", err)
	}

	if s.Teams[0].Score != 1 {
		t.Errorf("team1 score: want 1, got %d", s.Teams[0].Score)
	}
	b1 := s.Player("team1-player-1").Stats
	if b1.AtBats != 1 || b1.Hits != 1 {
		t.Errorf("batter: want 1/1, got %d/%d", b1.Hits, b1.AtBats)
	}
	if z := b1.HitZones[4]; z != (model.ZoneStat{Hits: 1, Attempts: 1}) {
		t.Errorf("zone5: got %+v", z)
	}
	want := model.Fielding{MissedCatches: 1, BadThrows: 1, TotalOpportunities: 1}
	if f := s.Player("team2-player-2").Stats.Fielding; f != want {
		t.Errorf("fielder: want %+v, got %+v", want, f)
	}
	if len(s.Actions) != 1 {
		t.Errorf("actions: want 1, got %d", len(s.Actions))
	}
	if s.CurrentBatter != "" {
		t.Errorf("current batter should be cleared, got %q", s.CurrentBatter)
	}
}

func TestRecordAction_OutWithoutFielder(t *testing.T) {
	s := atBat(t, newActiveMatch(t), "team2-player-3")
	s, err := RecordAction(s, play(s, "a1", "team2-player-3", 9, model.ResultOut, true, true, ""))
	if err != nil {
		t.Fatalf("RecordAction: %v", err)
	}
	if s.Teams[1].Score != 0 {
		t.Errorf("score should not move on an out, got %d", s.Teams[1].Score)
	}
	p := s.Player("team2-player-3").Stats
	if p.AtBats != 1 || p.Hits != 0 || p.HitZones[8].Attempts != 1 || p.HitZones[8].Hits != 0 {
		t.Errorf("unexpected batter stats %+v", p)
	}
	for _, pl := range s.AllPlayers() {
		if pl.Stats.Fielding != (model.Fielding{}) {
			t.Errorf("%s: fielding should be untouched, got %+v", pl.ID, pl.Stats.Fielding)
		}
	}
}

func TestRecordAction_FielderFromBattingTeam(t *testing.T) {
	s := atBat(t, newActiveMatch(t), "team1-player-1")
	s, err := RecordAction(s, play(s, "a1", "team1-player-1", 2, model.ResultOut, true, false, "team1-player-4"))
	if err != nil {
		t.Fatalf("RecordAction: %v", err)
	}
	want := model.Fielding{Catches: 1, BadThrows: 1, TotalOpportunities: 1}
	if f := s.Player("team1-player-4").Stats.Fielding; f != want {
		t.Errorf("want %+v, got %+v", want, f)
	}
}

func TestRecordAction_RejectionsLeaveStateUntouched(t *testing.T) {
	played := atBat(t, newActiveMatch(t), "team1-player-2")
	played, err := RecordAction(played, play(played, "a0", "team1-player-2", 1, model.ResultSafe, true, true, "team2-player-1"))
	if err != nil {
		t.Fatalf("RecordAction: %v", err)
	}
	base := atBat(t, played, "team1-player-1")
	setup, _ := model.NewGameState(model.DemoSetup(), matchStart)
	done, _ := Complete(base, matchStart.Add(time.Hour))
	earlier := play(base, "x", "team1-player-1", 5, model.ResultSafe, false, false, "")
	earlier.Inning = base.CurrentInning - 1

	cases := []struct {
		name  string
		state model.GameState
		a     model.GameAction
		want  error
	}{
		{"no batter", played, play(played, "x", "team1-player-1", 5, model.ResultSafe, false, false, ""), ErrNoBatter},
		{"empty batter id", base, play(base, "x", "", 5, model.ResultSafe, false, false, ""), ErrNotAtBat},
		{"unknown batter", base, play(base, "x", "ghost", 5, model.ResultSafe, false, false, ""), ErrNotAtBat},
		{"other batter", base, play(base, "x", "team2-player-3", 5, model.ResultSafe, false, false, ""), ErrNotAtBat},
		{"earlier inning", base, earlier, ErrWrongInning},
		{"empty id", base, play(base, "", "team1-player-1", 5, model.ResultSafe, false, false, ""), ErrActionID},
		{"duplicate id", base, play(base, "a0", "team1-player-1", 5, model.ResultSafe, false, false, ""), ErrActionID},
		{"unknown fielder", base, play(base, "x", "team1-player-1", 5, model.ResultSafe, false, false, "ghost"), ErrUnknownPlayer},
		{"zone 0", base, play(base, "x", "team1-player-1", 0, model.ResultSafe, false, false, ""), ErrInvalidZone},
		{"zone 10", base, play(base, "x", "team1-player-1", 10, model.ResultOut, false, false, ""), ErrInvalidZone},
		{"bad result", base, play(base, "x", "team1-player-1", 3, model.Result("foul"), false, false, ""), ErrInvalidResult},
		{"setup phase", setup, play(setup, "x", "team1-player-1", 3, model.ResultSafe, false, false, ""), ErrNotActive},
		{"complete", done, play(done, "x", "team1-player-1", 3, model.ResultSafe, false, false, ""), ErrGameComplete},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := tc.state.Clone()
			got, err := RecordAction(tc.state, tc.a)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
			if !reflect.DeepEqual(got, before) {
				t.Error("returned state differs from input")
			}
			if !reflect.DeepEqual(tc.state, before) {
				t.Error("input state was mutated")
			}
		})
	}
}

func TestRecordAction_DoesNotMutateInput(t *testing.T) {
	s := atBat(t, newActiveMatch(t), "team1-player-1")
	before := s.Clone()
	if _, err := RecordAction(s, play(s, "a1", "team1-player-1", 4, model.ResultSafe, true, true, "team2-player-1")); err != nil {
		t.Fatalf("RecordAction: %v", err)
	}
	if !reflect.DeepEqual(s, before) {
		t.Error("RecordAction mutated its input")
	}
}

func TestPhaseTransitions(t *testing.T) {
	s, _ := model.NewGameState(model.DemoSetup(), matchStart)

	if _, err := AdvanceInning(s); !errors.Is(err, ErrNotActive) {
		t.Errorf("AdvanceInning in setup: want ErrNotActive, got %v", err)
	}
	if _, err := Complete(s, matchStart); !errors.Is(err, ErrNotActive) {
		t.Errorf("Complete in setup: want ErrNotActive, got %v", err)
	}

	s, err := Start(s)
	if err != nil || !s.IsGameActive {
		t.Fatalf("Start: active=%v err=%v", s.IsGameActive, err)
	}
	again, err := Start(s)
	if err != nil || !reflect.DeepEqual(again, s) {
		t.Errorf("second Start should be a no-op, err=%v", err)
	}

	s, _ = SelectBatter(s, "team1-player-1")
	s, err = AdvanceInning(s)
	if err != nil {
		t.Fatalf("AdvanceInning: %v", err)
	}
	if s.CurrentInning != 2 || s.CurrentBatter != "" {
		t.Errorf("after inning: inning=%d batter=%q", s.CurrentInning, s.CurrentBatter)
	}

	s, _ = SelectBatter(s, "team2-player-1")
	end := matchStart.Add(45 * time.Minute)
	s, err = Complete(s, end)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if s.IsGameActive || !s.IsGameComplete || s.EndTime == nil || *s.EndTime != end.UnixMilli() || s.CurrentBatter != "" {
		t.Errorf("unexpected completed state: %+v", s)
	}

	if _, err := Start(s); !errors.Is(err, ErrGameComplete) {
		t.Errorf("Start after complete: want ErrGameComplete, got %v", err)
	}
	if _, err := AdvanceInning(s); !errors.Is(err, ErrGameComplete) {
		t.Errorf("AdvanceInning after complete: want ErrGameComplete, got %v", err)
	}
	if _, err := SelectBatter(s, "team1-player-1"); !errors.Is(err, ErrGameComplete) {
		t.Errorf("SelectBatter after complete: want ErrGameComplete, got %v", err)
	}
}

func TestComplete_TwiceKeepsEndTime(t *testing.T) {
	s := newActiveMatch(t)
	first := matchStart.Add(30 * time.Minute)
	s, err := Complete(s, first)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	s2, err := Complete(s, first.Add(time.Hour))
	if err != nil {
		t.Fatalf("second Complete: %v", err)
	}
	if *s2.EndTime != first.UnixMilli() {
		t.Errorf("end time overwritten: want %d, got %d", first.UnixMilli(), *s2.EndTime)
	}
	if !reflect.DeepEqual(s, s2) {
		t.Error("second Complete changed the state")
	}
}

func TestSelectBatter_UnknownID(t *testing.T) {
	s := newActiveMatch(t)
	got, err := SelectBatter(s, "team3-player-1")
	if !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("want ErrUnknownPlayer, got %v", err)
	}
	if got.CurrentBatter != "" {
		t.Errorf("batter should stay unset, got %q", got.CurrentBatter)
	}
}

// randomGame records n random valid plays and returns the resulting state.
func randomGame(t *testing.T, rng *rand.Rand, n int) model.GameState {
	t.Helper()
	s := newActiveMatch(t)
	players := s.AllPlayers()
	for i := 0; i < n; i++ {
		if rng.Intn(6) == 0 {
			s, _ = AdvanceInning(s)
		}
		batter := players[rng.Intn(len(players))].ID
		fielder := ""
		if rng.Intn(4) != 0 {
			fielder = players[rng.Intn(len(players))].ID
		}
		res := model.ResultOut
		if rng.Intn(2) == 0 {
			res = model.ResultSafe
		}
		s = atBat(t, s, batter)
		a := play(s, fmt.Sprintf("a%d", i), batter, 1+rng.Intn(9), res, rng.Intn(2) == 0, rng.Intn(2) == 0, fielder)
		var err error
		s, err = RecordAction(s, a)
		if err != nil {
			t.Fatalf("action %d: %v", i, err)
		}
		if err := Check(s); err != nil {
			t.Fatalf("invariants broken after action %d: %v", i, err)
		}
	}
	return s
}

func TestInvariantsHoldOverRandomGames(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for g := 0; g < 20; g++ {
		randomGame(t, rng, 40)
	}
}

func TestRebuildFromLog_MatchesIncremental(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := randomGame(t, rng, 60)

	rebuilt, err := RebuildFromLog(s, s.Actions)
	if err != nil {
		t.Fatalf("RebuildFromLog: %v", err)
	}
	if !reflect.DeepEqual(rebuilt, s) {
		t.Error("rebuilt state differs from incrementally maintained state")
	}
}

func TestRebuildFromLog_UnknownPlayerFails(t *testing.T) {
	s := newActiveMatch(t)
	bad := []model.GameAction{play(s, "a1", "ghost", 1, model.ResultSafe, false, false, "")}
	got, err := RebuildFromLog(s, bad)
	if !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("want ErrUnknownPlayer, got %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Error("failed rebuild should return the input unchanged")
	}
}

func TestCheck_DetectsDrift(t *testing.T) {
	s := atBat(t, newActiveMatch(t), "team1-player-1")
	s, err := RecordAction(s, play(s, "a1", "team1-player-1", 5, model.ResultSafe, true, true, "team2-player-1"))
	if err != nil {
		t.Fatalf("RecordAction: %v", err)
	}
	s.Teams[0].Players[0].Stats.AtBats++
	s.Teams[0].Score = 3
	if err := Check(s); err == nil {
		t.Error("expected Check to report drift")
	}
}

func TestRecordAction_RequiresSelectedBatter(t *testing.T) {
	s := newActiveMatch(t)
	a := play(s, "a1", "team1-player-1", 5, model.ResultSafe, false, false, "")
	got, err := RecordAction(s, a)
	if !errors.Is(err, ErrNoBatter) {
		t.Fatalf("without a batter: want ErrNoBatter, got %v", err)
	}
	if len(got.Actions) != 0 || got.Teams[0].Score != 0 {
		t.Errorf("rejected action left a trace: actions=%d score=%d", len(got.Actions), got.Teams[0].Score)
	}

	s = atBat(t, s, "team2-player-3")
	if _, err := RecordAction(s, a); !errors.Is(err, ErrNotAtBat) {
		t.Fatalf("team1 batter while team2-player-3 is up: want ErrNotAtBat, got %v", err)
	}

	s = atBat(t, s, "team1-player-1")
	s, err = RecordAction(s, a)
	if err != nil {
		t.Fatalf("RecordAction: %v", err)
	}
	s = atBat(t, s, "team1-player-1")
	if _, err := RecordAction(s, a); !errors.Is(err, ErrActionID) {
		t.Fatalf("reused id: want ErrActionID, got %v", err)
	}
	if len(s.Actions) != 1 || s.Teams[0].Score != 1 {
		t.Errorf("want one action and score 1, got %d and %d", len(s.Actions), s.Teams[0].Score)
	}
}
