package game

import (
	"errors"
	"fmt"

	"github.com/pable/go-b5-metrics/internal/model"
)

// RebuildFromLog recomputes every counter and score of s from scratch by
// replaying actions over a zeroed copy of the rosters. The result must match
// the incrementally maintained counters for the same log.
func RebuildFromLog(s model.GameState, actions []model.GameAction) (model.GameState, error) {
	next := s.Clone()
	for t := range next.Teams {
		next.Teams[t].Score = 0
		for i := range next.Teams[t].Players {
			next.Teams[t].Players[i].Stats = model.PlayerStats{}
		}
	}
	next.Actions = make([]model.GameAction, 0, len(actions))

	var err error
	for i, a := range actions {
		next, err = apply(next, a)
		if err != nil {
			return s, fmt.Errorf("replay action %d (%s): %w", i+1, a.ID, err)
		}
	}
	return next, nil
}

// Check verifies the counter invariants of every player and team against each
// other and against the action log. It returns nil when the state is consistent.
func Check(s model.GameState) error {
	var errs []error
	safeByTeam := [2]int{}
	for _, a := range s.Actions {
		if a.Result != model.ResultSafe {
			continue
		}
		if t, _, ok := s.FindPlayer(a.BatterID); ok {
			safeByTeam[t]++
		}
	}
	for t, team := range s.Teams {
		if team.Score != safeByTeam[t] {
			errs = append(errs, fmt.Errorf("%s: score %d but %d safe actions", team.ID, team.Score, safeByTeam[t]))
		}
		for _, p := range team.Players {
			st := p.Stats
			if st.Hits > st.AtBats {
				errs = append(errs, fmt.Errorf("%s: hits %d > atBats %d", p.ID, st.Hits, st.AtBats))
			}
			if n := st.HitZones.Attempts(); n != st.AtBats {
				errs = append(errs, fmt.Errorf("%s: zone attempts %d != atBats %d", p.ID, n, st.AtBats))
			}
			if n := st.HitZones.Hits(); n != st.Hits {
				errs = append(errs, fmt.Errorf("%s: zone hits %d != hits %d", p.ID, n, st.Hits))
			}
			for z, zs := range st.HitZones {
				if zs.Hits > zs.Attempts || zs.Hits < 0 {
					errs = append(errs, fmt.Errorf("%s: zone %d hits %d / attempts %d", p.ID, z+1, zs.Hits, zs.Attempts))
				}
			}
			f := st.Fielding
			if f.Catches+f.MissedCatches != f.TotalOpportunities || f.GoodThrows+f.BadThrows != f.TotalOpportunities {
				errs = append(errs, fmt.Errorf("%s: fielding counters inconsistent %+v", p.ID, f))
			}
		}
	}
	if s.IsGameActive && s.IsGameComplete {
		errs = append(errs, errors.New("match is both active and complete"))
	}
	if s.CurrentInning < 1 {
		errs = append(errs, fmt.Errorf("current inning %d", s.CurrentInning))
	}
	return errors.Join(errs...)
}
