// Package game applies recorded plays to a match state. Every transition is a
// pure function from the old state to a new one; the input is never mutated
// and a rejected transition leaves no trace.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/pable/go-b5-metrics/internal/model"
)

var (
	ErrNotActive     = errors.New("match is not active")
	ErrGameComplete  = errors.New("match is complete")
	ErrNoBatter      = errors.New("no current batter")
	ErrUnknownPlayer = errors.New("unknown player")
	ErrInvalidZone   = errors.New("hit zone out of range")
	ErrInvalidResult = errors.New("invalid result")
	ErrNotAtBat      = errors.New("batter is not at bat")
	ErrWrongInning   = errors.New("action inning is not the current inning")
	ErrActionID      = errors.New("action id missing or already recorded")
)

// Start moves a match from setup to active. Starting an active match is a no-op.
func Start(s model.GameState) (model.GameState, error) {
	switch s.Phase() {
	case model.PhaseComplete:
		return s, ErrGameComplete
	case model.PhaseActive:
		return s, nil
	}
	next := s.Clone()
	next.IsGameActive = true
	return next, nil
}

// SelectBatter sets the current batter. The id must belong to either roster.
func SelectBatter(s model.GameState, playerID string) (model.GameState, error) {
	if s.IsGameComplete {
		return s, ErrGameComplete
	}
	if s.Player(playerID) == nil {
		return s, fmt.Errorf("select batter %q: %w", playerID, ErrUnknownPlayer)
	}
	next := s.Clone()
	next.CurrentBatter = model.PlayerRef(playerID)
	return next, nil
}

// RecordAction applies a fully-resolved action: batting counters and zone for
// the batter, team score on a safe result, fielding counters for the fielder
// when one is named. The action is appended to the log and the current batter
// cleared. The action must be for the current batter in the current inning and
// carry an id not yet in the log.
func RecordAction(s model.GameState, a model.GameAction) (model.GameState, error) {
	switch s.Phase() {
	case model.PhaseComplete:
		return s, ErrGameComplete
	case model.PhaseSetup:
		return s, ErrNotActive
	}
	if s.CurrentBatter == "" {
		return s, ErrNoBatter
	}
	if a.BatterID != string(s.CurrentBatter) {
		return s, fmt.Errorf("batter %q, current %q: %w", a.BatterID, s.CurrentBatter, ErrNotAtBat)
	}
	if a.Inning != s.CurrentInning {
		return s, fmt.Errorf("inning %d, current %d: %w", a.Inning, s.CurrentInning, ErrWrongInning)
	}
	if a.ID == "" {
		return s, ErrActionID
	}
	for _, prev := range s.Actions {
		if prev.ID == a.ID {
			return s, fmt.Errorf("id %q: %w", a.ID, ErrActionID)
		}
	}
	next, err := apply(s.Clone(), a)
	if err != nil {
		return s, err
	}
	next.CurrentBatter = ""
	return next, nil
}

// apply mutates next in place. Every check happens before the first write so
// a failure leaves next untouched.
func apply(next model.GameState, a model.GameAction) (model.GameState, error) {
	if a.BatterID == "" {
		return next, ErrNoBatter
	}
	if a.HitZone < 1 || a.HitZone > model.ZoneCount {
		return next, fmt.Errorf("zone %d: %w", a.HitZone, ErrInvalidZone)
	}
	if !a.Result.Valid() {
		return next, fmt.Errorf("result %q: %w", a.Result, ErrInvalidResult)
	}
	bt, bi, ok := next.FindPlayer(a.BatterID)
	if !ok {
		return next, fmt.Errorf("batter %q: %w", a.BatterID, ErrUnknownPlayer)
	}
	var (
		ft, fi  int
		fielded = a.Defensive.FielderID != ""
	)
	if fielded {
		ft, fi, ok = next.FindPlayer(a.Defensive.FielderID)
		if !ok {
			return next, fmt.Errorf("fielder %q: %w", a.Defensive.FielderID, ErrUnknownPlayer)
		}
	}

	batter := &next.Teams[bt].Players[bi].Stats
	zone := batter.HitZones.Zone(a.HitZone)
	batter.AtBats++
	zone.Attempts++
	if a.Result == model.ResultSafe {
		batter.Hits++
		zone.Hits++
		next.Teams[bt].Score++
	}

	if fielded {
		f := &next.Teams[ft].Players[fi].Stats.Fielding
		f.TotalOpportunities++
		if a.Defensive.Caught {
			f.Catches++
		} else {
			f.MissedCatches++
		}
		if a.Defensive.GoodThrow {
			f.GoodThrows++
		} else {
			f.BadThrows++
		}
	}

	next.Actions = append(next.Actions, a)
	return next, nil
}

// AdvanceInning moves to the next inning and clears the current batter.
func AdvanceInning(s model.GameState) (model.GameState, error) {
	switch s.Phase() {
	case model.PhaseComplete:
		return s, ErrGameComplete
	case model.PhaseSetup:
		return s, ErrNotActive
	}
	next := s.Clone()
	next.CurrentInning++
	next.CurrentBatter = ""
	return next, nil
}

// Complete ends an active match and stamps its end time. Completing a
// complete match is a no-op and keeps the original end time.
func Complete(s model.GameState, now time.Time) (model.GameState, error) {
	switch s.Phase() {
	case model.PhaseComplete:
		return s, nil
	case model.PhaseSetup:
		return s, ErrNotActive
	}
	next := s.Clone()
	end := now.UnixMilli()
	next.IsGameActive = false
	next.IsGameComplete = true
	next.EndTime = &end
	next.CurrentBatter = ""
	return next, nil
}
