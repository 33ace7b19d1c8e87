package aggregator

import (
	"fmt"
	"math"
	"sort"

	"github.com/pable/go-b5-metrics/internal/model"
)

// round2 rounds half away from zero to two decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// pct returns 100*num/den, or 0 when den is zero.
func pct(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

// CalculatedPlayerStats is a player's raw counters plus the derived percentages.
type CalculatedPlayerStats struct {
	model.PlayerStats
	BattingAverage      float64 `json:"battingAverage"`
	BestZone            int     `json:"bestZone"`
	WorstZone           int     `json:"worstZone"`
	CatchingPercentage  float64 `json:"catchingPercentage"`
	ThrowingAccuracy    float64 `json:"throwingAccuracy"`
	DefensiveEfficiency float64 `json:"defensiveEfficiency"`
}

// PlayerWithStats pairs a player with its calculated stats.
type PlayerWithStats struct {
	model.Player
	TeamID     string                `json:"teamId"`
	Calculated CalculatedPlayerStats `json:"calculatedStats"`
}

// ActionCount is the number of plays the player took part in, batting or fielding.
func (p PlayerWithStats) ActionCount() int {
	return p.Stats.AtBats + p.Stats.Fielding.TotalOpportunities
}

// CalculatePlayerStats derives percentages from a player's counters.
//
// BestZone starts at 0% and WorstZone at 100%, and a zone only replaces the
// current pick when strictly better (worse), scanning zones 1..9. Both default
// to zone 1, so a player whose attempted zones are all at 0% keeps BestZone 1.
func CalculatePlayerStats(p model.Player) CalculatedPlayerStats {
	st := p.Stats
	out := CalculatedPlayerStats{
		PlayerStats: st,
		BestZone:    1,
		WorstZone:   1,
	}

	out.BattingAverage = round2(pct(st.Hits, st.AtBats))

	best, worst := 0.0, 100.0
	for i, z := range st.HitZones {
		if z.Attempts == 0 {
			continue
		}
		rate := pct(z.Hits, z.Attempts)
		if rate > best {
			best = rate
			out.BestZone = i + 1
		}
		if rate < worst {
			worst = rate
			out.WorstZone = i + 1
		}
	}

	f := st.Fielding
	out.CatchingPercentage = round2(pct(f.Catches, f.Catches+f.MissedCatches))
	out.ThrowingAccuracy = round2(pct(f.GoodThrows, f.GoodThrows+f.BadThrows))
	// Each opportunity has two slots: the catch and the throw.
	out.DefensiveEfficiency = round2(pct(f.Catches+f.GoodThrows, f.TotalOpportunities*2))
	return out
}

func withStats(team model.Team) []PlayerWithStats {
	out := make([]PlayerWithStats, len(team.Players))
	for i, p := range team.Players {
		out[i] = PlayerWithStats{Player: p, TeamID: team.ID, Calculated: CalculatePlayerStats(p)}
	}
	return out
}

// TeamStats is the per-team view of a match.
type TeamStats struct {
	TeamID                  string            `json:"teamId"`
	TeamName                string            `json:"teamName"`
	Players                 []PlayerWithStats `json:"players"`
	TeamBattingAverage      float64           `json:"teamBattingAverage"`
	TeamDefensivePercentage float64           `json:"teamDefensivePercentage"`
	TotalScore              int               `json:"totalScore"`
	BestHitters             []PlayerWithStats `json:"bestHitters"`
	BestDefenders           []PlayerWithStats `json:"bestDefenders"`
}

const leaderboardSize = 3

// rank filters players by keep, sorts descending by key (stable, so roster
// order breaks ties) and returns at most n.
func rank(players []PlayerWithStats, keep func(PlayerWithStats) bool, key func(PlayerWithStats) float64, n int) []PlayerWithStats {
	out := make([]PlayerWithStats, 0, len(players))
	for _, p := range players {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return key(out[i]) > key(out[j])
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func hasBatted(p PlayerWithStats) bool    { return p.Stats.AtBats > 0 }
func hasFielded(p PlayerWithStats) bool   { return p.Stats.Fielding.TotalOpportunities > 0 }
func battingKey(p PlayerWithStats) float64 { return p.Calculated.BattingAverage }
func defenseKey(p PlayerWithStats) float64 { return p.Calculated.DefensiveEfficiency }

// TeamStatsOf computes the stats of a single team. Team percentages come from
// summed roster counters, not from averaging per-player percentages.
func TeamStatsOf(team model.Team) TeamStats {
	players := withStats(team)

	var atBats, hits, opps, successes int
	for _, p := range players {
		atBats += p.Stats.AtBats
		hits += p.Stats.Hits
		opps += p.Stats.Fielding.TotalOpportunities
		successes += p.Stats.Fielding.Catches + p.Stats.Fielding.GoodThrows
	}

	return TeamStats{
		TeamID:                  team.ID,
		TeamName:                team.Name,
		Players:                 players,
		TeamBattingAverage:      round2(pct(hits, atBats)),
		TeamDefensivePercentage: round2(pct(successes, opps*2)),
		TotalScore:              team.Score,
		BestHitters:             rank(players, hasBatted, battingKey, leaderboardSize),
		BestDefenders:           rank(players, hasFielded, defenseKey, leaderboardSize),
	}
}

// CalculateTeamStats computes TeamStats for both teams in roster order.
func CalculateTeamStats(s model.GameState) [2]TeamStats {
	return [2]TeamStats{TeamStatsOf(s.Teams[0]), TeamStatsOf(s.Teams[1])}
}

// TopPerformers holds the best players across both teams. A nil entry means
// no player qualified.
type TopPerformers struct {
	TopBatter   *PlayerWithStats `json:"topBatter,omitempty"`
	TopDefender *PlayerWithStats `json:"topDefender,omitempty"`
	MostActive  *PlayerWithStats `json:"mostActive,omitempty"`
}

func first(ps []PlayerWithStats) *PlayerWithStats {
	if len(ps) == 0 {
		return nil
	}
	p := ps[0]
	return &p
}

// TopPerformersOf picks the best batter (among players with at-bats), the
// best defender (among players with fielding chances) and the most active
// player (no filter). Ties go to the earlier player, team 1 first.
func TopPerformersOf(s model.GameState) TopPerformers {
	all := append(withStats(s.Teams[0]), withStats(s.Teams[1])...)
	always := func(PlayerWithStats) bool { return true }
	activity := func(p PlayerWithStats) float64 { return float64(p.ActionCount()) }
	return TopPerformers{
		TopBatter:   first(rank(all, hasBatted, battingKey, 1)),
		TopDefender: first(rank(all, hasFielded, defenseKey, 1)),
		MostActive:  first(rank(all, always, activity, 1)),
	}
}

// MatchSummary is the headline view of a match.
type MatchSummary struct {
	Winner        TeamStats     `json:"winner"`
	Loser         TeamStats     `json:"loser"`
	IsDraw        bool          `json:"isDraw"`
	TotalActions  int           `json:"totalActions"`
	MatchDuration int           `json:"matchDuration"` // whole minutes, 0 until the match ends
	TotalHits     int           `json:"totalHits"`
	TotalOuts     int           `json:"totalOuts"`
	HitRate       float64       `json:"hitRate"`
	TopPerformers TopPerformers `json:"topPerformers"`
	FinalScore    string        `json:"finalScore"`
	Innings       int           `json:"innings"`
}

// MatchSummaryOf builds the match summary. On equal scores team 1 is reported
// as the winner and IsDraw is set.
func MatchSummaryOf(s model.GameState) MatchSummary {
	teams := CalculateTeamStats(s)
	winner, loser := teams[0], teams[1]
	if teams[1].TotalScore > teams[0].TotalScore {
		winner, loser = teams[1], teams[0]
	}

	var hits, outs int
	for _, a := range s.Actions {
		switch a.Result {
		case model.ResultSafe:
			hits++
		case model.ResultOut:
			outs++
		}
	}

	duration := 0
	if s.EndTime != nil && s.StartTime != 0 {
		duration = int(math.Round(float64(*s.EndTime-s.StartTime) / 1000 / 60))
	}

	return MatchSummary{
		Winner:        winner,
		Loser:         loser,
		IsDraw:        teams[0].TotalScore == teams[1].TotalScore,
		TotalActions:  len(s.Actions),
		MatchDuration: duration,
		TotalHits:     hits,
		TotalOuts:     outs,
		HitRate:       round2(pct(hits, len(s.Actions))),
		TopPerformers: TopPerformersOf(s),
		FinalScore:    fmt.Sprintf("%d - %d", winner.TotalScore, loser.TotalScore),
		Innings:       s.CurrentInning,
	}
}
