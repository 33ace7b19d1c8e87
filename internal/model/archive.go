package model

// MatchRecord is one row of the match archive.
type MatchRecord struct {
	MatchID     string
	MatchDate   string // YYYY-MM-DD, local time of the recorder
	StartTime   int64  // Unix milliseconds
	EndTime     int64  // Unix milliseconds
	Team1Name   string
	Team2Name   string
	Team1Score  int
	Team2Score  int
	Innings     int
	ActionCount int
}

// PlayerLine is one player's counters for one archived match.
type PlayerLine struct {
	MatchID   string
	MatchDate string
	TeamName  string
	Opponent  string
	PlayerID  string
	Name      string
	Position  int
	Won       bool
	Stats     PlayerStats
}

// Record summarises a state for the archive.
func (s *GameState) Record(date string) MatchRecord {
	r := MatchRecord{
		MatchID:     s.MatchID,
		MatchDate:   date,
		StartTime:   s.StartTime,
		Team1Name:   s.Teams[0].Name,
		Team2Name:   s.Teams[1].Name,
		Team1Score:  s.Teams[0].Score,
		Team2Score:  s.Teams[1].Score,
		Innings:     s.CurrentInning,
		ActionCount: len(s.Actions),
	}
	if s.EndTime != nil {
		r.EndTime = *s.EndTime
	}
	return r
}

// PlayerLines lists every player of both rosters as archive lines.
func (s *GameState) PlayerLines(date string) []PlayerLine {
	var out []PlayerLine
	for t, team := range s.Teams {
		opp := s.Teams[1-t]
		for _, p := range team.Players {
			out = append(out, PlayerLine{
				MatchID:   s.MatchID,
				MatchDate: date,
				TeamName:  team.Name,
				Opponent:  opp.Name,
				PlayerID:  p.ID,
				Name:      p.Name,
				Position:  p.Position,
				Won:       team.Score > opp.Score,
				Stats:     p.Stats,
			})
		}
	}
	return out
}
