package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ZoneCount is the number of hit zones on the 3x3 grid.
const ZoneCount = 9

// RosterSize is the default number of players per team.
const RosterSize = 5

// Team ids are fixed: a match always has exactly these two.
const (
	Team1ID = "team1"
	Team2ID = "team2"
)

// Result is the outcome of a batting action.
type Result string

const (
	ResultSafe Result = "safe"
	ResultOut  Result = "out"
)

func (r Result) Valid() bool {
	return r == ResultSafe || r == ResultOut
}

// Phase is the match lifecycle phase derived from the state flags.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseActive   Phase = "active"
	PhaseComplete Phase = "complete"
)

// ZoneStat counts batting attempts into one zone and how many were safe.
type ZoneStat struct {
	Hits     int `json:"hits"`
	Attempts int `json:"attempts"`
}

// HitZoneStats is the per-zone breakdown, indexed by zone-1. All nine zones
// always exist; the JSON form is an object keyed "zone1".."zone9".
type HitZoneStats [ZoneCount]ZoneStat

// Zone returns the stats for zone z (1..9).
func (h *HitZoneStats) Zone(z int) *ZoneStat {
	return &h[z-1]
}

// Attempts sums attempts over all zones.
func (h HitZoneStats) Attempts() int {
	n := 0
	for _, z := range h {
		n += z.Attempts
	}
	return n
}

// Hits sums hits over all zones.
func (h HitZoneStats) Hits() int {
	n := 0
	for _, z := range h {
		n += z.Hits
	}
	return n
}

func (h HitZoneStats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, z := range h {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `"zone%d":{"hits":%d,"attempts":%d}`, i+1, z.Hits, z.Attempts)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// zoneIndex maps the exact key "zone1".."zone9" to 0..8, anything else to -1.
func zoneIndex(key string) int {
	for i := range ZoneCount {
		if key == fmt.Sprintf("zone%d", i+1) {
			return i
		}
	}
	return -1
}

func (h *HitZoneStats) UnmarshalJSON(data []byte) error {
	var raw map[string]ZoneStat
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out HitZoneStats
	for key, z := range raw {
		n := zoneIndex(key)
		if n < 0 {
			return fmt.Errorf("unknown hit zone %q", key)
		}
		out[n] = z
	}
	*h = out
	return nil
}

// Fielding holds the defensive counters of a player.
type Fielding struct {
	Catches            int `json:"catches"`
	MissedCatches      int `json:"missedCatches"`
	GoodThrows         int `json:"goodThrows"`
	BadThrows          int `json:"badThrows"`
	TotalOpportunities int `json:"totalOpportunities"`
}

// PlayerStats holds the raw batting and fielding counters of a player.
type PlayerStats struct {
	AtBats   int          `json:"atBats"`
	Hits     int          `json:"hits"`
	HitZones HitZoneStats `json:"hitZones"`
	Fielding Fielding     `json:"fielding"`
}

type Player struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Position int         `json:"position"`
	Stats    PlayerStats `json:"stats"`
}

type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Players []Player `json:"players"`
	Score   int      `json:"score"`
}

// Defensive describes the fielding side of a play. FielderID is empty when no
// fielder was involved.
type Defensive struct {
	Caught    bool   `json:"caught"`
	GoodThrow bool   `json:"goodThrow"`
	FielderID string `json:"fielderId,omitempty"`
}

// GameAction is one recorded play. Actions are append-only.
type GameAction struct {
	ID         string    `json:"id"`
	Inning     int       `json:"inning"`
	BatterID   string    `json:"batterId"`
	BatterName string    `json:"batterName"`
	HitZone    int       `json:"hitZone"`
	Result     Result    `json:"result"`
	Defensive  Defensive `json:"defensive"`
	Timestamp  int64     `json:"timestamp"` // Unix milliseconds
}

// PlayerRef is an optional player id that encodes as JSON null when empty.
type PlayerRef string

func (r PlayerRef) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

func (r *PlayerRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = PlayerRef(s)
	return nil
}

// GameState is the full state of one match.
type GameState struct {
	MatchID        string       `json:"matchId,omitempty"`
	Teams          [2]Team      `json:"teams"`
	CurrentInning  int          `json:"currentInning"`
	CurrentBatter  PlayerRef    `json:"currentBatter"`
	IsGameActive   bool         `json:"isGameActive"`
	IsGameComplete bool         `json:"isGameComplete"`
	Actions        []GameAction `json:"actions"`
	StartTime      int64        `json:"startTime"`         // Unix milliseconds
	EndTime        *int64       `json:"endTime,omitempty"` // Unix milliseconds, set once at completion
}

// Phase reports the lifecycle phase from the state flags.
func (s *GameState) Phase() Phase {
	switch {
	case s.IsGameComplete:
		return PhaseComplete
	case s.IsGameActive:
		return PhaseActive
	default:
		return PhaseSetup
	}
}

// FindPlayer returns the team index and player index of id, or ok=false.
func (s *GameState) FindPlayer(id string) (team, idx int, ok bool) {
	for t := range s.Teams {
		for i := range s.Teams[t].Players {
			if s.Teams[t].Players[i].ID == id {
				return t, i, true
			}
		}
	}
	return 0, 0, false
}

// Player returns a pointer to the player with the given id, or nil.
func (s *GameState) Player(id string) *Player {
	t, i, ok := s.FindPlayer(id)
	if !ok {
		return nil
	}
	return &s.Teams[t].Players[i]
}

// AllPlayers lists team 1's roster followed by team 2's.
func (s *GameState) AllPlayers() []Player {
	out := make([]Player, 0, len(s.Teams[0].Players)+len(s.Teams[1].Players))
	out = append(out, s.Teams[0].Players...)
	return append(out, s.Teams[1].Players...)
}

// Clone returns a deep copy that shares no mutable memory with s.
func (s GameState) Clone() GameState {
	out := s
	for t := range s.Teams {
		out.Teams[t].Players = append([]Player(nil), s.Teams[t].Players...)
	}
	if s.Actions != nil {
		out.Actions = append(make([]GameAction, 0, len(s.Actions)), s.Actions...)
	}
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	return out
}

// StartedAt returns StartTime as a time.Time.
func (s *GameState) StartedAt() time.Time {
	return time.UnixMilli(s.StartTime)
}

// EndedAt returns EndTime as a time.Time, ok=false when the match has not ended.
func (s *GameState) EndedAt() (time.Time, bool) {
	if s.EndTime == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*s.EndTime), true
}
