package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Setup is the input collected before a match starts.
type Setup struct {
	Team1Name    string   `json:"team1Name"`
	Team2Name    string   `json:"team2Name"`
	Team1Players []string `json:"team1Players"`
	Team2Players []string `json:"team2Players"`
}

// DemoSetup returns a filled-in setup with two example rosters.
func DemoSetup() Setup {
	return Setup{
		Team1Name:    "Alpha",
		Team2Name:    "Beta",
		Team1Players: []string{"Alice Martin", "Bob Durand", "Claire Leroy", "David Silva", "Emma Garcia"},
		Team2Players: []string{"Frank Wilson", "Grace Chen", "Hugo Moreau", "Iris Dubois", "Jules Lambert"},
	}
}

// Validate checks that both team names and every player name are non-blank
// and that the rosters are non-empty and of equal size.
func (s Setup) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Team1Name) == "" {
		errs = append(errs, errors.New("team 1 name is required"))
	}
	if strings.TrimSpace(s.Team2Name) == "" {
		errs = append(errs, errors.New("team 2 name is required"))
	}
	if len(s.Team1Players) == 0 || len(s.Team2Players) == 0 {
		errs = append(errs, errors.New("both rosters need at least one player"))
	} else if len(s.Team1Players) != len(s.Team2Players) {
		errs = append(errs, fmt.Errorf("roster sizes differ: %d vs %d", len(s.Team1Players), len(s.Team2Players)))
	}
	for i, name := range s.Team1Players {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("team 1 player %d has no name", i+1))
		}
	}
	for i, name := range s.Team2Players {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("team 2 player %d has no name", i+1))
		}
	}
	return errors.Join(errs...)
}

// NewPlayer returns a player with every counter and zone at zero.
func NewPlayer(id, name string, position int) Player {
	return Player{
		ID:       id,
		Name:     name,
		Position: position,
		Stats:    PlayerStats{},
	}
}

// NewTeam builds a team whose players get ids "<teamID>-player-<n>" and
// positions 1..len(names).
func NewTeam(teamID, name string, names []string) Team {
	players := make([]Player, len(names))
	for i, n := range names {
		players[i] = NewPlayer(fmt.Sprintf("%s-player-%d", teamID, i+1), strings.TrimSpace(n), i+1)
	}
	return Team{
		ID:      teamID,
		Name:    strings.TrimSpace(name),
		Players: players,
	}
}

// NewGameState creates a match in the setup phase.
func NewGameState(setup Setup, now time.Time) (GameState, error) {
	if err := setup.Validate(); err != nil {
		return GameState{}, fmt.Errorf("invalid setup: %w", err)
	}
	return GameState{
		MatchID: uuid.NewString(),
		Teams: [2]Team{
			NewTeam(Team1ID, setup.Team1Name, setup.Team1Players),
			NewTeam(Team2ID, setup.Team2Name, setup.Team2Players),
		},
		CurrentInning: 1,
		Actions:       []GameAction{},
		StartTime:     now.UnixMilli(),
	}, nil
}
