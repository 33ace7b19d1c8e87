package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pable/go-b5-metrics/internal/model"
)

// ErrAmbiguousPrefix is returned when a match id prefix matches several matches.
var ErrAmbiguousPrefix = errors.New("match id prefix is ambiguous")

// MatchExists returns true if a match with the given id is archived.
func (db *DB) MatchExists(matchID string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches WHERE match_id = ?", matchID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertMatch archives s with its player lines and action log in one
// transaction. Archiving the same match again replaces the earlier copy.
func (db *DB) InsertMatch(s model.GameState, date string) error {
	if s.MatchID == "" {
		return errors.New("insert match: state has no match id")
	}
	stateJSON, err := EncodeState(s)
	if err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"actions", "player_match_stats"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE match_id = ?", s.MatchID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	r := s.Record(date)
	_, err = tx.Exec(`
		INSERT OR REPLACE INTO matches(match_id, match_date, start_time, end_time,
			team1_name, team2_name, team1_score, team2_score, innings, action_count, state_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MatchID, r.MatchDate, r.StartTime, r.EndTime,
		r.Team1Name, r.Team2Name, r.Team1Score, r.Team2Score,
		r.Innings, r.ActionCount, string(stateJSON),
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	if err := insertPlayerLines(tx, s.PlayerLines(date)); err != nil {
		return err
	}
	if err := insertActions(tx, s.MatchID, s.Actions); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	db.log.Info().Str("match", s.MatchID).Int("actions", len(s.Actions)).Msg("match archived")
	return nil
}

func insertPlayerLines(tx *sql.Tx, lines []model.PlayerLine) error {
	stmt, err := tx.Prepare(`
		INSERT INTO player_match_stats(
			match_id, player_id, name, position, team_name, opponent, won,
			at_bats, hits, hit_zones,
			catches, missed_catches, good_throws, bad_throws, total_opportunities
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range lines {
		zones, err := json.Marshal(l.Stats.HitZones)
		if err != nil {
			return fmt.Errorf("encode zones for %s: %w", l.PlayerID, err)
		}
		f := l.Stats.Fielding
		_, err = stmt.Exec(
			l.MatchID, l.PlayerID, l.Name, l.Position, l.TeamName, l.Opponent, boolInt(l.Won),
			l.Stats.AtBats, l.Stats.Hits, string(zones),
			f.Catches, f.MissedCatches, f.GoodThrows, f.BadThrows, f.TotalOpportunities,
		)
		if err != nil {
			return fmt.Errorf("insert player_match_stats for %s: %w", l.PlayerID, err)
		}
	}
	return nil
}

func insertActions(tx *sql.Tx, matchID string, actions []model.GameAction) error {
	stmt, err := tx.Prepare(`
		INSERT INTO actions(
			match_id, seq, action_id, inning, batter_id, batter_name,
			hit_zone, result, caught, good_throw, fielder_id, ts
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, a := range actions {
		_, err = stmt.Exec(
			matchID, i+1, a.ID, a.Inning, a.BatterID, a.BatterName,
			a.HitZone, string(a.Result),
			boolInt(a.Defensive.Caught), boolInt(a.Defensive.GoodThrow), a.Defensive.FielderID,
			a.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert action %d: %w", i+1, err)
		}
	}
	return nil
}

const matchColumns = `match_id, match_date, start_time, end_time, team1_name, team2_name,
	team1_score, team2_score, innings, action_count`

func scanMatch(row interface{ Scan(...any) error }) (model.MatchRecord, error) {
	var m model.MatchRecord
	err := row.Scan(&m.MatchID, &m.MatchDate, &m.StartTime, &m.EndTime,
		&m.Team1Name, &m.Team2Name, &m.Team1Score, &m.Team2Score, &m.Innings, &m.ActionCount)
	return m, err
}

// ListMatches returns all archived matches, most recent first.
func (db *DB) ListMatches() ([]model.MatchRecord, error) {
	rows, err := db.conn.Query(`SELECT ` + matchColumns + ` FROM matches ORDER BY start_time DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchRecord
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMatchByPrefix finds the match whose id starts with prefix. It returns
// nil when nothing matches and ErrAmbiguousPrefix when several do.
func (db *DB) GetMatchByPrefix(prefix string) (*model.MatchRecord, error) {
	rows, err := db.conn.Query(`SELECT `+matchColumns+` FROM matches WHERE match_id LIKE ? LIMIT 2`, prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []model.MatchRecord
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousPrefix, prefix)
	}
}

// GetMatchState returns the full archived state of a match.
func (db *DB) GetMatchState(matchID string) (model.GameState, error) {
	var blob string
	err := db.conn.QueryRow("SELECT state_json FROM matches WHERE match_id = ?", matchID).Scan(&blob)
	if err != nil {
		return model.GameState{}, err
	}
	return DecodeState([]byte(blob))
}

// GetActions returns the archived action log of a match in play order.
func (db *DB) GetActions(matchID string) ([]model.GameAction, error) {
	rows, err := db.conn.Query(`
		SELECT action_id, inning, batter_id, batter_name, hit_zone, result,
		       caught, good_throw, fielder_id, ts
		FROM actions WHERE match_id = ? ORDER BY seq`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.GameAction{}
	for rows.Next() {
		var a model.GameAction
		var result string
		var caught, good int
		if err := rows.Scan(&a.ID, &a.Inning, &a.BatterID, &a.BatterName, &a.HitZone, &result,
			&caught, &good, &a.Defensive.FielderID, &a.Timestamp); err != nil {
			return nil, err
		}
		a.Result = model.Result(result)
		a.Defensive.Caught = caught != 0
		a.Defensive.GoodThrow = good != 0
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetPlayerHistory returns every archived line of the player with the given
// name, oldest match first.
func (db *DB) GetPlayerHistory(name string) ([]model.PlayerLine, error) {
	rows, err := db.conn.Query(`
		SELECT p.match_id, m.match_date, p.team_name, p.opponent, p.player_id, p.name,
		       p.position, p.won, p.at_bats, p.hits, p.hit_zones,
		       p.catches, p.missed_catches, p.good_throws, p.bad_throws, p.total_opportunities
		FROM player_match_stats p
		JOIN matches m ON m.match_id = p.match_id
		WHERE p.name = ? COLLATE NOCASE
		ORDER BY m.start_time ASC`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerLine
	for rows.Next() {
		var l model.PlayerLine
		var won int
		var zones string
		f := &l.Stats.Fielding
		if err := rows.Scan(&l.MatchID, &l.MatchDate, &l.TeamName, &l.Opponent, &l.PlayerID, &l.Name,
			&l.Position, &won, &l.Stats.AtBats, &l.Stats.Hits, &zones,
			&f.Catches, &f.MissedCatches, &f.GoodThrows, &f.BadThrows, &f.TotalOpportunities); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(zones), &l.Stats.HitZones); err != nil {
			return nil, fmt.Errorf("decode zones of %s in %s: %w", l.PlayerID, l.MatchID, err)
		}
		l.Won = won != 0
		out = append(out, l)
	}
	return out, rows.Err()
}

// DeleteMatch removes an archived match and everything attached to it.
func (db *DB) DeleteMatch(matchID string) (bool, error) {
	res, err := db.conn.Exec("DELETE FROM matches WHERE match_id = ?", matchID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// QueryRaw runs an arbitrary query and returns column names and rows rendered
// as strings. NULL becomes "NULL".
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
