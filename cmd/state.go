package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pable/go-b5-metrics/internal/game"
	"github.com/pable/go-b5-metrics/internal/model"
	"github.com/pable/go-b5-metrics/internal/storage"
)

var errNoMatch = errors.New("no match in progress, run 'b5stats new' first")

// openSlot opens the current-match slot. Callers must Close it to wipe the
// storage key.
func openSlot() (storage.Slot, error) {
	mk, err := storage.OpenMasterKey(cfg.KeyFile, cfg.StoragePassphrase)
	if err != nil {
		return nil, err
	}
	slot, err := storage.NewFileSlot(cfg.DataDir, mk)
	if err != nil {
		return nil, fmt.Errorf("open slot: %w", err)
	}
	return slot, nil
}

func loadCurrent() (model.GameState, error) {
	slot, err := openSlot()
	if err != nil {
		return model.GameState{}, err
	}
	defer slot.Close()
	return loadFrom(slot)
}

func loadFrom(slot storage.Slot) (model.GameState, error) {
	s, ok := storage.LoadState(slot, log)
	if !ok {
		return model.GameState{}, errNoMatch
	}
	return s, nil
}

// withSession loads the match in progress into a session, runs fn and saves
// the resulting state. Nothing is saved when fn fails.
func withSession(fn func(*game.Session) error) (model.GameState, error) {
	slot, err := openSlot()
	if err != nil {
		return model.GameState{}, err
	}
	defer slot.Close()
	s, err := loadFrom(slot)
	if err != nil {
		return model.GameState{}, err
	}
	sess := game.NewSession(s, game.WithLogger(log))
	if err := fn(sess); err != nil {
		return model.GameState{}, err
	}
	next := sess.Snapshot()
	if err := storage.SaveState(slot, next); err != nil {
		return model.GameState{}, err
	}
	return next, nil
}

// resolvePlayer accepts a player id, a case-insensitive full name or a
// "<team>.<position>" shorthand such as "1.3".
func resolvePlayer(s model.GameState, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if s.Player(ref) != nil {
		return ref, nil
	}
	var team, pos int
	if n, _ := fmt.Sscanf(ref, "%d.%d", &team, &pos); n == 2 && team >= 1 && team <= 2 {
		for _, p := range s.Teams[team-1].Players {
			if p.Position == pos {
				return p.ID, nil
			}
		}
	}
	var found []string
	for _, p := range s.AllPlayers() {
		if strings.EqualFold(p.Name, ref) {
			found = append(found, p.ID)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return "", fmt.Errorf("player %q: %w", ref, game.ErrUnknownPlayer)
	default:
		return "", fmt.Errorf("player %q is ambiguous, use an id: %s", ref, strings.Join(found, ", "))
	}
}

// archive stores a completed match in the archive database.
func archive(s model.GameState) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	return db.InsertMatch(s, s.StartedAt().Format(time.DateOnly))
}

func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(cfg.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// loadArchived returns the archived match whose id starts with prefix.
func loadArchived(prefix string) (model.GameState, error) {
	db, err := openDB()
	if err != nil {
		return model.GameState{}, err
	}
	defer db.Close()

	m, err := db.GetMatchByPrefix(prefix)
	if err != nil {
		return model.GameState{}, fmt.Errorf("query match: %w", err)
	}
	if m == nil {
		return model.GameState{}, fmt.Errorf("no archived match with id prefix %q", prefix)
	}
	return db.GetMatchState(m.MatchID)
}

// currentOrArchived returns the archived match for a non-empty prefix and the
// match in progress otherwise.
func currentOrArchived(prefix string) (model.GameState, error) {
	if prefix != "" {
		return loadArchived(prefix)
	}
	return loadCurrent()
}
