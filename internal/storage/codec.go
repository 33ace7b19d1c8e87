package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pable/go-b5-metrics/internal/model"
)

// ErrInvalidState is returned for payloads that do not describe a match.
var ErrInvalidState = errors.New("invalid match state")

// EncodeState serialises s in the compact form kept in the slot.
func EncodeState(s model.GameState) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return b, nil
}

// ExportState serialises s as indented JSON for download and backup.
func ExportState(s model.GameState) ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export state: %w", err)
	}
	return append(b, '\n'), nil
}

// DecodeState parses a payload written by EncodeState or ExportState. The
// payload must be a JSON object whose "teams" member holds exactly two teams.
func DecodeState(data []byte) (model.GameState, error) {
	var probe struct {
		Teams []json.RawMessage `json:"teams"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return model.GameState{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if len(probe.Teams) != 2 {
		return model.GameState{}, fmt.Errorf("%w: want 2 teams, got %d", ErrInvalidState, len(probe.Teams))
	}
	for i, raw := range probe.Teams {
		if t := bytes.TrimSpace(raw); len(t) == 0 || t[0] != '{' {
			return model.GameState{}, fmt.Errorf("%w: team %d is not an object", ErrInvalidState, i+1)
		}
	}

	var s model.GameState
	if err := json.Unmarshal(data, &s); err != nil {
		return model.GameState{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if s.Actions == nil {
		s.Actions = []model.GameAction{}
	}
	return s, nil
}
