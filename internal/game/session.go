package game

import (
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/pable/go-b5-metrics/internal/model"
)

// PendingAction is what a caller submits for the current batter. FielderID is
// optional; choosing a fielder is the caller's business.
type PendingAction struct {
	HitZone   int
	Result    model.Result
	Caught    bool
	GoodThrow bool
	FielderID string
}

// Session owns one match state and is its only writer. All transitions are
// serialised; readers get deep copies through Snapshot.
type Session struct {
	mu     sync.RWMutex
	state  model.GameState
	now    func() time.Time
	newID  func() (string, error)
	logger zerolog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator replaces the action id generator.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Session) { s.newID = gen }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession wraps state in a session.
func NewSession(state model.GameState, opts ...Option) *Session {
	s := &Session{
		state:  state.Clone(),
		now:    time.Now,
		newID:  newActionID,
		logger: zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func newActionID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate action id: %w", err)
	}
	return "action-" + id, nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() model.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// update runs fn against the current state under the write lock and installs
// its result only when fn succeeds.
func (s *Session) update(op string, fn func(model.GameState) (model.GameState, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.state)
	if err != nil {
		s.logger.Warn().Err(err).Str("op", op).Str("phase", string(s.state.Phase())).Msg("transition rejected")
		return err
	}
	s.state = next
	s.logger.Debug().
		Str("op", op).
		Int("inning", next.CurrentInning).
		Int("actions", len(next.Actions)).
		Msg("transition applied")
	return nil
}

func (s *Session) Start() error {
	return s.update("start", Start)
}

func (s *Session) SelectBatter(playerID string) error {
	return s.update("select_batter", func(st model.GameState) (model.GameState, error) {
		return SelectBatter(st, playerID)
	})
}

func (s *Session) AdvanceInning() error {
	return s.update("advance_inning", AdvanceInning)
}

func (s *Session) Complete() error {
	return s.update("complete", func(st model.GameState) (model.GameState, error) {
		return Complete(st, s.now())
	})
}

// RecordAction resolves p against the current batter and inning, stamps it
// with a fresh id and timestamp and applies it. The recorded action is
// returned on success.
func (s *Session) RecordAction(p PendingAction) (model.GameAction, error) {
	var recorded model.GameAction
	err := s.update("record_action", func(st model.GameState) (model.GameState, error) {
		switch st.Phase() {
		case model.PhaseComplete:
			return st, ErrGameComplete
		case model.PhaseSetup:
			return st, ErrNotActive
		}
		if st.CurrentBatter == "" {
			return st, ErrNoBatter
		}
		batter := st.Player(string(st.CurrentBatter))
		if batter == nil {
			return st, fmt.Errorf("batter %q: %w", st.CurrentBatter, ErrUnknownPlayer)
		}
		id, err := s.newID()
		if err != nil {
			return st, err
		}
		recorded = model.GameAction{
			ID:         id,
			Inning:     st.CurrentInning,
			BatterID:   batter.ID,
			BatterName: batter.Name,
			HitZone:    p.HitZone,
			Result:     p.Result,
			Defensive: model.Defensive{
				Caught:    p.Caught,
				GoodThrow: p.GoodThrow,
				FielderID: p.FielderID,
			},
			Timestamp: s.now().UnixMilli(),
		}
		return RecordAction(st, recorded)
	})
	if err != nil {
		return model.GameAction{}, err
	}
	return recorded, nil
}
