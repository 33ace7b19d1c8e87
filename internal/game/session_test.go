package game

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pable/go-b5-metrics/internal/model"
)

// fixedClock returns a clock that advances one second per call.
func fixedClock() func() time.Time {
	var n atomic.Int64
	return func() time.Time {
		return matchStart.Add(time.Duration(n.Add(1)) * time.Second)
	}
}

func seqIDs() func() (string, error) {
	var n atomic.Int64
	return func() (string, error) {
		return fmt.Sprintf("action-%d", n.Add(1)), nil
	}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := model.NewGameState(model.DemoSetup(), matchStart)
	if err != nil {
		t.Fatalf("NewGameState: %v", err)
	}
	sess := NewSession(s, WithClock(fixedClock()), WithIDGenerator(seqIDs()))
	if err := sess.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return sess
}

func TestSession_RecordActionResolvesBatter(t *testing.T) {
	sess := newTestSession(t)
	if err := sess.SelectBatter("team1-player-1"); err != nil {
		t.Fatalf("SelectBatter: %v", err)
	}
	a, err := sess.RecordAction(PendingAction{HitZone: 5, Result: model.ResultSafe, FielderID: "team2-player-2"})
	if err != nil {
		t.Fatalf("RecordAction: %v", err)
	}
	if a.ID != "action-1" || a.BatterID != "team1-player-1" || a.BatterName != "Alice Martin" || a.Inning != 1 {
		t.Errorf("unexpected action %+v", a)
	}
	if a.Timestamp <= matchStart.UnixMilli() {
		t.Errorf("timestamp not stamped: %d", a.Timestamp)
	}

	snap := sess.Snapshot()
	if snap.Teams[0].Score != 1 || len(snap.Actions) != 1 || snap.CurrentBatter != "" {
		t.Errorf("unexpected state: score=%d actions=%d batter=%q", snap.Teams[0].Score, len(snap.Actions), snap.CurrentBatter)
	}
	if !reflect.DeepEqual(snap.Actions[0], a) {
		t.Errorf("logged action differs from returned one")
	}
}

func TestSession_RecordWithoutBatterRejected(t *testing.T) {
	sess := newTestSession(t)
	before := sess.Snapshot()
	_, err := sess.RecordAction(PendingAction{HitZone: 3, Result: model.ResultSafe})
	if !errors.Is(err, ErrNoBatter) {
		t.Fatalf("want ErrNoBatter, got %v", err)
	}
	if !reflect.DeepEqual(sess.Snapshot(), before) {
		t.Error("state changed after rejected action")
	}
}

func TestSession_RecordBeforeStartRejected(t *testing.T) {
	s, _ := model.NewGameState(model.DemoSetup(), matchStart)
	sess := NewSession(s)
	if err := sess.SelectBatter("team1-player-1"); err != nil {
		t.Fatalf("SelectBatter: %v", err)
	}
	if _, err := sess.RecordAction(PendingAction{HitZone: 1, Result: model.ResultOut}); !errors.Is(err, ErrNotActive) {
		t.Fatalf("want ErrNotActive, got %v", err)
	}
	if n := len(sess.Snapshot().Actions); n != 0 {
		t.Errorf("want empty log, got %d", n)
	}
}

func TestSession_IDGeneratorFailure(t *testing.T) {
	s, _ := model.NewGameState(model.DemoSetup(), matchStart)
	boom := errors.New("entropy exhausted")
	sess := NewSession(s, WithIDGenerator(func() (string, error) { return "", boom }))
	_ = sess.Start()
	_ = sess.SelectBatter("team1-player-1")
	if _, err := sess.RecordAction(PendingAction{HitZone: 1, Result: model.ResultSafe}); !errors.Is(err, boom) {
		t.Fatalf("want id error, got %v", err)
	}
	snap := sess.Snapshot()
	if snap.CurrentBatter != "team1-player-1" || len(snap.Actions) != 0 {
		t.Error("failed record must not consume the batter or append")
	}
}

func TestSession_DefaultIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := newActionID()
		if err != nil {
			t.Fatalf("newActionID: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestSession_SnapshotIsIsolated(t *testing.T) {
	sess := newTestSession(t)
	snap := sess.Snapshot()
	snap.Teams[0].Players[0].Name = "changed"
	snap.Teams[0].Score = 99
	if got := sess.Snapshot(); got.Teams[0].Players[0].Name == "changed" || got.Teams[0].Score == 99 {
		t.Error("snapshot shares memory with the session")
	}
}

// TestSession_ConcurrentRecordsSerialise runs many writers at once; each
// select+record pair is not atomic across calls, so writers retry on
// ErrNoBatter. Run with -race.
func TestSession_ConcurrentRecordsSerialise(t *testing.T) {
	sess := newTestSession(t)
	initial := sess.Snapshot()
	players := initial.AllPlayers()

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	var recorded atomic.Int64
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; {
				batter := players[(w+i)%len(players)].ID
				if err := sess.SelectBatter(batter); err != nil {
					t.Errorf("SelectBatter: %v", err)
					return
				}
				_, err := sess.RecordAction(PendingAction{
					HitZone:   1 + (w+i)%9,
					Result:    model.ResultSafe,
					Caught:    i%2 == 0,
					FielderID: players[(w+i+1)%len(players)].ID,
				})
				if errors.Is(err, ErrNoBatter) {
					continue
				}
				if err != nil {
					t.Errorf("RecordAction: %v", err)
					return
				}
				recorded.Add(1)
				i++
			}
		}(w)
	}
	wg.Wait()

	snap := sess.Snapshot()
	if int64(len(snap.Actions)) != recorded.Load() {
		t.Errorf("log has %d actions, %d recorded", len(snap.Actions), recorded.Load())
	}
	if err := Check(snap); err != nil {
		t.Errorf("invariants broken: %v", err)
	}
	if got := snap.Teams[0].Score + snap.Teams[1].Score; got != writers*perWriter {
		t.Errorf("total score: want %d, got %d", writers*perWriter, got)
	}
}
