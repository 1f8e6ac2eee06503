package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomz197/flappy/internal/config"
	"github.com/tomz197/flappy/internal/leaderboard"
	loopconfig "github.com/tomz197/flappy/internal/loop/config"
	"github.com/tomz197/flappy/internal/world"
)

const frame = loopconfig.ServerTickTime

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(config.DefaultTuning(), leaderboard.New(nil, 10), nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	s.seed = func(clientID int) int64 { return int64(clientID) }
	s.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

// crash flaps once and lets the bird fall until the game ends.
func crash(t *testing.T, s *Server, id int) {
	t.Helper()
	s.SendInput(id, 1)
	for i := 0; i < 600; i++ {
		s.tick(frame)
		if s.GetSnapshot(id).Phase == world.PhaseCrashed {
			return
		}
	}
	t.Fatal("Expected the bird to crash")
}

func TestNewServerRejectsInvalidTuning(t *testing.T) {
	tun := config.DefaultTuning()
	tun.Obstacles.PipeCount = 0
	if _, err := NewServer(tun, nil, nil); !errors.Is(err, config.ErrInvalidTuning) {
		t.Errorf("Expected ErrInvalidTuning, got %v", err)
	}
}

func TestNewServerRejectsEmptyHitbox(t *testing.T) {
	tun := config.DefaultTuning()
	tun.Bird.HitboxInset = 10
	if _, err := NewServer(tun, nil, nil); !errors.Is(err, config.ErrInvalidTuning) {
		t.Errorf("Expected ErrInvalidTuning, got %v", err)
	}
}

func TestMustNewWorldPanicsOnBrokenTuning(t *testing.T) {
	s := newTestServer(t)
	s.tuning.Obstacles.PipeCount = 0

	defer func() {
		if recover() == nil {
			t.Error("Expected a panic for tuning that no longer fits")
		}
	}()
	s.mustNewWorld(1)
}

func TestRegisterClient(t *testing.T) {
	s := newTestServer(t)

	a := s.RegisterClient("alice")
	b := s.RegisterClient("")
	long := s.RegisterClient("a-very-long-username-indeed")

	if a.ID == b.ID {
		t.Error("Expected unique client IDs")
	}
	if b.Username != leaderboard.AnonymousName {
		t.Errorf("Expected anonymous name, got %q", b.Username)
	}
	if len([]rune(long.Username)) != loopconfig.MaxUsernameLength {
		t.Errorf("Expected name truncated to %d, got %q", loopconfig.MaxUsernameLength, long.Username)
	}

	snap := s.GetSnapshot(a.ID)
	if snap == nil {
		t.Fatal("Expected snapshot right after registering")
	}
	if snap.Phase != world.PhaseReady {
		t.Errorf("Expected ready phase, got %v", snap.Phase)
	}
	if len(snap.Objects) == 0 {
		t.Error("Expected drawable objects in the snapshot")
	}

	s.tick(frame)
	if got := s.GetSnapshot(a.ID).Players; got != 3 {
		t.Errorf("Expected 3 players, got %d", got)
	}
}

func TestFlapStartsPlaying(t *testing.T) {
	s := newTestServer(t)
	h := s.RegisterClient("alice")

	s.tick(frame)
	if s.GetSnapshot(h.ID).Phase != world.PhaseReady {
		t.Fatal("Expected ready before any input")
	}

	s.SendInput(h.ID, 2)
	s.tick(frame)
	if s.GetSnapshot(h.ID).Phase != world.PhasePlaying {
		t.Errorf("Expected playing after flap, got %v", s.GetSnapshot(h.ID).Phase)
	}
}

func TestSendInputIgnoresUnknownAndEmpty(t *testing.T) {
	s := newTestServer(t)
	h := s.RegisterClient("alice")

	s.SendInput(h.ID, 0)
	s.SendInput(999, 3)
	s.tick(frame)

	if s.GetSnapshot(h.ID).Phase != world.PhaseReady {
		t.Error("Expected no flap from empty or misrouted input")
	}
	if s.GetSnapshot(999) != nil {
		t.Error("Expected nil snapshot for unknown client")
	}
}

func TestWorldsAreIndependent(t *testing.T) {
	s := newTestServer(t)
	a := s.RegisterClient("alice")
	b := s.RegisterClient("bob")

	s.SendInput(a.ID, 1)
	s.tick(frame)

	if s.GetSnapshot(a.ID).Phase != world.PhasePlaying {
		t.Error("Expected alice playing")
	}
	if s.GetSnapshot(b.ID).Phase != world.PhaseReady {
		t.Error("Expected bob still ready")
	}
}

func TestGameOverRecordsScore(t *testing.T) {
	s := newTestServer(t)
	h := s.RegisterClient("alice")

	// Put a pipe behind the bird so the game scores before crashing.
	s.mu.Lock()
	s.SendInput(h.ID, 1)
	p := h.world.Pipes()[0]
	p.X = h.world.Bird().X - p.Width - 1
	s.mu.Unlock()

	crash(t, s, h.ID)

	select {
	case ev := <-h.EventsCh:
		if ev.Type != EventGameOver {
			t.Fatalf("Expected game over event, got %v", ev.Type)
		}
		if ev.Score != 1 || ev.Best != 1 || ev.Rank != 1 || !ev.NewBest {
			t.Errorf("Unexpected game over event %+v", ev)
		}
		if ev.Cause != world.CauseGround.String() {
			t.Errorf("Expected ground cause, got %q", ev.Cause)
		}
	default:
		t.Fatal("Expected a game over event")
	}

	if s.Board().Best("alice") != 1 {
		t.Errorf("Expected board best 1, got %d", s.Board().Best("alice"))
	}
	s.tick(frame)
	top := s.GetSnapshot(h.ID).TopScores
	if len(top) != 1 || top[0].Name != "alice" {
		t.Errorf("Expected alice on the top scores, got %+v", top)
	}
}

func TestZeroScoreIsNotRecorded(t *testing.T) {
	s := newTestServer(t)
	h := s.RegisterClient("alice")
	crash(t, s, h.ID)

	ev := <-h.EventsCh
	if ev.Score != 0 || ev.NewBest || ev.Rank != 0 {
		t.Errorf("Unexpected game over event %+v", ev)
	}
	if s.Board().Len() != 0 {
		t.Error("Expected empty board")
	}
}

func TestStartGameResets(t *testing.T) {
	s := newTestServer(t)
	h := s.RegisterClient("alice")
	crash(t, s, h.ID)

	s.StartGame(h.ID)
	snap := s.GetSnapshot(h.ID)
	if snap.Phase != world.PhaseReady || snap.Score != 0 {
		t.Errorf("Expected fresh game, got phase=%v score=%d", snap.Phase, snap.Score)
	}
}

func TestPauseFreezesWorld(t *testing.T) {
	s := newTestServer(t)
	h := s.RegisterClient("alice")
	s.SendInput(h.ID, 1)
	s.tick(frame)

	s.SetPaused(h.ID, true)
	if !s.GetSnapshot(h.ID).Paused {
		t.Fatal("Expected paused snapshot")
	}
	s.mu.RLock()
	y := h.world.Bird().Y
	s.mu.RUnlock()

	s.SendInput(h.ID, 1)
	for i := 0; i < 30; i++ {
		s.tick(frame)
	}

	s.mu.RLock()
	moved := h.world.Bird().Y != y
	pending := h.flaps
	s.mu.RUnlock()
	if moved {
		t.Error("Expected bird frozen while paused")
	}
	if pending != 0 {
		t.Errorf("Expected flaps dropped while paused, got %d", pending)
	}

	s.SetPaused(h.ID, false)
	s.tick(frame)
	if s.GetSnapshot(h.ID).Paused {
		t.Error("Expected resumed snapshot")
	}
}

func TestUnregisterClosesEvents(t *testing.T) {
	s := newTestServer(t)
	h := s.RegisterClient("alice")
	s.UnregisterClient(h.ID)
	s.UnregisterClient(h.ID)

	if _, ok := <-h.EventsCh; ok {
		t.Error("Expected closed event channel")
	}
	if s.Players() != 0 {
		t.Errorf("Expected no players, got %d", s.Players())
	}
}

func TestShutdownNotifiesAndWaits(t *testing.T) {
	s := newTestServer(t)
	h := s.RegisterClient("alice")

	go func() {
		ev := <-h.EventsCh
		if ev.Type == EventServerShutdown {
			s.UnregisterClient(h.ID)
		}
	}()

	done := make(chan struct{})
	go func() {
		s.Shutdown(5 * time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Shutdown to return once the client left")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	h := s.RegisterClient("alice")
	s.SendInput(h.ID, 1)
	deadline := time.Now().Add(time.Second)
	for s.GetSnapshot(h.ID).Phase == world.PhaseReady && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if s.GetSnapshot(h.ID).Phase == world.PhaseReady {
		t.Error("Expected the running server to process input")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
