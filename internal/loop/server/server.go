package server

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/tomz197/flappy/internal/config"
	"github.com/tomz197/flappy/internal/leaderboard"
	loopconfig "github.com/tomz197/flappy/internal/loop/config"
	"github.com/tomz197/flappy/internal/object"
	"github.com/tomz197/flappy/internal/world"
)

// GameServer is what a client needs from the server. Tests drive the client
// through a fake.
type GameServer interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	SendInput(clientID int, flaps int)
	GetSnapshot(clientID int) *Snapshot
	StartGame(clientID int)
	SetPaused(clientID int, paused bool)
}

// Server runs one world per connected client on a shared tick and records
// finished games on the leaderboard.
type Server struct {
	tuning       config.Tuning
	screen       object.Screen
	board        *leaderboard.Board
	logger       *log.Logger
	clients      map[int]*ClientHandle
	nextClientID int
	inputChan    chan ClientInput
	mu           sync.RWMutex

	// Rebuilt only when the board changes; snapshots share it.
	topScores  []leaderboard.Entry
	topVersion uint64

	seed func(clientID int) int64
	now  func() time.Time
}

var _ GameServer = (*Server)(nil)

// NewServer creates a new game server. A nil logger discards log output.
func NewServer(t config.Tuning, board *leaderboard.Board, logger *log.Logger) (*Server, error) {
	screen := object.NewScreen(loopconfig.ViewWidth, loopconfig.ViewHeight)
	if err := world.CheckTuning(t, screen); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	if board == nil {
		board = leaderboard.New(nil, loopconfig.LeaderboardCapacity)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Server{
		tuning:       t,
		screen:       screen,
		board:        board,
		logger:       logger,
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		inputChan:    make(chan ClientInput, 256),
		topVersion:   ^uint64(0),
		seed: func(clientID int) int64 {
			return time.Now().UnixNano() + int64(clientID)
		},
		now: time.Now,
	}
	s.refreshTopScores()
	return s, nil
}

// Board returns the leaderboard the server records games on.
func (s *Server) Board() *leaderboard.Board {
	return s.board
}

// Run ticks every world at ServerTickRate until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(loopconfig.ServerTickTime)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.tick(now.Sub(last))
			last = now
		}
	}
}

// Shutdown tells every client the server is going away and waits up to
// timeout for them to leave. Cancel the Run context afterwards.
func (s *Server) Shutdown(timeout time.Duration) {
	n := s.broadcast(ClientEvent{Type: EventServerShutdown})
	s.logger.Info("Shutting down", "clients", n)

	if left := s.waitForClients(timeout); left > 0 {
		s.logger.Warn("Shutdown timeout with clients still connected", "clients", left)
	}
}

// broadcast offers ev to every client without blocking and returns the
// number of clients.
func (s *Server) broadcast(ev ClientEvent) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ev:
		default:
		}
	}
	return len(s.clients)
}

// waitForClients polls until no client is left or timeout passes, and
// returns how many remain.
func (s *Server) waitForClients(timeout time.Duration) int {
	deadline := time.Now().Add(timeout)
	for {
		left := s.Players()
		if left == 0 || !time.Now().Before(deadline) {
			return left
		}
		time.Sleep(min(200*time.Millisecond, time.Until(deadline)))
	}
}

// RegisterClient creates a session with its own world in the ready phase.
// Empty names become AnonymousName; long ones are cut to MaxUsernameLength.
func (s *Server) RegisterClient(username string) *ClientHandle {
	username = truncateName(leaderboard.NormalizeName(username), loopconfig.MaxUsernameLength)

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextClientID
	s.nextClientID++

	w := s.mustNewWorld(id)
	handle := &ClientHandle{
		ID:       id,
		Username: username,
		EventsCh: make(chan ClientEvent, 16),
		world:    w,
		best:     s.board.Best(username),
	}
	s.clients[id] = handle
	s.publishLocked(handle, 0)

	s.logger.Info("Client registered", "id", id, "user", username, "players", len(s.clients))
	return handle
}

// mustNewWorld builds a client's world. NewServer already checked the
// tuning against the screen, so an error here is a programming bug.
func (s *Server) mustNewWorld(clientID int) *world.World {
	w, err := world.New(s.tuning, s.screen, s.seed(clientID))
	if err != nil {
		panic(fmt.Sprintf("server: world for client %d: %v", clientID, err))
	}
	return w
}

// UnregisterClient ends a session and closes its event channel. Unknown
// IDs are ignored.
func (s *Server) UnregisterClient(clientID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle, ok := s.clients[clientID]
	if !ok {
		return
	}
	close(handle.EventsCh)
	delete(s.clients, clientID)
	s.logger.Info("Client unregistered", "id", clientID, "user", handle.Username, "players", len(s.clients))
}

// SendInput queues flap presses from a client for the next tick.
func (s *Server) SendInput(clientID int, flaps int) {
	if flaps <= 0 {
		return
	}
	select {
	case s.inputChan <- ClientInput{ClientID: clientID, Flaps: flaps}:
	default:
		s.logger.Debug("Input dropped", "id", clientID)
	}
}

// GetSnapshot returns the latest snapshot for a client, or nil if unknown.
func (s *Server) GetSnapshot(clientID int) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if handle := s.clients[clientID]; handle != nil {
		return handle.Snapshot()
	}
	return nil
}

// StartGame resets the client's world to the ready phase. Pending flaps are dropped.
func (s *Server) StartGame(clientID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle, ok := s.clients[clientID]
	if !ok {
		return
	}
	handle.world.Reset()
	handle.flaps = 0
	handle.paused = false
	handle.best = s.board.Best(handle.Username)
	s.publishLocked(handle, 0)
}

// SetPaused freezes or resumes the client's world.
func (s *Server) SetPaused(clientID int, paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle, ok := s.clients[clientID]
	if !ok || handle.paused == paused {
		return
	}
	handle.paused = paused
	handle.flaps = 0
	s.publishLocked(handle, 0)
}

// Players returns the number of connected clients.
func (s *Server) Players() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// tick runs one server frame: inputs, world steps, snapshots.
func (s *Server) tick(delta time.Duration) {
	s.collectInputs()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, handle := range s.clients {
		if !handle.paused {
			flaps := handle.flaps
			handle.flaps = 0
			s.handleEvents(handle, handle.world.Step(delta, flaps))
		}
	}

	s.refreshTopScores()
	for _, handle := range s.clients {
		s.publishLocked(handle, delta)
	}
}

// collectInputs gathers all pending inputs from clients.
func (s *Server) collectInputs() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		select {
		case ci := <-s.inputChan:
			if handle, ok := s.clients[ci.ClientID]; ok && !handle.paused {
				handle.flaps += ci.Flaps
			}
		default:
			return
		}
	}
}

// handleEvents records finished games and notifies the client. Must be called with lock held.
func (s *Server) handleEvents(handle *ClientHandle, events []world.Event) {
	for _, e := range events {
		if e.Kind != world.EventCrashed {
			continue
		}

		res := s.board.Submit(handle.Username, e.Score, s.now())
		best := max(handle.best, e.Score, res.Best)
		s.logger.Info("Game over",
			"user", handle.Username,
			"score", e.Score,
			"cause", e.Cause,
			"elapsed", handle.world.Elapsed().Round(time.Millisecond),
			"rank", res.Rank,
			"new_best", res.NewBest,
		)

		select {
		case handle.EventsCh <- ClientEvent{
			Type:    EventGameOver,
			Score:   e.Score,
			Best:    best,
			Rank:    res.Rank,
			NewBest: res.NewBest,
			Cause:   e.Cause.String(),
		}:
		default:
		}
	}
}

// refreshTopScores rebuilds the shared top list when the board changed.
func (s *Server) refreshTopScores() {
	if v := s.board.Version(); v != s.topVersion {
		s.topScores = s.board.Top(loopconfig.TopScoresShown)
		s.topVersion = v
	}
}

// publishLocked stores a fresh snapshot for handle. Must be called with lock held.
func (s *Server) publishLocked(handle *ClientHandle, delta time.Duration) {
	w := handle.world
	handle.snapshot.Store(&Snapshot{
		Objects:   w.Drawables(nil),
		Screen:    w.Screen(),
		Phase:     w.Phase(),
		Score:     w.Score(),
		Best:      handle.best,
		Level:     w.Level(),
		Paused:    handle.paused,
		Players:   len(s.clients),
		TopScores: s.topScores,
		Delta:     delta,
	})
}

// truncateName shortens name to at most n runes.
func truncateName(name string, n int) string {
	if utf8.RuneCountInString(name) <= n {
		return name
	}
	return string([]rune(name)[:n])
}
