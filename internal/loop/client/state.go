package client

import (
	"time"

	"github.com/tomz197/flappy/internal/input"
	"github.com/tomz197/flappy/internal/loop/server"
)

// GameState represents the current screen for a client.
type GameState int

const (
	GameStateStart    GameState = iota // Title screen
	GameStatePlaying                   // Active gameplay (including the get-ready hover)
	GameStateGameOver                  // Bird crashed, show result and restart prompt
	GameStateShutdown                  // Server is shutting down
)

// ClientState holds per-connection UI state. The game itself lives on the server.
type ClientState struct {
	Input        input.Input
	GameState    GameState          // This client's screen
	Paused       bool               // Pause requested by this client
	LastGame     server.ClientEvent // Result of the most recent game
	RestartDelay float64            // Seconds before a restart is accepted
	Running      bool               // Client loop running

	delta         time.Duration // Frame delta time (client-side)
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool          // Whether the client is in inactive warning state

	// Previous frame's values; a change forces a full terminal clear.
	prevGameState GameState
	wasInactive   bool
	wasPaused     bool
}

// screenChanged reports whether the screen, pause or inactivity state
// changed since the last call.
func (s *ClientState) screenChanged() bool {
	changed := s.GameState != s.prevGameState ||
		s.isInactive != s.wasInactive ||
		s.Paused != s.wasPaused
	s.prevGameState = s.GameState
	s.wasInactive = s.isInactive
	s.wasPaused = s.Paused
	return changed
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		GameState: GameStateStart,
		Running:   true,
	}
}
