package server

import (
	"sync/atomic"
	"time"

	"github.com/tomz197/flappy/internal/leaderboard"
	"github.com/tomz197/flappy/internal/object"
	"github.com/tomz197/flappy/internal/world"
)

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID       int
	Username string           // Display name, also the leaderboard key
	EventsCh chan ClientEvent // Events sent to client (game over, shutdown)

	snapshot atomic.Pointer[Snapshot]

	// Owned by the tick loop; guarded by Server.mu.
	world  *world.World
	flaps  int // Flap presses since the last tick
	paused bool
	best   int // Best score before the current game
}

// Snapshot returns the latest snapshot for this client.
func (h *ClientHandle) Snapshot() *Snapshot {
	return h.snapshot.Load()
}

// ClientInput represents input from a specific client.
type ClientInput struct {
	ClientID int
	Flaps    int
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type    ClientEventType
	Score   int    // Final score (game over)
	Best    int    // Best score after this game
	Rank    int    // Leaderboard rank, 0 if not on the board
	NewBest bool   // The game raised the player's best
	Cause   string // What the bird hit
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventGameOver ClientEventType = iota
	EventServerShutdown
)

// Snapshot is an immutable view of one client's game for rendering.
type Snapshot struct {
	Objects   []object.Object // Copies, safe to draw on the client goroutine
	Screen    object.Screen
	Phase     world.Phase
	Score     int
	Best      int // Best score before the current game
	Level     float64
	Paused    bool
	Players   int
	TopScores []leaderboard.Entry // Shared between snapshots; read-only
	Delta     time.Duration
}

// DisplayBest returns the best score including the game in progress.
func (s *Snapshot) DisplayBest() int {
	return max(s.Best, s.Score)
}
