// Package config centralizes the fixed engine parameters. Gameplay tuning
// lives in internal/config and is loaded from YAML.
package config

import "time"

// View resolution - the visible playfield in logical units.
// Actual rendering scales to fit terminal size.
const (
	ViewWidth  = 120 // Logical playfield width
	ViewHeight = 80  // Logical playfield height (in sub-pixels, so 40 terminal rows)
)

// Terminal limits. Larger terminals are letterboxed.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 50
	MinTermWidth  = 40
	MinTermHeight = 15
)

// Player
const (
	MaxUsernameLength   = 16  // Maximum display length for player usernames
	RestartDelaySeconds = 0.8 // Restart is refused this long after a crash
	TopScoresShown      = 5   // Leaderboard rows on the start and game over screens
	PauseBlinkFrequency = 2.0 // Hz
)

// Leaderboard
const (
	LeaderboardCapacity      = 100
	LeaderboardFlushInterval = 10 * time.Second
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Server tick rate
const (
	ServerTickRate = 60
	ServerTickTime = time.Second / ServerTickRate
)
