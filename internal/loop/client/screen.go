package client

import (
	"fmt"
	"time"

	"github.com/tomz197/flappy/internal/draw"
	"github.com/tomz197/flappy/internal/leaderboard"
	"github.com/tomz197/flappy/internal/loop/config"
	"github.com/tomz197/flappy/internal/loop/server"
	"github.com/tomz197/flappy/internal/object"
	"github.com/tomz197/flappy/internal/world"
)

// drawFrame renders the latest snapshot, the text effects over it, then
// the screen for the client state.
func (c *Client) drawFrame() error {
	// Screen changes leave text behind that the canvas diff would not erase.
	if c.state.screenChanged() {
		c.out.Clear()
		c.canvas.ForceRedraw()
	}
	c.canvas.Clear()

	if c.tooSmall() {
		c.drawTooSmall()
		return c.out.Flush()
	}

	snapshot := c.server.GetSnapshot(c.handle.ID)
	if snapshot == nil {
		return c.out.Flush()
	}

	ctx := object.DrawContext{Canvas: c.canvas, Writer: c.out}
	for _, obj := range snapshot.Objects {
		if err := obj.Draw(ctx); err != nil {
			return err
		}
	}
	if err := c.canvas.Render(c.out); err != nil {
		return err
	}
	if err := c.canvas.RenderBorder(c.out); err != nil {
		return err
	}

	for _, obj := range snapshot.Objects {
		if td, ok := obj.(object.TextDrawer); ok {
			if err := td.DrawText(ctx); err != nil {
				return err
			}
		}
	}

	c.drawUI(snapshot)
	return c.out.Flush()
}

// drawUI draws the game UI overlay.
func (c *Client) drawUI(snapshot *server.Snapshot) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if c.state.GameState == GameStateShutdown {
		c.drawShutdownScreen(centerX, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return
	}

	switch c.state.GameState {
	case GameStatePlaying:
		c.drawPlayingHUD(termWidth, termHeight, snapshot)
	case GameStateStart:
		c.drawStartScreen(centerX, centerY, snapshot)
	case GameStateGameOver:
		c.drawGameOverScreen(centerX, centerY, snapshot)
	}
}

// writeCentered writes s centred on centerX and marks the cells for repaint.
func (c *Client) writeCentered(centerX, row int, s string) {
	col := centerX - len(s)/2
	if col < 1 {
		col = 1
	}
	c.out.WriteAt(col, row, s)
	c.canvas.MarkTextDirty(col, row, len(s))
}

// writeCenteredStyled is writeCentered with an ANSI style.
func (c *Client) writeCenteredStyled(centerX, row int, style, s string) {
	col := centerX - len(s)/2
	if col < 1 {
		col = 1
	}
	c.out.WriteStyledAt(col, row, style, s)
	c.canvas.MarkTextDirty(col, row, len(s))
}

// blinkOn alternates at PauseBlinkFrequency.
func blinkOn() bool {
	secs := float64(time.Now().UnixNano()) / float64(time.Second)
	return int64(secs*config.PauseBlinkFrequency)%2 == 0
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	c.writeCentered(centerX, centerY-2, "INACTIVITY WARNING")

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastKey).Seconds()),
	)
	c.writeCentered(centerX, centerY, msg)
	c.writeCentered(centerX, centerY+2, "Press any key to continue")
}

// drawStartScreen draws the title screen over the hovering bird.
func (c *Client) drawStartScreen(centerX, centerY int, snapshot *server.Snapshot) {
	// ASCII art title (figlet "small" font)
	titleArt := []string{
		`  ___ _      _   ___ ___ __   __ `,
		` | __| |    /_\ | _ \ _ \\ \ / / `,
		` | _|| |__ / _ \|  _/  _/ \ V /  `,
		` |_| |____/_/ \_\_| |_|    |_|   `,
	}

	titleStartY := centerY - 12
	for i, line := range titleArt {
		c.writeCenteredStyled(centerX, titleStartY+i, draw.ColorBrightYellow, line)
	}

	c.writeCentered(centerX, titleStartY+len(titleArt)+1, "~ Flap between the pipes ~")

	controlsY := titleStartY + len(titleArt) + 3
	c.writeCentered(centerX, controlsY, "Controls")
	controlLines := []string{
		"SPACE / W / Up  . . Flap",
		"P . . . . . . . .  Pause",
		"Q . . . . . . . . . Quit",
	}
	for i, line := range controlLines {
		c.writeCentered(centerX, controlsY+1+i, line)
	}

	if blinkOn() {
		c.writeCenteredStyled(centerX, controlsY+len(controlLines)+2, draw.ColorBold, ">>  Press SPACE to Start  <<")
	}

	c.drawTopScores(centerX, controlsY+len(controlLines)+4, snapshot.TopScores, "")
}

// drawPlayingHUD draws the in-game HUD.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen (since we no longer clear every frame).
func (c *Client) drawPlayingHUD(termWidth, termHeight int, snapshot *server.Snapshot) {
	cw := c.out

	scoreText := fmt.Sprintf(" %d ", snapshot.Score)
	c.writeCenteredStyled(termWidth/2, 2, draw.ColorBold+draw.ColorBrightYellow, scoreText)

	bestText := fmt.Sprintf("Best: %-6d", snapshot.DisplayBest())
	cw.WriteAt(2, 1, bestText)
	c.canvas.MarkTextDirty(2, 1, len(bestText))

	playersText := fmt.Sprintf("Players: %-4d", snapshot.Players)
	cw.WriteAt(termWidth-len(playersText)-1, 1, playersText)
	c.canvas.MarkTextDirty(termWidth-len(playersText)-1, 1, len(playersText))

	levelText := fmt.Sprintf("Speed: %3.0f%%", 100*(1+snapshot.Level))
	cw.WriteAt(2, termHeight, levelText)
	c.canvas.MarkTextDirty(2, termHeight, len(levelText))

	centerX := termWidth / 2
	centerY := termHeight / 2
	switch {
	case c.state.Paused:
		if blinkOn() {
			c.writeCenteredStyled(centerX, centerY-4, draw.ColorBold, "PAUSED")
		}
		c.writeCentered(centerX, centerY-2, "Press P to resume")
	case snapshot.Phase == world.PhaseReady:
		c.writeCenteredStyled(centerX, centerY-6, draw.ColorBold, "GET READY")
		c.writeCentered(centerX, centerY-4, "Press SPACE to flap")
	}
}

// drawGameOverScreen draws the result of the last game.
func (c *Client) drawGameOverScreen(centerX, centerY int, snapshot *server.Snapshot) {
	titleArt := []string{
		`   ___   _   __  __ ___    _____   _____ ___  `,
		`  / __| /_\ |  \/  | __|  / _ \ \ / / __| _ \ `,
		` | (_ |/ _ \| |\/| | _|  | (_) \ V /| _||   / `,
		`  \___/_/ \_\_|  |_|___|  \___/ \_/ |___|_|_\ `,
	}

	titleStartY := centerY - 12
	for i, line := range titleArt {
		c.writeCenteredStyled(centerX, titleStartY+i, draw.ColorBrightYellow, line)
	}

	game := c.state.LastGame
	row := titleStartY + len(titleArt) + 1
	c.writeCentered(centerX, row, fmt.Sprintf("You hit the %s", game.Cause))
	c.writeCentered(centerX, row+2, fmt.Sprintf("Score: %-6d Best: %-6d", game.Score, game.Best))
	if game.NewBest {
		c.writeCenteredStyled(centerX, row+3, draw.ColorBold+draw.ColorBrightCyan, "New best!")
	}
	if game.Rank > 0 {
		c.writeCentered(centerX, row+4, fmt.Sprintf("Leaderboard rank #%d", game.Rank))
	}

	prompt := ""
	if c.state.RestartDelay > 0 {
		prompt = "                              "
	} else if blinkOn() {
		prompt = ">>  Press SPACE to Restart  <<"
	}
	if prompt != "" {
		c.writeCentered(centerX, row+6, prompt)
	}

	c.drawTopScores(centerX, row+8, snapshot.TopScores, c.handle.Username)
}

// drawTopScores draws the leaderboard table, highlighting one player.
func (c *Client) drawTopScores(centerX, startRow int, entries []leaderboard.Entry, highlight string) {
	if len(entries) == 0 || startRow+len(entries)+1 > c.canvas.TerminalHeight() {
		return
	}

	c.writeCentered(centerX, startRow, "High Scores")
	for i, e := range entries {
		line := fmt.Sprintf("%2d. %-*s %6d", i+1, config.MaxUsernameLength, e.Name, e.Score)
		if e.Name == highlight {
			c.writeCenteredStyled(centerX, startRow+1+i, draw.ColorBrightCyan, line)
			continue
		}
		c.writeCentered(centerX, startRow+1+i, line)
	}
}

// drawTooSmall asks for a bigger terminal instead of drawing the game.
func (c *Client) drawTooSmall() {
	msg := fmt.Sprintf("Terminal too small: need %dx%d", config.MinTermWidth, config.MinTermHeight)
	c.out.WriteAt(1, 1, msg)
	c.out.WriteAt(1, 2, "Resize or press Q to quit")
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	c.writeCentered(centerX, centerY-3, "SERVER SHUTTING DOWN")
	c.writeCentered(centerX, centerY-1, "The server is restarting for maintenance.")
	c.writeCentered(centerX, centerY, "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	c.writeCentered(centerX, centerY+2, fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	c.writeCentered(centerX, centerY+4, "Press Q to disconnect now")
}
