package client

import (
	"bufio"
	"io"
	"time"

	"github.com/tomz197/flappy/internal/draw"
	"github.com/tomz197/flappy/internal/input"
	"github.com/tomz197/flappy/internal/loop/config"
	"github.com/tomz197/flappy/internal/loop/server"
)

// Client is the render and input loop of one terminal. The game itself runs
// on the server; the client forwards flaps and draws snapshots.
type Client struct {
	server server.GameServer
	handle *server.ClientHandle
	state  *ClientState

	canvas *draw.Canvas
	out    *draw.ChunkWriter // Frame buffer, flushed once per frame
	term   io.Writer
	view   draw.Viewport
	size   draw.TermSizeFunc

	keys    *input.Stream
	lastKey time.Time
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc // Defaults to the size of stdout
	Username     string
}

// NewClient registers with gs and prepares a canvas for the current terminal.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	size := opts.TermSizeFunc
	if size == nil {
		size = draw.StdoutSize
	}

	cols, rows, _ := size()
	view := draw.FitViewport(cols, rows, config.MaxTermWidth, config.MaxTermHeight)
	canvas := draw.NewScaledCanvas(view.Width, view.Height, config.ViewWidth, config.ViewHeight)
	canvas.SetOffset(view.OffsetCol, view.OffsetRow)

	return &Client{
		server:  gs,
		handle:  gs.RegisterClient(opts.Username),
		state:   NewClientState(),
		canvas:  canvas,
		out:     draw.NewChunkWriter(w, view.OffsetCol, view.OffsetRow),
		term:    w,
		view:    view,
		size:    size,
		keys:    input.StartStream(r),
		lastKey: time.Now(),
	}
}

// Run blocks until the player quits, goes idle, or the server goes away.
func (c *Client) Run() error {
	if err := draw.EnterScreen(c.term); err != nil {
		return err
	}
	defer draw.LeaveScreen(c.term)
	defer c.server.UnregisterClient(c.handle.ID)

	ticker := time.NewTicker(config.ClientTargetFrameTime)
	defer ticker.Stop()

	last := time.Now()
	for c.state.Running {
		now := time.Now()
		c.state.delta = now.Sub(last)
		last = now

		c.update()
		if err := c.drawFrame(); err != nil {
			return err
		}
		<-ticker.C
	}
	return nil
}

// update advances the client by one frame without drawing.
func (c *Client) update() {
	c.readInput()
	c.drainEvents()
	c.fitTerminal()

	switch c.state.GameState {
	case GameStateStart:
		c.onStart()
	case GameStatePlaying:
		c.onPlaying()
	case GameStateGameOver:
		c.onGameOver()
	case GameStateShutdown:
		c.onShutdown()
	}
}

// readInput polls the key stream and tracks idle time.
func (c *Client) readInput() {
	c.state.Input = input.ReadInput(c.keys)

	idle := time.Since(c.lastKey).Seconds()
	switch {
	case c.state.Input.Any():
		c.lastKey = time.Now()
		c.state.isInactive = false
	case idle > config.InactivityDisconnectUser:
		c.state.Running = false
	case idle > config.InactivityWarnUser:
		c.state.isInactive = true
	}

	if c.state.Input.Quit {
		c.state.Running = false
	}
}

// drainEvents applies every queued server event.
func (c *Client) drainEvents() {
	for {
		select {
		case ev, ok := <-c.handle.EventsCh:
			if !ok {
				c.state.Running = false
				return
			}
			c.handleEvent(ev)
		default:
			return
		}
	}
}

func (c *Client) handleEvent(ev server.ClientEvent) {
	switch ev.Type {
	case server.EventGameOver:
		c.state.LastGame = ev
		c.state.GameState = GameStateGameOver
		c.state.Paused = false
		c.state.RestartDelay = config.RestartDelaySeconds
	case server.EventServerShutdown:
		c.state.GameState = GameStateShutdown
		c.state.shutdownTimer = config.ShutdownDisplaySeconds
	}
}

// fitTerminal follows terminal resizes. A changed viewport clears the
// terminal so stale borders and letterbox cells go away.
func (c *Client) fitTerminal() {
	cols, rows, err := c.size()
	if err != nil {
		return
	}
	view := draw.FitViewport(cols, rows, config.MaxTermWidth, config.MaxTermHeight)
	if view == c.view {
		return
	}

	c.view = view
	c.out.Clear()
	c.canvas.Resize(view.Width, view.Height)
	c.canvas.SetOffset(view.OffsetCol, view.OffsetRow)
	c.out.SetOffset(view.OffsetCol, view.OffsetRow)
	c.canvas.ForceRedraw()
}

// tooSmall reports whether the viewport cannot fit the game screens.
func (c *Client) tooSmall() bool {
	return c.view.Width < config.MinTermWidth || c.view.Height < config.MinTermHeight
}

func (c *Client) onStart() {
	if c.state.Input.Flaps > 0 || c.state.Input.Enter {
		c.startGame()
	}
}

// onPlaying forwards flaps. Pause is a toggle and drops flaps while set.
func (c *Client) onPlaying() {
	if c.state.Input.Pause {
		c.state.Paused = !c.state.Paused
		c.server.SetPaused(c.handle.ID, c.state.Paused)
		return
	}
	if !c.state.Paused && c.state.Input.Flaps > 0 {
		c.server.SendInput(c.handle.ID, c.state.Input.Flaps)
	}
}

// onGameOver refuses restarts until the delay has run out.
func (c *Client) onGameOver() {
	if c.state.RestartDelay > 0 {
		c.state.RestartDelay = max(0, c.state.RestartDelay-c.state.delta.Seconds())
		return
	}
	if c.state.Input.Flaps > 0 || c.state.Input.Enter {
		c.startGame()
	}
}

// startGame resets the world. It waits in the ready phase for the next flap,
// so the key that started the game does not also flap.
func (c *Client) startGame() {
	input.ResetKeyInput(c.keys)
	c.server.StartGame(c.handle.ID)
	c.state.Paused = false
	c.state.GameState = GameStatePlaying
}

func (c *Client) onShutdown() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
