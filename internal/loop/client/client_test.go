package client

import (
	"bufio"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomz197/flappy/internal/draw"
	"github.com/tomz197/flappy/internal/input"
	"github.com/tomz197/flappy/internal/leaderboard"
	"github.com/tomz197/flappy/internal/loop/config"
	"github.com/tomz197/flappy/internal/loop/server"
	"github.com/tomz197/flappy/internal/world"
)

// fakeServer records client calls and serves a fixed snapshot.
type fakeServer struct {
	mu           sync.Mutex
	handle       *server.ClientHandle
	snapshot     *server.Snapshot
	flaps        int
	starts       int
	paused       bool
	unregistered bool
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		snapshot: &server.Snapshot{
			Phase:   world.PhasePlaying,
			Score:   7,
			Best:    3,
			Players: 2,
			TopScores: []leaderboard.Entry{
				{Name: "alice", Score: 12},
				{Name: "bob", Score: 9},
			},
		},
	}
}

func (f *fakeServer) RegisterClient(username string) *server.ClientHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handle = &server.ClientHandle{ID: 1, Username: username, EventsCh: make(chan server.ClientEvent, 16)}
	return f.handle
}

func (f *fakeServer) UnregisterClient(int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregistered = true
}

func (f *fakeServer) SendInput(_ int, flaps int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flaps += flaps
}

func (f *fakeServer) GetSnapshot(int) *server.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot
}

func (f *fakeServer) StartGame(int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
}

func (f *fakeServer) SetPaused(_ int, paused bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = paused
}

var _ server.GameServer = (*fakeServer)(nil)

func newTestClient(t *testing.T, keys string) (*Client, *fakeServer, *strings.Builder) {
	t.Helper()
	fs := newFakeServer()
	out := &strings.Builder{}
	c := NewClient(fs, bufio.NewReader(strings.NewReader(keys)), out, ClientOptions{
		TermSizeFunc: draw.FixedTermSize(120, 40),
		Username:     "alice",
	})
	return c, fs, out
}

func TestStartScreenStartsGameOnFlap(t *testing.T) {
	c, fs, _ := newTestClient(t, "")

	c.state.Input = input.Input{Flaps: 1}
	c.onStart()

	if c.state.GameState != GameStatePlaying {
		t.Fatalf("Expected playing, got %v", c.state.GameState)
	}
	if fs.starts != 1 {
		t.Errorf("Expected one StartGame call, got %d", fs.starts)
	}
	if fs.flaps != 0 {
		t.Errorf("Expected the starting press not to flap, got %d", fs.flaps)
	}
}

func TestPlayingForwardsFlapsAndPauses(t *testing.T) {
	c, fs, _ := newTestClient(t, "")
	c.state.GameState = GameStatePlaying

	c.state.Input = input.Input{Flaps: 2}
	c.onPlaying()
	if fs.flaps != 2 {
		t.Errorf("Expected 2 flaps forwarded, got %d", fs.flaps)
	}

	c.state.Input = input.Input{Pause: true}
	c.onPlaying()
	if !c.state.Paused || !fs.paused {
		t.Fatal("Expected pause to reach the server")
	}

	c.state.Input = input.Input{Flaps: 1}
	c.onPlaying()
	if fs.flaps != 2 {
		t.Errorf("Expected flaps ignored while paused, got %d", fs.flaps)
	}

	c.state.Input = input.Input{Pause: true}
	c.onPlaying()
	if c.state.Paused || fs.paused {
		t.Error("Expected second pause press to resume")
	}
}

func TestGameOverEventAndRestartDelay(t *testing.T) {
	c, fs, _ := newTestClient(t, "")
	c.state.GameState = GameStatePlaying

	fs.handle.EventsCh <- server.ClientEvent{Type: server.EventGameOver, Score: 4, Best: 9, Rank: 2}
	c.drainEvents()

	if c.state.GameState != GameStateGameOver {
		t.Fatalf("Expected game over, got %v", c.state.GameState)
	}
	if c.state.LastGame.Score != 4 {
		t.Errorf("Expected last score 4, got %d", c.state.LastGame.Score)
	}

	c.state.Input = input.Input{Flaps: 1}
	c.state.delta = 100 * time.Millisecond
	c.onGameOver()
	if c.state.GameState != GameStateGameOver || fs.starts != 0 {
		t.Fatal("Expected restart refused during the delay")
	}

	c.state.delta = time.Duration(config.RestartDelaySeconds * float64(time.Second))
	c.onGameOver()
	c.onGameOver()
	if c.state.GameState != GameStatePlaying || fs.starts != 1 {
		t.Errorf("Expected restart after the delay, state=%v starts=%d", c.state.GameState, fs.starts)
	}
}

func TestShutdownEventCountsDown(t *testing.T) {
	c, fs, _ := newTestClient(t, "")
	fs.handle.EventsCh <- server.ClientEvent{Type: server.EventServerShutdown}
	c.drainEvents()

	if c.state.GameState != GameStateShutdown {
		t.Fatalf("Expected shutdown state, got %v", c.state.GameState)
	}
	c.state.delta = time.Duration(config.ShutdownDisplaySeconds * float64(time.Second))
	c.onShutdown()
	if c.state.Running {
		t.Error("Expected client to stop after the shutdown countdown")
	}
}

func TestClosedEventsStopClient(t *testing.T) {
	c, fs, _ := newTestClient(t, "")
	close(fs.handle.EventsCh)
	c.drainEvents()
	if c.state.Running {
		t.Error("Expected client to stop when the server closes the channel")
	}
}

func TestDrawFrameShowsHUD(t *testing.T) {
	c, _, out := newTestClient(t, "")
	c.state.GameState = GameStatePlaying

	if err := c.drawFrame(); err != nil {
		t.Fatalf("drawFrame: %v", err)
	}
	for _, want := range []string{" 7 ", "Best: 7", "Players: 2"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in HUD output", want)
		}
	}
}

func TestDrawGameOverShowsResult(t *testing.T) {
	c, _, out := newTestClient(t, "")
	c.state.GameState = GameStateGameOver
	c.state.LastGame = server.ClientEvent{Type: server.EventGameOver, Score: 4, Best: 9, Rank: 2, Cause: "pipe", NewBest: true}

	if err := c.drawFrame(); err != nil {
		t.Fatalf("drawFrame: %v", err)
	}
	for _, want := range []string{"You hit the pipe", "Score: 4", "New best!", "rank #2", "High Scores", "bob"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in game over output", want)
		}
	}
}

func TestTinyTerminalAsksForResize(t *testing.T) {
	fs := newFakeServer()
	out := &strings.Builder{}
	c := NewClient(fs, bufio.NewReader(strings.NewReader("")), out, ClientOptions{
		TermSizeFunc: draw.FixedTermSize(config.MinTermWidth-1, config.MinTermHeight),
		Username:     "alice",
	})

	if err := c.drawFrame(); err != nil {
		t.Fatalf("drawFrame: %v", err)
	}
	if !strings.Contains(out.String(), "Terminal too small") {
		t.Errorf("Expected resize prompt, got %q", out.String())
	}
	if strings.Contains(out.String(), "Players:") {
		t.Error("Expected no HUD on a tiny terminal")
	}
}

func TestResizeRecentresViewport(t *testing.T) {
	width := 80
	fs := newFakeServer()
	c := NewClient(fs, bufio.NewReader(strings.NewReader("")), io.Discard, ClientOptions{
		TermSizeFunc: func() (int, int, error) { return width, 30, nil },
		Username:     "alice",
	})

	width = config.MaxTermWidth + 20
	c.fitTerminal()
	if c.view.Width != config.MaxTermWidth || c.view.OffsetCol != 10 {
		t.Errorf("Expected capped and centred viewport, got %+v", c.view)
	}
	if c.canvas.TerminalWidth() != config.MaxTermWidth || c.canvas.OffsetCol() != 10 {
		t.Errorf("Expected canvas to follow the viewport, got width=%d offset=%d",
			c.canvas.TerminalWidth(), c.canvas.OffsetCol())
	}
}

func TestRunQuitsAndUnregisters(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	fs := newFakeServer()
	c := NewClient(fs, bufio.NewReader(pr), io.Discard, ClientOptions{
		TermSizeFunc: draw.FixedTermSize(80, 24),
		Username:     "alice",
	})

	done := make(chan error, 1)
	go func() { done <- c.Run() }()

	if _, err := pw.Write([]byte("q")); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Run to return after quit")
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.unregistered {
		t.Error("Expected client to unregister on exit")
	}
}
