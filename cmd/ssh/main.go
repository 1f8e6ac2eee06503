package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/flappy/internal/config"
	"github.com/tomz197/flappy/internal/draw"
	"github.com/tomz197/flappy/internal/leaderboard"
	"github.com/tomz197/flappy/internal/loop/client"
	loopconfig "github.com/tomz197/flappy/internal/loop/config"
	"github.com/tomz197/flappy/internal/loop/server"
	"github.com/tomz197/flappy/internal/web"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultScoresPath  = "/app/data/scores.json"
)

// Shared by all SSH sessions.
var (
	gameServer *server.Server
	logger     *log.Logger
)

func main() {
	logger = config.NewLogger(os.Stderr, config.GetEnv("LOG_LEVEL", "info"), "flappy")

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	scoresPath := config.GetEnv("FLAPPY_SCORES", defaultScoresPath)
	workingDir, workErr := os.Getwd()
	if workErr != nil {
		logger.Warn("Failed to get working directory", "error", workErr)
	}
	logger.Info("SSH config", "host", host, "port", port, "hostKeyPath", hostKeyPath,
		"scores", scoresPath, "workingDir", workingDir)

	tuning, err := config.LoadTuning(config.GetEnv("FLAPPY_CONFIG", ""))
	if err != nil {
		logger.Fatal("Failed to load tuning", "error", err)
	}

	board := leaderboard.New(leaderboard.NewFileStore(scoresPath), loopconfig.LeaderboardCapacity)
	board.SetLogger(logger)
	if err := board.Load(); err != nil {
		logger.Fatal("Failed to load high scores", "error", err)
	}

	gameServer, err = server.NewServer(tuning, board, logger)
	if err != nil {
		logger.Fatal("Failed to create game server", "error", err)
	}

	ctx, cancelServer := context.WithCancel(context.Background())
	go gameServer.Run(ctx)

	var saveWG sync.WaitGroup
	saveWG.Add(1)
	go func() {
		defer saveWG.Done()
		if err := board.Run(ctx, loopconfig.LeaderboardFlushInterval); err != nil {
			logger.Error("Could not save high scores", "error", err)
		}
	}()
	logger.Info("Game server started", "scores", board.Len())

	webServer := startWeb(board)

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			gameMiddleware,
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("Failed to create server", "error", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("Server error", "error", err)
		}
	}()

	<-done
	logger.Info("Shutting down server...")

	// Notify players and wait for them to disconnect before stopping the tick.
	logger.Info("Notifying connected players about shutdown...")
	gameServer.Shutdown(15 * time.Second)
	cancelServer()
	saveWG.Wait()
	logger.Info("Game server stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if webServer != nil {
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Web shutdown error", "error", err)
		}
	}
	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Shutdown error", "error", err)
	}
}

// startWeb serves the leaderboard next to the game when FLAPPY_WEB_ADDR is set.
func startWeb(board *leaderboard.Board) *http.Server {
	addr := config.GetEnv("FLAPPY_WEB_ADDR", "")
	if addr == "" {
		return nil
	}

	handler := web.NewHandler(board, web.Options{
		SSHHost: config.GetEnv("SSH_DISPLAY_HOST", "your-server.com"),
		Logger:  logger.WithPrefix("web"),
		Limit:   config.GetEnvInt("WEB_SCORES_LIMIT", 10),
		Players: gameServer.Players,
	})
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	logger.Info("Starting web server", "url", "http://"+addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Web server error", "error", err)
		}
	}()
	return srv
}

// gameMiddleware handles SSH sessions and runs the game client.
func gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		logger.Info("New game session", "user", sess.User(), "term", pty.Term,
			"width", pty.Window.Width, "height", pty.Window.Height)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		reader := bufio.NewReader(sess)
		clientOpts := client.ClientOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     sess.User(),
		}

		c := client.NewClient(gameServer, reader, sess, clientOpts)
		if err := c.Run(); err != nil {
			logger.Error("Game error", "user", sess.User(), "error", err)
		}

		logger.Info("Session ended", "user", sess.User(), "best", gameServer.Board().Best(sess.User()))
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
