package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/flappy/internal/config"
	"github.com/tomz197/flappy/internal/leaderboard"
	loopconfig "github.com/tomz197/flappy/internal/loop/config"
	"github.com/tomz197/flappy/internal/web"
)

const (
	defaultHost       = "0.0.0.0"
	defaultPort       = "8080"
	defaultScoresPath = "/app/data/scores.json"
)

func main() {
	logger := config.NewLogger(os.Stderr, config.GetEnv("LOG_LEVEL", "info"), "web")

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	scoresPath := config.GetEnv("FLAPPY_SCORES", defaultScoresPath)
	reloadEvery := config.GetEnvDuration("WEB_RELOAD_INTERVAL", 5*time.Second)

	// The game server owns the scores file; this process only reads it.
	board := leaderboard.New(leaderboard.NewFileStore(scoresPath), loopconfig.LeaderboardCapacity)
	if err := board.Load(); err != nil {
		logger.Warn("Could not load high scores", "path", scoresPath, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go reload(ctx, board, reloadEvery, logger)

	handler := web.NewHandler(board, web.Options{
		SSHHost: sshHost,
		Logger:  logger,
		Limit:   config.GetEnvInt("WEB_SCORES_LIMIT", 10),
	})

	addr := fmt.Sprintf("%s:%s", host, port)
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting web server", "url", "http://"+addr, "scores", scoresPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server error", "error", err)
	}
}

func reload(ctx context.Context, board *leaderboard.Board, every time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := board.Reload(); err != nil {
				logger.Debug("Reload failed", "error", err)
			}
		}
	}
}
