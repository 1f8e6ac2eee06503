package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/tomz197/flappy/internal/config"
	"github.com/tomz197/flappy/internal/leaderboard"
	"github.com/tomz197/flappy/internal/loop/client"
	loopconfig "github.com/tomz197/flappy/internal/loop/config"
	"github.com/tomz197/flappy/internal/loop/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// The terminal is in raw mode while playing, so logs only go to a file.
	logger, closeLog, err := openLog(config.GetEnv("FLAPPY_LOG", ""))
	if err != nil {
		return err
	}
	defer closeLog()

	tuning, err := config.LoadTuning(config.GetEnv("FLAPPY_CONFIG", ""))
	if err != nil {
		return err
	}

	board := leaderboard.New(leaderboard.NewFileStore(scoresPath()), loopconfig.LeaderboardCapacity)
	board.SetLogger(logger)
	if err := board.Load(); err != nil {
		return err
	}

	gameServer, err := server.NewServer(tuning, board, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	saved := make(chan error, 1)
	go gameServer.Run(ctx)
	go func() { saved <- board.Run(ctx, loopconfig.LeaderboardFlushInterval) }()

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	c := client.NewClient(gameServer, reader, os.Stdout, client.ClientOptions{
		Username: config.GetEnv("USER", leaderboard.AnonymousName),
	})
	runErr := c.Run()
	_ = term.Restore(fd, oldState)

	cancel()
	if err := <-saved; err != nil {
		logger.Error("Could not save high scores", "error", err)
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}

// scoresPath returns FLAPPY_SCORES or a file in the user's home directory.
func scoresPath() string {
	if path := config.GetEnv("FLAPPY_SCORES", ""); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "flappy-scores.json"
	}
	return filepath.Join(home, ".flappy", "scores.json")
}

func openLog(path string) (*log.Logger, func(), error) {
	level := config.GetEnv("LOG_LEVEL", "info")
	if path == "" {
		return config.NewLogger(io.Discard, level, "flappy"), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return config.NewLogger(f, level, "flappy"), func() { f.Close() }, nil
}
