package main

import (
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/loveletter/cmd/loveletter/shared"
	"github.com/lox/loveletter/internal/randutil"
	"github.com/lox/loveletter/internal/tui"
)

// PlayCmd runs a terminal match where you hold seat 1 against bots.
type PlayCmd struct {
	Players  int           `kong:"default='4',help='Players including you (2-4)'"`
	Bots     []string      `kong:"default='careful',help='Bot for each other seat, or one bot for all (random, careful)'"`
	Seed     *int64        `kong:"help='First round seed (default: random)'"`
	BotDelay time.Duration `kong:"default='700ms',help='Pause before each bot turn'"`
	LogFile  string        `kong:"help='Write debug logs to this file'"`
}

func (c *PlayCmd) Run() error {
	// The terminal belongs to the game; logs only go to a file.
	var w io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	logger := shared.SetupLoggerTo(w, log.DebugLevel)

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
	} else {
		var err error
		if seed, err = randutil.NewSeed(); err != nil {
			return err
		}
	}
	logger.Info("Starting match", "players", c.Players, "seed", seed)

	tui.SetupColor(os.Stdout, false)
	model, err := tui.New(logger, tui.Options{
		Players:  c.Players,
		Bots:     c.Bots,
		Seed:     seed,
		BotDelay: c.BotDelay,
	})
	if err != nil {
		return err
	}

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run terminal game: %w", err)
	}
	if winner := model.Winner(); winner != 0 {
		fmt.Printf("Player %d won the match (seed %d).\n", winner, seed)
	}
	return nil
}
