package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/lox/loveletter/cmd/loveletter/shared"
	"github.com/lox/loveletter/internal/simulator"
)

// SimulateCmd plays seeded rounds between bots.
type SimulateCmd struct {
	Rounds  int      `kong:"default='10000',help='Number of rounds to play'"`
	Players int      `kong:"default='4',help='Players per round (2-4)'"`
	Bots    []string `kong:"default='random',help='Bot per seat, or one bot for every seat (random, careful)'"`
	Seed    *int64   `kong:"help='First round seed (default: time based)'"`
	Workers int      `kong:"default='0',help='Parallel workers (default: number of CPUs)'"`
	Debug   bool     `kong:"help='Enable debug logging'"`
}

func (c *SimulateCmd) Run() error {
	logger := shared.SetupLogger(shared.Level(c.Debug))

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	sim := simulator.New(simulator.Config{
		Rounds:  c.Rounds,
		Players: c.Players,
		Bots:    c.Bots,
		Seed:    seed,
		Workers: workers,
		Logger:  logger,
	})
	lineup, err := sim.Lineup()
	if err != nil {
		return err
	}

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed (seed %d): %w", seed, err)
	}

	simulator.PrintSummary(os.Stdout, stats, lineup)
	fmt.Printf("\nSeed: %d  Elapsed: %s\n", seed, time.Since(start).Round(time.Millisecond))
	return nil
}
