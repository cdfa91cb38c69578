package main

import (
	"context"
	"fmt"
	"time"

	"github.com/lox/loveletter/cmd/loveletter/shared"
	"github.com/lox/loveletter/internal/bot"
	"github.com/lox/loveletter/internal/client"
	"github.com/lox/loveletter/internal/match"
)

// BotCmd plays a seat on a running server with a built-in bot. Without a
// code it creates a match and prints the code for others to join.
type BotCmd struct {
	Server  string `kong:"default='http://localhost:8080',help='Server URL'"`
	Code    string `kong:"help='Match code to join (default: create a match)'"`
	Players int    `kong:"default='2',help='Players when creating a match (2-4)'"`
	Bot     string `kong:"default='careful',help='Bot to play with (random, careful)'"`
	Seed    *int64 `kong:"help='Bot seed (default: time based)'"`
	Debug   bool   `kong:"help='Enable debug logging'"`
}

func (c *BotCmd) Run() error {
	logger := shared.SetupLogger(shared.Level(c.Debug))
	ctx := shared.SetupSignalHandlerWithLogger(logger)

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	b, err := bot.New(c.Bot, seed)
	if err != nil {
		return err
	}

	cl, err := client.New(c.Server, logger)
	if err != nil {
		return err
	}

	var seat match.Seat
	if c.Code == "" {
		seat, err = cl.Create(ctx, c.Players)
		if err == nil {
			logger.Info("Created match, waiting for players to join", "code", seat.Code, "players", c.Players)
		}
	} else {
		seat, err = cl.Join(ctx, c.Code)
	}
	if err != nil {
		return err
	}

	session, err := cl.Connect(ctx, seat)
	if err != nil {
		return err
	}
	defer session.Close()

	winner, err := session.Play(ctx, b)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return nil
		}
		return err
	}
	fmt.Printf("Player %d won match %s (you were player %d).\n", winner, seat.Code, seat.Player)
	return nil
}
