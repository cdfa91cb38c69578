package main

import (
	"fmt"
	"os"

	"github.com/lox/loveletter/internal/game"
	"github.com/lox/loveletter/internal/randutil"
	"github.com/lox/loveletter/internal/tui"
)

// DealCmd prints every card of the round a seed deals.
type DealCmd struct {
	Players int   `kong:"default='4',help='Players (2-4)'"`
	Seed    int64 `kong:"required,help='Seed to deal from'"`
	NoColor bool  `kong:"help='Disable colour output'"`
}

func (c *DealCmd) Run() error {
	st, err := game.New(c.Players, randutil.New(c.Seed))
	if err != nil {
		return err
	}
	if err := st.CheckInvariants(); err != nil {
		return err
	}

	tui.SetupColor(os.Stdout, c.NoColor)
	fmt.Print(tui.RenderDeal(st, c.Seed))
	return nil
}
