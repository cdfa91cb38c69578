package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Server   ServerCmd        `cmd:"" help:"Run the match server"`
	Simulate SimulateCmd      `cmd:"" help:"Play many rounds between bots and report statistics"`
	Deal     DealCmd          `cmd:"" help:"Show the round dealt from a seed"`
	Play     PlayCmd          `cmd:"" help:"Play a match against bots in the terminal"`
	Bot      BotCmd           `cmd:"" help:"Play a seat on a running server with a built-in bot"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("loveletter"),
		kong.Description("Love Letter rules engine, match server and tools"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
