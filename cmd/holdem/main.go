package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
)

// version is set by ldflags during build
var version = "dev"

// Globals are the flags shared by every command.
type Globals struct {
	LogLevel string `help:"Log level (debug, info, warn, error); overrides the config file" placeholder:"LEVEL"`
	Config   string `short:"c" help:"Path to the HCL config file" default:"holdem.hcl" type:"path"`
	EnvFile  string `help:"Path to a .env file with HOLDEM_* overrides" default:".env" type:"path"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Deal     DealCmd          `cmd:"" help:"Show the cards a hand seed deals"`
	Eval     EvalCmd          `cmd:"" help:"Rank the best five-card hand from 5 to 7 cards"`
	Simulate SimulateCmd      `cmd:"" help:"Play bot hands through the table service"`
	Replay   ReplayCmd        `cmd:"" help:"Check a stored table snapshot replays to the same state"`
	Sweep    SweepCmd         `cmd:"" help:"Run the timeout sweeper over configured tables"`
	History  HistoryCmd       `cmd:"" help:"Print a PHH hand history file"`
}

// newLogger returns a stderr logger at level, falling back to info.
func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdem"),
		kong.Description("Authoritative Texas Hold'em table engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
