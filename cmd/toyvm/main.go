// Command toyvm is the program-manager surface from spec.md §6: one
// subcommand per manager operation, sharing a pid table persisted to disk
// across invocations since each subcommand is its own process.
//
// Grounded on _examples/informatter-nilan's main.go + cmd_*.go layout,
// which registers one subcommands.Command per action on a shared
// flag.FlagSet.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/google/subcommands"
)

// defaultStateFile is where the pid table persists between invocations.
// Overridable with -state.
const defaultStateFile = "toyvm.state.json"

var stateFile string

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&submitCmd{}, "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&debugCmd{}, "")
	subcommands.Register(&killCmd{}, "")
	subcommands.Register(&memstatCmd{}, "")
	subcommands.Register(&gcCmd{}, "")
	subcommands.Register(&leaksCmd{}, "")
	subcommands.Register(&listCmd{}, "")

	flag.StringVar(&stateFile, "state", defaultStateFile, "path to the persisted pid table")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
