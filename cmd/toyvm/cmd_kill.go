package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type killCmd struct{}

func (*killCmd) Name() string     { return "kill" }
func (*killCmd) Synopsis() string { return "terminate a program's VM" }
func (*killCmd) Usage() string    { return "kill <pid>\n" }
func (*killCmd) SetFlags(f *flag.FlagSet) {}

func (c *killCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	pid, ok := parsePIDArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}

	m, err := openManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	killErr := m.Kill(pid)
	closeManager(m)

	if killErr != nil {
		fmt.Fprintln(os.Stderr, killErr)
		return subcommands.ExitFailure
	}
	fmt.Printf("PID %d killed\n", pid)
	return subcommands.ExitSuccess
}
