package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type debugCmd struct{}

func (*debugCmd) Name() string     { return "debug" }
func (*debugCmd) Synopsis() string { return "attach an interactive debugger to a program" }
func (*debugCmd) Usage() string    { return "debug <pid>\n" }
func (*debugCmd) SetFlags(f *flag.FlagSet) {}

func (c *debugCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	pid, ok := parsePIDArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}

	m, err := openManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	debugErr := m.Debug(pid, os.Stdout)
	closeManager(m)

	if debugErr != nil {
		fmt.Fprintln(os.Stderr, debugErr)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
