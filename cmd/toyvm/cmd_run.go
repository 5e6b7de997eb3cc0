package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"
)

type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run a submitted program to completion" }
func (*runCmd) Usage() string    { return "run <pid>\n" }
func (*runCmd) SetFlags(f *flag.FlagSet) {}

func (c *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	pid, ok := parsePIDArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}

	m, err := openManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	runErr := m.Run(pid)
	closeManager(m)

	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		return subcommands.ExitFailure
	}
	fmt.Printf("PID %d finished successfully\n", pid)
	return subcommands.ExitSuccess
}

func parsePIDArg(f *flag.FlagSet) (int, bool) {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "missing PID argument")
		return 0, false
	}
	pid, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid PID %q\n", args[0])
		return 0, false
	}
	return pid, true
}
