package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type leaksCmd struct{}

func (*leaksCmd) Name() string     { return "leaks" }
func (*leaksCmd) Synopsis() string { return "list live heap objects for a program" }
func (*leaksCmd) Usage() string    { return "leaks <pid>\n" }
func (*leaksCmd) SetFlags(f *flag.FlagSet) {}

func (c *leaksCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	pid, ok := parsePIDArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}

	m, err := openManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	report, leaksErr := m.Leaks(pid)
	if leaksErr != nil {
		fmt.Fprintln(os.Stderr, leaksErr)
		return subcommands.ExitFailure
	}
	fmt.Print(report)
	return subcommands.ExitSuccess
}
