package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type gcCmd struct{}

func (*gcCmd) Name() string     { return "gc" }
func (*gcCmd) Synopsis() string { return "force a collection pass on a program's heap" }
func (*gcCmd) Usage() string    { return "gc <pid>\n" }
func (*gcCmd) SetFlags(f *flag.FlagSet) {}

func (c *gcCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	pid, ok := parsePIDArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}

	m, err := openManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	freed, gcErr := m.GC(pid)
	if gcErr != nil {
		fmt.Fprintln(os.Stderr, gcErr)
		return subcommands.ExitFailure
	}
	fmt.Printf("Forced GC on PID %d: freed %d object(s)\n", pid, freed)
	return subcommands.ExitSuccess
}
