package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type memstatCmd struct{}

func (*memstatCmd) Name() string     { return "memstat" }
func (*memstatCmd) Synopsis() string { return "report GC and stack statistics for a program's VM" }
func (*memstatCmd) Usage() string {
	return "memstat <pid>\n  Only meaningful while the pid's VM is alive (during run/debug); a\n  separate process has no VM to report on, since VMs do not persist\n  across invocations.\n"
}
func (*memstatCmd) SetFlags(f *flag.FlagSet) {}

func (c *memstatCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	pid, ok := parsePIDArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}

	m, err := openManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	report, statErr := m.Memstat(pid)
	if statErr != nil {
		fmt.Fprintln(os.Stderr, statErr)
		return subcommands.ExitFailure
	}
	fmt.Print(report)
	return subcommands.ExitSuccess
}
