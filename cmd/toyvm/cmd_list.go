package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type listCmd struct{}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list every submitted program and its state" }
func (*listCmd) Usage() string    { return "list\n" }
func (*listCmd) SetFlags(f *flag.FlagSet) {}

func (c *listCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	m, err := openManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	entries := m.List()
	if len(entries) == 0 {
		fmt.Println("No programs submitted")
		return subcommands.ExitSuccess
	}

	fmt.Println("PID  State       File")
	fmt.Println("---  ----------  ----")
	for _, e := range entries {
		fmt.Printf("%-4d %-10s  %s\n", e.PID, e.State, e.Name)
	}
	return subcommands.ExitSuccess
}
