package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"toyvm/ast"
)

type submitCmd struct{}

func (*submitCmd) Name() string     { return "submit" }
func (*submitCmd) Synopsis() string { return "compile a program and register it for execution" }
func (*submitCmd) Usage() string {
	return "submit <file.sexpr>\n  Compiles the S-expression AST in <file.sexpr> and prints its new PID.\n"
}
func (*submitCmd) SetFlags(f *flag.FlagSet) {}

func (c *submitCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "submit: missing source file")
		return subcommands.ExitUsageError
	}
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "submit: cannot open %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}

	root, err := ast.Parse(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "submit: parse failed for %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}

	m, err := openManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	pid, err := m.Submit(filename, root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	closeManager(m)

	fmt.Printf("Program %q submitted as PID %d\n", filename, pid)
	return subcommands.ExitSuccess
}
