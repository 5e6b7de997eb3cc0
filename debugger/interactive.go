package debugger

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

// RunInteractive drives the prompt/read/dispatch loop from spec.md §4.3,
// reworked from _examples/informatter-nilan/cmd_repl.go's bufio.Scanner
// prompt into a github.com/chzyer/readline session so the debugger gets
// line editing and command history for free.
func (d *Debugger) RunInteractive(out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "dbg> ",
		Stdout: out,
	})
	if err != nil {
		return fmt.Errorf("debugger: could not start interactive session: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(out, "Debugger ready. Type 'help' for commands.")
	fmt.Fprintf(out, "Program loaded: %d bytes, %d variables\n", len(d.prog.Code), len(d.prog.Vars))
	d.vm.EnsureRunning()
	d.lastLine = d.currentLine()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if d.dispatch(out, line) {
			fmt.Fprintln(out, "Exiting debugger")
			return nil
		}
	}
}

// dispatch executes one command line and returns true if the loop should
// exit (quit/q).
func (d *Debugger) dispatch(out io.Writer, line string) bool {
	switch {
	case line == "help":
		fmt.Fprint(out, helpText)

	case strings.HasPrefix(line, "break "):
		n := parseLineArg(line, "break ")
		if err := d.AddBreakpoint(n); err != nil {
			fmt.Fprintln(out, err)
		} else {
			fmt.Fprintf(out, "Breakpoint set at line %d (pc=%d)\n", n, d.prog.PCForLine(n))
		}

	case strings.HasPrefix(line, "delete "):
		n := parseLineArg(line, "delete ")
		if err := d.RemoveBreakpoint(n); err != nil {
			fmt.Fprintln(out, err)
		} else {
			fmt.Fprintf(out, "Breakpoint removed at line %d\n", n)
		}

	case line == "list":
		bps := d.Breakpoints()
		if len(bps) == 0 {
			fmt.Fprintln(out, "No breakpoints set")
		} else {
			fmt.Fprintln(out, "Breakpoints:")
			for _, bp := range bps {
				fmt.Fprintf(out, "  line %d\n", bp)
			}
		}

	case line == "step" || line == "s":
		res := d.StepInstruction()
		if !res.Running {
			fmt.Fprintln(out, "Program has halted")
		} else {
			fmt.Fprintf(out, "  PC=%d (line %d)\n", res.PC, res.Line)
		}

	case line == "next" || line == "n":
		res := d.StepLine()
		if !res.Running {
			fmt.Fprintf(out, "Program halted at PC=%d\n", res.PC)
		} else {
			fmt.Fprintf(out, "  Stopped at line %d (PC=%d)\n", res.Line, res.PC)
		}

	case line == "continue" || line == "c":
		res := d.Continue()
		if res.Hit {
			fmt.Fprintf(out, "Hit breakpoint at line %d (PC=%d)\n", res.Line, res.PC)
		} else {
			fmt.Fprintln(out, "Program finished")
		}

	case line == "regs":
		fmt.Fprint(out, d.FormatRegs())

	case line == "stack":
		fmt.Fprint(out, d.FormatStack())

	case line == "vars":
		fmt.Fprint(out, d.FormatVars())

	case line == "memstat":
		fmt.Fprint(out, d.FormatMemstat())

	case line == "dump":
		fmt.Fprint(out, d.FormatDump())

	case line == "quit" || line == "q":
		return true

	default:
		fmt.Fprintf(out, "Unknown command: %s (type 'help')\n", line)
	}
	return false
}

func parseLineArg(line, prefix string) int {
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, prefix)))
	if err != nil {
		return 0
	}
	return n
}

const helpText = `Commands:
  break <line>   - set breakpoint at source line
  delete <line>  - remove breakpoint
  list           - list breakpoints
  step           - step one instruction
  next           - step one source line
  continue       - run until breakpoint or end
  regs           - show PC, stack depths, current line
  stack          - show stack contents
  vars           - show variable values
  memstat        - show GC statistics
  dump           - show full VM state snapshot
  quit           - exit debugger
`
