// Package debugger drives a vm.VM one instruction at a time, resolving
// source lines against a codegen.Program's source map to provide
// line-granular breakpoints, step-over, and continue semantics.
//
// Grounded line-for-line on _examples/original_source/debugger_vm.c, with
// the interactive loop reworked in the style of
// _examples/informatter-nilan/cmd_repl.go but backed by
// github.com/chzyer/readline for line editing and history.
package debugger

import "fmt"

// MaxBreakpoints bounds the breakpoint set, matching
// original_source/debugger_vm.h's MAX_BREAKPOINTS.
const MaxBreakpoints = 32

// AddBreakpoint registers a breakpoint at the given source line. It
// rejects lines with no emitted code, duplicate lines, and a full set.
func (d *Debugger) AddBreakpoint(line int) error {
	if len(d.breakpoints) >= MaxBreakpoints {
		return fmt.Errorf("breakpoints full (max %d)", MaxBreakpoints)
	}
	for _, bp := range d.breakpoints {
		if bp == line {
			return fmt.Errorf("breakpoint already set at line %d", line)
		}
	}
	pc := d.prog.PCForLine(line)
	if pc < 0 {
		return fmt.Errorf("no code at line %d", line)
	}
	d.breakpoints = append(d.breakpoints, line)
	return nil
}

// RemoveBreakpoint removes the breakpoint at line, or reports that none
// was set there.
func (d *Debugger) RemoveBreakpoint(line int) error {
	for i, bp := range d.breakpoints {
		if bp == line {
			d.breakpoints = append(d.breakpoints[:i], d.breakpoints[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no breakpoint at line %d", line)
}

// Breakpoints returns the current breakpoint lines in the order added.
func (d *Debugger) Breakpoints() []int {
	return append([]int(nil), d.breakpoints...)
}

func (d *Debugger) isBreakpoint(line int) bool {
	for _, bp := range d.breakpoints {
		if bp == line {
			return true
		}
	}
	return false
}
