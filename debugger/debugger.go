package debugger

import (
	"toyvm/codegen"
	"toyvm/vm"
)

// Debugger owns only its own state (breakpoints, last-line); the VM and
// its producing program are borrowed, per spec.md §4.3.
type Debugger struct {
	vm   *vm.VM
	prog *codegen.Program

	breakpoints []int
	lastLine    int
}

// New attaches a debugger to v, which must have been created from prog.
func New(v *vm.VM, prog *codegen.Program) *Debugger {
	return &Debugger{vm: v, prog: prog}
}

// LastLine returns the last line the debugger stopped on.
func (d *Debugger) LastLine() int { return d.lastLine }

// VM exposes the borrowed VM for inspection commands that need direct
// access (regs, stack, memstat).
func (d *Debugger) VM() *vm.VM { return d.vm }

// Program exposes the borrowed bytecode program.
func (d *Debugger) Program() *codegen.Program { return d.prog }

// currentLine returns the source line mapped to the VM's current pc.
func (d *Debugger) currentLine() int {
	return d.prog.LineForPC(d.vm.PC())
}
