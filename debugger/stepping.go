package debugger

import "fmt"

// StepResult reports the outcome of a stepping command: the VM's pc and
// mapped line at the point it stopped, and whether it is still running.
type StepResult struct {
	PC      int
	Line    int
	Running bool
}

// StepInstruction executes exactly one instruction and reports the new pc
// and line, updating LastLine when the mapped line is non-zero.
func (d *Debugger) StepInstruction() StepResult {
	d.vm.EnsureRunning()
	if d.vm.Running() {
		d.vm.Step()
		line := d.currentLine()
		if line > 0 {
			d.lastLine = line
		}
	}
	return StepResult{PC: d.vm.PC(), Line: d.lastLine, Running: d.vm.Running()}
}

// StepLine advances until the line mapped to the current pc differs from
// the line at entry and is non-zero, or the VM halts.
func (d *Debugger) StepLine() StepResult {
	d.vm.EnsureRunning()
	startLine := d.currentLine()
	for d.vm.Running() {
		d.vm.Step()
		curLine := d.currentLine()
		if curLine != startLine && curLine > 0 {
			d.lastLine = curLine
			break
		}
	}
	return StepResult{PC: d.vm.PC(), Line: d.lastLine, Running: d.vm.Running()}
}

// ContinueResult reports why Continue stopped: either a breakpoint hit
// (Hit true, Line the breakpoint's line) or program completion.
type ContinueResult struct {
	Hit     bool
	Line    int
	PC      int
	Running bool
}

// Continue steps once unconditionally (so a breakpoint already at the
// current line does not re-fire immediately), then runs until a
// breakpoint line is reached or the VM halts.
func (d *Debugger) Continue() ContinueResult {
	d.vm.EnsureRunning()
	if d.vm.Running() {
		d.vm.Step()
	}
	for d.vm.Running() {
		line := d.currentLine()
		if line > 0 && d.isBreakpoint(line) && line != d.lastLine {
			d.lastLine = line
			return ContinueResult{Hit: true, Line: line, PC: d.vm.PC(), Running: true}
		}
		if line > 0 {
			d.lastLine = line
		}
		d.vm.Step()
	}
	return ContinueResult{Hit: false, PC: d.vm.PC(), Running: false}
}

// FormatRegs renders the regs inspection command.
func (d *Debugger) FormatRegs() string {
	return fmt.Sprintf("PC:  %d\nOperand depth: %d\nReturn depth: %d\nLine: %d\nRunning: %t\n",
		d.vm.PC(), len(d.vm.OperandStack()), len(d.vm.ReturnStack()), d.currentLine(), d.vm.Running())
}

// FormatStack renders the operand stack top-first with indices.
func (d *Debugger) FormatStack() string {
	stack := d.vm.OperandStack()
	if len(stack) == 0 {
		return "Stack is empty\n"
	}
	s := "Stack (top first):\n"
	for i := len(stack) - 1; i >= 0; i-- {
		s += fmt.Sprintf("  [%d] = %d\n", i, stack[i])
	}
	return s
}

// FormatVars renders every variable in symbol-table order with its slot
// and current memory value.
func (d *Debugger) FormatVars() string {
	if len(d.prog.Vars) == 0 {
		return "No variables\n"
	}
	mem := d.vm.Memory()
	s := "Variables:\n"
	for slot, name := range d.prog.Vars {
		s += fmt.Sprintf("  %s = %d (slot %d)\n", name, mem[slot], slot)
	}
	return s
}

// FormatDump renders the VM's full state snapshot (spec.md §4.2 "State
// dump"), as opposed to the single-field regs/stack/vars/memstat commands.
func (d *Debugger) FormatDump() string {
	return d.vm.Dump()
}

// FormatMemstat renders the heap statistics.
func (d *Debugger) FormatMemstat() string {
	heap := d.vm.Heap()
	status := "disabled"
	if heap.AutoGC {
		status = "enabled"
	}
	objects := heap.NumObjects()
	leaks := "no leaks detected"
	if objects > 0 {
		leaks = fmt.Sprintf("%d object(s) still live", objects)
	}
	return fmt.Sprintf("GC Objects: %d\nGC Threshold: %d\nAuto GC: %s\n%s\n",
		objects, heap.Threshold, status, leaks)
}
