// Package manager multiplexes submitted programs through a pid-addressed
// lifecycle, composing the ast/codegen/vm/debugger subsystems the way
// _examples/original_source/program_manager.c composes them, but with the
// entry list owned by a mutex-guarded Go struct instead of a fixed C array
// and operational events logged through log/slog.
package manager

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"toyvm/ast"
	"toyvm/codegen"
	"toyvm/debugger"
	"toyvm/vm"
)

// State names one point in a program's lifecycle (spec.md §6).
type State int

const (
	Submitted State = iota
	Running
	Paused
	Finished
	Error
)

func (s State) String() string {
	switch s {
	case Submitted:
		return "SUBMITTED"
	case Running:
		return "RUNNING"
	case Paused:
		return "PAUSED"
	case Finished:
		return "FINISHED"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Entry is one submitted program's tracked state.
type Entry struct {
	PID   int
	Name  string
	State State

	prog *codegen.Program
	vm   *vm.VM
}

// Manager holds every submitted program entry, addressed by pid.
type Manager struct {
	mu      sync.Mutex
	entries []*Entry
	nextPID int

	log    *slog.Logger
	Stdout io.Writer
}

// New returns an empty Manager. log may be nil, in which case operations
// are logged to slog.Default().
func New(log *slog.Logger, stdout io.Writer) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{nextPID: 1, log: log, Stdout: stdout}
}

func (m *Manager) find(pid int) *Entry {
	for _, e := range m.entries {
		if e.PID == pid {
			return e
		}
	}
	return nil
}

// Submit compiles root under name and registers it SUBMITTED, returning
// its fresh pid.
func (m *Manager) Submit(name string, root *ast.Node) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prog, err := codegen.Compile(root)
	if err != nil {
		m.log.Error("codegen failed", "program", name, "error", err)
		return 0, fmt.Errorf("manager: codegen failed for %q: %w", name, err)
	}

	pid := m.nextPID
	m.nextPID++
	entry := &Entry{PID: pid, Name: name, State: Submitted, prog: prog}
	m.entries = append(m.entries, entry)

	m.log.Info("program submitted", "pid", pid, "program", name,
		"bytes", len(prog.Code), "vars", len(prog.Vars))
	return pid, nil
}

// Run executes pid to completion. pid must be SUBMITTED.
func (m *Manager) Run(pid int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.find(pid)
	if e == nil {
		return fmt.Errorf("manager: pid %d not found", pid)
	}
	if e.State != Submitted {
		return fmt.Errorf("manager: pid %d is %s (must be SUBMITTED)", pid, e.State)
	}

	e.vm = vm.NewWithOutput(e.prog, m.Stdout)
	e.State = Running
	m.log.Info("program running", "pid", pid)

	if err := e.vm.Run(); err != nil {
		e.State = Error
		m.log.Error("program errored", "pid", pid, "error", err)
		return fmt.Errorf("manager: pid %d: %w", pid, err)
	}
	e.State = Finished
	m.log.Info("program finished", "pid", pid)
	return nil
}

// Debug attaches an interactive debugger to pid. pid must be SUBMITTED,
// FINISHED, or ERROR.
func (m *Manager) Debug(pid int, out io.Writer) error {
	m.mu.Lock()
	e := m.find(pid)
	if e == nil {
		m.mu.Unlock()
		return fmt.Errorf("manager: pid %d not found", pid)
	}
	if e.State != Submitted && e.State != Finished && e.State != Error {
		m.mu.Unlock()
		return fmt.Errorf("manager: pid %d is %s", pid, e.State)
	}

	e.vm = vm.NewWithOutput(e.prog, m.Stdout)
	e.State = Paused
	m.log.Info("debug session starting", "pid", pid)
	dbg := debugger.New(e.vm, e.prog)
	m.mu.Unlock()

	if err := dbg.RunInteractive(out); err != nil {
		return fmt.Errorf("manager: debug session for pid %d: %w", pid, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !e.vm.Running() {
		e.State = Finished
	}
	m.log.Info("debug session ended", "pid", pid, "state", e.State.String())
	return nil
}

// Kill force-terminates pid, releasing its VM.
func (m *Manager) Kill(pid int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.find(pid)
	if e == nil {
		return fmt.Errorf("manager: pid %d not found", pid)
	}
	e.teardownVM()
	e.State = Finished
	m.log.Info("program killed", "pid", pid)
	return nil
}

// teardownVM releases e's VM first (stacks, memory, its code copy, any
// live heap objects), matching spec.md §5's VM-before-program destruction
// order. The bytecode Program itself stays on the Entry (entries are never
// removed from the manager), so Debug can still be invoked once the entry
// is FINISHED.
func (e *Entry) teardownVM() {
	if e.vm == nil {
		return
	}
	e.vm.Heap().Cleanup()
	e.vm = nil
}

// List returns every entry's pid/name/state snapshot in submission order.
func (m *Manager) List() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, Entry{PID: e.PID, Name: e.Name, State: e.State})
	}
	return out
}
