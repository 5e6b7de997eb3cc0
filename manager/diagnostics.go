package manager

import (
	"fmt"

	"toyvm/vm"
)

// Memstat reports heap and stack statistics for pid's VM.
func (m *Manager) Memstat(pid int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.find(pid)
	if e == nil {
		return "", fmt.Errorf("manager: pid %d not found", pid)
	}
	if e.vm == nil {
		return "", fmt.Errorf("manager: pid %d has no VM instance", pid)
	}

	heap := e.vm.Heap()
	status := "disabled"
	if heap.AutoGC {
		status = "enabled"
	}
	return fmt.Sprintf(
		"=== Memory Stats for PID %d ===\nGC Objects:    %d\nGC Threshold:  %d\nAuto GC:       %s\nStack Depth:   %d\nMemory Slots:  %d used\n",
		pid, heap.NumObjects(), heap.Threshold, status, len(e.vm.OperandStack()), len(e.prog.Vars),
	), nil
}

// GC forces a collection pass on pid's heap.
func (m *Manager) GC(pid int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.find(pid)
	if e == nil {
		return 0, fmt.Errorf("manager: pid %d not found", pid)
	}
	if e.vm == nil {
		return 0, fmt.Errorf("manager: pid %d has no VM instance", pid)
	}

	freed := e.vm.Heap().Collect()
	m.log.Info("gc forced", "pid", pid, "freed", freed)
	return freed, nil
}

// Leaks reports live heap objects for pid, capped at the first 10 with a
// "... and N more" summary, matching
// _examples/original_source/program_manager.c's pm_leaks.
func (m *Manager) Leaks(pid int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.find(pid)
	if e == nil {
		return "", fmt.Errorf("manager: pid %d not found", pid)
	}
	if e.vm == nil {
		return "", fmt.Errorf("manager: pid %d has no VM instance", pid)
	}

	heap := e.vm.Heap()
	total := heap.NumObjects()
	if total == 0 {
		return fmt.Sprintf("PID %d: No leaks detected (0 objects on heap)\n", pid), nil
	}

	s := fmt.Sprintf("PID %d: %d objects still on heap\n", pid, total)
	count := 0
	heap.Walk(func(obj *vm.Object) {
		if count >= 10 {
			return
		}
		s += fmt.Sprintf("  [%d] type=%s marked=%t\n", count, obj.Tag, obj.Marked)
		count++
	})
	if total > 10 {
		s += fmt.Sprintf("  ... and %d more\n", total-10)
	}
	return s, nil
}
