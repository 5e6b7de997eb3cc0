package manager

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"toyvm/codegen"
)

// storedEntry is the on-disk form of an Entry: the VM itself never
// persists (spec.md §5 ties VM lifetime to one run/debug invocation), but
// the compiled bytecode and lifecycle state do, so that cmd/toyvm's
// one-process-per-subcommand invocations share a pid table across calls.
type storedEntry struct {
	PID      int    `json:"pid"`
	Name     string `json:"name"`
	State    string `json:"state"`
	Bytecode string `json:"bytecode"` // base64 of codegen.Program.Encode()
}

type storeFile struct {
	NextPID int           `json:"next_pid"`
	Entries []storedEntry `json:"entries"`
}

func stateFromString(s string) State {
	switch s {
	case "SUBMITTED":
		return Submitted
	case "RUNNING":
		return Running
	case "PAUSED":
		return Paused
	case "FINISHED":
		return Finished
	case "ERROR":
		return Error
	default:
		return Submitted
	}
}

// Save serializes the manager's pid table to path using the bytecode wire
// format from spec.md §6 (codegen.Program.Encode), base64-wrapped for a
// plain JSON container.
func (m *Manager) Save(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sf := storeFile{NextPID: m.nextPID}
	for _, e := range m.entries {
		sf.Entries = append(sf.Entries, storedEntry{
			PID:      e.PID,
			Name:     e.Name,
			State:    e.State.String(),
			Bytecode: base64.StdEncoding.EncodeToString(e.prog.Encode()),
		})
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return fmt.Errorf("manager: encoding state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("manager: writing state file %q: %w", path, err)
	}
	return nil
}

// LoadOrNew reads path if it exists, or returns a fresh Manager otherwise.
// A missing file is treated as an empty manager, matching the CLI's first
// invocation.
func LoadOrNew(path string, m *Manager) (*Manager, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("manager: reading state file %q: %w", path, err)
	}

	var sf storeFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("manager: decoding state file %q: %w", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextPID = sf.NextPID
	for _, se := range sf.Entries {
		raw, err := base64.StdEncoding.DecodeString(se.Bytecode)
		if err != nil {
			return nil, fmt.Errorf("manager: decoding bytecode for pid %d: %w", se.PID, err)
		}
		prog, err := codegen.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("manager: decoding program for pid %d: %w", se.PID, err)
		}
		m.entries = append(m.entries, &Entry{
			PID:   se.PID,
			Name:  se.Name,
			State: stateFromString(se.State),
			prog:  prog,
		})
	}
	return m, nil
}
