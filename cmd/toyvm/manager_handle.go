package main

import (
	"fmt"
	"log/slog"
	"os"

	"toyvm/manager"
)

// openManager loads the shared pid table for one subcommand invocation.
func openManager() (*manager.Manager, error) {
	m := manager.New(slog.Default(), os.Stdout)
	return manager.LoadOrNew(stateFile, m)
}

// closeManager persists the pid table after a mutating operation.
func closeManager(m *manager.Manager) {
	if err := m.Save(stateFile); err != nil {
		fmt.Fprintf(os.Stderr, "toyvm: warning: could not save state: %v\n", err)
	}
}
