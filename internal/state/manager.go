// Package state keeps the simulation state between runs and, optionally,
// between process restarts.
package state

import (
	"fmt"
	"sync"

	"FinSim/internal/catalog"
	"FinSim/internal/model"
)

// Manager guards the current simulation state. With a file path set, every
// commit is written to disk so asset prices and balances survive restarts.
type Manager struct {
	mu       sync.Mutex
	state    model.SimulationState
	filePath string
}

// NewManager loads state from filePath, or seeds it from the catalog when the
// file is missing, empty or filePath is "".
func NewManager(filePath string) (*Manager, error) {
	m := &Manager{filePath: filePath}
	if filePath != "" {
		st, err := LoadState(filePath)
		if err != nil {
			return nil, err
		}
		if st != nil && len(st.Assets) > 0 && len(st.Users) > 0 {
			m.state = *st
			return m, nil
		}
	}
	m.state = Fresh()
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Fresh returns the opening state built from the catalog.
func Fresh() model.SimulationState {
	return model.SimulationState{
		Assets: catalog.Assets(),
		Users:  catalog.Users(),
	}
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() model.SimulationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Update applies fn to a copy of the current state and commits the result
// when fn succeeds. The lock is held while fn runs, so concurrent updates see
// each other's results in turn. The in-memory value is updated even when
// writing the file fails; that failure is returned wrapped.
func (m *Manager) Update(fn func(cur model.SimulationState) (model.SimulationState, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := fn(m.state.Clone())
	if err != nil {
		return err
	}
	m.state = next.Clone()
	if err := m.save(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (m *Manager) save() error {
	if m.filePath == "" {
		return nil
	}
	return SaveState(m.filePath, &m.state)
}
