package state

import (
	"context"
	"sync"
)

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]State
}

// NewMemoryManager constructs an in-memory Manager. It is the default
// backend; state does not survive restarts.
func NewMemoryManager() Manager {
	return &memoryManager{sessions: make(map[int64]State)}
}

// State returns the stored state or StateIdle when the user has none.
func (m *memoryManager) State(_ context.Context, userID int64) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st, ok := m.sessions[userID]; ok {
		return st, nil
	}
	return StateIdle, nil
}

// Set transitions the user to the given state.
func (m *memoryManager) Set(_ context.Context, userID int64, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st == StateIdle {
		delete(m.sessions, userID)
		return nil
	}
	m.sessions[userID] = st
	return nil
}

// Clear resets the user to StateIdle.
func (m *memoryManager) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}
