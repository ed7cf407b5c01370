package pipeline

import (
	"context"
	"sync"

	"github.com/eyeward-labs/overseer/internal/store"
	"github.com/google/uuid"
)

// MemoryStore is an in-process SessionStore, grounded on the teacher's
// concurrent-map session manager idiom. It backs the package's unit tests;
// it does not survive a process restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*store.Session
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[uuid.UUID]*store.Session)}
}

// Put inserts or overwrites a session (used by tests to seed state).
func (m *MemoryStore) Put(s *store.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	cp.NextTools = append([]string(nil), s.NextTools...)
	m.sessions[s.ID] = &cp
}

// GetByID implements SessionStore.
func (m *MemoryStore) GetByID(_ context.Context, tenantID, sessionID uuid.UUID) (*store.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	cp := *s
	cp.NextTools = append([]string(nil), s.NextTools...)
	return &cp, nil
}

// AdvanceState implements SessionStore's optimistic-concurrency contract
// in memory: the write only applies if the stored next_tools still equals
// expectedNextTools.
func (m *MemoryStore) AdvanceState(_ context.Context, tenantID, sessionID uuid.UUID, expectedNextTools, newNextTools []string, newStatus, newBranch string, budgetCallsUsed int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok || s.TenantID != tenantID {
		return store.ErrNotFound
	}
	if !equalStrings(s.NextTools, expectedNextTools) {
		return store.ErrConcurrentModification
	}

	s.NextTools = append([]string(nil), newNextTools...)
	s.Status = newStatus
	s.LastBranch = newBranch
	s.BudgetCallsUsed = budgetCallsUsed
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
