package session

import (
	"fmt"
	"sync"
)

// MemoryStore keeps the collection in memory. It backs tests and
// ephemeral runs where nothing should touch disk.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  []Session
	artifacts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{artifacts: make(map[string][]byte)}
}

func (m *MemoryStore) Load() ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Session, len(m.sessions))
	copy(out, m.sessions)
	return out, nil
}

func (m *MemoryStore) Save(sessions []Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make([]Session, len(sessions))
	copy(m.sessions, sessions)
	return nil
}

func (m *MemoryStore) WriteArtifact(id string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := make([]byte, len(data))
	copy(b, data)
	m.artifacts[id] = b
	return nil
}

func (m *MemoryStore) ReadArtifact(id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.artifacts[id]
	if !ok {
		return nil, fmt.Errorf("no artifact for %s", id)
	}
	return b, nil
}

func (m *MemoryStore) RemoveArtifact(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.artifacts, id)
	return nil
}
