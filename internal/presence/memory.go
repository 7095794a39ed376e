package presence

import (
	"context"
	"sync"
)

type Memory struct {
	mu    sync.RWMutex
	users map[string]string // userID -> connID
}

func NewMemory() *Memory {
	return &Memory{users: make(map[string]string)}
}

func (m *Memory) Register(_ context.Context, userID, connID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[userID] = connID
	return nil
}

func (m *Memory) Lookup(_ context.Context, userID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	connID, ok := m.users[userID]
	return connID, ok, nil
}

// Remove: линейный проход по всем записям.
func (m *Memory) Remove(_ context.Context, connID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for userID, c := range m.users {
		if c == connID {
			delete(m.users, userID)
		}
	}
	return nil
}

func (m *Memory) Online(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.users), nil
}

// Touch: записи в памяти умирают вместе с процессом, продлевать нечего.
func (m *Memory) Touch(context.Context, string) error { return nil }
