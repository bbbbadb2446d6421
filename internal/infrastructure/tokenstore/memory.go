package tokenstore

import (
	"context"
	"sync"
)

// Memory is an in-process token slot.
type Memory struct {
	mu     sync.Mutex
	token  string
	writes int
}

func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

func (m *Memory) Token(context.Context) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func (m *Memory) SetToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.writes++
	return nil
}

func (m *Memory) ClearToken(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.writes++
	return nil
}

// Writes reports how many times the slot was written or cleared.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
