package fetch

import (
	"context"
	"fmt"
	"sync"
)

// Memory serves repository files from a map. It is used for fixtures and
// for tests of code that consumes a [Fetcher].
type Memory struct {
	mu    sync.Mutex
	files map[string][]byte
	calls map[string]int
}

// NewMemory creates a fetcher serving files.
func NewMemory(files map[string][]byte) *Memory {
	return &Memory{files: files, calls: make(map[string]int)}
}

// Location returns "memory".
func (m *Memory) Location() string { return "memory" }

// Fetch returns the named file or [ErrNotFound].
func (m *Memory) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, nil
}

// Calls returns how many times name was fetched.
func (m *Memory) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

var _ Fetcher = (*Memory)(nil)
