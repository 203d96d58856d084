package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/DoyleJ11/decrypto-backend/internal/engine"
)

// Memory keeps games in a map. Values are cloned on the way in and out so
// callers never share slices with the store.
type Memory struct {
	games map[string]engine.Game
	mu    sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{
		games: make(map[string]engine.Game),
	}
}

func (m *Memory) Load(_ context.Context, id string) (engine.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return engine.Game{}, ErrNotFound
	}
	return g.Clone(), nil
}

func (m *Memory) Save(_ context.Context, g engine.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g.Clone()
	return nil
}

func (m *Memory) List(_ context.Context) ([]Summary, error) {
	m.mu.RLock()
	out := make([]Summary, 0, len(m.games))
	for _, g := range m.games {
		out = append(out, summarize(g))
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return ErrNotFound
	}
	delete(m.games, id)
	return nil
}
