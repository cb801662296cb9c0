// Package hostvars reaches the host platform's variable store, the slow
// authoritative tier behind the SQLite cache. Values are opaque bytes keyed
// per session.
package hostvars

import (
	"context"
	"sync"

	"github.com/larkspur-games/chronicle/internal/storage"
)

// Variable keys reconciled between the cache and the host store.
const (
	KeyWorldState = "chronicle_world_state"
	KeyNPCs       = "chronicle_npcs"
	KeyProfile    = "chronicle_character_profile"
)

// VarStore is the authoritative key-value tier.
type VarStore interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, error)
	Set(ctx context.Context, sessionID, key string, value []byte) error
}

// Memory is an in-process VarStore used in tests and cache-only deployments.
type Memory struct {
	mu     sync.Mutex
	values map[string]map[string][]byte
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]map[string][]byte)}
}

// Get returns the stored value or storage.ErrNotFound.
func (m *Memory) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.values[sessionID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	value, ok := session[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a copy of value.
func (m *Memory) Set(ctx context.Context, sessionID, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.values[sessionID]
	if !ok {
		session = make(map[string][]byte)
		m.values[sessionID] = session
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	session[key] = stored
	return nil
}
