package cachedb

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dustsweep/dustnode/internal/pkg/model"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is the in-process model.ICache, used when no redis or database is
// configured and throughout the tests.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

func (m *Memory) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{value: raw, expiresAt: time.Now().Add(expiration)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(ctx context.Context, key string, dst interface{}) error {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && !entry.expiresAt.After(time.Now()) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return model.ErrCacheMiss
	}
	return json.Unmarshal(entry.value, dst)
}
