package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value   []byte
	expires time.Time
}

// MemoryStore keeps values in process memory. It stands in for an external
// store in tests and single-process runs.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem), now: now}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if !item.expires.IsZero() && !m.now().Before(item.expires) {
		delete(m.items, key)
		return nil, false, nil
	}
	return append([]byte(nil), item.value...), true, nil
}

// Set stores value under key. A ttl <= 0 never expires.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expires = m.now().Add(ttl)
	}
	m.items[key] = item
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
