// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite and to simulate storage failures

package store

import (
	"context"
	"sort"
	"sync"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu    sync.RWMutex
	slots map[string]string     // keyed by slot key
	media map[string]*MediaItem // keyed by item ID
	err   error                 // returned by every operation when set
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		slots: make(map[string]string),
		media: make(map[string]*MediaItem),
	}
}

// FailWith makes every subsequent operation return err. Pass nil to recover.
func (m *MockStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetSlot returns the value stored under key.
func (m *MockStore) GetSlot(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return "", m.err
	}
	v, ok := m.slots[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// SetSlot stores value under key.
func (m *MockStore) SetSlot(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.slots[key] = value
	return nil
}

// DeleteSlot removes key.
func (m *MockStore) DeleteSlot(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	delete(m.slots, key)
	return nil
}

// HasSlot reports whether key holds a value, bypassing injected failures.
func (m *MockStore) HasSlot(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.slots[key]
	return ok
}

// PutMedia stores a copy of the item.
func (m *MockStore) PutMedia(ctx context.Context, item *MediaItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.media[item.ID] = copyMedia(item)
	return nil
}

// ListMedia returns copies of all items ordered by ID.
func (m *MockStore) ListMedia(ctx context.Context) ([]*MediaItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, m.err
	}

	items := make([]*MediaItem, 0, len(m.media))
	for _, item := range m.media {
		items = append(items, copyMedia(item))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// DeleteMedia removes an item by ID.
func (m *MockStore) DeleteMedia(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	if _, ok := m.media[id]; !ok {
		return ErrNotFound
	}
	delete(m.media, id)
	return nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}

func copyMedia(item *MediaItem) *MediaItem {
	c := *item
	if item.Tags != nil {
		c.Tags = append([]string(nil), item.Tags...)
	}
	return &c
}

// Compile-time interface checks
var (
	_ Store = (*MockStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
