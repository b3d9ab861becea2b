package ngio

import (
	"context"
	"sync"
)

// storedNull mirrors the browser-storage artifact of persisting a null
// session id: readers must treat it the same as an absent value.
const storedNull = "null"

// Storage is the boundary contract with persistent key-value storage used to
// remember a session id across restarts. Implementations must be safe for
// concurrent use.
type Storage interface {
	// GetItem returns the stored value, or an empty string when the key is
	// absent.
	GetItem(ctx context.Context, key string) (string, error)

	// SetItem stores the value under the key, replacing any prior value.
	SetItem(ctx context.Context, key, value string) error
}

// MemoryStorage defines a public type used by ngio APIs.
//
// MemoryStorage instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStorage describes the newmemorystorage operation and its observable behavior.
//
// NewMemoryStorage does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		items: map[string]string{},
	}
}

// GetItem describes the getitem operation and its observable behavior.
//
// GetItem may return an error when input validation, dependency calls, or security checks fail.
// GetItem does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *MemoryStorage) GetItem(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[key], nil
}

// SetItem describes the setitem operation and its observable behavior.
//
// SetItem may return an error when input validation, dependency calls, or security checks fail.
// SetItem does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *MemoryStorage) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}
