// Package kv defines the key-value persistence boundary used by stores that
// keep a whole collection as one serialized blob.
package kv

import (
	"context"
	"sync"
)

// Store loads and saves opaque blobs by key.
type Store interface {
	// Load returns the blob for key. ok is false when the key is absent.
	Load(ctx context.Context, key string) (blob []byte, ok bool, err error)
	Save(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
}

// Memory is an in-process Store. It is used in development and tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), blob...), true, nil
}

func (m *Memory) Save(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), blob...)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
