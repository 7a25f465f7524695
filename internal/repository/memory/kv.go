// Package memory is the in-process KV backend, used for tests and for
// single-instance deployments that re-import toilets on start.
package memory

import (
	"context"
	"sync"

	"nearbot/internal/repository"
)

// KV stores blobs in a map guarded by a RWMutex.
//
// Go Learning Note — sync.RWMutex:
// The read path (every location message) vastly outnumbers writes (the bulk
// import), so readers take RLock and proceed in parallel while Set takes the
// exclusive Lock.
type KV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewKV() *KV {
	return &KV{
		values: make(map[string][]byte),
	}
}

// Get returns a copy of the stored value or repository.ErrNotFound.
func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	v, exists := k.values[key]
	if !exists {
		return nil, repository.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores a copy of value, replacing any previous one.
func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	k.values[key] = stored
	return nil
}

func (k *KV) Close() error { return nil }
