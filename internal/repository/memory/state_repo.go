// Package memory keeps client state in process memory. Used in development
// and by tests; nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/vikrantan5/FitSphere-sub000/internal/repository"
)

type memoryStateRepository struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewStateRepository creates an empty in-memory store.
func NewStateRepository() repository.StateStore {
	return &memoryStateRepository{data: make(map[string]map[string][]byte)}
}

func (r *memoryStateRepository) Get(_ context.Context, sid, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[sid][key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (r *memoryStateRepository) Set(_ context.Context, sid, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ns, ok := r.data[sid]
	if !ok {
		ns = make(map[string][]byte)
		r.data[sid] = ns
	}
	v := make([]byte, len(value))
	copy(v, value)
	ns[key] = v
	return nil
}

func (r *memoryStateRepository) Delete(_ context.Context, sid string, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ns, ok := r.data[sid]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(ns, k)
	}
	if len(ns) == 0 {
		delete(r.data, sid)
	}
	return nil
}
