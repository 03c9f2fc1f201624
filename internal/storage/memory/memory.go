// Package memory is an in-process save store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/AaronLay10/pointclick/internal/save"
)

// Store keeps values in a map. Fail, when set, is returned by every write.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte

	Fail error
}

// New returns an empty store.
func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, save.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Fail != nil {
		return s.Fail
	}
	v := make([]byte, len(value))
	copy(v, value)
	s.values[key] = v
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Fail != nil {
		return s.Fail
	}
	delete(s.values, key)
	return nil
}

// Keys returns every stored key in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
