package memory

import (
	"context"
	"sync"

	"gagyebu/internal/storage"
)

// Store keeps values in a map. Keys are listed in insertion order, which is
// what browser storage does for string keys.
type Store struct {
	mu    sync.Mutex
	order []string
	items map[string]string
}

var _ storage.KV = (*Store)(nil)

func New() *Store {
	return &Store{items: make(map[string]string)}
}

// NewWith seeds the store, mostly for tests.
func NewWith(seed map[string]string) *Store {
	s := New()
	for k, v := range seed {
		s.order = append(s.order, k)
		s.items[k] = v
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; !ok {
		s.order = append(s.order, key)
	}
	s.items[key] = value
	return nil
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...), nil
}
