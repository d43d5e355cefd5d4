package blob

import (
	"context"
	"strings"
	"sync"

	"jobboard/pkg/platform/sentinel"
)

const memoryScheme = "memory://"

// MemoryStore keeps objects in a map. Used for local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]Object)}
}

func (s *MemoryStore) Upload(_ context.Context, obj Object) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := obj
	stored.Body = append([]byte(nil), obj.Body...)
	s.objects[obj.Key] = stored
	return memoryScheme + obj.Key, nil
}

func (s *MemoryStore) Delete(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, memoryScheme)
	if !ok {
		return sentinel.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[key]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.objects, key)
	return nil
}

// Get returns the object stored at url.
func (s *MemoryStore) Get(url string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[strings.TrimPrefix(url, memoryScheme)]
	return obj, ok
}

// Len reports how many objects are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
