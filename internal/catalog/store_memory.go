package catalog

import (
	"context"
	"slices"
	"sync"
)

// MemStore keeps products in insertion order for the lifetime of the process.
type MemStore struct {
	mu    sync.RWMutex
	items []Product
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) Append(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, p)
}

func (s *MemStore) Find(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, false
	}
	return s.items[i], true
}

// Snapshot returns an ordered copy that callers may filter or slice freely.
func (s *MemStore) Snapshot() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, len(s.items))
	copy(out, s.items)
	return out
}

func (s *MemStore) Update(id string, fn func(Product) Product) (Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, false
	}

	updated := fn(s.items[i])
	updated.ID = id
	s.replaceAt(i, updated)
	return updated, true
}

func (s *MemStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeAt(s.indexOf(id))
}

func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// indexOf, removeAt and replaceAt expect s.mu to be held. indexOf returns -1
// when id is absent; the index helpers report false when i is out of range.
func (s *MemStore) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(p Product) bool { return p.ID == id })
}

func (s *MemStore) removeAt(i int) bool {
	if i < 0 || i >= len(s.items) {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

func (s *MemStore) replaceAt(i int, p Product) bool {
	if i < 0 || i >= len(s.items) {
		return false
	}
	s.items[i] = p
	return true
}
