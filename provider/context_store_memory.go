package provider

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process ContextStore. Expired entries are dropped
// on Load. Capacity, when positive, bounds the number of entries; the
// oldest insertion is evicted first.
type MemoryStore[C any] struct {
	mu       sync.Mutex
	items    map[string]memEntry[C]
	order    []string
	capacity int
	now      func() time.Time
}

type memEntry[C any] struct {
	val       *C
	expiresAt time.Time
}

// NewMemoryStore creates an unbounded store.
func NewMemoryStore[C any]() *MemoryStore[C] {
	return NewBoundedMemoryStore[C](0)
}

// NewBoundedMemoryStore creates a store holding at most capacity entries.
func NewBoundedMemoryStore[C any](capacity int) *MemoryStore[C] {
	return &MemoryStore[C]{
		items:    make(map[string]memEntry[C]),
		capacity: capacity,
		now:      time.Now,
	}
}

func (s *MemoryStore[C]) Load(_ context.Context, key string) (*C, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.removeLocked(key)
		return nil, nil
	}
	return entry.val, nil
}

func (s *MemoryStore[C]) Save(_ context.Context, key string, val *C, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memEntry[C]{val: val}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	if _, exists := s.items[key]; !exists {
		s.order = append(s.order, key)
	}
	s.items[key] = entry
	for s.capacity > 0 && len(s.items) > s.capacity {
		s.removeLocked(s.order[0])
	}
	return nil
}

func (s *MemoryStore[C]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(key)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore[C]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *MemoryStore[C]) removeLocked(key string) {
	if _, ok := s.items[key]; !ok {
		return
	}
	delete(s.items, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

var _ ContextStore[any] = (*MemoryStore[any])(nil)
