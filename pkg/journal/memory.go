package journal

import (
	"context"
	"sync"
)

// MemoryStore keeps the most recent entries in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	entries  []Entry
}

// NewMemoryStore creates a store holding at most capacity entries. A
// non-positive capacity keeps 1000.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryStore{capacity: capacity}
}

// Record implements Sink.
func (s *MemoryStore) Record(_ context.Context, entry Entry) error {
	entry = Prepare(entry)
	entry.CreatedObjects = append([]string(nil), entry.CreatedObjects...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if over := len(s.entries) - s.capacity; over > 0 {
		s.entries = append([]Entry(nil), s.entries[over:]...)
	}
	return nil
}

// Recent implements Store.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.entries)
	if limit > n {
		limit = n
	}
	out := make([]Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

// Close implements Sink.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
