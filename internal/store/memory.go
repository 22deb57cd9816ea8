package store

import (
	"sync"

	"github.com/i474232898/weather-cache/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory map of cache entries keyed by
// location. It never evicts on its own; entries are replaced or cleared.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key exactly as supplied
	data map[string]weather.CacheEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]weather.CacheEntry),
	}
}

// Load returns the entry stored for key.
func (s *MemoryStore) Load(key string) (weather.CacheEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[key]
	return entry, ok
}

// Save replaces the entry for key.
func (s *MemoryStore) Save(key string, entry weather.CacheEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = entry
}

// Clear removes every entry.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.data)
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

// Keys returns the stored location keys in no particular order.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
