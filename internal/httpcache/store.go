package httpcache

import (
	"context"
	"sync"
	"time"
)

// Store is the backing storage for cached responses. The in-process
// MemoryStore is the default; a Redis-backed store exists for deployments
// where several instances should share one cache.
type Store interface {
	// Get returns the cached body for key, along with whether a fresh
	// entry existed.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores body under key for ttl.
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
	// Delete removes one entry.
	Delete(ctx context.Context, key string) error
	// Clear removes every entry.
	Clear(ctx context.Context) error
}

// memoryEntry is one cached response with its expiry deadline.
type memoryEntry struct {
	body      []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Expired entries are evicted lazily on
// the next lookup for their key; there is no background sweep.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time // overridable for tests
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the cached body for key if it has not expired.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return entry.body, true, nil
}

// Set stores body under key for ttl.
func (s *MemoryStore) Set(_ context.Context, key string, body []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{
		body:      body,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Delete removes one entry.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Clear removes every entry.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]memoryEntry)
	return nil
}
