package cache

import (
	"context"
	"sync"
	"time"
)

type item struct {
	value      []byte
	expiration time.Time
}

// MemoryStore is an in-process table/key value store with per-item expiry.
// It is used when no database path is configured.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string]map[string]*item
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates a store reading the current time from now.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		tables: make(map[string]map[string]*item),
		now:    now,
	}
}

// Get returns the value stored under table/key unless it has expired.
func (s *MemoryStore) Get(_ context.Context, table, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, found := s.tables[table]
	if !found {
		return nil, false, nil
	}
	it, found := t[key]
	if !found {
		return nil, false, nil
	}
	if !s.now().Before(it.expiration) {
		delete(t, key)
		return nil, false, nil
	}

	value := make([]byte, len(it.value))
	copy(value, it.value)
	return value, true, nil
}

// Set stores value under table/key for ttl, replacing any previous value.
func (s *MemoryStore) Set(_ context.Context, table, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, found := s.tables[table]
	if !found {
		t = make(map[string]*item)
		s.tables[table] = t
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	t[key] = &item{
		value:      stored,
		expiration: s.now().Add(ttl),
	}
	return nil
}

// PurgeExpired drops every expired item and reports how many were removed.
func (s *MemoryStore) PurgeExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var purged int64
	for _, t := range s.tables {
		for key, it := range t {
			if !now.Before(it.expiration) {
				delete(t, key)
				purged++
			}
		}
	}
	return purged, nil
}
