package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Record tracks login attempts for a single identifier. A zero LockedUntil
// means no lockout is recorded.
type Record struct {
	Count       int
	LastAttempt time.Time
	LockedUntil time.Time
}

// Store persists attempt records keyed by normalized identifier. Get returns
// (nil, nil) when no record exists.
type Store interface {
	Get(ctx context.Context, identifier string) (*Record, error)
	Put(ctx context.Context, identifier string, record Record, ttl time.Duration) error
	Delete(ctx context.Context, identifier string) error
}

// memoryStore is a process-local Store for tests and single-node deployments
// running without Redis.
type memoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore returns an in-memory Store. TTLs are not enforced; the
// limiter's reset-window check makes stale records harmless.
func NewMemoryStore() Store {
	return &memoryStore{records: make(map[string]Record)}
}

func (s *memoryStore) Get(_ context.Context, identifier string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[identifier]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *memoryStore) Put(_ context.Context, identifier string, record Record, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[identifier] = record
	return nil
}

func (s *memoryStore) Delete(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, identifier)
	return nil
}
