package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// ErrSessionNotFound signals a revoked or expired session record.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists the mapping from token ID to user ID. A missing
// record means the session was logged out or expired; the middleware rejects
// such tokens even when the JWT itself is still valid.
type SessionStore interface {
	Create(ctx context.Context, tokenID, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, tokenID string) (string, error)
	Delete(ctx context.Context, tokenID string) error
}

type redisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore returns a Redis-backed SessionStore.
func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Create(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKeyPrefix+tokenID, userID, ttl).Err()
}

func (s *redisSessionStore) Lookup(ctx context.Context, tokenID string) (string, error) {
	userID, err := s.client.Get(ctx, sessionKeyPrefix+tokenID).Result()
	if err == redis.Nil {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, tokenID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+tokenID).Err()
}

// memorySessionStore backs tests and Redis-less development runs.
type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
}

// NewMemorySessionStore returns a process-local SessionStore.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[string]string)}
}

func (s *memorySessionStore) Create(_ context.Context, tokenID, userID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[tokenID] = userID
	return nil
}

func (s *memorySessionStore) Lookup(_ context.Context, tokenID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.sessions[tokenID]
	if !ok {
		return "", ErrSessionNotFound
	}
	return userID, nil
}

func (s *memorySessionStore) Delete(_ context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenID)
	return nil
}
