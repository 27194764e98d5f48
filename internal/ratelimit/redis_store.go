package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "login_attempts:"

// redisStore keeps attempt records in a Redis hash per identifier. The TTL
// passed to Put doubles as the storage-level reset window.
type redisStore struct {
	client *redis.Client
}

// NewRedisStore returns a Redis-backed Store.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, identifier string) (*Record, error) {
	fields, err := s.client.HGetAll(ctx, keyPrefix+identifier).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	record := &Record{}
	if raw, ok := fields["count"]; ok {
		record.Count, _ = strconv.Atoi(raw)
	}
	if raw, ok := fields["last_attempt"]; ok {
		record.LastAttempt = parseUnix(raw)
	}
	if raw, ok := fields["locked_until"]; ok {
		record.LockedUntil = parseUnix(raw)
	}
	return record, nil
}

func (s *redisStore) Put(ctx context.Context, identifier string, record Record, ttl time.Duration) error {
	key := keyPrefix + identifier
	fields := map[string]any{
		"count":        record.Count,
		"last_attempt": record.LastAttempt.Unix(),
		"locked_until": unixOrZero(record.LockedUntil),
	}
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, identifier string) error {
	return s.client.Del(ctx, keyPrefix+identifier).Err()
}

func parseUnix(raw string) time.Time {
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seconds == 0 {
		return time.Time{}
	}
	return time.Unix(seconds, 0)
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
