package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/reparolabs/repairshop-service/internal/config"
)

func testConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		MaxAttempts:        5,
		ResetWindowSeconds: 3600,
		LockoutSeconds:     900,
	}
}

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newTestLimiter(t *testing.T, store Store) (*Limiter, *fakeClock) {
	t.Helper()
	limiter := NewLimiter(store, testConfig(), zap.NewNop())
	clock := &fakeClock{current: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	limiter.now = clock.Now
	return limiter, clock
}

func newRedisTestStore(t *testing.T) Store {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client)
}

func TestLimiter_AllowsUnknownIdentifier(t *testing.T) {
	limiter, _ := newTestLimiter(t, NewMemoryStore())

	decision := limiter.Check(context.Background(), "user@test.com")
	if !decision.Allowed {
		t.Fatalf("expected fresh identifier to be allowed")
	}
	if decision.Remaining != 5 {
		t.Fatalf("expected 5 remaining, got %d", decision.Remaining)
	}
}

func TestLimiter_LockoutAfterMaxFailures(t *testing.T) {
	stores := map[string]func(*testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"redis":  newRedisTestStore,
	}
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			limiter, _ := newTestLimiter(t, newStore(t))
			ctx := context.Background()

			for i := 0; i < 5; i++ {
				decision := limiter.Check(ctx, "user@test.com")
				if !decision.Allowed {
					t.Fatalf("attempt %d: expected allowed", i+1)
				}
				limiter.RecordAttempt(ctx, "user@test.com", false)
			}

			decision := limiter.Check(ctx, "user@test.com")
			if decision.Allowed {
				t.Fatalf("expected lockout after 5 failures")
			}
			if decision.RetryAfter <= 0 {
				t.Fatalf("expected positive retry-after, got %v", decision.RetryAfter)
			}
		})
	}
}

func TestLimiter_LockoutElapses(t *testing.T) {
	limiter, clock := newTestLimiter(t, NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		limiter.RecordAttempt(ctx, "user@test.com", false)
	}
	if decision := limiter.Check(ctx, "user@test.com"); decision.Allowed {
		t.Fatalf("expected denial while locked")
	}

	clock.Advance(16 * time.Minute)

	decision := limiter.Check(ctx, "user@test.com")
	if !decision.Allowed {
		t.Fatalf("expected allowed after lockout elapsed, retry-after %v", decision.RetryAfter)
	}
	if decision.Remaining != 5 {
		t.Fatalf("expected counter reset after lockout, remaining %d", decision.Remaining)
	}
}

func TestLimiter_SuccessResetsCounter(t *testing.T) {
	limiter, _ := newTestLimiter(t, NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		limiter.RecordAttempt(ctx, "user@test.com", false)
	}
	if got := limiter.Remaining(ctx, "user@test.com"); got != 1 {
		t.Fatalf("expected 1 remaining before success, got %d", got)
	}

	limiter.RecordAttempt(ctx, "user@test.com", true)

	if got := limiter.Remaining(ctx, "user@test.com"); got != 5 {
		t.Fatalf("expected counter reset after success, got %d", got)
	}
}

func TestLimiter_ResetWindowClearsStaleRecord(t *testing.T) {
	limiter, clock := newTestLimiter(t, NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		limiter.RecordAttempt(ctx, "user@test.com", false)
	}

	clock.Advance(61 * time.Minute)

	decision := limiter.Check(ctx, "user@test.com")
	if !decision.Allowed {
		t.Fatalf("expected allowed after reset window elapsed")
	}
	if got := limiter.Remaining(ctx, "user@test.com"); got != 5 {
		t.Fatalf("expected full allowance after reset window, got %d", got)
	}
}

func TestLimiter_NormalizesIdentifier(t *testing.T) {
	limiter, _ := newTestLimiter(t, NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		limiter.RecordAttempt(ctx, "  USER@test.com ", false)
	}

	if decision := limiter.Check(ctx, "user@test.com"); decision.Allowed {
		t.Fatalf("expected normalized identifiers to share a record")
	}
}

func TestLimiter_IdentifiersAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		limiter.RecordAttempt(ctx, "locked@test.com", false)
	}

	if decision := limiter.Check(ctx, "other@test.com"); !decision.Allowed {
		t.Fatalf("expected unrelated identifier to be unaffected")
	}
}

func TestLimiter_FailsOpenOnStoreError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	limiter, _ := newTestLimiter(t, NewRedisStore(client))
	server.Close()

	decision := limiter.Check(context.Background(), "user@test.com")
	if !decision.Allowed {
		t.Fatalf("expected fail-open when store is unreachable")
	}
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store := newRedisTestStore(t)
	ctx := context.Background()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	record := Record{Count: 3, LastAttempt: now, LockedUntil: now.Add(15 * time.Minute)}
	if err := store.Put(ctx, "user@test.com", record, time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "user@test.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("expected record")
	}
	if got.Count != 3 || !got.LastAttempt.Equal(now) || !got.LockedUntil.Equal(now.Add(15*time.Minute)) {
		t.Fatalf("unexpected record: %+v", got)
	}

	if err := store.Delete(ctx, "user@test.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = store.Get(ctx, "user@test.com")
	if err != nil || got != nil {
		t.Fatalf("expected record gone, got %+v err %v", got, err)
	}
}
