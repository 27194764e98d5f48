package ratelimit

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/reparolabs/repairshop-service/internal/config"
)

// Decision is the outcome of a limiter check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Remaining  int
}

// Limiter enforces a fixed-window failed-attempt counter with lockout per
// identifier. Store failures fail open: the limiter is a deterrent, and a
// broken Redis must not take logins down with it.
type Limiter struct {
	store       Store
	maxAttempts int
	resetWindow time.Duration
	lockout     time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewLimiter builds a limiter from config.
func NewLimiter(store Store, cfg config.RateLimitConfig, logger *zap.Logger) *Limiter {
	return &Limiter{
		store:       store,
		maxAttempts: cfg.MaxAttempts,
		resetWindow: cfg.ResetWindow(),
		lockout:     cfg.LockoutDuration(),
		logger:      logger,
		now:         time.Now,
	}
}

// Check evaluates whether an attempt for the identifier may proceed. Stale
// records (last attempt older than the reset window, or an elapsed lockout)
// are lazily cleared.
func (l *Limiter) Check(ctx context.Context, identifier string) Decision {
	identifier = Normalize(identifier)
	now := l.now()

	record, err := l.store.Get(ctx, identifier)
	if err != nil {
		l.logger.Warn("rate limit store unavailable; allowing attempt", zap.Error(err))
		return Decision{Allowed: true, Remaining: l.maxAttempts}
	}
	if record == nil || now.Sub(record.LastAttempt) > l.resetWindow {
		l.clear(ctx, identifier, record)
		return Decision{Allowed: true, Remaining: l.maxAttempts}
	}

	if !record.LockedUntil.IsZero() {
		if record.LockedUntil.After(now) {
			return Decision{Allowed: false, RetryAfter: record.LockedUntil.Sub(now)}
		}
		// Lockout served; start a fresh window.
		l.clear(ctx, identifier, record)
		return Decision{Allowed: true, Remaining: l.maxAttempts}
	}

	if record.Count >= l.maxAttempts {
		record.LockedUntil = now.Add(l.lockout)
		if err := l.store.Put(ctx, identifier, *record, l.resetWindow); err != nil {
			l.logger.Warn("rate limit store write failed", zap.Error(err))
		}
		return Decision{Allowed: false, RetryAfter: l.lockout}
	}

	return Decision{Allowed: true, Remaining: l.maxAttempts - record.Count}
}

// RecordAttempt updates the counter after a credential check. Success resets
// the record; failure increments it and arms the lockout at the maximum.
func (l *Limiter) RecordAttempt(ctx context.Context, identifier string, success bool) {
	identifier = Normalize(identifier)
	now := l.now()

	if success {
		if err := l.store.Delete(ctx, identifier); err != nil {
			l.logger.Warn("rate limit store delete failed", zap.Error(err))
		}
		return
	}

	record, err := l.store.Get(ctx, identifier)
	if err != nil {
		l.logger.Warn("rate limit store unavailable; skipping attempt record", zap.Error(err))
		return
	}
	if record == nil ||
		now.Sub(record.LastAttempt) > l.resetWindow ||
		(!record.LockedUntil.IsZero() && !record.LockedUntil.After(now)) {
		record = &Record{}
	}

	record.Count++
	record.LastAttempt = now
	if record.Count >= l.maxAttempts {
		record.LockedUntil = now.Add(l.lockout)
	}

	if err := l.store.Put(ctx, identifier, *record, l.resetWindow); err != nil {
		l.logger.Warn("rate limit store write failed", zap.Error(err))
	}
}

// Remaining returns how many attempts are left before lockout, floored at 0.
func (l *Limiter) Remaining(ctx context.Context, identifier string) int {
	identifier = Normalize(identifier)

	record, err := l.store.Get(ctx, identifier)
	if err != nil || record == nil {
		return l.maxAttempts
	}
	if l.now().Sub(record.LastAttempt) > l.resetWindow {
		return l.maxAttempts
	}
	remaining := l.maxAttempts - record.Count
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (l *Limiter) clear(ctx context.Context, identifier string, record *Record) {
	if record == nil {
		return
	}
	if err := l.store.Delete(ctx, identifier); err != nil {
		l.logger.Warn("rate limit store delete failed", zap.Error(err))
	}
}

// Normalize canonicalizes an identifier the same way login emails are
// normalized.
func Normalize(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}
