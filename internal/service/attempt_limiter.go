package service

import (
	"context"
	"sync"
	"time"
)

// Default login limiter settings.
const (
	DefaultLoginWindow      = 600 * time.Second
	DefaultLoginMaxAttempts = 6
)

// AttemptLimiter tracks failed login attempts per client inside a trailing window.
// It only advises; rejecting the login is the caller's job.
type AttemptLimiter interface {
	// RecordFailure appends the current time to the client's attempt log.
	RecordFailure(ctx context.Context, clientID string) error
	// IsBlocked prunes attempts older than the window and reports whether the
	// remaining count has reached the threshold.
	IsBlocked(ctx context.Context, clientID string) (bool, error)
	// Reset forgets the client entirely. Called after a successful login.
	Reset(ctx context.Context, clientID string) error
	// Attempt prunes, compares and, when the client is under the threshold, records an
	// attempt in one atomic step. It reports false without recording when the client is
	// blocked. The recorded attempt stands as a failure unless Reset follows.
	Attempt(ctx context.Context, clientID string) (bool, error)
}

// MemoryAttemptLimiter is a single-process sliding window limiter.
// State is lost on restart and not shared between replicas; use RedisAttemptLimiter for that.
type MemoryAttemptLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	window   time.Duration
	max      int
	now      func() time.Time
}

// NewMemoryAttemptLimiter creates a limiter allowing fewer than max failures per window.
func NewMemoryAttemptLimiter(max int, window time.Duration) *MemoryAttemptLimiter {
	return &MemoryAttemptLimiter{
		attempts: make(map[string][]time.Time),
		window:   window,
		max:      max,
		now:      time.Now,
	}
}

// RecordFailure implements AttemptLimiter.
func (l *MemoryAttemptLimiter) RecordFailure(_ context.Context, clientID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.attempts[clientID] = append(l.pruneLocked(clientID), l.now())
	return nil
}

// IsBlocked implements AttemptLimiter.
func (l *MemoryAttemptLimiter) IsBlocked(_ context.Context, clientID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.pruneLocked(clientID)) >= l.max, nil
}

// Attempt implements AttemptLimiter.
func (l *MemoryAttemptLimiter) Attempt(_ context.Context, clientID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	valid := l.pruneLocked(clientID)
	if len(valid) >= l.max {
		return false, nil
	}
	l.attempts[clientID] = append(valid, l.now())
	return true, nil
}

// Reset implements AttemptLimiter.
func (l *MemoryAttemptLimiter) Reset(_ context.Context, clientID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.attempts, clientID)
	return nil
}

// pruneLocked drops expired attempts for clientID and returns the survivors.
// l.mu must be held.
func (l *MemoryAttemptLimiter) pruneLocked(clientID string) []time.Time {
	attempts, ok := l.attempts[clientID]
	if !ok {
		return nil
	}

	now := l.now()
	valid := attempts[:0]
	for _, ts := range attempts {
		if now.Sub(ts) < l.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) == 0 {
		delete(l.attempts, clientID)
		return nil
	}
	l.attempts[clientID] = valid
	return valid
}
