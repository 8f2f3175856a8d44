package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(clock *fakeClock) *MemoryAttemptLimiter {
	l := NewMemoryAttemptLimiter(DefaultLoginMaxAttempts, DefaultLoginWindow)
	l.now = clock.Now
	return l
}

func mustBlocked(t *testing.T, l AttemptLimiter, id string) bool {
	t.Helper()
	blocked, err := l.IsBlocked(context.Background(), id)
	if err != nil {
		t.Fatalf("IsBlocked: %v", err)
	}
	return blocked
}

func TestMemoryAttemptLimiter_BlocksAtThreshold(t *testing.T) {
	ctx := context.Background()
	l := newTestLimiter(newFakeClock())

	for i := 0; i < DefaultLoginMaxAttempts; i++ {
		if mustBlocked(t, l, "10.0.0.1") {
			t.Fatalf("blocked after %d failures", i)
		}
		_ = l.RecordFailure(ctx, "10.0.0.1")
	}

	if !mustBlocked(t, l, "10.0.0.1") {
		t.Fatal("7th attempt should be blocked after 6 failures")
	}
	if mustBlocked(t, l, "10.0.0.2") {
		t.Fatal("other clients must not be affected")
	}
}

func TestMemoryAttemptLimiter_ResetClears(t *testing.T) {
	ctx := context.Background()
	l := newTestLimiter(newFakeClock())

	for i := 0; i < DefaultLoginMaxAttempts; i++ {
		_ = l.RecordFailure(ctx, "c")
	}
	_ = l.Reset(ctx, "c")

	if mustBlocked(t, l, "c") {
		t.Fatal("reset should clear the attempt log")
	}
	if _, ok := l.attempts["c"]; ok {
		t.Fatal("reset should remove the entry entirely")
	}
}

func TestMemoryAttemptLimiter_WindowExpiry(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	l := newTestLimiter(clock)

	for i := 0; i < DefaultLoginMaxAttempts-1; i++ {
		_ = l.RecordFailure(ctx, "c")
	}
	clock.Advance(DefaultLoginWindow)
	_ = l.RecordFailure(ctx, "c")

	if mustBlocked(t, l, "c") {
		t.Fatal("attempts older than the window must not count")
	}

	// Sliding, not fixed: the window trails the current time.
	for i := 0; i < DefaultLoginMaxAttempts-1; i++ {
		clock.Advance(time.Minute)
		_ = l.RecordFailure(ctx, "c")
	}
	if !mustBlocked(t, l, "c") {
		t.Fatal("six failures inside the trailing window should block")
	}

	clock.Advance(DefaultLoginWindow)
	if mustBlocked(t, l, "c") {
		t.Fatal("block should lift once every attempt ages out")
	}
	if _, ok := l.attempts["c"]; ok {
		t.Fatal("an emptied log should be pruned away")
	}
}

func TestMemoryAttemptLimiter_ConcurrentFailuresAllCount(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryAttemptLimiter(100, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.RecordFailure(ctx, "shared")
		}()
	}
	wg.Wait()

	if !mustBlocked(t, l, "shared") {
		t.Fatalf("lost updates: only %d attempts recorded", len(l.attempts["shared"]))
	}
}

func TestMemoryAttemptLimiter_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	l := newTestLimiter(newFakeClock())

	// Five failures each for clients 0-3, six for client 4.
	for i := 0; i < 20; i++ {
		_ = l.RecordFailure(ctx, fmt.Sprintf("client-%d", i%4))
	}
	for i := 0; i < DefaultLoginMaxAttempts; i++ {
		_ = l.RecordFailure(ctx, "client-4")
	}

	for i := 0; i < 4; i++ {
		if mustBlocked(t, l, fmt.Sprintf("client-%d", i)) {
			t.Errorf("client-%d blocked after only 5 failures", i)
		}
	}
	if !mustBlocked(t, l, "client-4") {
		t.Error("client-4 should be blocked")
	}
}

func TestMemoryAttemptLimiter_AttemptReservesUpToThreshold(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryAttemptLimiter(DefaultLoginMaxAttempts, time.Hour)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.Attempt(ctx, "burst")
			if err != nil {
				t.Errorf("Attempt: %v", err)
				return
			}
			if ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != DefaultLoginMaxAttempts {
		t.Fatalf("granted %d attempts, want %d", granted, DefaultLoginMaxAttempts)
	}
	if n := len(l.attempts["burst"]); n != DefaultLoginMaxAttempts {
		t.Fatalf("refused attempts must not be recorded: log has %d", n)
	}
	if !mustBlocked(t, l, "burst") {
		t.Fatal("client should be blocked once every slot is taken")
	}

	_ = l.Reset(ctx, "burst")
	if ok, _ := l.Attempt(ctx, "burst"); !ok {
		t.Fatal("reset should free the client")
	}
}
