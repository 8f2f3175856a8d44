package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/cybertest-backend/internal/model"
)

func openTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	if os.Getenv("CYBERTEST_INTEGRATION") != "1" {
		t.Skip("set CYBERTEST_INTEGRATION=1 to run integration tests")
	}

	url := os.Getenv("CYBERTEST_TEST_REDIS_URL")
	if strings.TrimSpace(url) == "" {
		url = "redis://localhost:6379/15"
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		t.Fatalf("ping redis: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRedisSessionStore_RedisIntegration(t *testing.T) {
	rdb := openTestRedis(t)
	store := NewRedisSessionStore(rdb, time.Minute)
	ctx := context.Background()

	token := "itest-" + uuid.NewString()
	t.Cleanup(func() { _ = store.Delete(context.Background(), token) })

	started := time.Now().UTC().Truncate(time.Millisecond)
	if err := store.Save(ctx, &model.ExamSession{Token: token, StartedAt: started, TotalQuestions: 3}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Concurrent submissions of the same question must count once.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.MarkAnswered(ctx, token, "q1"); err != nil {
				t.Errorf("mark: %v", err)
			}
		}()
	}
	wg.Wait()

	sess, err := store.MarkAnswered(ctx, token, "q2")
	if err != nil {
		t.Fatalf("mark q2: %v", err)
	}
	if sess.AnsweredCount != 2 || sess.TotalQuestions != 3 || !sess.StartedAt.Equal(started) {
		t.Fatalf("session = %+v", sess)
	}

	if err := store.Delete(ctx, token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
	if _, err := store.MarkAnswered(ctx, token, "q3"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("mark after delete: %v", err)
	}
}

func TestRedisAttemptLimiter_RedisIntegration(t *testing.T) {
	rdb := openTestRedis(t)
	limiter := NewRedisAttemptLimiter(rdb, 6, time.Minute)
	ctx := context.Background()

	client := "itest-" + uuid.NewString()
	t.Cleanup(func() { _ = limiter.Reset(context.Background(), client) })

	for i := 0; i < 5; i++ {
		if err := limiter.RecordFailure(ctx, client); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if blocked, err := limiter.IsBlocked(ctx, client); err != nil || blocked {
		t.Fatalf("after 5 failures: blocked=%v err=%v", blocked, err)
	}

	if err := limiter.RecordFailure(ctx, client); err != nil {
		t.Fatalf("record: %v", err)
	}
	if blocked, err := limiter.IsBlocked(ctx, client); err != nil || !blocked {
		t.Fatalf("after 6 failures: blocked=%v err=%v", blocked, err)
	}

	if err := limiter.Reset(ctx, client); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if blocked, _ := limiter.IsBlocked(ctx, client); blocked {
		t.Fatal("reset should unblock the client")
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := limiter.Attempt(ctx, client)
			if err != nil {
				t.Errorf("attempt: %v", err)
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
	if granted != 6 {
		t.Fatalf("granted %d concurrent attempts, want 6", granted)
	}
}
